package span_test

import (
	"errors"
	"testing"

	"agentstack/pipeline/internal/sdk/span"

	"github.com/stretchr/testify/assert"
)

func sequentialIDs(ids ...string) func() string {
	i := 0
	return func() string {
		id := ids[i]
		i++
		return id
	}
}

func TestNew_RootSpanGetsFreshTraceID(t *testing.T) {
	// Arrange & Act
	s := span.New("", "", "op", "svc", sequentialIDs("trace-1", "span-1"))

	// Assert
	assert.Equal(t, "trace-1", s.TraceID)
	assert.Equal(t, "span-1", s.SpanID)
	assert.Empty(t, s.ParentSpanID)
	assert.Equal(t, span.StatusOK, s.Status)
}

func TestNew_ChildSpanKeepsGivenTraceID(t *testing.T) {
	// Arrange & Act
	s := span.New("trace-existing", "parent-span", "op", "svc", sequentialIDs("span-2"))

	// Assert
	assert.Equal(t, "trace-existing", s.TraceID)
	assert.Equal(t, "parent-span", s.ParentSpanID)
	assert.Equal(t, "span-2", s.SpanID)
}

func TestSetAttribute_NoOpAfterEnd(t *testing.T) {
	// Arrange
	s := span.New("", "", "op", "svc", sequentialIDs("t", "s"))
	s.End()

	// Act
	s.SetAttribute("key", "value")

	// Assert
	rec := s.ToRecord()
	assert.NotContains(t, rec.Attributes, "key")
}

func TestRecordException_SetsErrorStatusAndEvent(t *testing.T) {
	// Arrange
	s := span.New("", "", "op", "svc", sequentialIDs("t", "s"))

	// Act
	s.RecordException(errors.New("boom"))

	// Assert
	assert.Equal(t, span.StatusError, s.Status)
	assert.Equal(t, "boom", s.StatusDesc)
	a := assert.New(t)
	a.Len(s.Events, 1)
	a.Equal("exception", s.Events[0].Name)
	a.Equal("boom", s.Events[0].Attributes["exception.message"])
}

func TestRecordException_NilErrorIsNoOp(t *testing.T) {
	// Arrange
	s := span.New("", "", "op", "svc", sequentialIDs("t", "s"))

	// Act
	s.RecordException(nil)

	// Assert
	assert.Equal(t, span.StatusOK, s.Status)
	assert.Empty(t, s.Events)
}

func TestEnd_IsIdempotent(t *testing.T) {
	// Arrange
	s := span.New("", "", "op", "svc", sequentialIDs("t", "s"))

	// Act
	s.End()
	firstDuration := s.DurationMs()
	s.End()
	secondDuration := s.DurationMs()

	// Assert
	assert.Equal(t, firstDuration, secondDuration)
}

func TestToRecord_ScrubsPIIFromAttributes(t *testing.T) {
	// Arrange
	s := span.New("", "", "op", "svc", sequentialIDs("t", "s"))
	s.SetAttribute("user.email", "jane.doe@example.com")
	s.End()

	// Act
	rec := s.ToRecord()

	// Assert
	assert.Equal(t, "[REDACTED_EMAIL]", rec.Attributes["user.email"])
}

func TestToRecord_CarriesIdentityFields(t *testing.T) {
	// Arrange
	s := span.New("trace-1", "parent-1", "op-name", "svc-name", sequentialIDs("span-1"))
	s.End()

	// Act
	rec := s.ToRecord()

	// Assert
	assert.Equal(t, "trace-1", rec.TraceID)
	assert.Equal(t, "span-1", rec.SpanID)
	assert.Equal(t, "parent-1", rec.ParentSpanID)
	assert.Equal(t, "op-name", rec.Name)
	assert.Equal(t, "svc-name", rec.ServiceName)
}
