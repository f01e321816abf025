package helper

import (
	"strconv"

	"agentstack/pipeline/internal/sdk/span"
)

// SpanFixture provides reusable test data builders for span.Record, used
// across the gateway, consumer, and worker test suites.
type SpanFixture struct {
	TraceID      string
	SpanID       string
	ParentSpanID string
	Name         string
	ServiceName  string
	StartTimeNs  int64
	EndTimeNs    int64
	Attributes   map[string]string
	Status       span.Status
}

// NewSpanFixture creates a valid span fixture with sensible defaults.
func NewSpanFixture() *SpanFixture {
	return &SpanFixture{
		TraceID:     "11111111111111111111111111111111",
		SpanID:      "2222222222222222",
		Name:        "llm.completion",
		ServiceName: "test-service",
		StartTimeNs: 1_700_000_000_000_000_000,
		EndTimeNs:   1_700_000_000_500_000_000,
		Attributes:  map[string]string{},
		Status:      span.StatusOK,
	}
}

// WithSpanID sets a custom span ID.
func (f *SpanFixture) WithSpanID(id string) *SpanFixture {
	f.SpanID = id
	return f
}

// WithTraceID sets a custom trace ID.
func (f *SpanFixture) WithTraceID(id string) *SpanFixture {
	f.TraceID = id
	return f
}

// WithAttribute sets a single attribute key/value.
func (f *SpanFixture) WithAttribute(key, value string) *SpanFixture {
	if f.Attributes == nil {
		f.Attributes = map[string]string{}
	}
	f.Attributes[key] = value
	return f
}

// WithLLMUsage sets the conventional llm.model/usage attribute keys used by
// the cost worker (spec §4.11).
func (f *SpanFixture) WithLLMUsage(model string, promptTokens, completionTokens int) *SpanFixture {
	return f.
		WithAttribute("llm.model", model).
		WithAttribute("llm.usage.prompt_tokens", strconv.Itoa(promptTokens)).
		WithAttribute("llm.usage.completion_tokens", strconv.Itoa(completionTokens))
}

// ToRecord converts the fixture into a span.Record, the shape ingested by
// the gateway and decoded by every consumer-group worker.
func (f *SpanFixture) ToRecord() span.Record {
	return span.Record{
		TraceID:      f.TraceID,
		SpanID:       f.SpanID,
		ParentSpanID: f.ParentSpanID,
		Name:         f.Name,
		ServiceName:  f.ServiceName,
		StartTimeNs:  f.StartTimeNs,
		EndTimeNs:    f.EndTimeNs,
		DurationMs:   (f.EndTimeNs - f.StartTimeNs) / 1_000_000,
		Attributes:   f.Attributes,
		Status:       f.Status,
	}
}
