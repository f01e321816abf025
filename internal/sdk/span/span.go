package span

import (
	"fmt"
	"sync"

	"agentstack/pipeline/internal/sdk/clock"
	"agentstack/pipeline/internal/sdk/redact"
)

// Event is a timestamped annotation attached to a Span, e.g. an exception
// record or an application-level marker.
type Event struct {
	Name       string            `json:"name"`
	TimeUnixNs int64             `json:"time_unix_nano"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Span is the SDK's mutable, in-flight unit-of-work record (spec §4.1). It
// is not safe to share across goroutines except through its own methods,
// which serialize access with an internal mutex; callers End() it at most
// once.
type Span struct {
	mu sync.Mutex

	TraceID      string
	SpanID       string
	ParentSpanID string
	Name         string
	ServiceName  string

	startWallNs int64
	startMonoNs int64
	endWallNs   int64
	endMonoNs   int64

	Attributes map[string]string
	Events     []Event
	Status     Status
	StatusDesc string

	ended bool
}

// New constructs a started Span. traceID/parentSpanID may be empty for a
// root span; New always assigns a fresh SpanID.
func New(traceID, parentSpanID, name, serviceName string, newID func() string) *Span {
	if traceID == "" {
		traceID = newID()
	}
	return &Span{
		TraceID:      traceID,
		SpanID:       newID(),
		ParentSpanID: parentSpanID,
		Name:         name,
		ServiceName:  serviceName,
		startWallNs:  clock.WallNanos(),
		startMonoNs:  clock.MonoNanos(),
		Attributes:   make(map[string]string),
		Status:       StatusOK,
	}
}

// SetAttribute records a key/value pair on the span. A no-op once the span
// has ended, mirroring the original SDK's end() guard.
func (s *Span) SetAttribute(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.Attributes[key] = value
}

// SetStatus sets the span's terminal status and an optional description.
func (s *Span) SetStatus(status Status, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.Status = status
	s.StatusDesc = description
}

// AddEvent appends a timestamped event to the span.
func (s *Span) AddEvent(name string, attributes map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.Events = append(s.Events, Event{
		Name:       name,
		TimeUnixNs: clock.WallNanos(),
		Attributes: attributes,
	})
}

// RecordException captures an error as an "exception" event and marks the
// span's status as Error, matching the original SDK's record_exception.
func (s *Span) RecordException(err error) {
	if err == nil {
		return
	}
	s.AddEvent("exception", map[string]string{
		"exception.type":    fmt.Sprintf("%T", err),
		"exception.message": err.Error(),
	})
	s.SetStatus(StatusError, err.Error())
}

// End finalizes the span's timing. Calling End more than once is a no-op,
// so a deferred End() paired with an earlier explicit End() is always safe.
func (s *Span) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.endWallNs = clock.WallNanos()
	s.endMonoNs = clock.MonoNanos()
	s.ended = true
}

// DurationMs returns the span's duration. Before End() is called it reports
// the duration so far.
func (s *Span) DurationMs() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	end := s.endMonoNs
	if !s.ended {
		end = clock.MonoNanos()
	}
	return clock.DurationMs(s.startMonoNs, end)
}

// Record is the sanitized, immutable export shape produced by ToRecord. It
// is what crosses the wire to the collector (spec §4.2) and is what every
// downstream worker consumes.
type Record struct {
	TraceID      string            `json:"trace_id" validate:"required"`
	SpanID       string            `json:"span_id" validate:"required"`
	ParentSpanID string            `json:"parent_span_id,omitempty"`
	Name         string            `json:"name" validate:"required"`
	ServiceName  string            `json:"service_name"`
	StartTimeNs  int64             `json:"start_time" validate:"required"`
	EndTimeNs    int64             `json:"end_time" validate:"required,gtefield=StartTimeNs"`
	DurationMs   int64             `json:"duration_ms"`
	Attributes   map[string]string `json:"attributes"`
	Events       []Event           `json:"events"`
	Status       Status            `json:"status"`
	StatusDesc   string            `json:"status_description,omitempty"`
}

// ToRecord produces the sanitized export record for this span. It is safe
// to call only after End(); calling it before End() yields a zero EndTimeNs.
// PII scrubbing happens here, not on the live span, so in-process
// instrumentation (SetAttribute/AddEvent) still sees raw values.
func (s *Span) ToRecord() Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Record{
		TraceID:      s.TraceID,
		SpanID:       s.SpanID,
		ParentSpanID: s.ParentSpanID,
		Name:         s.Name,
		ServiceName:  s.ServiceName,
		StartTimeNs:  s.startWallNs,
		EndTimeNs:    s.endWallNs,
		DurationMs:   clock.DurationMs(s.startMonoNs, s.endMonoNs),
		Attributes:   redact.Attributes(s.Attributes),
		Events:       s.Events,
		Status:       s.Status,
		StatusDesc:   s.StatusDesc,
	}
}
