// Package spanctx maintains the per-goroutine current-span stack used to
// derive parent/child relationships automatically, grounded on
// _examples/original_source's contextvars-based span_context (context.py).
// Go has no contextvars equivalent that survives goroutine boundaries, so
// the stack lives on context.Context instead: each push allocates a new
// immutable slice (copy-on-write) and returns a derived context carrying it,
// exactly like the Python implementation's copy-on-write list semantics.
package spanctx

import (
	"context"

	"agentstack/pipeline/internal/sdk/span"
)

type stackKey struct{}

// stack returns the slice of spans currently active on ctx, outermost first.
func stack(ctx context.Context) []*span.Span {
	v, _ := ctx.Value(stackKey{}).([]*span.Span)
	return v
}

// WithSpan returns a derived context with s pushed onto the current span
// stack. The original context (and any other holder of its stack) is
// unaffected, matching the copy-on-write behavior of the original SDK.
func WithSpan(ctx context.Context, s *span.Span) context.Context {
	cur := stack(ctx)
	next := make([]*span.Span, len(cur)+1)
	copy(next, cur)
	next[len(cur)] = s
	return context.WithValue(ctx, stackKey{}, next)
}

// Current returns the innermost active span on ctx, or nil if none.
func Current(ctx context.Context) *span.Span {
	s := stack(ctx)
	if len(s) == 0 {
		return nil
	}
	return s[len(s)-1]
}

// CurrentTraceID returns the trace ID of the current span, or "" if there
// is no active span.
func CurrentTraceID(ctx context.Context) string {
	if s := Current(ctx); s != nil {
		return s.TraceID
	}
	return ""
}

// CurrentSpanID returns the span ID of the current span, used as the parent
// ID when a new child span starts, or "" for a root span.
func CurrentSpanID(ctx context.Context) string {
	if s := Current(ctx); s != nil {
		return s.SpanID
	}
	return ""
}
