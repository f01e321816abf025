// Package span implements the SDK's mutable, in-flight unit-of-work record
// described in spec §4.1: a Span tracks timing, attributes, events, and
// status for one operation, and is sanitized and queued for export on end().
package span

// Status is the terminal outcome of a Span.
type Status string

const (
	StatusOK    Status = "OK"
	StatusError Status = "ERROR"
)
