// Package entity defines the analytical-store row shape for persisted spans,
// grounded on _examples/original_source's clickhouse_writer.py schema.
package entity

import "time"

// SpanRecord is the durable row written for every ingested span (spec §4.10).
type SpanRecord struct {
	SpanID       string    `gorm:"column:span_id;primaryKey"`
	TraceID      string    `gorm:"column:trace_id;index"`
	ParentSpanID string    `gorm:"column:parent_span_id"`
	ProjectID    string    `gorm:"column:project_id;index"`
	Name         string    `gorm:"column:name"`
	ServiceName  string    `gorm:"column:service_name"`
	Status       string    `gorm:"column:status"`
	StartTime    time.Time `gorm:"column:start_time"`
	EndTime      time.Time `gorm:"column:end_time"`
	DurationMs   int64     `gorm:"column:duration_ms"`
	Attributes   string    `gorm:"column:attributes"` // JSON-encoded map[string]string
	Events       string    `gorm:"column:events"`     // JSON-encoded []span.Event
}

// TableName pins the GORM table name independent of struct naming.
func (SpanRecord) TableName() string {
	return "spans"
}
