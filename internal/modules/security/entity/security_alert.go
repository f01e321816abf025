// Package entity defines the analytical-store row shape for security alerts,
// grounded on _examples/original_source's security_engine.py's init.sql
// column list.
package entity

import "time"

// SecurityAlert is the durable row written for every rule-triggered finding
// (spec §4.12, §6).
type SecurityAlert struct {
	ID          string    `gorm:"column:id;primaryKey"`
	ProjectID   string    `gorm:"column:project_id;index"`
	TraceID     string    `gorm:"column:trace_id;index"`
	SpanID      string    `gorm:"column:span_id"`
	RuleName    string    `gorm:"column:rule_name"`
	Severity    string    `gorm:"column:severity"`
	Score       float64   `gorm:"column:score"`
	Description string    `gorm:"column:description"`
	Evidence    string    `gorm:"column:evidence"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (SecurityAlert) TableName() string {
	return "security_alerts"
}
