package entity

import "time"

// CostMetric is the durable row written for every costed span (spec §4.11).
type CostMetric struct {
	SpanID           string    `gorm:"column:span_id;primaryKey"`
	TraceID          string    `gorm:"column:trace_id;index"`
	ProjectID        string    `gorm:"column:project_id;index"`
	Model            string    `gorm:"column:model"`
	PromptTokens     int       `gorm:"column:prompt_tokens"`
	CompletionTokens int       `gorm:"column:completion_tokens"`
	CostUsd          float64   `gorm:"column:cost_usd"`
	CreatedAt        time.Time `gorm:"column:created_at"`
}

func (CostMetric) TableName() string {
	return "cost_metrics"
}
