// Package usecase implements the security engine worker (spec §4.12),
// grounded on _examples/original_source's security_engine.py: for every
// span, assemble checkable text from known attribute/event keys, run the
// injection/PII/anomaly rules, and persist+broadcast any resulting alerts.
// Unlike the writer and cost worker, this worker has no batching need (each
// alert is independent), so it rides the shared consumer.BaseConsumer with
// its default per-entry auto-ack.
package usecase

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"agentstack/pipeline/internal/infrastructure/durablelog"
	"agentstack/pipeline/internal/modules/security/entity"
	"agentstack/pipeline/internal/modules/security/repository"
	"agentstack/pipeline/internal/modules/security/rules"
	"agentstack/pipeline/internal/pkg/uid"
	"agentstack/pipeline/internal/sdk/span"
)

const payloadField = "payload"

// textAttributeKeys mirrors security_engine.py's analyze_span: only these
// attribute keys are treated as LLM input/output worth scanning.
var textAttributeKeys = []string{
	"llm.prompts.0.content",
	"llm.completions.0.content",
}

// Worker runs the three detection rules against every span on the ingest
// topic and publishes any findings.
type Worker struct {
	Log         *durablelog.Log
	Repo        *repository.AlertRepository
	Topic       string
	AlertsTopic string
}

// Handle is the consumer.Handler bound to the security consumer group.
func (w *Worker) Handle(ctx context.Context, e durablelog.Entry) error {
	raw, _ := e.Values[payloadField].(string)
	var rec span.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		// Malformed payload: drop (ack, don't poison the group), matching
		// the gateway-validation schema-violation policy (spec §7).
		return nil
	}
	projectID, _ := e.Values["project_id"].(string)

	alerts := w.analyze(rec, projectID)
	for _, a := range alerts {
		if err := w.Repo.Create(ctx, &a); err != nil {
			return err
		}
		if err := w.publish(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (w *Worker) analyze(rec span.Record, projectID string) []entity.SecurityAlert {
	var alerts []entity.SecurityAlert
	now := time.Now()

	text := checkableText(rec)
	if text != "" {
		if inj := rules.CheckInjection(text); inj.Alert {
			alerts = append(alerts, entity.SecurityAlert{
				ID:          uid.NewUUID(),
				ProjectID:   projectID,
				TraceID:     rec.TraceID,
				SpanID:      rec.SpanID,
				RuleName:    "Prompt Injection",
				Severity:    inj.Severity,
				Score:       float64(inj.Score),
				Description: "Potential prompt injection detected in LLM input/output",
				Evidence:    truncate(text, 200),
				CreatedAt:   now,
			})
		}
		if pii := rules.CheckPII(text); len(pii.Detected) > 0 {
			alerts = append(alerts, entity.SecurityAlert{
				ID:          uid.NewUUID(),
				ProjectID:   projectID,
				TraceID:     rec.TraceID,
				SpanID:      rec.SpanID,
				RuleName:    "PII Leak",
				Severity:    pii.Severity,
				Score:       100,
				Description: "Sensitive PII detected: " + strings.Join(pii.Detected, ", "),
				Evidence:    pii.Evidence,
				CreatedAt:   now,
			})
		}
	}

	totalTokens, _ := strconv.Atoi(rec.Attributes["llm.usage.total_tokens"])
	for _, anom := range rules.CheckAnomaly(rec.DurationMs, totalTokens) {
		alerts = append(alerts, entity.SecurityAlert{
			ID:          uid.NewUUID(),
			ProjectID:   projectID,
			TraceID:     rec.TraceID,
			SpanID:      rec.SpanID,
			RuleName:    anom.RuleName,
			Severity:    "LOW",
			Score:       30,
			Description: anom.Description,
			Evidence:    strconv.FormatInt(rec.DurationMs, 10),
			CreatedAt:   now,
		})
	}
	return alerts
}

// checkableText assembles analyzable text from the fixed attribute keys and
// from every event's "message" attribute, matching security_engine.py.
func checkableText(rec span.Record) string {
	var parts []string
	for _, key := range textAttributeKeys {
		if v, ok := rec.Attributes[key]; ok && v != "" {
			parts = append(parts, v)
		}
	}
	for _, ev := range rec.Events {
		if msg, ok := ev.Attributes["message"]; ok && msg != "" {
			parts = append(parts, msg)
		}
	}
	return strings.Join(parts, "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// publish appends the minimal alert notification fields to alerts.live
// (spec §4.12 step b; §9 resolves the omitted wire schema to exclude
// evidence, so raw PII/secrets never cross the broadcast channel).
func (w *Worker) publish(ctx context.Context, a entity.SecurityAlert) error {
	_, err := w.Log.Append(ctx, w.AlertsTopic, map[string]any{
		"id":          a.ID,
		"project_id":  a.ProjectID,
		"trace_id":    a.TraceID,
		"span_id":     a.SpanID,
		"rule_name":   a.RuleName,
		"severity":    a.Severity,
		"score":       strconv.FormatFloat(a.Score, 'f', -1, 64),
		"description": a.Description,
		"created_at":  a.CreatedAt.Format(time.RFC3339Nano),
	})
	return err
}
