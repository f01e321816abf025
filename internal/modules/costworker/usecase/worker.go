// Package usecase implements the cost calculator worker (spec §4.11),
// grounded on _examples/original_source's cost_calculator.py. Like the
// persistent writer, it runs its own batching loop rather than the shared
// consumer's per-message auto-ack, so it can skip un-costable spans without
// blocking the batch and ack only after a successful insert.
package usecase

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"agentstack/pipeline/internal/infrastructure/durablelog"
	"agentstack/pipeline/internal/infrastructure/logger"
	"agentstack/pipeline/internal/modules/costworker/entity"
	"agentstack/pipeline/internal/modules/costworker/pricing"
	"agentstack/pipeline/internal/modules/costworker/repository"
	"agentstack/pipeline/internal/sdk/span"
)

// BatchSize and FlushInterval resolve spec §9's open question in favor of
// the constructor default documented in the spec text (100 spans or 5s),
// not the 1s value the original worker's inner loop actually checked.
const (
	BatchSize     = 100
	FlushInterval = 5 * time.Second
)

const payloadField = "payload"

type pending struct {
	entryID string
	metric  entity.CostMetric
}

// Worker drains the spans durable-log topic, costs out any span carrying
// LLM usage attributes, and bulk-inserts the results.
type Worker struct {
	Log      *durablelog.Log
	Topic    string
	Group    string
	Consumer string
	Repo     *repository.CostRepository
	Logger   logger.Logger

	buf []pending
}

func (w *Worker) Run(ctx context.Context) error {
	if err := w.Log.EnsureGroup(ctx, w.Topic, w.Group); err != nil {
		return err
	}

	ticker := time.NewTicker(FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.flush(ctx)
			return nil
		case <-ticker.C:
			w.flush(ctx)
		default:
		}

		entries, err := w.Log.ReadGroup(ctx, w.Topic, w.Group, w.Consumer, int64(BatchSize))
		if err != nil {
			w.Logger.WithField("topic", w.Topic).Error("costworker: read error: " + err.Error())
			time.Sleep(time.Second)
			continue
		}

		for _, e := range entries {
			metric, ok, err := costFromEntry(e)
			if err != nil {
				w.Logger.WithField("entry_id", e.ID).Error("costworker: malformed span payload, dropping: " + err.Error())
				w.ackNow(ctx, e.ID)
				continue
			}
			if !ok {
				// No model or zero tokens: nothing to cost, ack immediately.
				w.ackNow(ctx, e.ID)
				continue
			}
			w.buf = append(w.buf, pending{entryID: e.ID, metric: metric})
		}

		if len(w.buf) >= BatchSize {
			w.flush(ctx)
		}
	}
}

func (w *Worker) ackNow(ctx context.Context, id string) {
	if err := w.Log.Ack(ctx, w.Topic, w.Group, id); err != nil {
		w.Logger.Error("costworker: ack failed: " + err.Error())
	}
}

func costFromEntry(e durablelog.Entry) (entity.CostMetric, bool, error) {
	raw, _ := e.Values[payloadField].(string)
	var rec span.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return entity.CostMetric{}, false, err
	}

	model := rec.Attributes["llm.model"]
	promptTokens, _ := strconv.Atoi(rec.Attributes["llm.usage.prompt_tokens"])
	completionTokens, _ := strconv.Atoi(rec.Attributes["llm.usage.completion_tokens"])

	cost, ok := pricing.Cost(model, promptTokens, completionTokens)
	if !ok {
		return entity.CostMetric{}, false, nil
	}

	projectID, _ := e.Values["project_id"].(string)
	return entity.CostMetric{
		SpanID:           rec.SpanID,
		TraceID:          rec.TraceID,
		ProjectID:        projectID,
		Model:            model,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		CostUsd:          cost,
		CreatedAt:        time.Unix(0, rec.EndTimeNs),
	}, true, nil
}

func (w *Worker) flush(ctx context.Context) {
	if len(w.buf) == 0 {
		return
	}
	metrics := make([]entity.CostMetric, len(w.buf))
	ids := make([]string, len(w.buf))
	for i, p := range w.buf {
		metrics[i] = p.metric
		ids[i] = p.entryID
	}

	if err := w.Repo.CreateBatch(ctx, metrics); err != nil {
		w.Logger.WithField("batch_size", len(metrics)).Error("costworker: batch insert failed, retaining buffer: " + err.Error())
		return
	}

	if err := w.Log.Ack(ctx, w.Topic, w.Group, ids...); err != nil {
		w.Logger.Error("costworker: batch ack failed after successful insert: " + err.Error())
	}
	w.buf = w.buf[:0]
}
