// Package usecase implements the persistent writer worker (spec §4.10),
// grounded on _examples/original_source's clickhouse_writer.py: unlike the
// shared consumer framework's per-message auto-ack, this worker runs its own
// loop so it can batch-ack only after a batch is durably inserted, retaining
// unacked entries in memory across a failed insert.
package usecase

import (
	"context"
	"encoding/json"
	"time"

	"agentstack/pipeline/internal/infrastructure/durablelog"
	"agentstack/pipeline/internal/infrastructure/logger"
	"agentstack/pipeline/internal/modules/writer/entity"
	"agentstack/pipeline/internal/modules/writer/repository"
	"agentstack/pipeline/internal/sdk/span"
)

// BatchSize and FlushInterval mirror the original worker's "batch >= 1000 or
// 1 second" flush condition.
const (
	BatchSize     = 1000
	FlushInterval = time.Second
)

const payloadField = "payload"

type pending struct {
	entryID string
	record  entity.SpanRecord
}

// Worker drains the spans durable-log topic and bulk-inserts into the
// analytical store, acknowledging only what was successfully persisted.
type Worker struct {
	Log      *durablelog.Log
	Topic    string
	Group    string
	Consumer string
	Repo     *repository.SpanRepository
	Logger   logger.Logger

	buf []pending
}

// Run ensures the consumer group exists, then reads and buffers entries
// until a flush threshold is reached, matching the original worker's
// size-or-interval trigger.
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
			w.Logger.WithField("topic", w.Topic).Error("writer: read error: " + err.Error())
			time.Sleep(time.Second)
			continue
		}

		for _, e := range entries {
			rec, err := decodeEntry(e)
			if err != nil {
				w.Logger.WithField("entry_id", e.ID).Error("writer: malformed span payload, dropping: " + err.Error())
				if ackErr := w.Log.Ack(ctx, w.Topic, w.Group, e.ID); ackErr != nil {
					w.Logger.Error("writer: ack of dropped entry failed: " + ackErr.Error())
				}
				continue
			}
			w.buf = append(w.buf, pending{entryID: e.ID, record: rec})
		}

		if len(w.buf) >= BatchSize {
			w.flush(ctx)
		}
	}
}

func decodeEntry(e durablelog.Entry) (entity.SpanRecord, error) {
	raw, _ := e.Values[payloadField].(string)
	var rec span.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return entity.SpanRecord{}, err
	}
	attrs, err := json.Marshal(rec.Attributes)
	if err != nil {
		return entity.SpanRecord{}, err
	}
	events, err := json.Marshal(rec.Events)
	if err != nil {
		return entity.SpanRecord{}, err
	}
	projectID, _ := e.Values["project_id"].(string)
	return entity.SpanRecord{
		SpanID:       rec.SpanID,
		TraceID:      rec.TraceID,
		ParentSpanID: rec.ParentSpanID,
		ProjectID:    projectID,
		Name:         rec.Name,
		ServiceName:  rec.ServiceName,
		Status:       string(rec.Status),
		StartTime:    time.Unix(0, rec.StartTimeNs),
		EndTime:      time.Unix(0, rec.EndTimeNs),
		DurationMs:   rec.DurationMs,
		Attributes:   string(attrs),
		Events:       string(events),
	}, nil
}

// flush bulk-inserts the buffered batch and acks only on success, leaving
// the buffer untouched (for a retry on the next tick) when the insert fails.
func (w *Worker) flush(ctx context.Context) {
	if len(w.buf) == 0 {
		return
	}
	records := make([]entity.SpanRecord, len(w.buf))
	ids := make([]string, len(w.buf))
	for i, p := range w.buf {
		records[i] = p.record
		ids[i] = p.entryID
	}

	if err := w.Repo.CreateBatch(ctx, records); err != nil {
		w.Logger.WithField("batch_size", len(records)).Error("writer: batch insert failed, retaining buffer: " + err.Error())
		return
	}

	if err := w.Log.Ack(ctx, w.Topic, w.Group, ids...); err != nil {
		w.Logger.Error("writer: batch ack failed after successful insert: " + err.Error())
	}
	w.buf = w.buf[:0]
}
