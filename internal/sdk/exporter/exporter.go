// Package exporter implements the SDK's background batch processor, grounded
// on _examples/original_source's exporter.py (BatchSpanProcessor): a
// goroutine drains the ring buffer on batch-size or interval, ships the
// drained spans via transport, and falls back to local persistence when
// delivery fails. It also periodically retries previously-failed spans.
package exporter

import (
	"context"
	"sync"
	"time"

	"agentstack/pipeline/internal/infrastructure/logger"
	"agentstack/pipeline/internal/sdk/fallbackstore"
	"agentstack/pipeline/internal/sdk/ringbuffer"
	"agentstack/pipeline/internal/sdk/span"
	"agentstack/pipeline/internal/sdk/spanrecord"
	"agentstack/pipeline/internal/sdk/transport"
)

// retryUnsentEveryTicks mirrors the original SDK's "every 6 ticks" cadence:
// at a 5s flush interval that is roughly 30s between unsent-retry passes.
const retryUnsentEveryTicks = 6

// maxUnsentRetryBatch bounds how many previously-failed spans are retried
// per pass, matching the original SDK's limit of 100.
const maxUnsentRetryBatch = 100

// Sender is the minimal surface BatchProcessor needs from transport.HTTPTransport.
type Sender interface {
	Send(ctx context.Context, payload []byte) transport.Result
}

// Config tunes the processor's flush cadence and buffer size.
type Config struct {
	BatchSize      int
	FlushInterval  time.Duration
	QueueCapacity  int
	ShutdownWindow time.Duration
}

// DefaultConfig matches the original SDK's defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:      100,
		FlushInterval:  5 * time.Second,
		QueueCapacity:  ringbuffer.DefaultCapacity,
		ShutdownWindow: 5 * time.Second,
	}
}

// BatchProcessor buffers ended spans and exports them in batches on a
// background goroutine.
type BatchProcessor struct {
	cfg     Config
	sender  Sender
	fb      *fallbackstore.Store
	log     logger.Logger
	buf     *ringbuffer.RingBuffer[span.Record]
	flushCh chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	once    sync.Once
}

// New constructs a BatchProcessor. fb may be nil to disable local fallback
// persistence (tests only; production always wires a Store).
func New(cfg Config, sender Sender, fb *fallbackstore.Store, log logger.Logger) *BatchProcessor {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultConfig().FlushInterval
	}
	return &BatchProcessor{
		cfg:     cfg,
		sender:  sender,
		fb:      fb,
		log:     log,
		buf:     ringbuffer.New[span.Record](cfg.QueueCapacity),
		flushCh: make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start launches the background export loop. Call once.
func (p *BatchProcessor) Start(ctx context.Context) {
	go p.run(ctx)
}

// Enqueue adds an ended span's record to the pending batch, requesting an
// immediate flush once the batch size threshold is reached.
func (p *BatchProcessor) Enqueue(rec span.Record) {
	p.buf.Add(rec)
	if p.buf.Size() >= p.cfg.BatchSize {
		select {
		case p.flushCh <- struct{}{}:
		default:
		}
	}
}

func (p *BatchProcessor) run(ctx context.Context) {
	defer close(p.doneCh)
	ticker := time.NewTicker(p.cfg.FlushInterval)
	defer ticker.Stop()

	ticks := 0
	for {
		select {
		case <-p.stopCh:
			p.flush(ctx)
			return
		case <-p.flushCh:
			p.flush(ctx)
		case <-ticker.C:
			ticks++
			p.flush(ctx)
			if ticks%retryUnsentEveryTicks == 0 {
				p.retryUnsent(ctx)
			}
		}
	}
}

func (p *BatchProcessor) flush(ctx context.Context) {
	records := p.buf.Drain()
	if len(records) == 0 {
		return
	}
	p.send(ctx, records)
}

func (p *BatchProcessor) send(ctx context.Context, records []span.Record) {
	payload, err := spanrecord.Encode(records)
	if err != nil {
		p.log.WithField("count", len(records)).Error("exporter: failed to encode span batch: " + err.Error())
		return
	}

	result := p.sender.Send(ctx, payload)
	if result.Success {
		return
	}

	p.log.WithField("count", len(records)).Warn("exporter: delivery failed, falling back to local store")
	if p.fb == nil {
		return
	}
	ids := make(map[string]string, len(records))
	payloads := make(map[string][]byte, len(records))
	for _, r := range records {
		ids[r.SpanID] = r.TraceID
		single, err := spanrecord.Encode([]span.Record{r})
		if err != nil {
			continue
		}
		payloads[r.SpanID] = single
	}
	if err := p.fb.SaveSpans(ids, payloads); err != nil {
		p.log.Error("exporter: failed to persist fallback spans: " + err.Error())
	}
}

// retryUnsent resends up to maxUnsentRetryBatch previously-failed spans from
// the fallback store.
func (p *BatchProcessor) retryUnsent(ctx context.Context) {
	if p.fb == nil {
		return
	}
	pending := p.fb.GetUnsent(maxUnsentRetryBatch)
	if len(pending) == 0 {
		return
	}

	var sentIDs []string
	for _, item := range pending {
		records, err := spanrecord.Decode(item.Payload)
		if err != nil || len(records) == 0 {
			continue
		}
		payload, err := spanrecord.Encode(records)
		if err != nil {
			continue
		}
		result := p.sender.Send(ctx, payload)
		if result.Success {
			sentIDs = append(sentIDs, item.SpanID)
		}
	}
	if len(sentIDs) > 0 {
		if err := p.fb.MarkSent(sentIDs); err != nil {
			p.log.Error("exporter: failed to mark fallback spans sent: " + err.Error())
		}
	}
}

// Shutdown stops the background loop, flushing whatever is buffered, and
// waits up to the configured ShutdownWindow for it to finish.
func (p *BatchProcessor) Shutdown() {
	p.once.Do(func() {
		close(p.stopCh)
	})
	select {
	case <-p.doneCh:
	case <-time.After(p.cfg.ShutdownWindow):
	}
}
