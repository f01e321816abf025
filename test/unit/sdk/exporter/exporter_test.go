package exporter_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"agentstack/pipeline/internal/infrastructure/logger"
	"agentstack/pipeline/internal/sdk/exporter"
	"agentstack/pipeline/internal/sdk/fallbackstore"
	"agentstack/pipeline/internal/sdk/span"
	"agentstack/pipeline/internal/sdk/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu      sync.Mutex
	results []transport.Result
	batches [][]byte
	next    transport.Result
}

func (f *fakeSender) Send(ctx context.Context, payload []byte) transport.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, payload)
	f.results = append(f.results, f.next)
	return f.next
}

func (f *fakeSender) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestBatchProcessor_FlushesOnBatchSizeThreshold(t *testing.T) {
	// Arrange
	sender := &fakeSender{next: transport.Result{Success: true}}
	cfg := exporter.Config{BatchSize: 2, FlushInterval: time.Hour, QueueCapacity: 10, ShutdownWindow: time.Second}
	p := exporter.New(cfg, sender, nil, logger.NewNoOpLogger())
	p.Start(context.Background())
	defer p.Shutdown()

	// Act
	p.Enqueue(span.Record{SpanID: "s1", TraceID: "t1"})
	p.Enqueue(span.Record{SpanID: "s2", TraceID: "t1"})

	// Assert
	waitUntil(t, time.Second, func() bool { return sender.batchCount() >= 1 })
}

func TestBatchProcessor_FallsBackToLocalStoreOnDeliveryFailure(t *testing.T) {
	// Arrange
	sender := &fakeSender{next: transport.Result{Success: false}}
	path := filepath.Join(t.TempDir(), "fallback.log")
	fb, err := fallbackstore.Open(path)
	require.NoError(t, err)
	defer fb.Close()

	cfg := exporter.Config{BatchSize: 1, FlushInterval: time.Hour, QueueCapacity: 10, ShutdownWindow: time.Second}
	p := exporter.New(cfg, sender, fb, logger.NewNoOpLogger())
	p.Start(context.Background())

	// Act
	p.Enqueue(span.Record{SpanID: "s1", TraceID: "t1"})
	waitUntil(t, time.Second, func() bool { return sender.batchCount() >= 1 })
	p.Shutdown()

	// Assert
	assert.Equal(t, 1, fb.UnsentCount())
}

func TestBatchProcessor_ShutdownFlushesRemainingSpans(t *testing.T) {
	// Arrange: batch size large enough that no size-triggered flush occurs
	// before Shutdown, so only the shutdown-time flush should deliver it.
	sender := &fakeSender{next: transport.Result{Success: true}}
	cfg := exporter.Config{BatchSize: 100, FlushInterval: time.Hour, QueueCapacity: 10, ShutdownWindow: time.Second}
	p := exporter.New(cfg, sender, nil, logger.NewNoOpLogger())
	p.Start(context.Background())

	// Act
	p.Enqueue(span.Record{SpanID: "s1", TraceID: "t1"})
	p.Shutdown()

	// Assert
	assert.Equal(t, 1, sender.batchCount())
}
