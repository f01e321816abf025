// Package transport implements the SDK's HTTP delivery to the collector
// (spec §4.2), grounded on _examples/original_source's transport.py:
// gzip+JSON POST with bounded retries on a fixed set of retryable statuses.
// Uses klauspost/compress/gzip and cenkalti/backoff/v5, both already
// indirect dependencies of the teacher's go.mod.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/klauspost/compress/gzip"
)

// MaxRetries mirrors the original SDK's three retry attempts.
const MaxRetries = 3

// DefaultTimeout is the per-attempt HTTP timeout.
const DefaultTimeout = 10 * time.Second

// userAgent matches the original Python SDK's transport.py value.
const userAgent = "agentstack-sdk/0.1.0"

var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Result reports the outcome of a single Send call.
type Result struct {
	Success    bool
	StatusCode int
	Err        error
	RetriesUsed int
}

// HTTPTransport posts gzip-compressed JSON payloads to a collector endpoint
// with exponential backoff (1s, 2s, 4s) on retryable failures.
type HTTPTransport struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// New builds an HTTPTransport targeting endpoint, authenticating with
// apiKey via the X-API-Key header (spec §4.6).
func New(endpoint, apiKey string) *HTTPTransport {
	return &HTTPTransport{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: DefaultTimeout},
	}
}

func gzipCompress(payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(payload); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Send posts payload, retrying up to MaxRetries times on a retryable status
// code or transport-level error, backing off 1s/2s/4s between attempts.
func (t *HTTPTransport) Send(ctx context.Context, payload []byte) Result {
	compressed, err := gzipCompress(payload)
	if err != nil {
		return Result{Success: false, Err: fmt.Errorf("transport: gzip: %w", err)}
	}

	retries := 0
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.Multiplier = 2
	b.MaxElapsedTime = 0

	operation := func() (Result, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(compressed))
		if err != nil {
			return Result{}, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Content-Encoding", "gzip")
		req.Header.Set("X-API-Key", t.apiKey)
		req.Header.Set("User-Agent", userAgent)

		resp, err := t.client.Do(req)
		if err != nil {
			if retries >= MaxRetries {
				return Result{Success: false, Err: err, RetriesUsed: retries}, backoff.Permanent(err)
			}
			retries++
			return Result{}, err
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return Result{Success: true, StatusCode: resp.StatusCode, RetriesUsed: retries}, nil
		}
		if retryableStatus[resp.StatusCode] && retries < MaxRetries {
			retries++
			return Result{}, fmt.Errorf("transport: retryable status %d", resp.StatusCode)
		}
		return Result{
			Success:    false,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("transport: non-retryable status %d", resp.StatusCode),
			RetriesUsed: retries,
		}, backoff.Permanent(fmt.Errorf("status %d", resp.StatusCode))
	}

	result, err := backoff.Retry(ctx, operation, backoff.WithBackOff(b), backoff.WithMaxTries(MaxRetries+1))
	if err != nil && result.Err == nil {
		result = Result{Success: false, Err: err, RetriesUsed: retries}
	}
	return result
}
