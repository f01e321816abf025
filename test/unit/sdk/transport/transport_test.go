package transport_test

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"agentstack/pipeline/internal/sdk/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend_SuccessOnFirstAttempt(t *testing.T) {
	// Arrange
	var gotAPIKey string
	var gotEncoding string
	var gotUserAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("X-API-Key")
		gotEncoding = r.Header.Get("Content-Encoding")
		gotUserAgent = r.Header.Get("User-Agent")
		gz, err := gzip.NewReader(r.Body)
		require.NoError(t, err)
		body, err := io.ReadAll(gz)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(body))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tr := transport.New(srv.URL, "secret-key")

	// Act
	result := tr.Send(context.Background(), []byte("hello"))

	// Assert
	assert.True(t, result.Success)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "secret-key", gotAPIKey)
	assert.Equal(t, "gzip", gotEncoding)
	assert.Equal(t, "agentstack-sdk/0.1.0", gotUserAgent)
}

func TestSend_NonRetryableStatusFailsImmediately(t *testing.T) {
	// Arrange
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	tr := transport.New(srv.URL, "key")

	// Act
	result := tr.Send(context.Background(), []byte("payload"))

	// Assert
	assert.False(t, result.Success)
	assert.Equal(t, http.StatusBadRequest, result.StatusCode)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "a 400 must not be retried")
}

func TestSend_RetryableStatusRetriesUntilSuccess(t *testing.T) {
	// Arrange
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tr := transport.New(srv.URL, "key")

	// Act
	result := tr.Send(context.Background(), []byte("payload"))

	// Assert
	assert.True(t, result.Success)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}
