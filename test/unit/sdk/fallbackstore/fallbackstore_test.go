package fallbackstore_test

import (
	"path/filepath"
	"testing"

	"agentstack/pipeline/internal/sdk/fallbackstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *fallbackstore.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fallback.log")
	s, err := fallbackstore.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveSpans_AndGetUnsent(t *testing.T) {
	// Arrange
	s := openTestStore(t)
	spans := map[string]string{"span-1": "trace-1", "span-2": "trace-1"}
	payloads := map[string][]byte{"span-1": []byte("payload-1"), "span-2": []byte("payload-2")}

	// Act
	err := s.SaveSpans(spans, payloads)

	// Assert
	require.NoError(t, err)
	unsent := s.GetUnsent(0)
	assert.Len(t, unsent, 2)
	assert.Equal(t, 2, s.UnsentCount())
	assert.Equal(t, 2, s.TotalCount())
}

func TestGetUnsent_RespectsLimit(t *testing.T) {
	// Arrange
	s := openTestStore(t)
	require.NoError(t, s.SaveSpans(
		map[string]string{"a": "t", "b": "t", "c": "t"},
		map[string][]byte{"a": {1}, "b": {2}, "c": {3}},
	))

	// Act
	unsent := s.GetUnsent(2)

	// Assert
	assert.Len(t, unsent, 2)
}

func TestMarkSent_ExcludesFromUnsent(t *testing.T) {
	// Arrange
	s := openTestStore(t)
	require.NoError(t, s.SaveSpans(
		map[string]string{"a": "t", "b": "t"},
		map[string][]byte{"a": {1}, "b": {2}},
	))

	// Act
	err := s.MarkSent([]string{"a"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, s.UnsentCount())
	assert.Equal(t, 2, s.TotalCount(), "sent spans remain tracked until compaction")
}

func TestDeleteSent_CompactsOnlyUnsentRecords(t *testing.T) {
	// Arrange
	s := openTestStore(t)
	require.NoError(t, s.SaveSpans(
		map[string]string{"a": "t", "b": "t"},
		map[string][]byte{"a": {1}, "b": {2}},
	))
	require.NoError(t, s.MarkSent([]string{"a"}))

	// Act
	err := s.DeleteSent()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, s.TotalCount())
	assert.Equal(t, 1, s.UnsentCount())
}

func TestOpen_ReplaysPersistedRecordsAcrossReopen(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "fallback.log")
	s1, err := fallbackstore.Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.SaveSpans(
		map[string]string{"a": "t"},
		map[string][]byte{"a": []byte("payload")},
	))
	require.NoError(t, s1.Close())

	// Act
	s2, err := fallbackstore.Open(path)
	require.NoError(t, err)
	defer s2.Close()

	// Assert
	assert.Equal(t, 1, s2.TotalCount())
	unsent := s2.GetUnsent(0)
	require.Len(t, unsent, 1)
	assert.Equal(t, "payload", string(unsent[0].Payload))
}

func TestMarkSent_UnknownSpanIDIsNoOp(t *testing.T) {
	// Arrange
	s := openTestStore(t)

	// Act
	err := s.MarkSent([]string{"does-not-exist"})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 0, s.TotalCount())
}
