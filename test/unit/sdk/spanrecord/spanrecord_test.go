package spanrecord_test

import (
	"testing"

	"agentstack/pipeline/internal/sdk/span"
	"agentstack/pipeline/internal/sdk/spanrecord"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTripsSpanBatch(t *testing.T) {
	// Arrange
	records := []span.Record{
		{TraceID: "t1", SpanID: "s1", Name: "op1", StartTimeNs: 1, EndTimeNs: 2},
		{TraceID: "t1", SpanID: "s2", Name: "op2", StartTimeNs: 2, EndTimeNs: 3},
	}

	// Act
	payload, err := spanrecord.Encode(records)
	require.NoError(t, err)
	decoded, err := spanrecord.Decode(payload)

	// Assert
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, "s1", decoded[0].SpanID)
	assert.Equal(t, "s2", decoded[1].SpanID)
}

func TestDecode_MalformedPayloadReturnsError(t *testing.T) {
	// Arrange & Act
	_, err := spanrecord.Decode([]byte("not json"))

	// Assert
	assert.Error(t, err)
}

func TestEncode_EmptyBatchProducesEmptySpansArray(t *testing.T) {
	// Arrange & Act
	payload, err := spanrecord.Encode(nil)
	require.NoError(t, err)
	decoded, err := spanrecord.Decode(payload)

	// Assert
	require.NoError(t, err)
	assert.Empty(t, decoded)
}
