// Package spanrecord encodes batches of span.Record for the wire format the
// ingest gateway accepts (spec §4.2, §4.6). No msgpack library exists
// anywhere in the example pack (see DESIGN.md), so the batch envelope is
// plain JSON; Transport still gzips it before sending, keeping payload size
// comparable to the original msgpack+gzip format.
package spanrecord

import (
	"encoding/json"
	"fmt"

	"agentstack/pipeline/internal/sdk/span"
)

// Batch is the top-level envelope posted to POST /v1/spans.
type Batch struct {
	Spans []span.Record `json:"spans"`
}

// Encode serializes a batch of records into the wire payload.
func Encode(records []span.Record) ([]byte, error) {
	b, err := json.Marshal(Batch{Spans: records})
	if err != nil {
		return nil, fmt.Errorf("spanrecord: encode batch: %w", err)
	}
	return b, nil
}

// Decode parses a wire payload back into its span records, used by the
// ingest gateway when accepting a batch (spec §4.6 step 2).
func Decode(payload []byte) ([]span.Record, error) {
	var batch Batch
	if err := json.Unmarshal(payload, &batch); err != nil {
		return nil, fmt.Errorf("spanrecord: decode batch: %w", err)
	}
	return batch.Spans, nil
}
