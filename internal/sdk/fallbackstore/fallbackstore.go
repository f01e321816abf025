// Package fallbackstore persists spans the transport failed to deliver, so
// they survive a process restart and can be retried later (spec §4.2),
// grounded on _examples/original_source's local_store.py (SQLite WAL table
// keyed by span_id with a sent flag). No embedded-database driver (SQLite,
// bbolt, badger) exists anywhere in the example pack (see DESIGN.md), so
// this is deliberately built on stdlib os+encoding/gob instead of fabricating
// a dependency: an append-only log of gob-encoded records plus an in-memory
// index rebuilt at Open(), replayed under a single file mutex so concurrent
// callers see a consistent view.
package fallbackstore

import (
	"encoding/gob"
	"fmt"
	"os"
	"sync"
	"time"
)

// record is one persisted, possibly-resent span entry.
type record struct {
	SpanID    string
	TraceID   string
	Payload   []byte
	CreatedAt time.Time
	Sent      bool
}

// Store is an append-only, gob-encoded local fallback for spans that could
// not be sent to the collector.
type Store struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	byID    map[string]*record
	order   []string
}

// Open opens (creating if absent) the fallback store at path and replays it
// into memory.
func Open(path string) (*Store, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("fallbackstore: open %s: %w", path, err)
	}
	s := &Store{
		path: path,
		file: f,
		byID: make(map[string]*record),
	}
	if err := s.replay(); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) replay() error {
	if _, err := s.file.Seek(0, 0); err != nil {
		return err
	}
	dec := gob.NewDecoder(s.file)
	for {
		var r record
		if err := dec.Decode(&r); err != nil {
			break
		}
		if _, exists := s.byID[r.SpanID]; !exists {
			s.order = append(s.order, r.SpanID)
		}
		rc := r
		s.byID[r.SpanID] = &rc
	}
	if _, err := s.file.Seek(0, 2); err != nil {
		return err
	}
	return nil
}

// appendRecord writes r to the end of the log and updates the in-memory
// index. The log is append-only: updates (e.g. marking sent) are new
// entries, reconciled by SpanID on the next replay.
func (s *Store) appendRecord(r record) error {
	enc := gob.NewEncoder(s.file)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("fallbackstore: append: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("fallbackstore: sync: %w", err)
	}
	if _, exists := s.byID[r.SpanID]; !exists {
		s.order = append(s.order, r.SpanID)
	}
	rc := r
	s.byID[r.SpanID] = &rc
	return nil
}

// SaveSpans persists a batch of undelivered spans, keyed by spanID, with
// their raw encoded payload for later re-send.
func (s *Store) SaveSpans(spans map[string]string, payloads map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for spanID, traceID := range spans {
		r := record{
			SpanID:    spanID,
			TraceID:   traceID,
			Payload:   payloads[spanID],
			CreatedAt: now,
			Sent:      false,
		}
		if err := s.appendRecord(r); err != nil {
			return err
		}
	}
	return nil
}

// GetUnsent returns up to limit spans not yet marked sent, oldest first.
func (s *Store) GetUnsent(limit int) []struct {
	SpanID  string
	Payload []byte
} {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []struct {
		SpanID  string
		Payload []byte
	}
	for _, id := range s.order {
		r := s.byID[id]
		if r == nil || r.Sent {
			continue
		}
		out = append(out, struct {
			SpanID  string
			Payload []byte
		}{SpanID: r.SpanID, Payload: r.Payload})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// MarkSent flags the given span IDs as sent.
func (s *Store) MarkSent(spanIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range spanIDs {
		r, ok := s.byID[id]
		if !ok || r.Sent {
			continue
		}
		updated := *r
		updated.Sent = true
		if err := s.appendRecord(updated); err != nil {
			return err
		}
	}
	return nil
}

// DeleteSent compacts the log by rewriting it with only unsent records,
// matching local_store.py's delete_sent().
func (s *Store) DeleteSent() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]record, 0, len(s.order))
	for _, id := range s.order {
		if r := s.byID[id]; r != nil && !r.Sent {
			kept = append(kept, *r)
		}
	}

	if err := s.file.Truncate(0); err != nil {
		return fmt.Errorf("fallbackstore: truncate: %w", err)
	}
	if _, err := s.file.Seek(0, 0); err != nil {
		return err
	}

	s.byID = make(map[string]*record, len(kept))
	s.order = s.order[:0]
	enc := gob.NewEncoder(s.file)
	for _, r := range kept {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("fallbackstore: compact: %w", err)
		}
		rc := r
		s.byID[r.SpanID] = &rc
		s.order = append(s.order, r.SpanID)
	}
	return s.file.Sync()
}

// UnsentCount returns the number of spans not yet marked sent.
func (s *Store) UnsentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range s.order {
		if r := s.byID[id]; r != nil && !r.Sent {
			n++
		}
	}
	return n
}

// TotalCount returns the number of distinct spans tracked, sent or not.
func (s *Store) TotalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// Close releases the underlying file handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
