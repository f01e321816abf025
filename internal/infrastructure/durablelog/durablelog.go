// Package durablelog adapts the teacher's CacheDatabase Redis wrapper
// (internal/infrastructure/db/redis.go) into a Redis-Streams-backed durable
// log client (spec §4.8): the ingest gateway appends to it, the three
// consumer-group workers read/ack from it, and the broadcaster tails the
// alerts stream from it.
package durablelog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"agentstack/pipeline/internal/infrastructure/config"
	"agentstack/pipeline/internal/infrastructure/logger"
)

// Entry is one message read back off a stream, carrying its delivery ID for
// later acknowledgement.
type Entry struct {
	ID     string
	Values map[string]any
}

// Log is the durable-log client shared by the gateway, the consumer
// workers, and the broadcaster's tail reader.
type Log struct {
	client *redis.Client
	log    logger.Logger
	cfg    config.DurableLogConfig
}

// New builds a Log over the given Redis client, reusing the teacher's
// connection-construction shape (internal/infrastructure/db.NewRedisCache).
func New(client *redis.Client, cfg config.DurableLogConfig, log logger.Logger) *Log {
	return &Log{client: client, log: log, cfg: cfg}
}

// Append adds a message to topic, trimming the stream to roughly MaxLen
// entries (approximate trim, matching Redis's recommended MAXLEN ~ usage).
func (l *Log) Append(ctx context.Context, topic string, values map[string]any) (string, error) {
	args := &redis.XAddArgs{
		Stream: topic,
		Values: values,
	}
	if l.cfg.MaxLen > 0 {
		args.MaxLen = l.cfg.MaxLen
		args.Approx = true
	}
	id, err := l.client.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("durablelog: append to %s: %w", topic, err)
	}
	return id, nil
}

// EnsureGroup creates a consumer group for topic starting from the latest
// entry, tolerating BUSYGROUP (group already exists) and creating the
// stream if it does not exist yet, mirroring the original consumer.py's
// xgroup_create(id="$", mkstream=True).
func (l *Log) EnsureGroup(ctx context.Context, topic, group string) error {
	err := l.client.XGroupCreateMkStream(ctx, topic, group, "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("durablelog: create group %s on %s: %w", group, topic, err)
	}
	return nil
}

// ReadGroup reads up to count new messages for consumer within group,
// blocking up to the configured BlockWait. A nil, nil result means the
// block window elapsed with nothing to read.
func (l *Log) ReadGroup(ctx context.Context, topic, group, consumer string, count int64) ([]Entry, error) {
	res, err := l.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{topic, ">"},
		Count:    count,
		Block:    l.cfg.BlockWait,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("durablelog: read group %s on %s: %w", group, topic, err)
	}
	var entries []Entry
	for _, stream := range res {
		for _, msg := range stream.Messages {
			entries = append(entries, Entry{ID: msg.ID, Values: msg.Values})
		}
	}
	return entries, nil
}

// Ack acknowledges one or more message IDs for group on topic.
func (l *Log) Ack(ctx context.Context, topic, group string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := l.client.XAck(ctx, topic, group, ids...).Err(); err != nil {
		return fmt.Errorf("durablelog: ack on %s: %w", topic, err)
	}
	return nil
}

// Tail reads new entries appended to topic after lastID (typically "$" on
// first call), blocking up to the configured BlockWait, used by the live
// broadcaster to follow the alerts stream (spec §4.13).
func (l *Log) Tail(ctx context.Context, topic, lastID string, count int64) ([]Entry, string, error) {
	res, err := l.client.XRead(ctx, &redis.XReadArgs{
		Streams: []string{topic, lastID},
		Count:   count,
		Block:   l.cfg.BlockWait,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, lastID, nil
		}
		return nil, lastID, fmt.Errorf("durablelog: tail %s: %w", topic, err)
	}
	var entries []Entry
	next := lastID
	for _, stream := range res {
		for _, msg := range stream.Messages {
			entries = append(entries, Entry{ID: msg.ID, Values: msg.Values})
			next = msg.ID
		}
	}
	return entries, next, nil
}
