// Package consumer implements the shared consumer-group framework every
// worker builds on (spec §4.9), grounded on
// _examples/original_source's consumer.py: ensure the group exists, block-read
// new messages, hand each to a Handler, and by default ack immediately after
// a successful handle. Workers that need batch semantics (the persistent
// writer and the cost calculator) set AutoAck false and ack for themselves
// once their batch is durably flushed.
package consumer

import (
	"context"
	"errors"
	"time"

	"agentstack/pipeline/internal/infrastructure/durablelog"
	"agentstack/pipeline/internal/infrastructure/logger"
)

// Handler processes one durable-log entry. Returning an error leaves the
// entry unacknowledged so it is redelivered to the group.
type Handler func(ctx context.Context, entry durablelog.Entry) error

// retryDelay is the pause after a handler returns a generic error, matching
// the original consumer's "sleep 1s and continue" behavior.
const retryDelay = time.Second

// readCount bounds how many messages are requested per ReadGroup call.
const readCount = 100

// BaseConsumer drives a single consumer within a Redis-Streams consumer
// group until its context is canceled.
type BaseConsumer struct {
	Log      *durablelog.Log
	Topic    string
	Group    string
	Consumer string
	AutoAck  bool
	Handle   Handler
	Logger   logger.Logger
}

// Run ensures the consumer group exists and then reads and dispatches
// messages until ctx is canceled, at which point it returns cleanly (the
// original SDK's CancelledError handling).
func (c *BaseConsumer) Run(ctx context.Context) error {
	if err := c.Log.EnsureGroup(ctx, c.Topic, c.Group); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		entries, err := c.Log.ReadGroup(ctx, c.Topic, c.Group, c.Consumer, readCount)
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			c.Logger.WithField("topic", c.Topic).Error("consumer: read error: " + err.Error())
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return nil
			}
			continue
		}

		for _, entry := range entries {
			if err := c.Handle(ctx, entry); err != nil {
				c.Logger.WithField("topic", c.Topic).WithField("entry_id", entry.ID).
					Error("consumer: handler error: " + err.Error())
				continue
			}
			if c.AutoAck {
				if err := c.Log.Ack(ctx, c.Topic, c.Group, entry.ID); err != nil {
					c.Logger.WithField("topic", c.Topic).Error("consumer: ack error: " + err.Error())
				}
			}
		}
	}
}
