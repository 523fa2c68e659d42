// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

package mailer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

const defaultQueueSize = 64

// Queue buffers messages and delivers them on a background worker with
// exponential backoff. Enqueue never blocks the caller on delivery; a full
// buffer or terminal send failure is logged and dropped.
type Queue struct {
	sender     Sender
	ch         chan Message
	wg         sync.WaitGroup
	maxRetries uint64
}

// NewQueue creates a queue over the given sender. size <= 0 uses a default.
func NewQueue(sender Sender, size int) *Queue {
	if size <= 0 {
		size = defaultQueueSize
	}
	return &Queue{
		sender:     sender,
		ch:         make(chan Message, size),
		maxRetries: 3,
	}
}

// Start launches the delivery worker. The worker drains the buffer after ctx
// is cancelled, so pending messages still get one delivery round during
// shutdown.
func (q *Queue) Start(ctx context.Context) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			select {
			case msg, ok := <-q.ch:
				if !ok {
					return
				}
				q.deliver(ctx, msg)
			case <-ctx.Done():
				for {
					select {
					case msg, ok := <-q.ch:
						if !ok {
							return
						}
						q.deliver(context.Background(), msg)
					default:
						return
					}
				}
			}
		}
	}()
}

// Enqueue hands a message to the worker and returns immediately.
func (q *Queue) Enqueue(msg Message) {
	select {
	case q.ch <- msg:
	default:
		slog.Error("mail queue full, dropping message", "id", msg.ID, "to", msg.To)
	}
}

// Close stops accepting messages and waits for the worker to finish.
func (q *Queue) Close() {
	close(q.ch)
	q.wg.Wait()
}

func (q *Queue) deliver(ctx context.Context, msg Message) {
	backoff := retry.WithMaxRetries(q.maxRetries, retry.NewExponential(time.Second))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if sendErr := q.sender.Send(ctx, msg); sendErr != nil {
			return retry.RetryableError(sendErr)
		}
		return nil
	})
	if err != nil {
		slog.Error("email delivery failed", "id", msg.ID, "to", msg.To, "error", err)
		return
	}
	slog.Debug("email delivered", "id", msg.ID, "to", msg.To)
}
