// Package worker drains the transcript persist queue into MySQL so the query
// path never blocks on a durable write.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"docquery/internal/model"
)

const (
	consumerTag   = "docquery-message-persist"
	prefetchCount = 16
)

// MessageStore persists transcript turns.
type MessageStore interface {
	Create(message *model.Message) error
}

type MessagePersistWorker struct {
	conn      *amqp.Connection
	repo      MessageStore
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewMessagePersistWorker(conn *amqp.Connection, repo MessageStore, queueName string) *MessagePersistWorker {
	return &MessagePersistWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
	}
}

// Start declares the durable queue and consumes it until ctx is cancelled or
// Close is called. Starting twice is a no-op.
func (w *MessagePersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}
	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker prefetch failed: %w", err)
	}
	if _, err := ch.QueueDeclare(w.queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare persist queue failed: %w", err)
	}

	deliveries, err := ch.Consume(w.queueName, consumerTag, false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume persist queue failed: %w", err)
	}

	w.cancel = cancel
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()
		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				w.handle(d)
			}
		}
	}()
	return nil
}

// handle persists one transcript turn. Malformed payloads are dropped; insert
// failures are requeued once so a transient MySQL outage does not lose turns,
// then dropped on redelivery to keep a poison row from looping forever.
func (w *MessagePersistWorker) handle(d amqp.Delivery) {
	var msg model.Message
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		log.Printf("worker: drop malformed transcript payload: %v", err)
		_ = d.Nack(false, false)
		return
	}

	if err := w.repo.Create(&msg); err != nil {
		log.Printf("worker: persist turn for session %s failed (redelivered=%t): %v",
			msg.SessionID, d.Redelivered, err)
		_ = d.Nack(false, !d.Redelivered)
		return
	}
	_ = d.Ack(false)
}

func (w *MessagePersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
