package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"docquery/internal/model"
)

// MessagePublisher enqueues transcript turns for the persist worker. The
// durable queue is declared once at construction; Publish opens a short-lived
// channel per call because amqp channels are not safe for concurrent use and
// turns are published from many request handlers at once.
type MessagePublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewMessagePublisher(conn *amqp.Connection, queueName string) (*MessagePublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open publisher channel failed: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare persist queue failed: %w", err)
	}
	return &MessagePublisher{conn: conn, queueName: queueName}, nil
}

func (p *MessagePublisher) Publish(ctx context.Context, msg model.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal transcript turn failed: %w", err)
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open publish channel failed: %w", err)
	}
	defer ch.Close()

	if err := ch.PublishWithContext(ctx, "", p.queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    msg.Timestamp,
		Body:         payload,
	}); err != nil {
		return fmt.Errorf("publish transcript turn failed: %w", err)
	}
	return nil
}
