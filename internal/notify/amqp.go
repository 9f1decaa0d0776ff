package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/jairsl2206/restaurant-sub000/internal/logger"
)

// Channel is the publishing side of *amqp.Channel.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Message is the body published for each notification.
type Message struct {
	Recipient string    `json:"recipient"`
	Message   string    `json:"message"`
	SentAt    time.Time `json:"sent_at"`
}

// AMQP publishes notifications as persistent JSON messages to a queue, for
// an external worker to deliver.
type AMQP struct {
	ch    Channel
	queue string
	now   func() time.Time
	close func() error
}

// NewAMQP publishes to queue through ch on the default exchange.
func NewAMQP(ch Channel, queue string) *AMQP {
	return &AMQP{ch: ch, queue: queue, now: time.Now, close: func() error { return nil }}
}

// DialAMQP connects to url and declares a durable queue.
func DialAMQP(url, queue string) (*AMQP, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}

	a := NewAMQP(ch, queue)
	a.close = func() error {
		if err := ch.Close(); err != nil && !conn.IsClosed() {
			conn.Close()
			return fmt.Errorf("close amqp channel: %w", err)
		}
		if !conn.IsClosed() {
			return conn.Close()
		}
		return nil
	}
	return a, nil
}

// Close releases the channel and connection opened by DialAMQP.
func (a *AMQP) Close() error {
	return a.close()
}

func (a *AMQP) Notify(ctx context.Context, recipient, message string) bool {
	log := logger.FromCtx(ctx).With(zap.String("recipient", recipient), zap.String("queue", a.queue))

	now := a.now()
	body, err := json.Marshal(Message{Recipient: recipient, Message: message, SentAt: now})
	if err != nil {
		log.Error("amqp: encode message", zap.Error(err))
		return false
	}

	err = a.ch.PublishWithContext(ctx,
		"",      // exchange
		a.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    now,
		})
	if err != nil {
		log.Warn("amqp: publish", zap.Error(err))
		return false
	}
	return true
}
