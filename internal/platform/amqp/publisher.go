package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/phrazzld/tasker-api/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends notifications as persistent JSON messages.
type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	queue    string
	logger   *slog.Logger

	mu sync.Mutex // serialises publishes on ch
}

// Dial connects to the broker and declares the durable notification queue.
// With a named exchange, a durable topic exchange is declared and the queue
// is bound to every routing key.
func Dial(cfg config.BrokerConfig, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue %q: %w", cfg.Queue, err)
	}
	if cfg.Exchange != "" {
		if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, fmt.Errorf("failed to declare exchange %q: %w", cfg.Exchange, err)
		}
		if err := ch.QueueBind(cfg.Queue, "#", cfg.Exchange, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, fmt.Errorf("failed to bind queue %q: %w", cfg.Queue, err)
		}
	}

	return &Publisher{
		conn:     conn,
		ch:       ch,
		exchange: cfg.Exchange,
		queue:    cfg.Queue,
		logger:   logger.With(slog.String("component", "amqp_publisher")),
	}, nil
}

// Name identifies the publisher in dispatch logs.
func (p *Publisher) Name() string { return "amqp" }

// Dispatch publishes n. ctx bounds the publish.
func (p *Publisher) Dispatch(ctx context.Context, n domain.Notification) error {
	msg, err := encode(n)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, p.exchange, routingKey(p.exchange, p.queue, n), false, false, msg); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	p.logger.Debug("notification published",
		slog.String("type", string(n.Type)),
		slog.String("task_id", n.TaskID.String()))
	return nil
}

// Close closes the channel and then the connection.
func (p *Publisher) Close() error {
	if err := p.ch.Close(); err != nil {
		_ = p.conn.Close()
		return err
	}
	return p.conn.Close()
}

func encode(n domain.Notification) (amqp.Publishing, error) {
	body, err := json.Marshal(n)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal notification: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         string(n.Type),
		Timestamp:    n.Timestamp,
		Body:         body,
	}, nil
}

// routingKey targets the queue directly on the default exchange and uses
// the notification type on a named one.
func routingKey(exchange, queue string, n domain.Notification) string {
	if exchange == "" {
		return queue
	}
	return string(n.Type)
}
