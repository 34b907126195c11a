// Package amqp forwards bus events to a RabbitMQ fanout exchange so consumers
// outside the process can observe ledger changes.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/MrJamesThe3rd/tally/internal/notify"
)

const publishTimeout = 5 * time.Second

// Channel is the subset of *amqp091.Channel the forwarder uses.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

type Client struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// Dial connects and declares a durable fanout exchange.
func Dial(url, exchange string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()

		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Client{conn: conn, channel: channel}, nil
}

func (c *Client) Channel() Channel { return c.channel }

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}

	if c.conn != nil {
		return c.conn.Close()
	}

	return nil
}

// Forwarder publishes every event it handles as JSON. Publish failures are
// logged and dropped, matching the bus's best-effort contract.
type Forwarder struct {
	channel  Channel
	exchange string
	logger   *slog.Logger
}

func NewForwarder(channel Channel, exchange string, logger *slog.Logger) *Forwarder {
	return &Forwarder{channel: channel, exchange: exchange, logger: logger}
}

// Handle is a notify.Handler.
func (f *Forwarder) Handle(evt notify.Event) {
	body, err := json.Marshal(evt)
	if err != nil {
		f.logger.Error("failed to marshal event", "kind", evt.Kind, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err = f.channel.PublishWithContext(
		ctx,
		f.exchange,
		string(evt.Kind), // routing key, ignored by fanout but useful to consumers
		false,            // mandatory
		false,            // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Transient,
			Timestamp:    evt.At,
			Type:         string(evt.Kind),
			Body:         body,
		},
	)
	if err != nil {
		f.logger.Warn("failed to forward event", "kind", evt.Kind, "exchange", f.exchange, "error", err)
		return
	}

	f.logger.Debug("forwarded event", "kind", evt.Kind, "exchange", f.exchange)
}
