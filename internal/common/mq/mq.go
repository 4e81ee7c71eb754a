package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"food-court/internal/domain"
)

// NotificationsExchange receives every committed status-update event.
// External consumers (kitchen displays, SMS workers) bind their own queues.
const NotificationsExchange = "notifications_fanout"

type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func Dial(host string, port int, user, pass string) (*Client, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%d/", user, pass, host, port)
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &Client{conn: conn, ch: ch}, nil
}

func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

func (c *Client) DeclareAll() error {
	if c == nil || c.ch == nil {
		return fmt.Errorf("nil channel")
	}
	return c.ch.ExchangeDeclare(NotificationsExchange, "fanout", true, false, false, false, nil)
}

// PublishStatusUpdate publishes a committed event as persistent JSON.
// A failure here is a delivery concern, not a state concern: the caller
// logs it and moves on.
func (c *Client) PublishStatusUpdate(ctx context.Context, ev *domain.StatusUpdate) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal status update: %w", err)
	}
	return c.ch.PublishWithContext(ctx, NotificationsExchange, "", false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		ContentType:  "application/json",
		Body:         body,
	})
}
