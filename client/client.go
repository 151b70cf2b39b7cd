// Package client implements channels, publishing, consuming and topology
// management on top of a connection.
package client

import (
	"context"

	"go.uber.org/zap"

	"github.com/maxpert/amqp-go-client/config"
	"github.com/maxpert/amqp-go-client/connection"
)

// Client owns one connection. It does not reconnect; once the connection
// is gone, Dial a new Client.
type Client struct {
	conn *connection.Connection
}

// Dial connects to the broker described by cfg.
func Dial(ctx context.Context, cfg *config.ClientConfig, opts ...connection.Option) (*Client, error) {
	conn, err := connection.Dial(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// New wraps an open connection.
func New(conn *connection.Connection) *Client {
	return &Client{conn: conn}
}

// Channel opens a new channel.
func (c *Client) Channel(ctx context.Context) (*Channel, error) {
	return OpenChannel(ctx, c.conn)
}

// Publisher opens a channel and prepares it for publishing with the
// configured confirm mode and in-flight bound.
func (c *Client) Publisher(ctx context.Context, opts ...PublisherOption) (*Publisher, error) {
	ch, err := c.Channel(ctx)
	if err != nil {
		return nil, err
	}
	opts = append(PublisherOptionsFromConfig(c.conn.Config().Publisher), opts...)
	p, err := NewPublisher(ctx, ch, opts...)
	if err != nil {
		_ = ch.Close(ctx)
		return nil, err
	}
	return p, nil
}

// Consume opens a channel, applies the configured prefetch window and
// starts a consumer on queue.
func (c *Client) Consume(ctx context.Context, queue string) (*Consumer, error) {
	ch, err := c.Channel(ctx)
	if err != nil {
		return nil, err
	}
	cfg := c.conn.Config().Consumer
	if cfg.PrefetchCount > 0 || cfg.PrefetchSize > 0 {
		if err := ch.Qos(ctx, cfg.PrefetchCount, cfg.PrefetchSize, false); err != nil {
			_ = ch.Close(ctx)
			return nil, err
		}
	}
	consumer, err := ch.Consume(ctx, queue, ConsumeOptionsFromConfig(cfg))
	if err != nil {
		_ = ch.Close(ctx)
		return nil, err
	}
	return consumer, nil
}

// Connection returns the underlying connection.
func (c *Client) Connection() *connection.Connection { return c.conn }

// Logger returns the connection scoped logger.
func (c *Client) Logger() *zap.Logger { return c.conn.Logger() }

// NotifyClose registers l for the error that ends the connection.
func (c *Client) NotifyClose(l chan error) chan error { return c.conn.NotifyClose(l) }

// NotifyBlocked registers l for connection.blocked and connection.unblocked.
func (c *Client) NotifyBlocked(l chan connection.Blocking) chan connection.Blocking {
	return c.conn.NotifyBlocked(l)
}

// Close closes the connection and with it every channel.
func (c *Client) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}
