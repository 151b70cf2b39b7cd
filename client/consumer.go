package client

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/maxpert/amqp-go-client/config"
	amqperrors "github.com/maxpert/amqp-go-client/errors"
	"github.com/maxpert/amqp-go-client/protocol"
)

// ConsumeOptions are the basic.consume flags.
type ConsumeOptions struct {
	// Tag identifies the consumer. A random tag is generated when empty.
	Tag       string
	NoAck     bool
	Exclusive bool
	NoLocal   bool
	NoWait    bool
	Arguments protocol.Table
}

// ConsumeOptionsFromConfig returns the options described by cfg.
func ConsumeOptionsFromConfig(cfg config.ConsumerConfig) ConsumeOptions {
	return ConsumeOptions{NoAck: cfg.NoAck, Exclusive: cfg.Exclusive}
}

// Consumer receives the messages pushed by the broker for one
// basic.consume. Deliveries are buffered without bound between the
// connection's reader and the application; the prefetch window set with
// Qos is what limits them.
type Consumer struct {
	ch    *Channel
	tag   string
	queue string

	deliveries chan *ReceivedMessage
	wake       chan struct{}
	abort      chan struct{}
	abortOnce  sync.Once

	mu       sync.Mutex
	pending  []*ReceivedMessage
	finished bool
	err      error
}

// Consume starts a consumer on queue.
func (ch *Channel) Consume(ctx context.Context, queue string, opts ConsumeOptions) (*Consumer, error) {
	if opts.Tag == "" {
		opts.Tag = "ctag-" + uuid.NewString()
	}

	c := &Consumer{
		ch:         ch,
		tag:        opts.Tag,
		queue:      queue,
		deliveries: make(chan *ReceivedMessage),
		wake:       make(chan struct{}, 1),
		abort:      make(chan struct{}),
	}

	// Registered before basic.consume goes out: the first deliveries can
	// overtake the reply.
	ch.mu.Lock()
	if _, exists := ch.consumers[opts.Tag]; exists {
		ch.mu.Unlock()
		return nil, amqperrors.NewConsumerError(amqperrors.NotAllowed, "consumer tag already in use", opts.Tag, queue)
	}
	ch.consumers[opts.Tag] = c
	ch.mu.Unlock()

	method := &protocol.BasicConsumeMethod{
		Queue:       queue,
		ConsumerTag: opts.Tag,
		NoLocal:     opts.NoLocal,
		NoAck:       opts.NoAck,
		Exclusive:   opts.Exclusive,
		NoWait:      opts.NoWait,
		Arguments:   opts.Arguments,
	}
	var err error
	if opts.NoWait {
		err = ch.send(method)
	} else {
		_, err = ch.call(ctx, method)
	}
	if err != nil {
		ch.removeConsumer(opts.Tag)
		return nil, err
	}

	go c.run()
	ch.metrics.RecordConsumerStarted()
	ch.logger.Debug("Consumer started", zap.String("consumer_tag", opts.Tag), zap.String("queue", queue))
	return c, nil
}

func (ch *Channel) removeConsumer(tag string) *Consumer {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	c := ch.consumers[tag]
	delete(ch.consumers, tag)
	return c
}

func (ch *Channel) onBrokerCancel(m *protocol.BasicCancelMethod) {
	c := ch.removeConsumer(m.ConsumerTag)
	if !m.NoWait {
		if err := ch.conn.SendMethod(ch.id, &protocol.BasicCancelOKMethod{ConsumerTag: m.ConsumerTag}); err != nil {
			ch.logger.Debug("Failed to send basic.cancel-ok", zap.Error(err))
		}
	}
	if c == nil {
		return
	}

	ch.logger.Warn("Consumer cancelled by broker", zap.String("consumer_tag", m.ConsumerTag), zap.String("queue", c.queue))
	c.finish(amqperrors.NewConsumerCancelled(m.ConsumerTag, c.queue))
	ch.metrics.RecordConsumerStopped()

	ch.mu.Lock()
	listeners := ch.cancels
	ch.mu.Unlock()
	for _, l := range listeners {
		select {
		case l <- m.ConsumerTag:
		default:
		}
	}
}

// Cancel stops the consumer. Messages already received are still handed
// out before Deliveries closes.
func (c *Consumer) Cancel(ctx context.Context) error {
	if _, err := c.ch.call(ctx, &protocol.BasicCancelMethod{ConsumerTag: c.tag}); err != nil {
		return err
	}
	if c.ch.removeConsumer(c.tag) != nil {
		c.ch.metrics.RecordConsumerStopped()
	}
	c.finish(nil)
	return nil
}

// Deliveries returns the message stream. It is closed when the consumer
// ends.
func (c *Consumer) Deliveries() <-chan *ReceivedMessage { return c.deliveries }

// Tag returns the consumer tag.
func (c *Consumer) Tag() string { return c.tag }

// Channel returns the channel the consumer runs on.
func (c *Consumer) Channel() *Channel { return c.ch }

// Queue returns the queue being consumed.
func (c *Consumer) Queue() string { return c.queue }

// Err returns why the consumer ended: nil after Cancel, a ConsumerError
// when the broker cancelled it, or the channel error.
func (c *Consumer) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// push runs on the connection's reader goroutine and must not block.
func (c *Consumer) push(msg *ReceivedMessage) {
	c.mu.Lock()
	if c.finished {
		c.mu.Unlock()
		return
	}
	c.pending = append(c.pending, msg)
	c.mu.Unlock()
	c.signal()
}

func (c *Consumer) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// finish ends the consumer once buffered messages are handed out.
func (c *Consumer) finish(err error) {
	c.mu.Lock()
	if !c.finished {
		c.finished = true
		c.err = err
	}
	c.mu.Unlock()
	c.signal()
}

// stop ends the consumer and drops buffered messages. Their delivery tags
// died with the channel.
func (c *Consumer) stop(err error) {
	c.finish(err)
	c.abortOnce.Do(func() { close(c.abort) })
}

func (c *Consumer) run() {
	defer close(c.deliveries)
	for {
		c.mu.Lock()
		for len(c.pending) == 0 && !c.finished {
			c.mu.Unlock()
			select {
			case <-c.wake:
			case <-c.abort:
				return
			}
			c.mu.Lock()
		}
		if len(c.pending) == 0 {
			c.mu.Unlock()
			return
		}
		msg := c.pending[0]
		c.pending[0] = nil
		c.pending = c.pending[1:]
		c.mu.Unlock()

		select {
		case c.deliveries <- msg:
		case <-c.abort:
			return
		}
	}
}
