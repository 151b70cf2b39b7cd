package client

import (
	"context"

	"github.com/maxpert/amqp-go-client/connection"
	amqperrors "github.com/maxpert/amqp-go-client/errors"
	"github.com/maxpert/amqp-go-client/protocol"
	"github.com/maxpert/amqp-go-client/tagger"
)

// Publishing is a message to publish.
type Publishing struct {
	Exchange   string
	RoutingKey string
	Mandatory  bool
	Immediate  bool
	// Properties may be nil for a message without properties.
	Properties *protocol.Properties
	Body       []byte
}

// Confirmation is the broker's verdict on a publish made in confirm mode.
type Confirmation struct {
	deliveryTag uint64
	future      *connection.Future[bool]
}

// DeliveryTag returns the publish sequence number the broker confirms.
func (c *Confirmation) DeliveryTag() uint64 { return c.deliveryTag }

// Done is closed once the broker settled the publish or the channel died.
func (c *Confirmation) Done() <-chan struct{} { return c.future.Done() }

// Wait blocks until the publish is settled. It returns nil when acked, a
// MessageError wrapping ErrNacked when nacked, and the channel error when
// the channel closed first.
func (c *Confirmation) Wait(ctx context.Context) error {
	acked, err := c.future.Wait(ctx)
	if err != nil {
		return err
	}
	if !acked {
		return amqperrors.NewMessageNacked(c.deliveryTag)
	}
	return nil
}

// confirmTarget resolves a Confirmation from the channel's tagger.
type confirmTarget struct {
	ch     *Channel
	conf   *Confirmation
	settle func(acked bool)
}

func (t *confirmTarget) Confirm() {
	t.ch.metrics.RecordConfirm(true)
	if t.settle != nil {
		t.settle(true)
	}
	t.conf.future.Resolve(true)
}

func (t *confirmTarget) Reject() {
	if t.settle != nil {
		t.settle(false)
	}
	if err := t.ch.Err(); err != nil {
		t.conf.future.Fail(err)
		return
	}
	t.ch.metrics.RecordConfirm(false)
	t.conf.future.Resolve(false)
}

// Publish sends a message without waiting for anything. In confirm mode the
// broker's verdict is discarded; use PublishWithConfirm to observe it.
func (ch *Channel) Publish(p Publishing) error {
	_, err := ch.publish(p, nil)
	return err
}

// PublishWithConfirm publishes p on a channel in confirm mode and returns
// the pending confirmation.
func (ch *Channel) PublishWithConfirm(p Publishing) (*Confirmation, error) {
	return ch.publishConfirm(p, nil)
}

func (ch *Channel) publishConfirm(p Publishing, settle func(acked bool)) (*Confirmation, error) {
	if !ch.confirming.Load() {
		return nil, amqperrors.ErrNotConfirming
	}
	conf := &Confirmation{future: connection.NewFuture[bool]()}
	if _, err := ch.publish(p, &confirmTarget{ch: ch, conf: conf, settle: settle}); err != nil {
		return nil, err
	}
	return conf, nil
}

// publish encodes p before taking a sequence number so that a message that
// cannot be encoded does not shift the numbering the broker confirms with.
func (ch *Channel) publish(p Publishing, target tagger.Target) (uint64, error) {
	if err := ch.Err(); err != nil {
		return 0, err
	}
	method := &protocol.BasicPublishMethod{
		Exchange:   p.Exchange,
		RoutingKey: p.RoutingKey,
		Mandatory:  p.Mandatory,
		Immediate:  p.Immediate,
	}
	encoded, err := ch.conn.Encode(protocol.ContentFrames(ch.id, method, p.Properties, p.Body, ch.conn.FrameMax())...)
	if err != nil {
		return 0, err
	}

	ch.pubMu.Lock()
	defer ch.pubMu.Unlock()

	var tag uint64
	if ch.confirming.Load() {
		tag = ch.confirms.GetKey()
		if t, ok := target.(*confirmTarget); ok {
			t.conf.deliveryTag = tag
		}
		if target != nil {
			ch.confirms.Deposit(tag, target)
		}
	}
	if err := ch.conn.SendEncoded(encoded); err != nil {
		if target != nil {
			ch.confirms.Nack(tag, false)
		}
		return 0, err
	}
	ch.metrics.RecordMessagePublished(len(p.Body))
	return tag, nil
}

// PendingConfirms returns the number of publishes awaiting a confirm.
func (ch *Channel) PendingConfirms() int { return ch.confirms.Pending() }
