package client

import (
	"fmt"

	"go.uber.org/zap"

	amqperrors "github.com/maxpert/amqp-go-client/errors"
	"github.com/maxpert/amqp-go-client/protocol"
)

// incoming collects the header and body frames that follow a
// content-bearing method.
type incoming struct {
	method protocol.Method
	header *protocol.HeaderFrame
	body   []byte
}

// maxPrealloc caps the body buffer allocated up front from a header's
// declared size.
const maxPrealloc = 1 << 20

// onContent collects header and body frames. Content that arrives without a
// method, out of order, or past the declared body size means the stream is
// out of step, which is fatal to the connection.
func (ch *Channel) onContent(f protocol.Frame) {
	in := ch.incoming
	if in == nil {
		ch.abortContent(amqperrors.NewUnexpectedFrame(protocol.FrameMethod, f.FrameType()))
		return
	}

	switch f := f.(type) {
	case *protocol.HeaderFrame:
		if in.header != nil {
			ch.abortContent(amqperrors.NewUnexpectedFrame(protocol.FrameBody, protocol.FrameHeader))
			return
		}
		in.header = f
		in.body = make([]byte, 0, min(f.BodySize, maxPrealloc))
	case *protocol.BodyFrame:
		if in.header == nil {
			ch.abortContent(amqperrors.NewUnexpectedFrame(protocol.FrameHeader, protocol.FrameBody))
			return
		}
		if uint64(len(in.body))+uint64(len(f.Body)) > in.header.BodySize {
			ch.abortContent(amqperrors.NewFrameError(fmt.Sprintf("body of %d bytes exceeds declared size %d",
				len(in.body)+len(f.Body), in.header.BodySize), protocol.FrameBody))
			return
		}
		in.body = append(in.body, f.Body...)
	}

	if in.header != nil && uint64(len(in.body)) == in.header.BodySize {
		ch.incoming = nil
		ch.complete(in)
	}
}

func (ch *Channel) abortContent(err error) {
	ch.incoming = nil
	ch.logger.Error("Content frames out of step", zap.Error(err))
	ch.conn.Abort(err)
}

func (ch *Channel) complete(in *incoming) {
	props := in.header.Properties
	switch m := in.method.(type) {
	case *protocol.BasicDeliverMethod:
		msg := &ReceivedMessage{
			channel:     ch,
			ConsumerTag: m.ConsumerTag,
			DeliveryTag: m.DeliveryTag,
			Redelivered: m.Redelivered,
			Exchange:    m.Exchange,
			RoutingKey:  m.RoutingKey,
			Properties:  props,
			Body:        in.body,
		}
		ch.metrics.RecordMessageDelivered(len(in.body))

		ch.mu.Lock()
		c := ch.consumers[m.ConsumerTag]
		ch.mu.Unlock()
		if c == nil {
			ch.logger.Warn("Delivery for unknown consumer",
				zap.String("consumer_tag", m.ConsumerTag),
				zap.Uint64("delivery_tag", m.DeliveryTag))
			return
		}
		c.push(msg)

	case *protocol.BasicGetOKMethod:
		msg := &ReceivedMessage{
			channel:      ch,
			DeliveryTag:  m.DeliveryTag,
			Redelivered:  m.Redelivered,
			Exchange:     m.Exchange,
			RoutingKey:   m.RoutingKey,
			MessageCount: m.MessageCount,
			Properties:   props,
			Body:         in.body,
		}
		ch.metrics.RecordMessageDelivered(len(in.body))

		ch.mu.Lock()
		pending := ch.pendingGet
		ch.pendingGet = nil
		ch.mu.Unlock()
		if pending == nil {
			ch.logger.Warn("basic.get-ok without a pending get", zap.Uint64("delivery_tag", m.DeliveryTag))
			return
		}
		pending.Resolve(msg)

	case *protocol.BasicReturnMethod:
		ret := Return{
			ReplyCode:  m.ReplyCode,
			ReplyText:  m.ReplyText,
			Exchange:   m.Exchange,
			RoutingKey: m.RoutingKey,
			Properties: props,
			Body:       in.body,
		}
		ch.metrics.RecordMessageReturned()
		ch.logger.Debug("Message returned",
			zap.Uint16("reply_code", m.ReplyCode),
			zap.String("exchange", m.Exchange),
			zap.String("routing_key", m.RoutingKey))

		ch.mu.Lock()
		listeners := ch.returns
		ch.mu.Unlock()
		for _, l := range listeners {
			select {
			case l <- ret:
			default:
				ch.logger.Warn("Dropped returned message, listener is full")
			}
		}
	}
}

// ReceivedMessage is a message pushed to a consumer or fetched with Get.
type ReceivedMessage struct {
	channel *Channel

	ConsumerTag  string
	DeliveryTag  uint64
	Redelivered  bool
	Exchange     string
	RoutingKey   string
	MessageCount uint32 // messages left in the queue, Get only
	Properties   *protocol.Properties
	Body         []byte
}

// Ack acknowledges the message, or every unacknowledged message up to it on
// the channel when multiple is set.
func (m *ReceivedMessage) Ack(multiple bool) error {
	return m.channel.Ack(m.DeliveryTag, multiple)
}

// Nack rejects the message, and earlier ones when multiple is set.
func (m *ReceivedMessage) Nack(multiple, requeue bool) error {
	return m.channel.Nack(m.DeliveryTag, multiple, requeue)
}

// Reject rejects the message.
func (m *ReceivedMessage) Reject(requeue bool) error {
	return m.channel.Reject(m.DeliveryTag, requeue)
}

// Return is a mandatory or immediate message the broker could not route.
type Return struct {
	ReplyCode  uint16
	ReplyText  string
	Exchange   string
	RoutingKey string
	Properties *protocol.Properties
	Body       []byte
}

// Err converts the return to a MessageError.
func (r Return) Err() error {
	return amqperrors.NewMessageReturned(int(r.ReplyCode), r.ReplyText, r.Exchange, r.RoutingKey)
}
