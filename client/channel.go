package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/maxpert/amqp-go-client/connection"
	amqperrors "github.com/maxpert/amqp-go-client/errors"
	"github.com/maxpert/amqp-go-client/protocol"
	"github.com/maxpert/amqp-go-client/tagger"
)

// Broker-initiated methods handled by the channel itself.
var channelControl = []*protocol.MethodDescriptor{
	(&protocol.ChannelCloseMethod{}).Descriptor(),
	(&protocol.ChannelFlowMethod{}).Descriptor(),
	(&protocol.BasicAckMethod{}).Descriptor(),
	(&protocol.BasicNackMethod{}).Descriptor(),
	(&protocol.BasicDeliverMethod{}).Descriptor(),
	(&protocol.BasicReturnMethod{}).Descriptor(),
	(&protocol.BasicGetOKMethod{}).Descriptor(),
	(&protocol.BasicCancelMethod{}).Descriptor(),
}

// Channel is an open AMQP channel. Synchronous methods are serialized; only
// one request is outstanding at a time.
type Channel struct {
	id      uint16
	conn    *connection.Connection
	logger  *zap.Logger
	metrics connection.MetricsRecorder

	rpcMu sync.Mutex
	pubMu sync.Mutex

	confirming atomic.Bool
	confirms   *tagger.AtomicTagger

	control  *connection.MethodWatch
	content  *connection.ContentWatch
	connFail *connection.FailWatch

	// incoming is the message being assembled. Only the reader goroutine
	// touches it.
	incoming *incoming

	mu         sync.Mutex
	flowActive bool
	flowResume chan struct{}
	consumers  map[string]*Consumer
	pendingGet *connection.Future[*ReceivedMessage]
	returns    []chan<- Return
	flows      []chan<- bool
	cancels    []chan<- string
	closes     []chan<- error

	closeOnce sync.Once
	errMu     sync.Mutex
	err       error
	done      chan struct{}
}

// OpenChannel allocates a channel number on conn and opens it.
func OpenChannel(ctx context.Context, conn *connection.Connection) (*Channel, error) {
	id, err := conn.AllocateChannel()
	if err != nil {
		return nil, err
	}

	ch := &Channel{
		id:         id,
		conn:       conn,
		logger:     conn.Logger().With(zap.Uint16("channel", id)),
		metrics:    conn.Metrics(),
		flowActive: true,
		consumers:  make(map[string]*Consumer),
		done:       make(chan struct{}),
	}
	ch.confirms = tagger.New(tagger.WithPendingObserver(ch.metrics.SetConfirmsPending))
	ch.watch()

	if _, err := conn.Call(ctx, id, &protocol.ChannelOpenMethod{}); err != nil {
		ch.shutdown(err, !errors.Is(err, amqperrors.ErrTimeout))
		return nil, err
	}

	ch.metrics.RecordChannelCreated()
	ch.logger.Debug("Channel opened")
	return ch, nil
}

func (ch *Channel) watch() {
	ch.control = connection.NewMethodWatch(ch.id, false, ch.onMethod, channelControl...)
	ch.content = connection.NewContentWatch(ch.id, ch.onContent)
	ch.connFail = connection.NewFailWatch(func(err error) { ch.shutdown(err, false) })

	ch.conn.Watch(ch.control)
	ch.conn.Watch(ch.content)
	ch.conn.WatchFail(ch.connFail)
}

func (ch *Channel) onMethod(mf *protocol.MethodFrame) {
	switch m := mf.Method.(type) {
	case *protocol.ChannelCloseMethod:
		err := amqperrors.NewReplyError(ch.id, int(m.ReplyCode), m.ReplyText, m.ClassID, m.MethodID)
		ch.logger.Warn("Channel closed by broker",
			zap.Uint16("reply_code", m.ReplyCode),
			zap.String("reply_text", m.ReplyText))
		if sendErr := ch.conn.SendMethod(ch.id, &protocol.ChannelCloseOKMethod{}); sendErr != nil {
			ch.logger.Debug("Failed to send channel.close-ok", zap.Error(sendErr))
		}
		ch.shutdown(err, true)

	case *protocol.ChannelFlowMethod:
		ch.setFlow(m.Active)
		if err := ch.conn.SendMethod(ch.id, &protocol.ChannelFlowOKMethod{Active: m.Active}); err != nil {
			ch.logger.Debug("Failed to send channel.flow-ok", zap.Error(err))
		}

	case *protocol.BasicAckMethod:
		if ch.confirming.Load() {
			ch.confirms.Ack(m.DeliveryTag, m.Multiple)
		}

	case *protocol.BasicNackMethod:
		if ch.confirming.Load() {
			ch.confirms.Nack(m.DeliveryTag, m.Multiple)
		}

	case *protocol.BasicDeliverMethod, *protocol.BasicReturnMethod, *protocol.BasicGetOKMethod:
		if ch.incoming != nil {
			var expected byte = protocol.FrameBody
			if ch.incoming.header == nil {
				expected = protocol.FrameHeader
			}
			ch.abortContent(amqperrors.NewUnexpectedFrame(expected, protocol.FrameMethod))
			return
		}
		ch.incoming = &incoming{method: m}

	case *protocol.BasicCancelMethod:
		ch.onBrokerCancel(m)
	}
}

func (ch *Channel) setFlow(active bool) {
	ch.mu.Lock()
	if active != ch.flowActive {
		ch.flowActive = active
		if active && ch.flowResume != nil {
			close(ch.flowResume)
			ch.flowResume = nil
		}
	}
	listeners := ch.flows
	ch.mu.Unlock()

	ch.logger.Info("Channel flow changed", zap.Bool("active", active))
	for _, l := range listeners {
		select {
		case l <- active:
		default:
		}
	}
}

// waitFlow blocks while the broker has paused content on the channel.
func (ch *Channel) waitFlow(ctx context.Context) error {
	ch.mu.Lock()
	if ch.flowActive {
		ch.mu.Unlock()
		return nil
	}
	if ch.flowResume == nil {
		ch.flowResume = make(chan struct{})
	}
	resume := ch.flowResume
	ch.mu.Unlock()

	select {
	case <-resume:
		return nil
	case <-ch.done:
		return ch.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// call performs a synchronous method on the channel. A timed out request
// leaves its reply in flight, so the channel is closed rather than risk
// matching that reply to the next request.
func (ch *Channel) call(ctx context.Context, m protocol.Method, replies ...*protocol.MethodDescriptor) (protocol.Method, error) {
	if err := ch.Err(); err != nil {
		return nil, err
	}
	ch.rpcMu.Lock()
	defer ch.rpcMu.Unlock()
	return ch.callLocked(ctx, m, replies...)
}

func (ch *Channel) callLocked(ctx context.Context, m protocol.Method, replies ...*protocol.MethodDescriptor) (protocol.Method, error) {
	reply, err := ch.conn.Call(ctx, ch.id, m, replies...)
	if errors.Is(err, amqperrors.ErrTimeout) {
		ch.logger.Warn("Request timed out, closing channel", zap.String("method", m.Descriptor().Name))
		_ = ch.conn.SendMethod(ch.id, &protocol.ChannelCloseMethod{
			ReplyCode: amqperrors.ReplySuccess,
			ReplyText: "request timed out",
		})
		ch.shutdown(err, false)
	}
	return reply, err
}

// send sends an asynchronous method.
func (ch *Channel) send(m protocol.Method) error {
	if err := ch.Err(); err != nil {
		return err
	}
	return ch.conn.SendMethod(ch.id, m)
}

// Close closes the channel with the broker. Closing a closed channel
// returns nil.
func (ch *Channel) Close(ctx context.Context) error {
	if ch.IsClosed() {
		return nil
	}
	ch.rpcMu.Lock()
	_, err := ch.conn.Call(ctx, ch.id, &protocol.ChannelCloseMethod{
		ReplyCode: amqperrors.ReplySuccess,
		ReplyText: "Goodbye",
	})
	ch.rpcMu.Unlock()

	if ch.IsClosed() {
		return nil
	}
	timedOut := errors.Is(err, amqperrors.ErrTimeout)
	ch.shutdown(amqperrors.ErrChannelClosed, !timedOut)
	if errors.Is(err, amqperrors.ErrConnectionClosed) {
		return nil
	}
	return err
}

// shutdown marks the channel dead, fails its watches and pending confirms
// and closes consumers. The channel number goes back to the pool only when
// the broker is known to consider it closed.
func (ch *Channel) shutdown(reason error, release bool) {
	ch.closeOnce.Do(func() {
		ch.errMu.Lock()
		ch.err = reason
		ch.errMu.Unlock()
		close(ch.done)

		ch.connFail.Cancel()
		ch.conn.FailChannel(ch.id, reason)
		ch.confirms.RejectAll()

		ch.mu.Lock()
		consumers := ch.consumers
		ch.consumers = make(map[string]*Consumer)
		pendingGet := ch.pendingGet
		ch.pendingGet = nil
		closes := ch.closes
		ch.closes = nil
		returns, flows, cancels := ch.returns, ch.flows, ch.cancels
		ch.returns, ch.flows, ch.cancels = nil, nil, nil
		ch.mu.Unlock()

		for _, c := range consumers {
			c.stop(reason)
		}
		if pendingGet != nil {
			pendingGet.Fail(reason)
		}

		var replyErr *amqperrors.ReplyError
		for _, l := range closes {
			if errors.As(reason, &replyErr) || amqperrors.IsConnectionLost(reason) {
				select {
				case l <- reason:
				default:
				}
			}
			close(l)
		}
		for _, l := range returns {
			close(l)
		}
		for _, l := range flows {
			close(l)
		}
		for _, l := range cancels {
			close(l)
		}

		if release {
			ch.conn.ReleaseChannel(ch.id)
		}
		ch.metrics.RecordChannelClosed()
		ch.logger.Debug("Channel closed", zap.Error(reason))
	})
}

// Flow asks the broker to pause or resume deliveries.
func (ch *Channel) Flow(ctx context.Context, active bool) (bool, error) {
	reply, err := ch.call(ctx, &protocol.ChannelFlowMethod{Active: active})
	if err != nil {
		return false, err
	}
	return reply.(*protocol.ChannelFlowOKMethod).Active, nil
}

// Qos sets the prefetch window of the channel, or of every channel on the
// connection when global is set.
func (ch *Channel) Qos(ctx context.Context, prefetchCount uint16, prefetchSize uint32, global bool) error {
	_, err := ch.call(ctx, &protocol.BasicQosMethod{
		PrefetchCount: prefetchCount,
		PrefetchSize:  prefetchSize,
		Global:        global,
	})
	return err
}

// Confirm puts the channel in publisher-confirm mode. Calling it again is a no-op.
func (ch *Channel) Confirm(ctx context.Context) error {
	if ch.confirming.Load() {
		return nil
	}
	if _, err := ch.call(ctx, &protocol.ConfirmSelectMethod{}); err != nil {
		return err
	}
	ch.confirming.Store(true)
	return nil
}

// Tx puts the channel in transactional mode.
func (ch *Channel) Tx(ctx context.Context) error {
	_, err := ch.call(ctx, &protocol.TxSelectMethod{})
	return err
}

// TxCommit commits the current transaction.
func (ch *Channel) TxCommit(ctx context.Context) error {
	_, err := ch.call(ctx, &protocol.TxCommitMethod{})
	return err
}

// TxRollback abandons the current transaction.
func (ch *Channel) TxRollback(ctx context.Context) error {
	_, err := ch.call(ctx, &protocol.TxRollbackMethod{})
	return err
}

// Recover asks the broker to redeliver unacknowledged messages.
func (ch *Channel) Recover(ctx context.Context, requeue bool) error {
	_, err := ch.call(ctx, &protocol.BasicRecoverMethod{Requeue: requeue})
	return err
}

// Ack acknowledges a delivery, or every delivery up to tag when multiple is set.
func (ch *Channel) Ack(tag uint64, multiple bool) error {
	if err := ch.send(&protocol.BasicAckMethod{DeliveryTag: tag, Multiple: multiple}); err != nil {
		return err
	}
	ch.metrics.RecordMessageAcknowledged()
	return nil
}

// Nack rejects one or more deliveries.
func (ch *Channel) Nack(tag uint64, multiple, requeue bool) error {
	if err := ch.send(&protocol.BasicNackMethod{DeliveryTag: tag, Multiple: multiple, Requeue: requeue}); err != nil {
		return err
	}
	ch.metrics.RecordMessageRejected()
	return nil
}

// Reject rejects a single delivery.
func (ch *Channel) Reject(tag uint64, requeue bool) error {
	if err := ch.send(&protocol.BasicRejectMethod{DeliveryTag: tag, Requeue: requeue}); err != nil {
		return err
	}
	ch.metrics.RecordMessageRejected()
	return nil
}

// NotifyClose registers l to receive the error that closed the channel. It
// gets nothing on a clean close. l is closed when the channel is.
func (ch *Channel) NotifyClose(l chan error) chan error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.IsClosed() {
		close(l)
		return l
	}
	ch.closes = append(ch.closes, l)
	return l
}

// NotifyReturn registers l for messages returned by the broker.
func (ch *Channel) NotifyReturn(l chan Return) chan Return {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.IsClosed() {
		close(l)
		return l
	}
	ch.returns = append(ch.returns, l)
	return l
}

// NotifyFlow registers l for channel.flow changes from the broker.
func (ch *Channel) NotifyFlow(l chan bool) chan bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.IsClosed() {
		close(l)
		return l
	}
	ch.flows = append(ch.flows, l)
	return l
}

// NotifyCancel registers l for consumer tags cancelled by the broker.
func (ch *Channel) NotifyCancel(l chan string) chan string {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.IsClosed() {
		close(l)
		return l
	}
	ch.cancels = append(ch.cancels, l)
	return l
}

// ID returns the channel number.
func (ch *Channel) ID() uint16 { return ch.id }

// Connection returns the connection the channel lives on.
func (ch *Channel) Connection() *connection.Connection { return ch.conn }

// Done is closed when the channel is closed.
func (ch *Channel) Done() <-chan struct{} { return ch.done }

// IsClosed reports whether the channel is closed.
func (ch *Channel) IsClosed() bool {
	select {
	case <-ch.done:
		return true
	default:
		return false
	}
}

// Err returns why the channel closed, nil while it is open.
func (ch *Channel) Err() error {
	ch.errMu.Lock()
	defer ch.errMu.Unlock()
	return ch.err
}
