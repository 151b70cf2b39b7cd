package client

import (
	"context"

	"github.com/maxpert/amqp-go-client/connection"
	"github.com/maxpert/amqp-go-client/protocol"
)

// Get fetches a single message from queue. ok is false when the queue is
// empty.
func (ch *Channel) Get(ctx context.Context, queue string, noAck bool) (msg *ReceivedMessage, ok bool, err error) {
	if err := ch.Err(); err != nil {
		return nil, false, err
	}
	ch.rpcMu.Lock()
	defer ch.rpcMu.Unlock()

	future := connection.NewFuture[*ReceivedMessage]()
	ch.mu.Lock()
	ch.pendingGet = future
	ch.mu.Unlock()
	defer func() {
		ch.mu.Lock()
		if ch.pendingGet == future {
			ch.pendingGet = nil
		}
		ch.mu.Unlock()
	}()

	reply, err := ch.callLocked(ctx, &protocol.BasicGetMethod{Queue: queue, NoAck: noAck})
	if err != nil {
		return nil, false, err
	}
	if _, empty := reply.(*protocol.BasicGetEmptyMethod); empty {
		return nil, false, nil
	}

	msg, err = future.Wait(ctx)
	if err != nil {
		return nil, false, err
	}
	return msg, true, nil
}
