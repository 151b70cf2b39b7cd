package client

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpert/amqp-go-client/protocol"
)

// replyAll answers n declarations with their -ok methods.
func replyAll(broker *fakeBroker, n int) ([]protocol.Method, error) {
	var seen []protocol.Method
	for i := 0; i < n; i++ {
		f, err := broker.next()
		if err != nil {
			return seen, err
		}
		mf, ok := f.(*protocol.MethodFrame)
		if !ok {
			return seen, fmt.Errorf("expected method frame, got %T", f)
		}
		seen = append(seen, mf.Method)

		var reply protocol.Method
		switch m := mf.Method.(type) {
		case *protocol.ExchangeDeclareMethod:
			reply = &protocol.ExchangeDeclareOKMethod{}
		case *protocol.ExchangeDeleteMethod:
			reply = &protocol.ExchangeDeleteOKMethod{}
		case *protocol.ExchangeBindMethod:
			reply = &protocol.ExchangeBindOKMethod{}
		case *protocol.QueueDeclareMethod:
			name := m.Queue
			if name == "" {
				name = "amq.gen-1"
			}
			reply = &protocol.QueueDeclareOKMethod{Queue: name, MessageCount: 5, ConsumerCount: 1}
		case *protocol.QueueBindMethod:
			reply = &protocol.QueueBindOKMethod{}
		case *protocol.QueueUnbindMethod:
			reply = &protocol.QueueUnbindOKMethod{}
		case *protocol.QueuePurgeMethod:
			reply = &protocol.QueuePurgeOKMethod{MessageCount: 7}
		case *protocol.QueueDeleteMethod:
			reply = &protocol.QueueDeleteOKMethod{MessageCount: 2}
		default:
			return seen, fmt.Errorf("unexpected %s", mf.Method.Descriptor().Name)
		}
		if err := broker.send(mf.Channel, reply); err != nil {
			return seen, err
		}
	}
	return seen, nil
}

func TestDeclarerRecordsTopology(t *testing.T) {
	conn, broker := dial(t)
	ch := openChannel(t, conn, broker)
	d := NewDeclarer(ch)
	ctx := context.Background()

	wait := broker.script(t, func() error {
		_, err := replyAll(broker, 8)
		return err
	})
	require.NoError(t, d.ExchangeDeclare(ctx, "orders", ExchangeOptions{Type: ExchangeTopic, Durable: true}))
	require.NoError(t, d.ExchangeDeclare(ctx, "audit", ExchangeOptions{}))
	require.NoError(t, d.ExchangeBind(ctx, "audit", "#", "orders", false, nil))

	q, err := d.QueueDeclare(ctx, "eu-orders", QueueOptions{Durable: true})
	require.NoError(t, err)
	assert.Equal(t, Queue{Name: "eu-orders", Messages: 5, Consumers: 1}, q)

	anon, err := d.QueueDeclare(ctx, "", QueueOptions{Exclusive: true})
	require.NoError(t, err)
	assert.Equal(t, "amq.gen-1", anon.Name)

	require.NoError(t, d.QueueBind(ctx, "eu-orders", "eu.*", "orders", false, nil))
	require.NoError(t, d.QueueUnbind(ctx, "eu-orders", "eu.*", "orders", nil))
	purged, err := d.QueuePurge(ctx, "eu-orders")
	require.NoError(t, err)
	wait()
	assert.Equal(t, uint32(7), purged)

	topology := d.Topology()
	require.Len(t, topology, 5)
	declared := topology[0].(*protocol.ExchangeDeclareMethod)
	assert.Equal(t, "orders", declared.Exchange)
	assert.Equal(t, ExchangeTopic, declared.Type)
	assert.Equal(t, ExchangeDirect, topology[1].(*protocol.ExchangeDeclareMethod).Type)
	assert.IsType(t, &protocol.ExchangeBindMethod{}, topology[2])
	assert.Equal(t, "eu-orders", topology[3].(*protocol.QueueDeclareMethod).Queue)

	wait = broker.script(t, func() error {
		_, err := replyAll(broker, 2)
		return err
	})
	count, err := d.QueueDelete(ctx, "eu-orders", false, false)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), count)
	require.NoError(t, d.ExchangeDelete(ctx, "orders", false, false))
	wait()

	topology = d.Topology()
	require.Len(t, topology, 2)
	assert.Equal(t, "audit", topology[0].(*protocol.ExchangeDeclareMethod).Exchange)
	assert.Equal(t, "", topology[1].(*protocol.QueueDeclareMethod).Queue)
}

func TestDeclarerRedeclare(t *testing.T) {
	conn, broker := dial(t)
	ch := openChannel(t, conn, broker)
	d := NewDeclarer(ch)
	ctx := context.Background()

	wait := broker.script(t, func() error {
		if _, _, err := expectMethod[*protocol.ExchangeDeclareMethod](broker); err != nil {
			return err
		}
		if _, _, err := expectMethod[*protocol.QueueDeclareMethod](broker); err != nil {
			return err
		}
		_, err := replyAll(broker, 1)
		return err
	})
	require.NoError(t, d.ExchangeDeclare(ctx, "orders", ExchangeOptions{Type: ExchangeFanout, NoWait: true}))
	_, err := d.QueueDeclare(ctx, "eu-orders", QueueOptions{NoWait: true})
	require.NoError(t, err)
	require.NoError(t, d.QueueBind(ctx, "eu-orders", "", "orders", false, nil))
	wait()

	second := openChannel(t, conn, broker)
	var replayed []protocol.Method
	wait = broker.script(t, func() error {
		var err error
		replayed, err = replyAll(broker, 3)
		return err
	})
	require.NoError(t, d.Redeclare(ctx, second))
	wait()

	require.Len(t, replayed, 3)
	exchange := replayed[0].(*protocol.ExchangeDeclareMethod)
	assert.Equal(t, "orders", exchange.Exchange)
	assert.False(t, exchange.NoWait)
	assert.False(t, replayed[1].(*protocol.QueueDeclareMethod).NoWait)
	assert.Equal(t, "orders", replayed[2].(*protocol.QueueBindMethod).Exchange)

	recorded := d.Topology()[0].(*protocol.ExchangeDeclareMethod)
	assert.True(t, recorded.NoWait, "replay does not modify the record")
}
