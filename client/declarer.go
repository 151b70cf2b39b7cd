package client

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/maxpert/amqp-go-client/protocol"
)

// Exchange types known to every broker.
const (
	ExchangeDirect  = "direct"
	ExchangeFanout  = "fanout"
	ExchangeTopic   = "topic"
	ExchangeHeaders = "headers"
)

// ExchangeOptions are the exchange.declare flags.
type ExchangeOptions struct {
	Type       string
	Durable    bool
	AutoDelete bool
	Internal   bool
	NoWait     bool
	Arguments  protocol.Table
}

// QueueOptions are the queue.declare flags.
type QueueOptions struct {
	Durable    bool
	Exclusive  bool
	AutoDelete bool
	NoWait     bool
	Arguments  protocol.Table
}

// Queue is the broker's view of a declared queue.
type Queue struct {
	Name      string
	Messages  uint32
	Consumers uint32
}

// Declarer manages exchanges, queues and bindings. Every successful
// declare and bind is recorded so that the topology can be replayed on a
// new channel.
type Declarer struct {
	mu       sync.Mutex
	ch       *Channel
	topology []protocol.Method
}

// NewDeclarer returns a Declarer working on ch.
func NewDeclarer(ch *Channel) *Declarer {
	return &Declarer{ch: ch}
}

func (d *Declarer) channel() *Channel {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ch
}

// invoke sends m, waiting for the reply unless noWait is set.
func invoke(ctx context.Context, ch *Channel, m protocol.Method, noWait bool) (protocol.Method, error) {
	if noWait {
		return nil, ch.send(m)
	}
	return ch.call(ctx, m)
}

func (d *Declarer) record(m protocol.Method) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.topology = append(d.topology, m)
}

func (d *Declarer) forget(match func(protocol.Method) bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.topology = slices.DeleteFunc(d.topology, match)
}

// ExchangeDeclare creates an exchange, or checks that an identical one exists.
func (d *Declarer) ExchangeDeclare(ctx context.Context, name string, opts ExchangeOptions) error {
	if opts.Type == "" {
		opts.Type = ExchangeDirect
	}
	m := &protocol.ExchangeDeclareMethod{
		Exchange:   name,
		Type:       opts.Type,
		Durable:    opts.Durable,
		AutoDelete: opts.AutoDelete,
		Internal:   opts.Internal,
		NoWait:     opts.NoWait,
		Arguments:  opts.Arguments,
	}
	if _, err := invoke(ctx, d.channel(), m, opts.NoWait); err != nil {
		return err
	}
	d.forget(func(r protocol.Method) bool {
		e, ok := r.(*protocol.ExchangeDeclareMethod)
		return ok && e.Exchange == name
	})
	d.record(m)
	return nil
}

// ExchangeDeclarePassive checks that an exchange exists. A missing exchange
// closes the channel with a NOT_FOUND ReplyError.
func (d *Declarer) ExchangeDeclarePassive(ctx context.Context, name string) error {
	_, err := d.channel().call(ctx, &protocol.ExchangeDeclareMethod{Exchange: name, Passive: true})
	return err
}

// ExchangeDelete deletes an exchange and forgets the bindings that use it.
func (d *Declarer) ExchangeDelete(ctx context.Context, name string, ifUnused, noWait bool) error {
	m := &protocol.ExchangeDeleteMethod{Exchange: name, IfUnused: ifUnused, NoWait: noWait}
	if _, err := invoke(ctx, d.channel(), m, noWait); err != nil {
		return err
	}
	d.forget(func(r protocol.Method) bool {
		switch r := r.(type) {
		case *protocol.ExchangeDeclareMethod:
			return r.Exchange == name
		case *protocol.ExchangeBindMethod:
			return r.Source == name || r.Destination == name
		case *protocol.QueueBindMethod:
			return r.Exchange == name
		}
		return false
	})
	return nil
}

// ExchangeBind routes messages from source to destination.
func (d *Declarer) ExchangeBind(ctx context.Context, destination, key, source string, noWait bool, args protocol.Table) error {
	m := &protocol.ExchangeBindMethod{Destination: destination, Source: source, RoutingKey: key, NoWait: noWait, Arguments: args}
	if _, err := invoke(ctx, d.channel(), m, noWait); err != nil {
		return err
	}
	d.record(m)
	return nil
}

// ExchangeUnbind removes an exchange-to-exchange binding.
func (d *Declarer) ExchangeUnbind(ctx context.Context, destination, key, source string, noWait bool, args protocol.Table) error {
	m := &protocol.ExchangeUnbindMethod{Destination: destination, Source: source, RoutingKey: key, NoWait: noWait, Arguments: args}
	if _, err := invoke(ctx, d.channel(), m, noWait); err != nil {
		return err
	}
	d.forget(func(r protocol.Method) bool {
		b, ok := r.(*protocol.ExchangeBindMethod)
		return ok && b.Destination == destination && b.Source == source && b.RoutingKey == key
	})
	return nil
}

// QueueDeclare creates a queue, or checks that an identical one exists. An
// empty name asks the broker to generate one.
func (d *Declarer) QueueDeclare(ctx context.Context, name string, opts QueueOptions) (Queue, error) {
	m := &protocol.QueueDeclareMethod{
		Queue:      name,
		Durable:    opts.Durable,
		Exclusive:  opts.Exclusive,
		AutoDelete: opts.AutoDelete,
		NoWait:     opts.NoWait,
		Arguments:  opts.Arguments,
	}
	reply, err := invoke(ctx, d.channel(), m, opts.NoWait)
	if err != nil {
		return Queue{}, err
	}
	q := Queue{Name: name}
	if declared, ok := reply.(*protocol.QueueDeclareOKMethod); ok {
		q = Queue{Name: declared.Queue, Messages: declared.MessageCount, Consumers: declared.ConsumerCount}
	}
	if name != "" {
		d.forget(func(r protocol.Method) bool {
			qd, ok := r.(*protocol.QueueDeclareMethod)
			return ok && qd.Queue == name
		})
	}
	d.record(m)
	return q, nil
}

// QueueDeclarePassive checks that a queue exists and reports its counters.
func (d *Declarer) QueueDeclarePassive(ctx context.Context, name string) (Queue, error) {
	reply, err := d.channel().call(ctx, &protocol.QueueDeclareMethod{Queue: name, Passive: true})
	if err != nil {
		return Queue{}, err
	}
	declared := reply.(*protocol.QueueDeclareOKMethod)
	return Queue{Name: declared.Queue, Messages: declared.MessageCount, Consumers: declared.ConsumerCount}, nil
}

// QueueBind routes messages from exchange to queue.
func (d *Declarer) QueueBind(ctx context.Context, queue, key, exchange string, noWait bool, args protocol.Table) error {
	m := &protocol.QueueBindMethod{Queue: queue, Exchange: exchange, RoutingKey: key, NoWait: noWait, Arguments: args}
	if _, err := invoke(ctx, d.channel(), m, noWait); err != nil {
		return err
	}
	d.record(m)
	return nil
}

// QueueUnbind removes a queue binding.
func (d *Declarer) QueueUnbind(ctx context.Context, queue, key, exchange string, args protocol.Table) error {
	m := &protocol.QueueUnbindMethod{Queue: queue, Exchange: exchange, RoutingKey: key, Arguments: args}
	if _, err := d.channel().call(ctx, m); err != nil {
		return err
	}
	d.forget(func(r protocol.Method) bool {
		b, ok := r.(*protocol.QueueBindMethod)
		return ok && b.Queue == queue && b.Exchange == exchange && b.RoutingKey == key
	})
	return nil
}

// QueuePurge removes every ready message from a queue and returns how many
// were dropped.
func (d *Declarer) QueuePurge(ctx context.Context, name string) (uint32, error) {
	reply, err := d.channel().call(ctx, &protocol.QueuePurgeMethod{Queue: name})
	if err != nil {
		return 0, err
	}
	return reply.(*protocol.QueuePurgeOKMethod).MessageCount, nil
}

// QueueDelete deletes a queue and returns the number of messages it held.
func (d *Declarer) QueueDelete(ctx context.Context, name string, ifUnused, ifEmpty bool) (uint32, error) {
	reply, err := d.channel().call(ctx, &protocol.QueueDeleteMethod{Queue: name, IfUnused: ifUnused, IfEmpty: ifEmpty})
	if err != nil {
		return 0, err
	}
	d.forget(func(r protocol.Method) bool {
		switch r := r.(type) {
		case *protocol.QueueDeclareMethod:
			return r.Queue == name
		case *protocol.QueueBindMethod:
			return r.Queue == name
		}
		return false
	})
	return reply.(*protocol.QueueDeleteOKMethod).MessageCount, nil
}

// Topology returns the recorded declarations in the order they were made.
func (d *Declarer) Topology() []protocol.Method {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.topology)
}

// Redeclare replays the recorded topology on ch, which the Declarer uses
// from then on. Server-named queues come back with new names.
func (d *Declarer) Redeclare(ctx context.Context, ch *Channel) error {
	d.mu.Lock()
	d.ch = ch
	topology := slices.Clone(d.topology)
	d.mu.Unlock()

	for _, m := range topology {
		if _, err := ch.call(ctx, withWait(m)); err != nil {
			return err
		}
	}
	ch.logger.Info("Redeclared topology", zap.Int("declarations", len(topology)))
	return nil
}

// withWait returns a copy of m that asks for a reply.
func withWait(m protocol.Method) protocol.Method {
	switch m := m.(type) {
	case *protocol.ExchangeDeclareMethod:
		c := *m
		c.NoWait = false
		return &c
	case *protocol.ExchangeBindMethod:
		c := *m
		c.NoWait = false
		return &c
	case *protocol.QueueDeclareMethod:
		c := *m
		c.NoWait = false
		return &c
	case *protocol.QueueBindMethod:
		c := *m
		c.NoWait = false
		return &c
	}
	return m
}
