package client

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/maxpert/amqp-go-client/config"
	amqperrors "github.com/maxpert/amqp-go-client/errors"
)

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithConfirms turns publisher confirms on or off. They are on by default.
func WithConfirms(enabled bool) PublisherOption {
	return func(p *Publisher) { p.confirm = enabled }
}

// WithMaxInFlight bounds the number of unconfirmed publishes. Publish blocks
// once the bound is reached. Zero means unbounded.
func WithMaxInFlight(n int64) PublisherOption {
	return func(p *Publisher) { p.maxInFlight = n }
}

// WithMandatory marks every publish mandatory.
func WithMandatory(enabled bool) PublisherOption {
	return func(p *Publisher) { p.mandatory = enabled }
}

// WithOutbox stores publishes until they are confirmed.
func WithOutbox(o Outbox) PublisherOption {
	return func(p *Publisher) { p.outbox = o }
}

// PublisherOptionsFromConfig returns the options described by cfg.
func PublisherOptionsFromConfig(cfg config.PublisherConfig) []PublisherOption {
	return []PublisherOption{
		WithConfirms(cfg.Confirm),
		WithMaxInFlight(cfg.MaxInFlight),
		WithMandatory(cfg.Mandatory),
	}
}

// Publisher publishes on one channel, optionally tracking confirms and
// keeping unconfirmed messages in an outbox.
type Publisher struct {
	ch          *Channel
	logger      *zap.Logger
	confirm     bool
	mandatory   bool
	maxInFlight int64
	inflight    *semaphore.Weighted
	outbox      Outbox

	// Confirmed outbox entries are deleted off the reader goroutine.
	deleteMu sync.Mutex
	deletes  chan uint64
	closed   bool
	wg       sync.WaitGroup
}

// NewPublisher prepares ch for publishing. With confirms on, the channel is
// put in confirm mode.
func NewPublisher(ctx context.Context, ch *Channel, opts ...PublisherOption) (*Publisher, error) {
	p := &Publisher{ch: ch, logger: ch.logger, confirm: true}
	for _, opt := range opts {
		opt(p)
	}
	if p.outbox != nil && !p.confirm {
		return nil, amqperrors.NewConfigValidationError("publisher", "confirm", "an outbox requires publisher confirms")
	}
	if p.maxInFlight > 0 {
		p.inflight = semaphore.NewWeighted(p.maxInFlight)
	}
	if p.confirm {
		if err := ch.Confirm(ctx); err != nil {
			return nil, err
		}
	}
	if p.outbox != nil {
		p.deletes = make(chan uint64, 256)
		p.wg.Add(1)
		go p.runDeletes()
	}
	return p, nil
}

// Publish sends msg. Without confirms the returned Confirmation is nil.
// It blocks while the broker has paused the channel with channel.flow or
// while the in-flight bound is reached.
func (p *Publisher) Publish(ctx context.Context, msg Publishing) (*Confirmation, error) {
	if p.mandatory {
		msg.Mandatory = true
	}
	return p.publish(ctx, msg, 0)
}

// PublishAndWait publishes msg and waits for its confirm.
func (p *Publisher) PublishAndWait(ctx context.Context, msg Publishing) error {
	conf, err := p.Publish(ctx, msg)
	if err != nil || conf == nil {
		return err
	}
	return conf.Wait(ctx)
}

// publish sends msg; a non-zero outboxID re-sends an entry already stored.
func (p *Publisher) publish(ctx context.Context, msg Publishing, outboxID uint64) (*Confirmation, error) {
	if msg.Properties != nil && msg.Properties.Err() != nil {
		return nil, msg.Properties.Err()
	}
	if err := p.ch.waitFlow(ctx); err != nil {
		return nil, err
	}
	if !p.confirm {
		return nil, p.ch.Publish(msg)
	}

	if p.inflight != nil {
		if err := p.inflight.Acquire(ctx, 1); err != nil {
			return nil, err
		}
	}
	var once sync.Once
	release := func() {
		once.Do(func() {
			if p.inflight != nil {
				p.inflight.Release(1)
			}
		})
	}

	id := outboxID
	if p.outbox != nil && id == 0 {
		var err error
		if id, err = p.outbox.Put(msg); err != nil {
			release()
			return nil, err
		}
	}

	conf, err := p.ch.publishConfirm(msg, func(acked bool) {
		release()
		if acked && p.outbox != nil {
			p.forget(id)
		}
	})
	if err != nil {
		release()
		return nil, err
	}
	return conf, nil
}

// Replay re-publishes every outbox entry. It is meant for a fresh channel
// after the previous one died with confirms outstanding; entries are
// removed as the broker confirms them.
func (p *Publisher) Replay(ctx context.Context) ([]*Confirmation, error) {
	if p.outbox == nil {
		return nil, nil
	}
	entries, err := p.outbox.Pending()
	if err != nil {
		return nil, err
	}

	confs := make([]*Confirmation, 0, len(entries))
	for _, e := range entries {
		conf, err := p.publish(ctx, e.Publishing, e.ID)
		if err != nil {
			return confs, err
		}
		confs = append(confs, conf)
	}
	if len(entries) > 0 {
		p.logger.Info("Replayed outbox", zap.Int("messages", len(entries)))
	}
	return confs, nil
}

// forget runs on the reader goroutine. The delete is handed to runDeletes
// unless its queue is full.
func (p *Publisher) forget(id uint64) {
	p.deleteMu.Lock()
	defer p.deleteMu.Unlock()
	if !p.closed {
		select {
		case p.deletes <- id:
			return
		default:
		}
	}
	p.deleteEntry(id)
}

func (p *Publisher) runDeletes() {
	defer p.wg.Done()
	for id := range p.deletes {
		p.deleteEntry(id)
	}
}

func (p *Publisher) deleteEntry(id uint64) {
	if err := p.outbox.Delete(id); err != nil {
		p.logger.Warn("Failed to delete confirmed message from outbox", zap.Uint64("id", id), zap.Error(err))
	}
}

// NotifyReturn registers l for messages the broker returned.
func (p *Publisher) NotifyReturn(l chan Return) chan Return {
	return p.ch.NotifyReturn(l)
}

// Pending returns the number of publishes awaiting a confirm.
func (p *Publisher) Pending() int { return p.ch.PendingConfirms() }

// Channel returns the channel the publisher sends on.
func (p *Publisher) Channel() *Channel { return p.ch }

// Close stops background work. It does not close the channel or the outbox.
func (p *Publisher) Close() {
	p.deleteMu.Lock()
	if p.closed || p.deletes == nil {
		p.closed = true
		p.deleteMu.Unlock()
		return
	}
	p.closed = true
	close(p.deletes)
	p.deleteMu.Unlock()
	p.wg.Wait()
}
