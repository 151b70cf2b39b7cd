package connection

import (
	"sync"
	"sync/atomic"

	"github.com/maxpert/amqp-go-client/protocol"
)

// entry wraps a registered watch. state moves from live to done exactly once,
// so a watch is either fired as a oneshot, failed, or dropped, never two of them.
type entry struct {
	w    Watch
	done atomic.Bool
}

func (e *entry) finish() bool {
	return e.done.CompareAndSwap(false, true)
}

// Registry tracks the pending watches of one connection.
//
// Frames are dispatched from a single goroutine. Registration, cancellation
// and channel teardown may happen from any goroutine, including from inside
// a callback. Callbacks always run without the registry lock held.
type Registry struct {
	mu       sync.Mutex
	channels map[uint16][]*entry
	fail     []*FailWatch
	failed   bool
	cause    error
	// failCompactAt is the length at which cancelled failure watches are pruned.
	failCompactAt int
	// epoch is bumped per channel by FailChannel so that an in-progress
	// dispatch on that channel stops.
	epoch map[uint16]uint64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[uint16][]*entry),
		epoch:    make(map[uint16]uint64),

		failCompactAt: 32,
	}
}

// Watch registers w. A watch added while a frame is being dispatched is
// considered from the next frame on.
func (r *Registry) Watch(w Watch) {
	r.mu.Lock()
	ch := w.Channel()
	r.channels[ch] = append(r.channels[ch], &entry{w: w})
	r.mu.Unlock()
}

// WatchFail registers a connection scoped failure watch.
func (r *Registry) WatchFail(w *FailWatch) {
	r.mu.Lock()
	if len(r.fail) >= r.failCompactAt {
		live := r.fail[:0]
		for _, fw := range r.fail {
			if !fw.Cancelled() {
				live = append(live, fw)
			}
		}
		for i := len(live); i < len(r.fail); i++ {
			r.fail[i] = nil
		}
		r.fail = live
		r.failCompactAt = 2*len(live) + 32
	}
	r.fail = append(r.fail, w)
	r.mu.Unlock()
}

// PendingFail returns the number of live failure watches.
func (r *Registry) PendingFail() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, fw := range r.fail {
		if !fw.Cancelled() {
			n++
		}
	}
	return n
}

// OnFrame runs the watches of f's channel in registration order and returns
// how many fired. Oneshot watches that fire are evicted; cancelled watches
// are dropped.
func (r *Registry) OnFrame(f protocol.Frame) int {
	ch := f.ChannelID()

	r.mu.Lock()
	snapshot := r.channels[ch]
	epoch := r.epoch[ch]
	r.mu.Unlock()

	fired := 0
	for _, e := range snapshot {
		if e.done.Load() {
			continue
		}
		if e.w.Cancelled() {
			e.finish()
			continue
		}
		if !e.w.Match(f) {
			continue
		}
		if e.w.Oneshot() && !e.finish() {
			continue
		}
		e.w.Fire(f)
		fired++

		if r.channelEpoch(ch) != epoch {
			break
		}
	}

	if len(snapshot) > 0 {
		r.compact(ch)
	}
	return fired
}

func (r *Registry) channelEpoch(ch uint16) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.epoch[ch]
}

func (r *Registry) compact(ch uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.channels[ch]
	kept := make([]*entry, 0, len(list))
	for _, e := range list {
		if !e.done.Load() {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		delete(r.channels, ch)
		return
	}
	r.channels[ch] = kept
}

// FailChannel drops every watch on ch and calls its Fail hook with err. It is
// safe to call from a callback running on ch; the remaining watches of the
// frame being dispatched are not evaluated.
func (r *Registry) FailChannel(ch uint16, err error) int {
	r.mu.Lock()
	list := r.channels[ch]
	delete(r.channels, ch)
	r.epoch[ch]++
	r.mu.Unlock()

	failed := 0
	for _, e := range list {
		if e.finish() && !e.w.Cancelled() {
			e.w.Fail(err)
			failed++
		}
	}
	return failed
}

// OnFail marks the transport dead. Every failure watch fires once, and every
// channel watch is dropped through its Fail hook. Later calls do nothing
// until Reset.
func (r *Registry) OnFail(err error) {
	r.mu.Lock()
	if r.failed {
		r.mu.Unlock()
		return
	}
	r.failed = true
	r.cause = err
	channels := r.channels
	fail := r.fail
	r.channels = make(map[uint16][]*entry)
	r.fail = nil
	for ch := range channels {
		r.epoch[ch]++
	}
	r.mu.Unlock()

	for _, w := range fail {
		w.fire(err)
	}
	for _, list := range channels {
		for _, e := range list {
			if e.finish() && !e.w.Cancelled() {
				e.w.Fail(err)
			}
		}
	}
}

// Failed reports whether OnFail ran, and with which error.
func (r *Registry) Failed() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed, r.cause
}

// Reset re-arms the registry for a new transport. Watches registered after
// the failure are kept.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.failed = false
	r.cause = nil
	r.mu.Unlock()
}

// Pending returns the number of live channel watches.
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, list := range r.channels {
		for _, e := range list {
			if !e.done.Load() && !e.w.Cancelled() {
				n++
			}
		}
	}
	return n
}

// PendingOn returns the number of live watches on ch.
func (r *Registry) PendingOn(ch uint16) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, e := range r.channels[ch] {
		if !e.done.Load() && !e.w.Cancelled() {
			n++
		}
	}
	return n
}
