package connection

import (
	"sync"
	"sync/atomic"

	"github.com/maxpert/amqp-go-client/protocol"
)

// Watch is a registration of interest in future frames on one channel.
//
// Match and Fire run on the connection's reader goroutine and must return
// quickly. Hand slow work to another goroutine.
type Watch interface {
	// Channel is the channel the watch listens on.
	Channel() uint16
	// Match reports whether f triggers the watch.
	Match(f protocol.Frame) bool
	// Fire delivers a matching frame.
	Fire(f protocol.Frame)
	// Oneshot watches are evicted after their first match.
	Oneshot() bool
	// Cancel stops the watch. It is dropped no later than the next frame on
	// its channel.
	Cancel()
	Cancelled() bool
	// Fail is called when the watch is dropped without firing because its
	// channel or connection went away.
	Fail(err error)
}

type watchBase struct {
	channel   uint16
	oneshot   bool
	cancelled atomic.Bool
	onFail    func(error)
}

func (w *watchBase) Channel() uint16 { return w.channel }
func (w *watchBase) Oneshot() bool   { return w.oneshot }
func (w *watchBase) Cancel()         { w.cancelled.Store(true) }
func (w *watchBase) Cancelled() bool { return w.cancelled.Load() }

func (w *watchBase) Fail(err error) {
	if w.onFail != nil {
		w.onFail(err)
	}
}

// MethodWatch fires on method frames whose method is one of a fixed set.
type MethodWatch struct {
	watchBase
	methods  []*protocol.MethodDescriptor
	callback func(*protocol.MethodFrame)
	linked   *FailWatch
}

// NewMethodWatch watches channel for any of methods. A oneshot watch is
// evicted after the first match.
func NewMethodWatch(channel uint16, oneshot bool, callback func(*protocol.MethodFrame), methods ...*protocol.MethodDescriptor) *MethodWatch {
	return &MethodWatch{
		watchBase: watchBase{channel: channel, oneshot: oneshot},
		methods:   methods,
		callback:  callback,
	}
}

// OnFail sets the hook run when the watch is dropped unfired.
func (w *MethodWatch) OnFail(fn func(error)) *MethodWatch {
	w.onFail = fn
	return w
}

// Cancel stops the watch and its paired failure watch, if any.
func (w *MethodWatch) Cancel() {
	w.cancelled.Store(true)
	if w.linked != nil {
		w.linked.Cancel()
	}
}

// Methods returns the methods the watch matches.
func (w *MethodWatch) Methods() []*protocol.MethodDescriptor {
	return w.methods
}

func (w *MethodWatch) Match(f protocol.Frame) bool {
	mf, ok := f.(*protocol.MethodFrame)
	if !ok {
		return false
	}
	d := mf.Method.Descriptor()
	for _, m := range w.methods {
		if m == d {
			return true
		}
	}
	return false
}

func (w *MethodWatch) Fire(f protocol.Frame) {
	w.callback(f.(*protocol.MethodFrame))
}

// ContentWatch fires on every content header and body frame of its channel.
type ContentWatch struct {
	watchBase
	callback func(protocol.Frame)
}

// NewContentWatch returns a persistent watch for header and body frames.
func NewContentWatch(channel uint16, callback func(protocol.Frame)) *ContentWatch {
	return &ContentWatch{
		watchBase: watchBase{channel: channel},
		callback:  callback,
	}
}

// OnFail sets the hook run when the watch is dropped unfired.
func (w *ContentWatch) OnFail(fn func(error)) *ContentWatch {
	w.onFail = fn
	return w
}

func (w *ContentWatch) Match(f protocol.Frame) bool {
	switch f.(type) {
	case *protocol.HeaderFrame, *protocol.BodyFrame:
		return true
	}
	return false
}

func (w *ContentWatch) Fire(f protocol.Frame) {
	w.callback(f)
}

// FailWatch is connection scoped. It fires once when the transport dies.
type FailWatch struct {
	callback  func(error)
	once      sync.Once
	cancelled atomic.Bool
}

// NewFailWatch returns a watch that runs callback on connection loss.
func NewFailWatch(callback func(error)) *FailWatch {
	return &FailWatch{callback: callback}
}

func (w *FailWatch) Cancel()         { w.cancelled.Store(true) }
func (w *FailWatch) Cancelled() bool { return w.cancelled.Load() }

func (w *FailWatch) fire(err error) {
	if w.Cancelled() {
		return
	}
	w.once.Do(func() { w.callback(err) })
}
