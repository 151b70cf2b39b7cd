// Package tagger tracks delivery tags awaiting acknowledgement.
package tagger

import "sync"

// Target is resolved when the broker settles its delivery tag.
type Target interface {
	Confirm()
	Reject()
}

// TargetFuncs adapts a pair of functions to Target. Either may be nil.
type TargetFuncs struct {
	OnConfirm func()
	OnReject  func()
}

func (t TargetFuncs) Confirm() {
	if t.OnConfirm != nil {
		t.OnConfirm()
	}
}

func (t TargetFuncs) Reject() {
	if t.OnReject != nil {
		t.OnReject()
	}
}

type entry struct {
	tag    uint64
	target Target
}

// Option configures an AtomicTagger.
type Option func(*AtomicTagger)

// WithPendingObserver registers fn to receive the pending count after every
// change. It is called with the lock held and must not call back into the tagger.
func WithPendingObserver(fn func(pending int)) Option {
	return func(t *AtomicTagger) {
		t.observe = fn
	}
}

// AtomicTagger maps delivery tags to pending targets. Entries are kept sorted
// by tag. Targets are always resolved outside the lock.
//
// Tag 0 is reserved and means every pending entry.
type AtomicTagger struct {
	mu      sync.Mutex
	next    uint64
	entries []entry
	observe func(int)
}

// New returns an empty tagger whose first key is 1.
func New(opts ...Option) *AtomicTagger {
	t := &AtomicTagger{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// GetKey issues the next tag. Tags start at 1 and strictly increase.
func (t *AtomicTagger) GetKey() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	return t.next
}

// Deposit records target under tag. Insertion scans from the tail since tags
// almost always arrive in increasing order. Depositing an existing tag
// replaces its target and rejects the one it replaced.
func (t *AtomicTagger) Deposit(tag uint64, target Target) {
	if old := t.deposit(tag, target); old != nil {
		old.Reject()
	}
}

func (t *AtomicTagger) deposit(tag uint64, target Target) Target {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := len(t.entries)
	for i > 0 && t.entries[i-1].tag > tag {
		i--
	}
	if i > 0 && t.entries[i-1].tag == tag {
		old := t.entries[i-1].target
		t.entries[i-1].target = target
		return old
	}
	t.entries = append(t.entries, entry{})
	copy(t.entries[i+1:], t.entries[i:])
	t.entries[i] = entry{tag: tag, target: target}
	t.notify()
	return nil
}

// Ack confirms tag, or every entry up to and including tag when multiple is set.
func (t *AtomicTagger) Ack(tag uint64, multiple bool) {
	for _, e := range t.take(tag, multiple) {
		e.target.Confirm()
	}
}

// Nack rejects tag, or every entry up to and including tag when multiple is set.
func (t *AtomicTagger) Nack(tag uint64, multiple bool) {
	for _, e := range t.take(tag, multiple) {
		e.target.Reject()
	}
}

// RejectAll rejects every pending entry. Used when the channel or connection
// goes away with confirms outstanding.
func (t *AtomicTagger) RejectAll() {
	t.Nack(0, true)
}

// Pending returns the number of unresolved entries.
func (t *AtomicTagger) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Tags returns the pending tags in order.
func (t *AtomicTagger) Tags() []uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	tags := make([]uint64, len(t.entries))
	for i, e := range t.entries {
		tags[i] = e.tag
	}
	return tags
}

// take removes the entries settled by (tag, multiple) and returns them in tag order.
func (t *AtomicTagger) take(tag uint64, multiple bool) []entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tag == 0 && multiple {
		taken := t.entries
		t.entries = nil
		if len(taken) > 0 {
			t.notify()
		}
		return taken
	}

	if multiple {
		n := 0
		for n < len(t.entries) && t.entries[n].tag <= tag {
			n++
		}
		if n == 0 {
			return nil
		}
		taken := make([]entry, n)
		copy(taken, t.entries[:n])
		t.entries = append(t.entries[:0], t.entries[n:]...)
		t.notify()
		return taken
	}

	for i := len(t.entries) - 1; i >= 0; i-- {
		switch e := t.entries[i]; {
		case e.tag == tag:
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			t.notify()
			return []entry{e}
		case e.tag < tag:
			return nil
		}
	}
	return nil
}

func (t *AtomicTagger) notify() {
	if t.observe != nil {
		t.observe(len(t.entries))
	}
}
