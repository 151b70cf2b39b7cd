package connection

import (
	"bufio"
	"io"
	"sync"
	"sync/atomic"
	"time"

	disruptor "github.com/smartystreets-prototypes/go-disruptor"

	amqperrors "github.com/maxpert/amqp-go-client/errors"
)

// DefaultSendQueueSize is the number of pending writes the outbound ring holds.
// Must be a power of two.
const DefaultSendQueueSize = 1024

// frameWriter moves serialized frames from callers to the socket through a
// disruptor ring. Publishers reserve a slot and return; the ring's reader
// goroutine writes and flushes batches.
type frameWriter struct {
	mu     sync.Mutex
	ring   disruptor.Disruptor
	slots  [][]byte
	mask   int64
	closed bool

	out     *bufio.Writer
	onError func(error)
	failed  atomic.Bool

	committed atomic.Int64
	consumed  atomic.Int64
}

func newFrameWriter(w io.Writer, capacity int64, onError func(error)) *frameWriter {
	if capacity <= 0 {
		capacity = DefaultSendQueueSize
	}
	fw := &frameWriter{
		slots:   make([][]byte, capacity),
		mask:    capacity - 1,
		out:     bufio.NewWriterSize(w, 64*1024),
		onError: onError,
	}
	fw.committed.Store(-1)
	fw.consumed.Store(-1)
	fw.ring = disruptor.New(
		disruptor.WithCapacity(capacity),
		disruptor.WithConsumerGroup(fw),
	)
	return fw
}

// run blocks until close.
func (fw *frameWriter) run() {
	fw.ring.Read()
}

// Consume implements the disruptor consumer.
func (fw *frameWriter) Consume(lower, upper int64) {
	for seq := lower; seq <= upper; seq++ {
		idx := seq & fw.mask
		buf := fw.slots[idx]
		fw.slots[idx] = nil
		if fw.failed.Load() {
			continue
		}
		if _, err := fw.out.Write(buf); err != nil {
			fw.fail(err)
		}
	}
	if !fw.failed.Load() {
		if err := fw.out.Flush(); err != nil {
			fw.fail(err)
		}
	}
	fw.consumed.Store(upper)
}

func (fw *frameWriter) fail(err error) {
	if fw.failed.CompareAndSwap(false, true) && fw.onError != nil {
		fw.onError(err)
	}
}

// write queues buf. Frames of one call stay contiguous on the wire.
func (fw *frameWriter) write(buf []byte) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.closed || fw.failed.Load() {
		return amqperrors.ErrConnectionClosed
	}
	seq := fw.ring.Reserve(1)
	fw.slots[seq&fw.mask] = buf
	fw.ring.Commit(seq, seq)
	fw.committed.Store(seq)
	return nil
}

// flush waits until everything queued so far has reached the socket.
func (fw *frameWriter) flush(timeout time.Duration) error {
	target := fw.committed.Load()
	deadline := time.Now().Add(timeout)
	for fw.consumed.Load() < target {
		if fw.failed.Load() {
			return amqperrors.ErrConnectionClosed
		}
		if time.Now().After(deadline) {
			return amqperrors.ErrTimeout
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}

func (fw *frameWriter) close() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.closed {
		return
	}
	fw.closed = true
	_ = fw.ring.Close()
}
