package protocol

import (
	"encoding/binary"
	"fmt"

	amqperrors "github.com/maxpert/amqp-go-client/errors"
)

type assemblerState uint8

const (
	awaitingFrameType assemblerState = iota
	awaitingFrameHeader
	awaitingPayload
)

func (s assemblerState) String() string {
	switch s {
	case awaitingFrameType:
		return "awaiting frame type"
	case awaitingFrameHeader:
		return "awaiting frame header"
	case awaitingPayload:
		return "awaiting payload"
	}
	return fmt.Sprintf("assemblerState(%d)", uint8(s))
}

// Assembler turns an unbounded byte stream into frames. Input may be split at
// any byte boundary; partial frames are kept between calls to Write.
//
// The assembler is not safe for concurrent use. It is meant to be owned by the
// goroutine reading the socket.
type Assembler struct {
	codec *Codec
	emit  func(Frame) error

	state     assemblerState
	frameType byte
	channel   uint16
	size      uint32
	maxFrame  uint32

	// acc accumulates a header or payload that spans input chunks.
	acc []byte
	err error
}

// NewAssembler returns an assembler that hands every complete frame to emit.
// An error from emit stops the assembler.
func (c *Codec) NewAssembler(emit func(Frame) error) *Assembler {
	return &Assembler{codec: c, emit: emit}
}

// SetMaxFrameSize bounds the accepted frame size (header and frame end
// included). Zero means no limit.
func (a *Assembler) SetMaxFrameSize(n uint32) {
	a.maxFrame = n
}

// Err returns the error that stopped the assembler, if any.
func (a *Assembler) Err() error {
	return a.err
}

// Buffered returns the number of bytes held for an incomplete frame.
func (a *Assembler) Buffered() int {
	return len(a.acc)
}

// Write feeds p to the assembler. It returns len(p) unless a fatal decode
// error occurred; after that every call fails with the same error.
func (a *Assembler) Write(p []byte) (int, error) {
	if a.err != nil {
		return 0, a.err
	}
	n := len(p)
	for len(p) > 0 {
		need := a.need()
		var span []byte
		if len(a.acc) == 0 && len(p) >= need {
			// whole span inside this chunk, no copy
			span = p[:need]
			p = p[need:]
		} else {
			missing := need - len(a.acc)
			if len(p) < missing {
				a.acc = append(a.acc, p...)
				return n, nil
			}
			a.acc = append(a.acc, p[:missing]...)
			p = p[missing:]
			span = a.acc
		}
		if err := a.advance(span); err != nil {
			a.err = err
			return n - len(p), err
		}
	}
	return n, nil
}

// need returns how many bytes the current state waits for.
func (a *Assembler) need() int {
	switch a.state {
	case awaitingFrameType:
		return 1
	case awaitingFrameHeader:
		return 6
	default:
		return int(a.size) + 1
	}
}

// advance runs one state transition on a complete span.
func (a *Assembler) advance(span []byte) error {
	defer a.resetBuffer()
	switch a.state {
	case awaitingFrameType:
		switch span[0] {
		case FrameMethod, FrameHeader, FrameBody, FrameHeartbeat:
		default:
			return amqperrors.NewUnknownFrameType(span[0])
		}
		a.frameType = span[0]
		a.state = awaitingFrameHeader
	case awaitingFrameHeader:
		a.channel = binary.BigEndian.Uint16(span[0:2])
		a.size = binary.BigEndian.Uint32(span[2:6])
		if a.frameType == FrameHeartbeat && a.size != 0 {
			return amqperrors.NewFrameError(fmt.Sprintf("heartbeat with %d byte payload", a.size), FrameHeartbeat)
		}
		if a.maxFrame != 0 && uint64(a.size)+FrameOverhead > uint64(a.maxFrame) {
			return amqperrors.NewFrameError(fmt.Sprintf("frame of %d bytes exceeds frame-max %d", a.size, a.maxFrame), a.frameType)
		}
		a.state = awaitingPayload
	case awaitingPayload:
		if end := span[a.size]; end != FrameEnd {
			return amqperrors.NewFrameEndError(a.frameType, end)
		}
		f, err := a.codec.ParseFrame(a.frameType, a.channel, span[:a.size])
		if err != nil {
			return err
		}
		a.state = awaitingFrameType
		if err := a.emit(f); err != nil {
			return err
		}
	}
	return nil
}

func (a *Assembler) resetBuffer() {
	if cap(a.acc) > 128*1024 {
		a.acc = nil
		return
	}
	a.acc = a.acc[:0]
}
