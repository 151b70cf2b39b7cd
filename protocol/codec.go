package protocol

import (
	"encoding/binary"
	"time"

	amqperrors "github.com/maxpert/amqp-go-client/errors"
)

// Low-level big-endian primitives shared by the table, method and property codecs.
// Writers append to a caller-owned slice; reads go through a bounds-checked cursor.

func appendUint16(buf []byte, v uint16) []byte {
	return binary.BigEndian.AppendUint16(buf, v)
}

func appendUint32(buf []byte, v uint32) []byte {
	return binary.BigEndian.AppendUint32(buf, v)
}

func appendUint64(buf []byte, v uint64) []byte {
	return binary.BigEndian.AppendUint64(buf, v)
}

func appendShortString(buf []byte, field, s string) ([]byte, error) {
	if len(s) > 255 {
		return buf, amqperrors.NewShortStringTooLong(field, len(s))
	}
	buf = append(buf, byte(len(s)))
	return append(buf, s...), nil
}

func appendLongString(buf []byte, s string) []byte {
	buf = appendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

func appendTimestamp(buf []byte, t time.Time) []byte {
	return appendUint64(buf, uint64(t.Unix()))
}

// cursor reads from a byte slice and fails with a decode error instead of panicking.
type cursor struct {
	buf []byte
	off int
}

func newCursor(buf []byte, off int) *cursor {
	return &cursor{buf: buf, off: off}
}

func (c *cursor) remaining() int {
	return len(c.buf) - c.off
}

func (c *cursor) take(n int, what string) ([]byte, error) {
	if n < 0 || c.remaining() < n {
		return nil, amqperrors.NewTruncatedError(what, n, c.remaining())
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, nil
}

func (c *cursor) octet(what string) (uint8, error) {
	b, err := c.take(1, what)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) short(what string) (uint16, error) {
	b, err := c.take(2, what)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (c *cursor) long(what string) (uint32, error) {
	b, err := c.take(4, what)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (c *cursor) longlong(what string) (uint64, error) {
	b, err := c.take(8, what)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (c *cursor) shortString(what string) (string, error) {
	n, err := c.octet(what)
	if err != nil {
		return "", err
	}
	b, err := c.take(int(n), what)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *cursor) longBytes(what string) ([]byte, error) {
	n, err := c.long(what)
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(c.remaining()) {
		return nil, amqperrors.NewTruncatedError(what, int(n), c.remaining())
	}
	return c.take(int(n), what)
}

func (c *cursor) longString(what string) (string, error) {
	b, err := c.longBytes(what)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *cursor) timestamp(what string) (time.Time, error) {
	v, err := c.longlong(what)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(v), 0).UTC(), nil
}
