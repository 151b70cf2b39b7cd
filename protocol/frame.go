package protocol

import (
	"encoding/binary"
	"fmt"
	"io"

	amqperrors "github.com/maxpert/amqp-go-client/errors"
)

// Frame types as defined in the AMQP specification
const (
	FrameMethod    = 1
	FrameHeader    = 2
	FrameBody      = 3
	FrameHeartbeat = 8
	FrameEnd       = 0xCE // Frame end marker byte
)

const (
	// FrameHeaderSize is type + channel + size.
	FrameHeaderSize = 7
	// FrameOverhead is the header plus the frame end octet.
	FrameOverhead = FrameHeaderSize + 1
	// FrameMinSize is the smallest frame-max a peer may negotiate.
	FrameMinSize = 4096
)

// ProtocolHeader is sent by the client before any frame.
var ProtocolHeader = []byte{'A', 'M', 'Q', 'P', 0, 0, 9, 1}

// Frame is one of MethodFrame, HeaderFrame, BodyFrame or HeartbeatFrame.
type Frame interface {
	FrameType() byte
	ChannelID() uint16
	frame()
}

// MethodFrame carries a method.
type MethodFrame struct {
	Channel uint16
	Method  Method
}

// HeaderFrame is the content header that follows a content-bearing method.
type HeaderFrame struct {
	Channel    uint16
	ClassID    uint16
	Weight     uint16
	BodySize   uint64
	Properties *Properties
}

// BodyFrame carries one fragment of a message body.
type BodyFrame struct {
	Channel uint16
	Body    []byte
}

// HeartbeatFrame is always sent on channel 0.
type HeartbeatFrame struct{}

func (*MethodFrame) FrameType() byte    { return FrameMethod }
func (*HeaderFrame) FrameType() byte    { return FrameHeader }
func (*BodyFrame) FrameType() byte      { return FrameBody }
func (*HeartbeatFrame) FrameType() byte { return FrameHeartbeat }

func (f *MethodFrame) ChannelID() uint16  { return f.Channel }
func (f *HeaderFrame) ChannelID() uint16  { return f.Channel }
func (f *BodyFrame) ChannelID() uint16    { return f.Channel }
func (*HeartbeatFrame) ChannelID() uint16 { return 0 }

func (*MethodFrame) frame()    {}
func (*HeaderFrame) frame()    {}
func (*BodyFrame) frame()      {}
func (*HeartbeatFrame) frame() {}

func (f *MethodFrame) String() string {
	return fmt.Sprintf("method %s on channel %d", f.Method.Descriptor(), f.Channel)
}

// Codec encodes and decodes frames. It owns the content-property layout cache.
type Codec struct {
	props *PropertyRegistry
}

// NewCodec returns a codec with a fresh property registry holding the basic
// class plus any extra content classes.
func NewCodec(classes ...*ContentClass) *Codec {
	return &Codec{props: NewPropertyRegistry(classes...)}
}

// NewCodecWithRegistry returns a codec sharing an existing registry.
func NewCodecWithRegistry(props *PropertyRegistry) *Codec {
	return &Codec{props: props}
}

// Properties returns the property layout cache.
func (c *Codec) Properties() *PropertyRegistry {
	return c.props
}

// PayloadSize returns the payload length of f without encoding it.
func (c *Codec) PayloadSize(f Frame) (int, error) {
	switch fr := f.(type) {
	case *MethodFrame:
		n, err := ArgumentsSize(fr.Method)
		return 4 + n, err
	case *HeaderFrame:
		if fr.Properties == nil {
			return 14, nil
		}
		n, err := c.props.Size(fr.Properties)
		return 12 + n, err
	case *BodyFrame:
		return len(fr.Body), nil
	case *HeartbeatFrame:
		return 0, nil
	}
	return 0, amqperrors.NewUnsupportedValue("frame", f)
}

// FrameSize returns the full encoded size of f including header and frame end.
func (c *Codec) FrameSize(f Frame) (int, error) {
	n, err := c.PayloadSize(f)
	return FrameOverhead + n, err
}

// AppendFrame appends the wire encoding of f to buf. Payload sizes are
// computed up front so the frame is written in a single pass.
func (c *Codec) AppendFrame(buf []byte, f Frame) ([]byte, error) {
	if mf, ok := f.(*MethodFrame); ok {
		if d := mf.Method.Descriptor(); d.staticFrame != nil {
			buf = append(buf, FrameMethod)
			buf = appendUint16(buf, mf.Channel)
			return append(buf, d.staticFrame...), nil
		}
	}

	size, err := c.PayloadSize(f)
	if err != nil {
		return buf, err
	}
	start := len(buf)
	buf = append(buf, f.FrameType())
	buf = appendUint16(buf, f.ChannelID())
	buf = appendUint32(buf, uint32(size))

	switch fr := f.(type) {
	case *MethodFrame:
		buf, err = AppendMethodPayload(buf, fr.Method)
	case *HeaderFrame:
		buf, err = c.appendHeaderPayload(buf, fr)
	case *BodyFrame:
		buf = append(buf, fr.Body...)
	}
	if err != nil {
		return buf[:start], err
	}
	return append(buf, FrameEnd), nil
}

func (c *Codec) appendHeaderPayload(buf []byte, f *HeaderFrame) ([]byte, error) {
	classID := f.ClassID
	if f.Properties != nil {
		classID = f.Properties.class.ClassID
	}
	buf = appendUint16(buf, classID)
	buf = appendUint16(buf, f.Weight)
	buf = appendUint64(buf, f.BodySize)
	if f.Properties == nil {
		return appendUint16(buf, 0), nil
	}
	return c.props.Encode(buf, f.Properties)
}

// Marshal returns the wire encoding of f.
func (c *Codec) Marshal(f Frame) ([]byte, error) {
	size, err := c.FrameSize(f)
	if err != nil {
		return nil, err
	}
	return c.AppendFrame(make([]byte, 0, size), f)
}

// WriteFrame writes a frame to an io.Writer using a pooled buffer.
func (c *Codec) WriteFrame(writer io.Writer, f Frame) error {
	size, err := c.FrameSize(f)
	if err != nil {
		return err
	}
	bufPtr := GetBufferForSize(size)
	defer PutBufferForSize(bufPtr)

	buf, err := c.AppendFrame((*bufPtr)[:0], f)
	if err != nil {
		return err
	}
	*bufPtr = buf
	_, err = writer.Write(buf)
	return err
}

// ParseFrame turns a raw payload into a typed frame. The payload is not
// retained: body bytes are copied.
func (c *Codec) ParseFrame(frameType byte, channel uint16, payload []byte) (Frame, error) {
	switch frameType {
	case FrameMethod:
		m, err := ParseMethod(payload)
		if err != nil {
			return nil, err
		}
		return &MethodFrame{Channel: channel, Method: m}, nil
	case FrameHeader:
		return c.parseHeader(channel, payload)
	case FrameBody:
		body := make([]byte, len(payload))
		copy(body, payload)
		return &BodyFrame{Channel: channel, Body: body}, nil
	case FrameHeartbeat:
		if channel != 0 || len(payload) != 0 {
			return nil, amqperrors.NewFrameError("heartbeat with channel or payload", FrameHeartbeat)
		}
		return &HeartbeatFrame{}, nil
	}
	return nil, amqperrors.NewUnknownFrameType(frameType)
}

func (c *Codec) parseHeader(channel uint16, payload []byte) (*HeaderFrame, error) {
	cur := newCursor(payload, 0)
	fixed, err := cur.take(12, "content header")
	if err != nil {
		return nil, err
	}
	f := &HeaderFrame{
		Channel:  channel,
		ClassID:  binary.BigEndian.Uint16(fixed[0:2]),
		Weight:   binary.BigEndian.Uint16(fixed[2:4]),
		BodySize: binary.BigEndian.Uint64(fixed[4:12]),
	}
	props, n, err := c.props.Decode(f.ClassID, payload, 12)
	if err != nil {
		return nil, err
	}
	if 12+n != len(payload) {
		return nil, amqperrors.NewDecodeError(amqperrors.SyntaxError,
			fmt.Sprintf("%d trailing bytes in content header", len(payload)-12-n), FrameHeader, f.ClassID, 0)
	}
	f.Properties = props
	return f, nil
}

// ReadFrame reads exactly one frame from an io.Reader. It blocks until the
// whole frame is available.
func (c *Codec) ReadFrame(reader io.Reader) (Frame, error) {
	headerPtr := getFrameHeader()
	header := *headerPtr
	defer putFrameHeader(headerPtr)

	if _, err := io.ReadFull(reader, header); err != nil {
		return nil, err
	}

	frameType := header[0]
	channel := binary.BigEndian.Uint16(header[1:3])
	size := binary.BigEndian.Uint32(header[3:7])

	switch frameType {
	case FrameMethod, FrameHeader, FrameBody, FrameHeartbeat:
	default:
		return nil, amqperrors.NewUnknownFrameType(frameType)
	}

	payloadPtr := GetBufferForSize(int(size) + 1)
	defer PutBufferForSize(payloadPtr)
	payload := *payloadPtr
	if cap(payload) < int(size)+1 {
		payload = make([]byte, int(size)+1)
	}
	payload = payload[:size+1]
	*payloadPtr = payload
	if _, err := io.ReadFull(reader, payload); err != nil {
		return nil, err
	}

	if payload[size] != FrameEnd {
		return nil, amqperrors.NewFrameEndError(frameType, payload[size])
	}
	return c.ParseFrame(frameType, channel, payload[:size])
}

// SplitBody cuts a message body into body frames no larger than frameMax.
// A frameMax of 0 means no limit.
func SplitBody(channel uint16, body []byte, frameMax uint32) []Frame {
	if len(body) == 0 {
		return nil
	}
	chunk := len(body)
	if frameMax > FrameOverhead && int(frameMax-FrameOverhead) < chunk {
		chunk = int(frameMax - FrameOverhead)
	}
	frames := make([]Frame, 0, (len(body)+chunk-1)/chunk)
	for off := 0; off < len(body); off += chunk {
		end := off + chunk
		if end > len(body) {
			end = len(body)
		}
		frames = append(frames, &BodyFrame{Channel: channel, Body: body[off:end]})
	}
	return frames
}

// ContentFrames builds the method, header and body frames of a content-bearing method.
func ContentFrames(channel uint16, m Method, props *Properties, body []byte, frameMax uint32) []Frame {
	if props == nil {
		props = NewBasicProperties()
	}
	frames := make([]Frame, 0, 3)
	frames = append(frames,
		&MethodFrame{Channel: channel, Method: m},
		&HeaderFrame{Channel: channel, ClassID: props.class.ClassID, BodySize: uint64(len(body)), Properties: props},
	)
	return append(frames, SplitBody(channel, body, frameMax)...)
}
