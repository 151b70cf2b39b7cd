package protocol

import (
	"bytes"
	"io"
	"testing"

	amqperrors "github.com/maxpert/amqp-go-client/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndReadFrame(t *testing.T) {
	codec := NewCodec()
	frames := []Frame{
		&MethodFrame{Channel: 1, Method: &QueueDeclareMethod{Queue: "orders", Durable: true, Arguments: Table{"x-max-length": int32(10)}}},
		&HeaderFrame{Channel: 1, ClassID: ClassBasic, BodySize: 5, Properties: NewBasicProperties(WithMessageID("m-1"))},
		&BodyFrame{Channel: 1, Body: []byte("hello")},
		&HeartbeatFrame{},
	}

	var buf bytes.Buffer
	for _, f := range frames {
		require.NoError(t, codec.WriteFrame(&buf, f))
	}
	for _, want := range frames {
		got, err := codec.ReadFrame(&buf)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := codec.ReadFrame(&buf)
	assert.Equal(t, io.EOF, err)
}

func TestHeartbeatFrameBytes(t *testing.T) {
	encoded, err := NewCodec().Marshal(&HeartbeatFrame{})
	require.NoError(t, err)
	assert.Equal(t, []byte{FrameHeartbeat, 0, 0, 0, 0, 0, 0, FrameEnd}, encoded)
}

func TestHeaderFrameWithoutProperties(t *testing.T) {
	codec := NewCodec()
	f := &HeaderFrame{Channel: 2, ClassID: ClassBasic, BodySize: 0}
	size, err := codec.PayloadSize(f)
	require.NoError(t, err)
	assert.Equal(t, 14, size)

	encoded, err := codec.Marshal(f)
	require.NoError(t, err)
	assert.Len(t, encoded, FrameOverhead+14)

	decoded, err := codec.ReadFrame(bytes.NewReader(encoded))
	require.NoError(t, err)
	hf := decoded.(*HeaderFrame)
	assert.Equal(t, 0, hf.Properties.Len())
}

func TestReadFrameErrors(t *testing.T) {
	codec := NewCodec()

	_, err := codec.ReadFrame(bytes.NewReader([]byte{FrameMethod, 0}))
	assert.Equal(t, io.ErrUnexpectedEOF, err)

	_, err = codec.ReadFrame(bytes.NewReader([]byte{9, 0, 0, 0, 0, 0, 0, FrameEnd}))
	assert.True(t, amqperrors.IsDecodeError(err))

	_, err = codec.ReadFrame(bytes.NewReader([]byte{FrameBody, 0, 1, 0, 0, 0, 1, 'x', 0xAB}))
	require.Error(t, err)
	assert.Equal(t, amqperrors.FrameError, amqperrors.GetErrorCode(err))
}

func TestParseHeartbeatRules(t *testing.T) {
	codec := NewCodec()
	_, err := codec.ParseFrame(FrameHeartbeat, 1, nil)
	assert.True(t, amqperrors.IsDecodeError(err))
	_, err = codec.ParseFrame(FrameHeartbeat, 0, []byte{1})
	assert.True(t, amqperrors.IsDecodeError(err))
	f, err := codec.ParseFrame(FrameHeartbeat, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, byte(FrameHeartbeat), f.FrameType())
}

func TestParseHeaderTrailingBytes(t *testing.T) {
	codec := NewCodec()
	payload := []byte{0, 60, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0xFF}
	_, err := codec.ParseFrame(FrameHeader, 1, payload)
	assert.True(t, amqperrors.IsDecodeError(err))

	f, err := codec.ParseFrame(FrameHeader, 1, payload[:14])
	require.NoError(t, err)
	assert.Equal(t, uint64(1), f.(*HeaderFrame).BodySize)
}

func TestSplitBody(t *testing.T) {
	body := bytes.Repeat([]byte{'a'}, 25)

	frames := SplitBody(3, body, FrameOverhead+10)
	require.Len(t, frames, 3)
	assert.Len(t, frames[0].(*BodyFrame).Body, 10)
	assert.Len(t, frames[1].(*BodyFrame).Body, 10)
	assert.Len(t, frames[2].(*BodyFrame).Body, 5)
	for _, f := range frames {
		assert.Equal(t, uint16(3), f.ChannelID())
	}

	assert.Len(t, SplitBody(1, body, 0), 1)
	assert.Nil(t, SplitBody(1, nil, 4096))
}

func TestContentFrames(t *testing.T) {
	codec := NewCodec()
	body := bytes.Repeat([]byte{'z'}, 9000)
	frames := ContentFrames(1, &BasicPublishMethod{RoutingKey: "q"}, nil, body, FrameMinSize)
	require.Len(t, frames, 5)

	hf := frames[1].(*HeaderFrame)
	assert.Equal(t, uint64(len(body)), hf.BodySize)
	assert.Equal(t, uint16(ClassBasic), hf.ClassID)

	var reassembled []byte
	for _, f := range frames[2:] {
		size, err := codec.FrameSize(f)
		require.NoError(t, err)
		assert.LessOrEqual(t, size, FrameMinSize)
		reassembled = append(reassembled, f.(*BodyFrame).Body...)
	}
	assert.Equal(t, body, reassembled)

	// empty bodies are a method and a header only
	assert.Len(t, ContentFrames(1, &BasicPublishMethod{}, nil, nil, FrameMinSize), 2)
}
