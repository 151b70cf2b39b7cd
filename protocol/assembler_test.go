package protocol

import (
	"errors"
	"testing"

	amqperrors "github.com/maxpert/amqp-go-client/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStream(t *testing.T, codec *Codec) ([]byte, []Frame) {
	t.Helper()
	body := make([]byte, 300)
	for i := range body {
		body[i] = byte(i)
	}
	frames := []Frame{
		&MethodFrame{Channel: 0, Method: &ConnectionTuneMethod{ChannelMax: 2047, FrameMax: 131072, Heartbeat: 60}},
		&HeartbeatFrame{},
		&MethodFrame{Channel: 1, Method: &BasicDeliverMethod{ConsumerTag: "ctag", DeliveryTag: 1, Exchange: "ex", RoutingKey: "rk"}},
		&HeaderFrame{Channel: 1, ClassID: ClassBasic, BodySize: uint64(len(body)), Properties: NewBasicProperties(WithContentType("application/octet-stream"))},
		&BodyFrame{Channel: 1, Body: body[:200]},
		&BodyFrame{Channel: 1, Body: body[200:]},
		&MethodFrame{Channel: 1, Method: &ChannelCloseOKMethod{}},
		&BodyFrame{Channel: 2, Body: []byte{}},
	}
	var stream []byte
	for _, f := range frames {
		var err error
		stream, err = codec.AppendFrame(stream, f)
		require.NoError(t, err)
	}
	return stream, frames
}

func collect(codec *Codec) (*Assembler, *[]Frame) {
	var out []Frame
	a := codec.NewAssembler(func(f Frame) error {
		out = append(out, f)
		return nil
	})
	return a, &out
}

func TestAssemblerWholeStream(t *testing.T) {
	codec := NewCodec()
	stream, frames := sampleStream(t, codec)

	a, out := collect(codec)
	n, err := a.Write(stream)
	require.NoError(t, err)
	assert.Equal(t, len(stream), n)
	assert.Equal(t, frames, *out)
	assert.Equal(t, 0, a.Buffered())
}

func TestAssemblerFragmentationInvariance(t *testing.T) {
	codec := NewCodec()
	stream, frames := sampleStream(t, codec)

	for _, chunk := range []int{1, 2, 3, 7, 13, 64, 1000} {
		a, out := collect(codec)
		for off := 0; off < len(stream); off += chunk {
			end := off + chunk
			if end > len(stream) {
				end = len(stream)
			}
			_, err := a.Write(stream[off:end])
			require.NoError(t, err, "chunk size %d", chunk)
		}
		assert.Equal(t, frames, *out, "chunk size %d", chunk)
	}
}

func TestAssemblerDoesNotRetainInput(t *testing.T) {
	codec := NewCodec()
	frame, err := codec.Marshal(&BodyFrame{Channel: 1, Body: []byte("hello")})
	require.NoError(t, err)

	a, out := collect(codec)
	_, err = a.Write(frame)
	require.NoError(t, err)

	for i := range frame {
		frame[i] = 0
	}
	require.Len(t, *out, 1)
	assert.Equal(t, []byte("hello"), (*out)[0].(*BodyFrame).Body)
}

func TestAssemblerPartialFrameIsBuffered(t *testing.T) {
	codec := NewCodec()
	frame, err := codec.Marshal(&MethodFrame{Channel: 1, Method: &BasicAckMethod{DeliveryTag: 9}})
	require.NoError(t, err)

	a, out := collect(codec)
	_, err = a.Write(frame[:10])
	require.NoError(t, err)
	assert.Empty(t, *out)
	assert.Equal(t, 3, a.Buffered())

	_, err = a.Write(frame[10:])
	require.NoError(t, err)
	require.Len(t, *out, 1)
}

func TestAssemblerBadFrameEnd(t *testing.T) {
	codec := NewCodec()
	frame, err := codec.Marshal(&MethodFrame{Channel: 1, Method: &BasicAckMethod{DeliveryTag: 1}})
	require.NoError(t, err)
	frame[len(frame)-1] = 0x00

	a, out := collect(codec)
	_, err = a.Write(frame)
	require.Error(t, err)
	assert.True(t, amqperrors.IsDecodeError(err))
	assert.Equal(t, amqperrors.FrameError, amqperrors.GetErrorCode(err))
	assert.Empty(t, *out)

	// sticky: the stream is desynchronized
	_, err2 := a.Write([]byte{FrameHeartbeat, 0, 0, 0, 0, 0, 0, FrameEnd})
	assert.Equal(t, err, err2)
	assert.Equal(t, err, a.Err())
}

func TestAssemblerUnknownFrameType(t *testing.T) {
	a, _ := collect(NewCodec())
	_, err := a.Write([]byte{4, 0, 0})
	require.Error(t, err)
	assert.True(t, amqperrors.IsDecodeError(err))
}

func TestAssemblerUnknownMethod(t *testing.T) {
	a, _ := collect(NewCodec())
	_, err := a.Write([]byte{FrameMethod, 0, 1, 0, 0, 0, 4, 0, 99, 0, 1, FrameEnd})
	require.Error(t, err)
	assert.Equal(t, amqperrors.CommandInvalid, amqperrors.GetErrorCode(err))
}

func TestAssemblerHeartbeatWithPayload(t *testing.T) {
	a, _ := collect(NewCodec())
	_, err := a.Write([]byte{FrameHeartbeat, 0, 0, 0, 0, 0, 1, 0, FrameEnd})
	assert.True(t, amqperrors.IsDecodeError(err))
}

func TestAssemblerMaxFrameSize(t *testing.T) {
	codec := NewCodec()
	frame, err := codec.Marshal(&BodyFrame{Channel: 1, Body: make([]byte, 100)})
	require.NoError(t, err)

	a, _ := collect(codec)
	a.SetMaxFrameSize(64)
	_, err = a.Write(frame)
	assert.True(t, amqperrors.IsDecodeError(err))
}

func TestAssemblerEmitError(t *testing.T) {
	codec := NewCodec()
	stream, _ := sampleStream(t, codec)
	stop := errors.New("stop")

	calls := 0
	a := codec.NewAssembler(func(Frame) error {
		calls++
		return stop
	})
	_, err := a.Write(stream)
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}
