package connection

import (
	"bytes"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	amqperrors "github.com/maxpert/amqp-go-client/errors"
)

func TestFrameWriterOrdersWrites(t *testing.T) {
	var out bytes.Buffer
	fw := newFrameWriter(&out, 8, nil)
	go fw.run()
	defer fw.close()

	var want []byte
	for i := 0; i < 50; i++ {
		chunk := []byte{byte(i), byte(i + 1)}
		want = append(want, chunk...)
		require.NoError(t, fw.write(chunk))
	}
	require.NoError(t, fw.flush(time.Second))
	assert.Equal(t, want, out.Bytes())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestFrameWriterReportsFirstError(t *testing.T) {
	var calls atomic.Int32
	fw := newFrameWriter(failingWriter{}, 4, func(error) { calls.Add(1) })
	go fw.run()
	defer fw.close()

	require.NoError(t, fw.write([]byte("a")))
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	err := fw.write([]byte("b"))
	assert.ErrorIs(t, err, amqperrors.ErrConnectionClosed)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFrameWriterClosed(t *testing.T) {
	fw := newFrameWriter(&bytes.Buffer{}, 4, nil)
	go fw.run()
	fw.close()
	fw.close()

	assert.ErrorIs(t, fw.write([]byte("x")), amqperrors.ErrConnectionClosed)
}
