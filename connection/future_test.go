package connection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	amqperrors "github.com/maxpert/amqp-go-client/errors"
)

func TestFutureResolve(t *testing.T) {
	f := NewFuture[int]()
	go func() {
		time.Sleep(5 * time.Millisecond)
		f.Resolve(42)
	}()

	v, err := f.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	assert.False(t, f.Resolve(7))
	assert.False(t, f.Fail(errors.New("late")))
	v, _ = f.Wait(context.Background())
	assert.Equal(t, 42, v)
}

func TestFutureFail(t *testing.T) {
	f := NewFuture[string]()
	boom := errors.New("boom")
	assert.True(t, f.Fail(boom))

	_, err := f.Wait(context.Background())
	assert.Equal(t, boom, err)
	select {
	case <-f.Done():
	default:
		t.Fatal("done channel should be closed")
	}
}

func TestFutureTimeout(t *testing.T) {
	f := NewFuture[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Wait(ctx)
	assert.ErrorIs(t, err, amqperrors.ErrTimeout)
}

func TestFutureCancelled(t *testing.T) {
	f := NewFuture[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFutureCompletedWinsOverCancelledContext(t *testing.T) {
	f := NewFuture[int]()
	f.Resolve(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v, err := f.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}
