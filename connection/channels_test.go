package connection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	amqperrors "github.com/maxpert/amqp-go-client/errors"
)

func TestChannelAllocator(t *testing.T) {
	a := newChannelAllocator(3)

	for want := uint16(1); want <= 3; want++ {
		id, err := a.next()
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
	_, err := a.next()
	assert.ErrorIs(t, err, amqperrors.ErrNoFreeChannels)

	a.release(2)
	id, err := a.next()
	require.NoError(t, err)
	assert.Equal(t, uint16(2), id)
	assert.Equal(t, 3, a.inUse())
}

func TestChannelAllocatorDoesNotReuseImmediately(t *testing.T) {
	a := newChannelAllocator(10)
	first, _ := a.next()
	a.release(first)

	second, err := a.next()
	require.NoError(t, err)
	assert.Equal(t, uint16(2), second)
}

func TestChannelAllocatorReserve(t *testing.T) {
	a := newChannelAllocator(5)
	assert.False(t, a.reserve(0))
	assert.False(t, a.reserve(6))
	assert.True(t, a.reserve(1))
	assert.False(t, a.reserve(1))

	id, err := a.next()
	require.NoError(t, err)
	assert.Equal(t, uint16(2), id)
}

func TestChannelAllocatorUnlimited(t *testing.T) {
	a := newChannelAllocator(0)
	assert.Equal(t, uint32(MaxChannelMax), a.max)
	assert.True(t, a.reserve(MaxChannelMax))
}
