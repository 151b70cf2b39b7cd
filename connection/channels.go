package connection

import (
	"sync"

	"github.com/RoaringBitmap/roaring"

	amqperrors "github.com/maxpert/amqp-go-client/errors"
)

// MaxChannelMax is used when the peers negotiate channel-max 0.
const MaxChannelMax = 65535

// channelAllocator hands out channel numbers 1..max. Channel 0 belongs to
// the connection.
type channelAllocator struct {
	mu   sync.Mutex
	used *roaring.Bitmap
	max  uint32
	last uint32
}

func newChannelAllocator(max uint16) *channelAllocator {
	limit := uint32(max)
	if limit == 0 {
		limit = MaxChannelMax
	}
	return &channelAllocator{used: roaring.New(), max: limit}
}

// next returns the lowest free id after the last one handed out, wrapping
// around once.
func (a *channelAllocator) next() (uint16, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.used.GetCardinality() >= uint64(a.max) {
		return 0, amqperrors.ErrNoFreeChannels
	}
	id := a.last
	for i := uint32(0); i < a.max; i++ {
		id++
		if id > a.max {
			id = 1
		}
		if !a.used.Contains(id) {
			a.used.Add(id)
			a.last = id
			return uint16(id), nil
		}
	}
	return 0, amqperrors.ErrNoFreeChannels
}

// reserve claims a specific id.
func (a *channelAllocator) reserve(id uint16) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id == 0 || uint32(id) > a.max {
		return false
	}
	return a.used.CheckedAdd(uint32(id))
}

func (a *channelAllocator) release(id uint16) {
	a.mu.Lock()
	a.used.Remove(uint32(id))
	a.mu.Unlock()
}

func (a *channelAllocator) inUse() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return int(a.used.GetCardinality())
}
