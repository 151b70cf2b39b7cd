package protocol

import "sync"

// Buffer pooling for frame encoding and blocking frame reads.
//
// Encoded frames are built in tiered pools sized for the common cases: small
// control methods, bodies up to 64KB and max-sized body fragments. Oversized
// buffers are left to the GC so the pools never pin large allocations.

// frameHeaderPool is a pool for frame header bytes (7 bytes)
var frameHeaderPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, FrameHeaderSize)
		return &b
	},
}

// getFrameHeader gets a 7-byte header buffer from the pool
func getFrameHeader() *[]byte {
	return frameHeaderPool.Get().(*[]byte)
}

// putFrameHeader returns a header buffer to the pool
func putFrameHeader(b *[]byte) {
	frameHeaderPool.Put(b)
}

// frameSerializationPool is for method/header frame buffers (~1KB typical)
var frameSerializationPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, 1024)
		return &b
	},
}

// GetFrameSerializationBuffer gets a buffer for method and header frames
func GetFrameSerializationBuffer() *[]byte {
	b := frameSerializationPool.Get().(*[]byte)
	*b = (*b)[:0]
	return b
}

// PutFrameSerializationBuffer returns a frame serialization buffer to the pool
func PutFrameSerializationBuffer(b *[]byte) {
	if cap(*b) > 64*1024 {
		return
	}
	frameSerializationPool.Put(b)
}

// mediumBodyPool is for small message bodies (~64KB)
var mediumBodyPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, 65536)
		return &b
	},
}

// GetMediumBodyBuffer gets a medium-sized buffer for body frames
func GetMediumBodyBuffer() *[]byte {
	b := mediumBodyPool.Get().(*[]byte)
	*b = (*b)[:0]
	return b
}

// PutMediumBodyBuffer returns a medium body buffer to the pool
func PutMediumBodyBuffer(b *[]byte) {
	if cap(*b) > 64*1024 {
		return
	}
	mediumBodyPool.Put(b)
}

// largeFramePool is for frame-max sized body fragments (~128KB)
var largeFramePool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, 131072)
		return &b
	},
}

// GetLargeFrameBuffer gets a large buffer for max-sized body frames
func GetLargeFrameBuffer() *[]byte {
	b := largeFramePool.Get().(*[]byte)
	*b = (*b)[:0]
	return b
}

// PutLargeFrameBuffer returns a large frame buffer to the pool.
// Accepts up to 131KB, slightly above the general limit, for frame-max chunks.
func PutLargeFrameBuffer(b *[]byte) {
	if cap(*b) > 131*1024 {
		return
	}
	largeFramePool.Put(b)
}

// GetBufferForSize returns an appropriately-sized buffer from the tiered pools
func GetBufferForSize(size int) *[]byte {
	switch {
	case size <= 1024:
		return GetFrameSerializationBuffer()
	case size <= 65536:
		return GetMediumBodyBuffer()
	default:
		return GetLargeFrameBuffer()
	}
}

// PutBufferForSize returns a buffer to the appropriate tiered pool
func PutBufferForSize(b *[]byte) {
	capacity := cap(*b)
	switch {
	case capacity <= 1024:
		PutFrameSerializationBuffer(b)
	case capacity <= 65536:
		PutMediumBodyBuffer(b)
	case capacity <= 131*1024:
		PutLargeFrameBuffer(b)
	}
}
