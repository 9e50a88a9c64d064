package pool

import (
	"sync"
)

// BufferPool implements a pool of byte slices for efficient memory reuse
type BufferPool struct {
	pool sync.Pool
	size int
}

// NewBufferPool creates a new buffer pool with buffers of the specified capacity
func NewBufferPool(size int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				buffer := make([]byte, 0, size)
				return &buffer
			},
		},
		size: size,
	}
}

// Get retrieves an empty buffer from the pool or creates a new one if none are available
func (bp *BufferPool) Get() *[]byte {
	return bp.pool.Get().(*[]byte)
}

// Put returns a buffer to the pool for reuse. Buffers that grew far beyond
// the configured size are dropped so one huge input does not pin memory.
func (bp *BufferPool) Put(buffer *[]byte) {
	if cap(*buffer) > 16*bp.size {
		return
	}
	*buffer = (*buffer)[:0]
	bp.pool.Put(buffer)
}

// CounterPool hands out zeroed int slices of a fixed length, one slot per corpus item.
type CounterPool struct {
	pool sync.Pool
	size int
}

// NewCounterPool creates a pool of counter slices of length size
func NewCounterPool(size int) *CounterPool {
	return &CounterPool{
		pool: sync.Pool{
			New: func() interface{} {
				counts := make([]int, size)
				return &counts
			},
		},
		size: size,
	}
}

// Size returns the length of every slice handed out by the pool
func (cp *CounterPool) Size() int {
	return cp.size
}

// Get retrieves a zeroed counter slice
func (cp *CounterPool) Get() *[]int {
	return cp.pool.Get().(*[]int)
}

// Put zeroes the touched slots and returns the slice to the pool.
// Callers must list every slot they incremented.
func (cp *CounterPool) Put(counts *[]int, touched []int) {
	c := *counts
	for _, i := range touched {
		c[i] = 0
	}
	cp.pool.Put(counts)
}
