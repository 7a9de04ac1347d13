// Package bufpool recycles the chunk buffers used to move file content
// between disk and socket.
//
// Every connection reads and writes in units of the configured transfer
// unit, so buffers are pooled per exact size rather than by size class.
// Buffers above MaxPooledSize are allocated directly and never retained.
//
// Usage:
//
//	pool := bufpool.For(transferUnit)
//	buf := pool.Get()
//	defer pool.Put(buf)
package bufpool

import (
	"sync"
)

// MaxPooledSize is the largest buffer size kept in a pool (1MB).
const MaxPooledSize = 1 << 20

// Pool hands out byte slices of one fixed size. Safe for concurrent use.
type Pool struct {
	size int
	pool sync.Pool
}

// New creates a pool of buffers of the given size. Sizes below 1 are
// rounded up to 1.
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{size: size}
	p.pool.New = func() any {
		buf := make([]byte, p.size)
		return &buf
	}
	return p
}

// Size returns the length of the buffers handed out by Get.
func (p *Pool) Size() int {
	return p.size
}

// Get returns a buffer of exactly Size bytes. Its contents are unspecified.
func (p *Pool) Get() []byte {
	if p.size > MaxPooledSize {
		return make([]byte, p.size)
	}
	buf := *p.pool.Get().(*[]byte)
	return buf[:p.size]
}

// Put returns buf to the pool. Buffers that did not come from this pool
// (wrong capacity) or exceed MaxPooledSize are dropped.
func (p *Pool) Put(buf []byte) {
	if buf == nil || cap(buf) != p.size || p.size > MaxPooledSize {
		return
	}
	full := buf[:cap(buf)]
	p.pool.Put(&full)
}

// pools holds the shared pool for each transfer unit in use.
var pools sync.Map // int -> *Pool

// For returns the process-wide pool for buffers of size bytes, creating it
// on first use.
func For(size int) *Pool {
	if p, ok := pools.Load(size); ok {
		return p.(*Pool)
	}
	p, _ := pools.LoadOrStore(size, New(size))
	return p.(*Pool)
}
