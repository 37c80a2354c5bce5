package server

import "sync"

// bufferPool hands out fixed size receive buffers, one per connection.
type bufferPool struct {
	size int
	pool sync.Pool
}

func newBufferPool(size int) *bufferPool {
	bp := &bufferPool{size: size}
	bp.pool.New = func() interface{} {
		buf := make([]byte, size)
		return &buf
	}
	return bp
}

// Get returns a buffer of exactly the pool's size
func (bp *bufferPool) Get() []byte {
	buf := bp.pool.Get().(*[]byte)
	return (*buf)[:bp.size]
}

// Put returns a buffer to the pool. Buffers of another capacity are left
// to the GC.
func (bp *bufferPool) Put(buf []byte) {
	if cap(buf) != bp.size {
		return
	}
	clear(buf[:cap(buf)])
	full := buf[:bp.size]
	bp.pool.Put(&full)
}
