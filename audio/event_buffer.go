package audio

import (
	"sync/atomic"

	"go-stepseq/sequencer"
)

// request is a kick waiting to be placed in an output buffer
type request struct {
	start float64 // clock seconds
	env   sequencer.Envelope
}

// requestBuffer is a lock-free spsc queue: the scheduler goroutine pushes,
// the audio callback drains.
type requestBuffer struct {
	items       []request
	read, write atomic.Uint32
}

func newRequestBuffer(size int) *requestBuffer {
	if size <= 0 || size&(size-1) != 0 {
		panic("request buffer size must be a power of 2")
	}
	return &requestBuffer{items: make([]request, size)}
}

// push never blocks the scheduler; a full buffer drops the request
func (b *requestBuffer) push(r request) bool {
	write := b.write.Load()
	if write-b.read.Load() == uint32(len(b.items)) {
		return false
	}
	b.items[write%uint32(len(b.items))] = r
	b.write.Store(write + 1)
	return true
}

func (b *requestBuffer) drain(f func(request)) {
	read := b.read.Load()
	write := b.write.Load()
	for read != write {
		f(b.items[read%uint32(len(b.items))])
		read++
	}
	b.read.Store(read)
}
