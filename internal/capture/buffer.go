package capture

import "sync"

type item struct {
	data     []byte
	sentinel bool
}

// Buffer is an unbounded FIFO of audio chunks decoupling the capture cadence
// from the network-send cadence. It is the only channel of communication
// between the capture goroutine and the drain. The terminal sentinel is
// enqueued at most once and is always the last item.
type Buffer struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []item
	closed bool
}

func NewBuffer() *Buffer {
	b := &Buffer{}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Push appends one chunk. Pushes after the sentinel are dropped so the
// sentinel stays last.
func (b *Buffer) Push(chunk []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.items = append(b.items, item{data: chunk})
	b.cond.Signal()
}

// PushSentinel appends the terminal sentinel. Idempotent.
func (b *Buffer) PushSentinel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.items = append(b.items, item{sentinel: true})
	b.cond.Signal()
}

// pop blocks until an item is available, then removes and returns it.
func (b *Buffer) pop() item {
	b.mu.Lock()
	defer b.mu.Unlock()
	for len(b.items) == 0 {
		b.cond.Wait()
	}
	it := b.items[0]
	b.items = b.items[1:]
	return it
}

// tryPop removes and returns the head item without blocking.
func (b *Buffer) tryPop() (item, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) == 0 {
		return item{}, false
	}
	it := b.items[0]
	b.items = b.items[1:]
	return it, true
}

// Len reports the number of queued items, sentinel included.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
