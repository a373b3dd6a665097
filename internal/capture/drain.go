package capture

// Drain pulls coalesced audio blocks out of a Buffer. Each Next blocks until
// at least one item is queued, then greedily takes everything else already
// available and concatenates it into a single block, so send overhead is
// amortized without adding latency. The drain ends after the pull that
// observes the sentinel; the sentinel itself is never part of a block. Not
// restartable.
type Drain struct {
	buf  *Buffer
	done bool
}

// Drain returns a one-shot drain over the buffer's contents.
func (b *Buffer) Drain() *Drain {
	return &Drain{buf: b}
}

// Next returns the next coalesced block. The final block (possibly empty) is
// returned with ok=true exactly once; afterwards Next returns ok=false.
func (d *Drain) Next() ([]byte, bool) {
	if d.done {
		return nil, false
	}

	it := d.buf.pop()
	var block []byte
	for {
		if it.sentinel {
			// Sentinel is always last, nothing can follow it.
			d.done = true
			break
		}
		block = append(block, it.data...)
		var ok bool
		it, ok = d.buf.tryPop()
		if !ok {
			break
		}
	}
	return block, true
}
