// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"github.com/gogpu/scanout/buffer"
)

// slot is one entry of the ring. It owns an allocation and takes it back
// when the buffer handed out for it is released.
type slot struct {
	index int
	alloc buffer.Allocation

	// buf is the buffer currently handed out, nil while the slot is free.
	buf *buffer.Buffer

	// frame is the index of the last frame rendered into the slot, 0 if
	// the content is undefined.
	frame uint64

	// orphaned is set when the ring was torn down while buf was in flight.
	orphaned bool
}

// Recycle implements buffer.Recycler.
func (sl *slot) Recycle(b *buffer.Buffer) {
	if b.Allocation() != sl.alloc {
		// Not ours; nothing can take it back.
		b.Allocation().Destroy()
		return
	}
	if sl.buf == b {
		sl.buf = nil
	}
	if sl.orphaned {
		sl.alloc.Destroy()
		sl.alloc = nil
	}
}

func (sl *slot) free() bool {
	return sl.buf == nil && sl.alloc != nil
}

// ring is the set of slots sharing one size and format.
type ring struct {
	slots []*slot
}

// pick returns the free slot rendered most recently, so the repaint region
// stays small, or nil if every slot is in flight.
func (r *ring) pick() *slot {
	var best *slot
	for _, sl := range r.slots {
		if !sl.free() {
			continue
		}
		if best == nil || sl.frame > best.frame {
			best = sl
		}
	}
	return best
}

// inFlight returns the number of slots whose buffer is still referenced.
func (r *ring) inFlight() int {
	n := 0
	for _, sl := range r.slots {
		if sl.buf != nil {
			n++
		}
	}
	return n
}

// teardown destroys free allocations and orphans the rest.
func (r *ring) teardown() {
	for _, sl := range r.slots {
		if sl.buf != nil {
			sl.orphaned = true
			continue
		}
		if sl.alloc != nil {
			sl.alloc.Destroy()
			sl.alloc = nil
		}
	}
	r.slots = nil
}
