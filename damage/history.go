// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package damage

// History records the damage of recent frames, most recent last.
type History struct {
	entries []Region
	max     int
	frame   uint64
}

// NewHistory returns a history that keeps at most depth frames. A depth
// below one is treated as one.
func NewHistory(depth int) *History {
	return &History{max: max(depth, 1)}
}

// Add records the damage of the frame just rendered, dropping the oldest
// frame once the history is full.
func (h *History) Add(r Region) {
	h.frame++
	h.entries = append(h.entries, r)
	if n := len(h.entries) - h.max; n > 0 {
		clear(h.entries[:n])
		h.entries = h.entries[n:]
	}
}

// Accumulate returns the union of the last age recorded regions. An age of
// zero or below, or one beyond the recorded history, returns full.
func (h *History) Accumulate(age int, full Region) Region {
	if age <= 0 || age > len(h.entries) {
		return full
	}
	var out Region
	for _, r := range h.entries[len(h.entries)-age:] {
		out = out.Union(r)
	}
	return out
}

// Len returns the number of recorded frames.
func (h *History) Len() int { return len(h.entries) }

// Frame returns the index of the last recorded frame, 0 if none.
func (h *History) Frame() uint64 { return h.frame }

// Depth returns the maximum number of frames kept.
func (h *History) Depth() int { return h.max }

// Reset forgets all recorded damage.
func (h *History) Reset() {
	h.entries = nil
}
