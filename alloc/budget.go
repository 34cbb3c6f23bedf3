// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package alloc

import (
	"errors"
	"fmt"
	"sync"
)

// ErrBudgetExceeded is returned when an allocation would exceed the budget.
var ErrBudgetExceeded = errors.New("alloc: memory budget exceeded")

// Default memory limits.
const (
	// DefaultBudgetMB is the default memory budget (256 MB).
	DefaultBudgetMB = 256

	// MinBudgetMB is the minimum allowed budget (1 MB).
	MinBudgetMB = 1
)

// BudgetStats contains memory usage statistics.
type BudgetStats struct {
	// TotalBytes is the budget in bytes.
	TotalBytes uint64

	// UsedBytes is the currently reserved memory in bytes.
	UsedBytes uint64

	// PeakBytes is the highest UsedBytes seen.
	PeakBytes uint64

	// Allocations is the number of live reservations.
	Allocations int

	// Rejections is the number of reservations refused.
	Rejections uint64
}

// Utilization returns the fraction of the budget in use.
func (s BudgetStats) Utilization() float64 {
	if s.TotalBytes == 0 {
		return 0
	}
	return float64(s.UsedBytes) / float64(s.TotalBytes)
}

// String returns a human-readable string of memory stats.
func (s BudgetStats) String() string {
	return fmt.Sprintf("Memory[%.1f%% used, %d/%d KB, %d buffers, %d rejected]",
		s.Utilization()*100,
		s.UsedBytes/1024,
		s.TotalBytes/1024,
		s.Allocations,
		s.Rejections)
}

// Budget tracks allocated bytes against a limit.
//
// Budget is safe for concurrent use.
type Budget struct {
	mu sync.Mutex

	totalBytes  uint64
	usedBytes   uint64
	peakBytes   uint64
	allocations int
	rejections  uint64
}

// NewBudget creates a budget of the given size in bytes. Sizes below
// MinBudgetMB select DefaultBudgetMB.
func NewBudget(bytes uint64) *Budget {
	if bytes < MinBudgetMB<<20 {
		bytes = DefaultBudgetMB << 20
	}
	return &Budget{totalBytes: bytes}
}

// Reserve charges n bytes. It fails with ErrBudgetExceeded if the budget
// cannot hold them.
func (b *Budget) Reserve(n uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n > b.totalBytes-b.usedBytes {
		b.rejections++
		return fmt.Errorf("%w: need %d KB, %d of %d KB free",
			ErrBudgetExceeded, n/1024, (b.totalBytes-b.usedBytes)/1024, b.totalBytes/1024)
	}
	b.usedBytes += n
	b.allocations++
	b.peakBytes = max(b.peakBytes, b.usedBytes)
	return nil
}

// Release returns n bytes reserved earlier.
func (b *Budget) Release(n uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n > b.usedBytes {
		n = b.usedBytes
	}
	b.usedBytes -= n
	if b.allocations > 0 {
		b.allocations--
	}
}

// Stats returns a snapshot of the budget.
func (b *Budget) Stats() BudgetStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return BudgetStats{
		TotalBytes:  b.totalBytes,
		UsedBytes:   b.usedBytes,
		PeakBytes:   b.peakBytes,
		Allocations: b.allocations,
		Rejections:  b.rejections,
	}
}
