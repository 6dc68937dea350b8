// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"fmt"
	"log/slog"
)

// Region is a fixed-size block of memory handed out by an Allocator.
// Close zeroes the memory before releasing it and is idempotent. Bytes
// must not be called after Close.
type Region interface {
	Bytes() []byte
	Close() error
}

// Allocator hands out regions of exactly the requested size. The
// contents of a fresh region are unspecified; callers overwrite them.
type Allocator interface {
	Allocate(size int) (Region, error)
}

// AllocatorFunc adapts a function to the Allocator interface.
type AllocatorFunc func(size int) (Region, error)

// Allocate calls f(size).
func (f AllocatorFunc) Allocate(size int) (Region, error) {
	return f(size)
}

// Locked returns an allocator whose regions are mmap-backed [Buffer]
// values.
func Locked() Allocator {
	return AllocatorFunc(func(size int) (Region, error) {
		return New(size)
	})
}

// Heap returns an allocator whose regions are Go heap slices. The
// garbage collector may copy heap memory, so a stale copy of a region
// can outlive its Close; use Locked where that matters.
func Heap() Allocator {
	return AllocatorFunc(func(size int) (Region, error) {
		if size <= 0 {
			return nil, fmt.Errorf("secret: region size must be positive, got %d", size)
		}
		return &heapRegion{data: make([]byte, size)}, nil
	})
}

// PreferLocked returns an allocator that tries Locked first and falls
// back to Heap when locked memory is unavailable (typically because
// RLIMIT_MEMLOCK is exhausted). Each fallback is logged at Warn. A nil
// logger discards the warnings.
func PreferLocked(logger *slog.Logger) Allocator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	heap := Heap()
	return AllocatorFunc(func(size int) (Region, error) {
		region, err := New(size)
		if err == nil {
			return region, nil
		}
		logger.Warn("locked memory unavailable, falling back to heap",
			"size", size,
			"error", err,
		)
		return heap.Allocate(size)
	})
}

type heapRegion struct {
	data []byte
}

func (r *heapRegion) Bytes() []byte {
	if r.data == nil {
		panic("secret: read from closed region")
	}
	return r.data
}

func (r *heapRegion) Close() error {
	Zero(r.data)
	r.data = nil
	return nil
}
