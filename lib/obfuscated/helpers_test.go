// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package obfuscated

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/bureau-foundation/securestring/lib/secret"
)

// recordingAllocator wraps the heap allocator and keeps every region it
// hands out, so tests can check what state each region was in when it
// was released.
type recordingAllocator struct {
	mu      sync.Mutex
	regions []*recordingRegion

	// failAbove makes allocations larger than this many bytes fail.
	// Zero disables failures.
	failAbove int
}

var errAllocationRefused = errors.New("allocation refused")

func (a *recordingAllocator) Allocate(size int) (secret.Region, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.failAbove > 0 && size > a.failAbove {
		return nil, errAllocationRefused
	}
	inner, err := secret.Heap().Allocate(size)
	if err != nil {
		return nil, err
	}
	region := &recordingRegion{inner: inner, data: inner.Bytes()}
	a.regions = append(a.regions, region)
	return region, nil
}

func (a *recordingAllocator) released() []*recordingRegion {
	a.mu.Lock()
	defer a.mu.Unlock()

	var released []*recordingRegion
	for _, region := range a.regions {
		if region.closed {
			released = append(released, region)
		}
	}
	return released
}

func (a *recordingAllocator) live() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	count := 0
	for _, region := range a.regions {
		if !region.closed {
			count++
		}
	}
	return count
}

type recordingRegion struct {
	inner secret.Region
	data  []byte

	closed            bool
	zeroedBeforeClose bool
}

func (r *recordingRegion) Bytes() []byte {
	return r.inner.Bytes()
}

func (r *recordingRegion) Close() error {
	if !r.closed {
		r.closed = true
		r.zeroedBeforeClose = isZero(r.data)
	}
	return r.inner.Close()
}

func isZero(data []byte) bool {
	for _, value := range data {
		if value != 0 {
			return false
		}
	}
	return true
}

// constantReader yields the same byte forever, making every mask a run
// of that byte.
type constantReader byte

func (c constantReader) Read(p []byte) (int, error) {
	for index := range p {
		p[index] = byte(c)
	}
	return len(p), nil
}

// countingReader yields 1, 2, 3, ... (wrapping), so consecutive masks
// always differ.
type countingReader struct {
	mu   sync.Mutex
	next byte
}

func (c *countingReader) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for index := range p {
		c.next++
		p[index] = c.next
	}
	return len(p), nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy exhausted")
}

// mustNew creates a String from content or fails the test. The String
// is closed when the test ends.
func mustNew(t *testing.T, content string, options Options) *String {
	t.Helper()
	s, err := FromBytes([]byte(content), options)
	if err != nil {
		t.Fatalf("FromBytes(%q) failed: %v", content, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// plaintext decodes the whole content through a read-only view.
func plaintext(t *testing.T, s *String) string {
	t.Helper()
	view, err := s.View()
	if err != nil {
		t.Fatalf("View() failed: %v", err)
	}
	content := view.String()
	if err := view.Close(); err != nil {
		t.Fatalf("view Close() failed: %v", err)
	}
	return content
}

func snapshot(data []byte) []byte {
	return append([]byte(nil), data...)
}

func describe(s *String) string {
	return fmt.Sprintf("len=%d cap=%d", s.Len(), s.Cap())
}
