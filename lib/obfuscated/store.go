// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package obfuscated

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/bureau-foundation/securestring/lib/secret"
)

// The length, capacity, and line cursor are stored XORed with the first
// four mask bytes. This keeps them from appearing as plain integers next
// to the buffers; it is obfuscation only, since the key sits in the same
// allocation it protects. The key changes on every reallocation, so the
// fields are re-masked whenever the mask is replaced.

func (s *String) metadataKey() uint32 {
	return binary.LittleEndian.Uint32(s.mask)
}

func (s *String) loadLength() uint32   { return s.length ^ s.metadataKey() }
func (s *String) loadCapacity() uint32 { return s.capacity ^ s.metadataKey() }
func (s *String) loadCursor() uint32   { return s.cursor ^ s.metadataKey() }

func (s *String) storeLength(value uint32)   { s.length = value ^ s.metadataKey() }
func (s *String) storeCapacity(value uint32) { s.capacity = value ^ s.metadataKey() }
func (s *String) storeCursor(value uint32)   { s.cursor = value ^ s.metadataKey() }

// decode returns the plaintext byte at index. The caller guarantees
// index <= capacity.
func (s *String) decode(index uint32) byte {
	return s.mask[index] ^ s.data[index]
}

// Reserve ensures the String can hold size bytes without reallocating.
// When the capacity already suffices nothing changes, including the
// mask.
func (s *String) Reserve(size int) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return ErrClosed
	}
	if size > MaxLength {
		return ErrTooLong
	}

	target := max(uint32(max(size, 0)), s.loadLength(), minCapacity)
	if target <= s.loadCapacity() {
		return nil
	}
	return s.reallocate(target)
}

// Compact shrinks the capacity to the current length (or the minimum
// capacity) under a freshly generated mask.
func (s *String) Compact() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return ErrClosed
	}
	return s.reallocate(max(s.loadLength(), minCapacity))
}

// Remask re-encodes the content under a freshly generated mask without
// changing the capacity. Calling it periodically limits how long any
// one mask stays in memory.
func (s *String) Remask() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return ErrClosed
	}
	return s.reallocate(s.loadCapacity())
}

// grow makes room for total bytes, allocating twice that when the
// current capacity is too small so that a run of appends reallocates
// only logarithmically often.
func (s *String) grow(total uint32) error {
	if total <= s.loadCapacity() {
		return nil
	}
	return s.reallocate(2 * total)
}

// reallocate moves the content into new mask and data regions of
// capacity+1 bytes under a fresh mask. Each old byte pair is zeroed as
// soon as its plaintext has been re-encoded, and the old regions are
// released only once fully zeroed. On error the String is unchanged.
func (s *String) reallocate(capacity uint32) error {
	size := int(capacity) + 1

	maskRegion, err := s.options.Allocator.Allocate(size)
	if err != nil {
		return fmt.Errorf("obfuscated: allocating mask: %w", err)
	}
	dataRegion, err := s.options.Allocator.Allocate(size)
	if err != nil {
		maskRegion.Close()
		return fmt.Errorf("obfuscated: allocating data: %w", err)
	}

	mask := maskRegion.Bytes()[:size]
	data := dataRegion.Bytes()[:size]
	if err := s.fillMask(mask); err != nil {
		dataRegion.Close()
		maskRegion.Close()
		return err
	}
	copy(data, mask)

	var length, cursor uint32
	if s.mask != nil {
		length, cursor = s.loadLength(), s.loadCursor()
		for index := range s.mask {
			if index < size {
				data[index] = mask[index] ^ (s.mask[index] ^ s.data[index])
			}
			s.data[index] = 0
			s.mask[index] = 0
		}
	}

	oldMaskRegion, oldDataRegion := s.maskRegion, s.dataRegion
	s.maskRegion, s.dataRegion = maskRegion, dataRegion
	s.mask, s.data = mask, data

	s.storeLength(length)
	s.storeCapacity(capacity)
	s.storeCursor(cursor)

	if oldMaskRegion == nil {
		return nil
	}
	if err := errors.Join(oldDataRegion.Close(), oldMaskRegion.Close()); err != nil {
		return fmt.Errorf("obfuscated: releasing old buffers: %w", err)
	}
	return nil
}

func (s *String) fillMask(mask []byte) error {
	if s.options.Random == nil {
		secret.Scramble(mask)
		return nil
	}
	if _, err := io.ReadFull(s.options.Random, mask); err != nil {
		return fmt.Errorf("obfuscated: generating mask: %w", err)
	}
	return nil
}
