// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package obfuscated

import (
	"github.com/bureau-foundation/securestring/lib/checksum"
	"github.com/bureau-foundation/securestring/lib/secret"
)

// Owned is a plaintext buffer whose ownership passes to the String
// method it is given to. That method wipes the buffer before returning,
// whatever the outcome; the caller must not use the slice afterwards.
//
// Methods taking a plain []byte only borrow it and never modify it.
type Owned struct {
	data []byte
}

// Own marks data as transferred to the next String method it is passed to.
func Own(data []byte) Owned {
	return Owned{data: data}
}

func (o Owned) wipe() {
	secret.Zero(o.data)
}

// Assign replaces the content with a copy of source.
func (s *String) Assign(source []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return ErrClosed
	}
	return s.assign(source)
}

// AssignOwned replaces the content with source and wipes source.
func (s *String) AssignOwned(source Owned) error {
	defer source.wipe()
	return s.Assign(source.data)
}

// AssignFrom replaces the content with the content of other. The bytes
// are decoded from other and re-encoded under this String's mask one at
// a time; other's checksum is carried over.
func (s *String) AssignFrom(other *String) error {
	unlock := lockPair(s, other)
	defer unlock()

	if s.closed || other.closed {
		return ErrClosed
	}
	if other == s {
		s.storeCursor(0)
		return nil
	}

	length := other.loadLength()
	if err := s.grow(length); err != nil {
		return err
	}
	s.clearFrom(length)
	for index := range length {
		s.data[index] = s.mask[index] ^ other.decode(index)
	}
	s.storeLength(length)
	s.storeCursor(0)
	s.checksum = other.checksum
	return nil
}

// Append adds a copy of source to the end of the content.
func (s *String) Append(source []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return ErrClosed
	}
	return s.append(source)
}

// AppendOwned adds source to the end of the content and wipes source.
func (s *String) AppendOwned(source Owned) error {
	defer source.wipe()
	return s.Append(source.data)
}

// AppendFrom adds the content of other to the end of this String's
// content. other may be s itself.
func (s *String) AppendFrom(other *String) error {
	unlock := lockPair(s, other)
	defer unlock()

	if s.closed || other.closed {
		return ErrClosed
	}

	start := s.loadLength()
	length := other.loadLength()
	if uint64(start)+uint64(length) > MaxLength {
		return ErrTooLong
	}
	total := start + length
	if err := s.grow(total); err != nil {
		return err
	}

	// Read other only after growing: when other is s, growth has
	// re-encoded the source bytes under the new mask.
	crc := s.checksum
	for index := range length {
		value := other.decode(index)
		s.data[start+index] = s.mask[start+index] ^ value
		crc = checksum.UpdateByte(crc, value)
	}
	s.checksum = crc
	s.storeLength(total)
	s.storeCursor(0)
	return nil
}

// Write appends p and implements io.Writer. p is borrowed.
func (s *String) Write(p []byte) (int, error) {
	if err := s.Append(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *String) assign(source []byte) error {
	if len(source) > MaxLength {
		return ErrTooLong
	}
	length := uint32(len(source))
	if err := s.grow(length); err != nil {
		return err
	}
	s.clearFrom(length)
	for index, value := range source {
		s.data[index] = s.mask[index] ^ value
	}
	s.storeLength(length)
	s.storeCursor(0)
	s.checksum = checksum.Of(source)
	return nil
}

func (s *String) append(source []byte) error {
	start := s.loadLength()
	if uint64(start)+uint64(len(source)) > MaxLength {
		return ErrTooLong
	}
	total := start + uint32(len(source))
	if err := s.grow(total); err != nil {
		return err
	}
	for index, value := range source {
		position := start + uint32(index)
		s.data[position] = s.mask[position] ^ value
	}
	s.checksum = checksum.Update(s.checksum, source)
	s.storeLength(total)
	s.storeCursor(0)
	return nil
}

// clearFrom resets every byte from position up to the current length so
// it decodes to zero, leaving the tail indistinguishable from unused
// capacity.
func (s *String) clearFrom(position uint32) {
	for index := position; index < s.loadLength(); index++ {
		s.data[index] = s.mask[index]
	}
}
