// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package obfuscated

import (
	"crypto/subtle"

	"github.com/bureau-foundation/securestring/lib/checksum"
)

// Equal reports whether s and other have the same length and the same
// CRC-32 checksum, without decoding either. Different checksums prove
// the contents differ; equal checksums only make it likely that they
// match, since CRC-32 collisions are easy to construct. Use Equal for
// deduplication and fast screening, and EqualConstantTime wherever the
// answer gates access to anything.
//
// Panics if either String has been closed.
func (s *String) Equal(other *String) bool {
	if other == nil {
		return false
	}
	otherLength, otherChecksum := other.fingerprint()

	s.lock.Lock()
	defer s.lock.Unlock()

	s.mustBeOpen()
	return s.loadLength() == otherLength && s.checksum == otherChecksum
}

// EqualBytes is Equal against a plaintext slice: equal lengths and an
// equal CRC-32. The same collision caveat applies.
func (s *String) EqualBytes(plaintext []byte) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.mustBeOpen()
	if uint64(len(plaintext)) != uint64(s.loadLength()) {
		return false
	}
	return checksum.Of(plaintext) == s.checksum
}

// EqualConstantTime compares every decoded byte of s and other. For
// equal lengths the running time does not depend on the contents.
// Lengths are compared first and are not hidden.
//
// Panics if either String has been closed.
func (s *String) EqualConstantTime(other *String) bool {
	if other == nil {
		return false
	}
	unlock := lockPair(s, other)
	defer unlock()

	s.mustBeOpen()
	other.mustBeOpen()

	length := s.loadLength()
	if length != other.loadLength() {
		return false
	}
	var difference byte
	for index := range length {
		difference |= s.decode(index) ^ other.decode(index)
	}
	return subtle.ConstantTimeByteEq(difference, 0) == 1
}

// EqualBytesConstantTime is EqualConstantTime against a plaintext slice.
func (s *String) EqualBytesConstantTime(plaintext []byte) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.mustBeOpen()
	length := s.loadLength()
	if uint64(len(plaintext)) != uint64(length) {
		return false
	}
	var difference byte
	for index := range length {
		difference |= s.decode(index) ^ plaintext[index]
	}
	return subtle.ConstantTimeByteEq(difference, 0) == 1
}

func (s *String) fingerprint() (length, crc uint32) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.mustBeOpen()
	return s.loadLength(), s.checksum
}
