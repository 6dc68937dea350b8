// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package obfuscated

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/bureau-foundation/securestring/lib/secret"
)

// MaxLength is the longest plaintext a String can hold. Growth doubles
// the requested length, and the doubled capacity plus the terminator
// slot must still fit the 32-bit metadata fields.
const MaxLength = math.MaxUint32/2 - 1

// minCapacity is the smallest capacity ever allocated. The metadata
// key is read from the first four mask bytes.
const minCapacity = 4

const redacted = "[REDACTED]"

var (
	// ErrClosed is returned by operations on a String after Close.
	ErrClosed = errors.New("obfuscated: string is closed")

	// ErrViewOutstanding is returned by a checkout while another view
	// of the same String has not been released.
	ErrViewOutstanding = errors.New("obfuscated: a plaintext view is already checked out")

	// ErrViewClosed is returned by operations on a released View.
	ErrViewClosed = errors.New("obfuscated: view is closed")

	// ErrViewReadOnly is returned when modifying a read-only View.
	ErrViewReadOnly = errors.New("obfuscated: view is read-only")

	// ErrViewBounds is returned when a View would have to grow.
	ErrViewBounds = errors.New("obfuscated: view length out of bounds")

	// ErrTooLong is returned when content or capacity would exceed
	// MaxLength.
	ErrTooLong = errors.New("obfuscated: string exceeds maximum length")
)

var instanceCounter atomic.Uint64

// String holds text XOR-masked with a buffer of random bytes. At rest
// neither the content nor its length appear in memory as plaintext.
//
// A String must be created with one of the constructors and released
// with Close. It must not be copied after creation.
type String struct {
	lock    sync.Locker
	id      uint64
	options Options

	maskRegion secret.Region
	dataRegion secret.Region

	// mask and data are capacity+1 bytes long; the last byte is the
	// terminator slot. data[i] ^ mask[i] is the plaintext byte at i,
	// and zero at and beyond the length.
	mask []byte
	data []byte

	// Masked with metadataKey; see store.go.
	length   uint32
	capacity uint32
	cursor   uint32

	// checksum is the CRC-32 of the plaintext, kept in the clear.
	checksum uint32

	view   *View
	closed bool
}

// New returns an empty String with Options.DefaultCapacity bytes
// pre-allocated.
func New(options Options) (*String, error) {
	options = options.withDefaults()
	return newString(options.DefaultCapacity, options)
}

// NewSize returns an empty String with room for size bytes.
func NewSize(size int, options Options) (*String, error) {
	if size < 0 {
		return nil, fmt.Errorf("obfuscated: size must not be negative, got %d", size)
	}
	return newString(size, options.withDefaults())
}

// FromBytes returns a String holding a copy of source. source is
// borrowed: it is neither modified nor retained.
func FromBytes(source []byte, options Options) (*String, error) {
	s, err := newString(len(source), options.withDefaults())
	if err != nil {
		return nil, err
	}
	if err := s.Assign(source); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// FromOwned returns a String holding the contents of source, which is
// wiped before FromOwned returns, whether or not it succeeds.
func FromOwned(source Owned, options Options) (*String, error) {
	defer source.wipe()
	return FromBytes(source.data, options)
}

func newString(capacity int, options Options) (*String, error) {
	if capacity > MaxLength {
		return nil, ErrTooLong
	}
	if capacity < minCapacity {
		capacity = minCapacity
	}

	s := &String{
		lock:    options.newLocker(),
		id:      instanceCounter.Add(1),
		options: options,
	}
	if err := s.reallocate(uint32(capacity)); err != nil {
		return nil, err
	}
	return s, nil
}

// Clone returns an independent String with the same content and
// options. The content is re-encoded under the clone's own mask; no
// memory is shared.
func (s *String) Clone() (*String, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	length := s.loadLength()
	clone, err := newString(int(length), s.options)
	if err != nil {
		return nil, err
	}
	for index := range length {
		clone.data[index] = clone.mask[index] ^ s.decode(index)
	}
	clone.storeLength(length)
	clone.checksum = s.checksum
	return clone, nil
}

// Len returns the length of the plaintext in bytes. Panics if the
// String has been closed.
func (s *String) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.mustBeOpen()
	return int(s.loadLength())
}

// Cap returns the number of bytes the String can hold without
// reallocating. Panics if the String has been closed.
func (s *String) Cap() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.mustBeOpen()
	return int(s.loadCapacity())
}

// At returns the plaintext byte at position, or 0 if position is out of
// range. Panics if the String has been closed.
func (s *String) At(position int) byte {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.mustBeOpen()
	if position < 0 || position >= int(s.loadLength()) {
		return 0
	}
	return s.decode(uint32(position))
}

// Checksum returns the CRC-32 of the plaintext. Panics if the String
// has been closed.
func (s *String) Checksum() uint32 {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.mustBeOpen()
	return s.checksum
}

// Closed reports whether Close has been called.
func (s *String) Closed() bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.closed
}

// Close destroys the String. An outstanding view is zeroed and released
// without re-absorbing its edits. Both buffers are then zeroed, the
// metadata cleared, and the memory released. Close is idempotent.
func (s *String) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if s.view != nil {
		s.options.Logger.Warn("closing string with an outstanding plaintext view",
			"mutable", s.view.mutable,
		)
		errs = append(errs, s.finishView())
	}

	secret.Zero(s.data)
	secret.Zero(s.mask)
	errs = append(errs, s.dataRegion.Close(), s.maskRegion.Close())

	s.mask, s.data = nil, nil
	s.maskRegion, s.dataRegion = nil, nil
	s.length, s.capacity, s.cursor, s.checksum = 0, 0, 0, 0

	return errors.Join(errs...)
}

// String returns a fixed placeholder so that formatting a String never
// prints its content. Use View to read the plaintext.
func (s *String) String() string {
	return redacted
}

// GoString implements fmt.GoStringer with the same placeholder as String.
func (s *String) GoString() string {
	return redacted
}

// LogValue implements slog.LogValuer. Only the length is exposed.
func (s *String) LogValue() slog.Value {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return slog.GroupValue(
			slog.String("value", redacted),
			slog.Bool("closed", true),
		)
	}
	return slog.GroupValue(
		slog.String("value", redacted),
		slog.Int("length", int(s.loadLength())),
	)
}

func (s *String) mustBeOpen() {
	if s.closed {
		panic("obfuscated: use of closed string")
	}
}

// lockPair locks a and b in a global order so that two goroutines
// combining the same pair in opposite directions cannot deadlock. The
// returned function unlocks both.
func lockPair(a, b *String) (unlock func()) {
	if a == b {
		a.lock.Lock()
		return a.lock.Unlock
	}
	first, second := a, b
	if second.id < first.id {
		first, second = second, first
	}
	first.lock.Lock()
	second.lock.Lock()
	return func() {
		second.lock.Unlock()
		first.lock.Unlock()
	}
}
