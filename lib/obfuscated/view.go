// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package obfuscated

import (
	"errors"
	"fmt"
	"io"

	"github.com/bureau-foundation/securestring/lib/secret"
)

// View is a temporary plaintext copy of all or part of a String. A
// String has at most one outstanding View; further checkouts fail with
// ErrViewOutstanding until it is closed.
//
// The plaintext lives in a region from the String's allocator and is
// zeroed when the View is closed. A mutable View's edits become the
// String's new content on Close.
type View struct {
	owner   *String
	region  secret.Region
	data    []byte
	mutable bool
	closed  bool
}

// View checks out a read-only plaintext copy of the whole content.
// Edits to its bytes are discarded on Close.
func (s *String) View() (*View, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.checkoutAllowed(); err != nil {
		return nil, err
	}
	return s.checkout(0, s.loadLength(), false)
}

// MutableView checks out a plaintext copy of the whole content whose
// edits replace the content on Close. Its slice has exactly Len bytes
// and no spare capacity: appending to it yields a different array whose
// contents are not re-absorbed. Use Truncate to shorten the content.
func (s *String) MutableView() (*View, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.checkoutAllowed(); err != nil {
		return nil, err
	}
	return s.checkout(0, s.loadLength(), true)
}

// NextLine checks out a read-only copy of the next line, starting at
// the line cursor. A line ends at "\n", "\r", or "\r\n"; the terminator
// is consumed but not included. A final line without a terminator is
// returned as is. Once the cursor reaches the end of the content,
// NextLine returns io.EOF, so an empty line and the end of the content
// are distinguishable.
//
// Only the returned line is copied out. Assign, Append, and
// ResetLineCursor move the cursor back to the start.
func (s *String) NextLine() (*View, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.checkoutAllowed(); err != nil {
		return nil, err
	}

	start, length := s.loadCursor(), s.loadLength()
	if start >= length {
		return nil, io.EOF
	}

	end, next := length, length
	for index := start; index < length; index++ {
		value := s.decode(index)
		if value == '\n' {
			end, next = index, index+1
			break
		}
		if value == '\r' {
			end, next = index, index+1
			if next < length && s.decode(next) == '\n' {
				next++
			}
			break
		}
	}

	view, err := s.checkout(start, end, false)
	if err != nil {
		return nil, err
	}
	s.storeCursor(next)
	return view, nil
}

// ResetLineCursor makes the next NextLine start from the beginning.
func (s *String) ResetLineCursor() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.storeCursor(0)
	return nil
}

// Finish releases the outstanding view, if any, exactly as View.Close
// would. It is a no-op when nothing is checked out.
func (s *String) Finish() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.finishView()
}

// Use checks out a read-only view, passes its bytes to fn, and releases
// the view on every path out of fn, including a panic. fn must not
// retain the slice.
func (s *String) Use(fn func(plaintext []byte) error) (err error) {
	view, err := s.View()
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, view.Close())
	}()
	return fn(view.data)
}

// Edit checks out a mutable view, passes it to fn, and re-absorbs the
// edits on every path out of fn, including when fn returns an error.
func (s *String) Edit(fn func(view *View) error) (err error) {
	view, err := s.MutableView()
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, view.Close())
	}()
	return fn(view)
}

func (s *String) checkoutAllowed() error {
	if s.closed {
		return ErrClosed
	}
	if s.view != nil {
		s.options.Logger.Debug("checkout refused, a view is already outstanding")
		return ErrViewOutstanding
	}
	return nil
}

// checkout decodes [start, end) into a new view region.
func (s *String) checkout(start, end uint32, mutable bool) (*View, error) {
	length := int(end - start)

	// Regions cannot be empty; an empty view still owns one byte.
	region, err := s.options.Allocator.Allocate(max(length, 1))
	if err != nil {
		return nil, fmt.Errorf("obfuscated: allocating view: %w", err)
	}

	data := region.Bytes()[:length:length]
	for index := range data {
		data[index] = s.decode(start + uint32(index))
	}

	s.view = &View{
		owner:   s,
		region:  region,
		data:    data,
		mutable: mutable,
	}
	return s.view, nil
}

// finishView re-absorbs a mutable view (unless the String is closing),
// then zeroes and releases the view's region.
func (s *String) finishView() error {
	view := s.view
	if view == nil {
		return nil
	}
	s.view = nil

	var absorbError error
	if view.mutable && !s.closed {
		absorbError = s.assign(view.data)
	}

	secret.Zero(view.region.Bytes())
	releaseError := view.region.Close()
	view.region = nil
	view.data = nil
	view.closed = true

	return errors.Join(absorbError, releaseError)
}

// Bytes returns the plaintext. The slice is only valid until Close and
// must not be retained. Panics if the view has been closed.
func (v *View) Bytes() []byte {
	v.owner.lock.Lock()
	defer v.owner.lock.Unlock()

	if v.closed {
		panic("obfuscated: read from closed view")
	}
	return v.data
}

// String returns the plaintext as a Go string. The string is a heap
// copy that cannot be wiped, so this should only be used at API
// boundaries that require string arguments. Prefer Bytes.
//
// Panics if the view has been closed.
func (v *View) String() string {
	return string(v.Bytes())
}

// Len returns the number of plaintext bytes in the view.
func (v *View) Len() int {
	v.owner.lock.Lock()
	defer v.owner.lock.Unlock()

	return len(v.data)
}

// Mutable reports whether Close re-absorbs the view's edits.
func (v *View) Mutable() bool {
	return v.mutable
}

// Truncate shortens a mutable view to length bytes; the dropped bytes
// are zeroed immediately. The view can never grow.
func (v *View) Truncate(length int) error {
	v.owner.lock.Lock()
	defer v.owner.lock.Unlock()

	if v.closed {
		return ErrViewClosed
	}
	if !v.mutable {
		return ErrViewReadOnly
	}
	if length < 0 || length > len(v.data) {
		return ErrViewBounds
	}
	secret.Zero(v.data[length:])
	v.data = v.data[:length:length]
	return nil
}

// Close releases the view: a mutable view's content replaces the
// String's content, then the plaintext is zeroed. Close is idempotent,
// and a view already released by its String's Close is left alone.
func (v *View) Close() error {
	v.owner.lock.Lock()
	defer v.owner.lock.Unlock()

	if v.closed || v.owner.view != v {
		return nil
	}
	return v.owner.finishView()
}
