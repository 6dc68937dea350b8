// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package obfuscated

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"testing/quick"
	"time"

	"github.com/bureau-foundation/securestring/lib/checksum"
	"github.com/bureau-foundation/securestring/lib/testutil"
)

func TestConcurrentAppend(t *testing.T) {
	const (
		writers = 8
		appends = 200
	)
	s := mustNew(t, "", Options{DefaultCapacity: 4})

	var group sync.WaitGroup
	for writer := range writers {
		group.Add(1)
		go func() {
			defer group.Done()
			value := []byte{'a' + byte(writer)}
			for range appends {
				if err := s.Append(value); err != nil {
					t.Errorf("Append failed: %v", err)
					return
				}
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		group.Wait()
		close(done)
	}()
	testutil.RequireClosed(t, done, 10*time.Second, "concurrent appends")

	if s.Len() != writers*appends {
		t.Fatalf("expected %d bytes, got %d", writers*appends, s.Len())
	}
	counts := make(map[byte]int)
	if err := s.Use(func(plaintext []byte) error {
		for _, value := range plaintext {
			counts[value]++
		}
		if checksum.Of(plaintext) != s.checksum {
			t.Error("checksum does not match the interleaved content")
		}
		return nil
	}); err != nil {
		t.Fatalf("Use failed: %v", err)
	}
	for writer := range writers {
		if counts['a'+byte(writer)] != appends {
			t.Errorf("writer %d: %d bytes present, want %d", writer, counts['a'+byte(writer)], appends)
		}
	}
}

func TestConcurrentCheckout(t *testing.T) {
	s := mustNew(t, "contended", Options{})

	var (
		group       sync.WaitGroup
		mu          sync.Mutex
		granted     int
		outstanding int
	)
	for range 16 {
		group.Add(1)
		go func() {
			defer group.Done()
			for range 100 {
				view, err := s.View()
				if errors.Is(err, ErrViewOutstanding) {
					continue
				}
				if err != nil {
					t.Errorf("View failed: %v", err)
					return
				}
				mu.Lock()
				granted++
				outstanding++
				if outstanding > 1 {
					t.Error("two views outstanding at once")
				}
				mu.Unlock()

				if view.String() != "contended" {
					t.Errorf("unexpected view content %q", view.String())
				}

				mu.Lock()
				outstanding--
				mu.Unlock()
				view.Close()
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		group.Wait()
		close(done)
	}()
	testutil.RequireClosed(t, done, 10*time.Second, "concurrent checkouts")

	if granted == 0 {
		t.Error("no checkout ever succeeded")
	}
}

func TestCrossStringOperations_NoDeadlock(t *testing.T) {
	a := mustNew(t, "alpha", Options{})
	b := mustNew(t, "bravo", Options{})

	var group sync.WaitGroup
	for range 4 {
		group.Add(1)
		go func() {
			defer group.Done()
			for range 200 {
				a.EqualConstantTime(b)
				a.AssignFrom(b)
			}
		}()
		group.Add(1)
		go func() {
			defer group.Done()
			for range 200 {
				b.EqualConstantTime(a)
				b.AssignFrom(a)
			}
		}()
		group.Add(1)
		go func() {
			defer group.Done()
			for range 200 {
				a.Equal(b)
				b.Equal(a)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		group.Wait()
		close(done)
	}()
	testutil.RequireClosed(t, done, 10*time.Second, "cross-string operations")
}

func TestDisableLocking(t *testing.T) {
	s := mustNew(t, "single goroutine", Options{DisableLocking: true})
	if _, ok := s.lock.(noLock); !ok {
		t.Fatalf("expected noLock, got %T", s.lock)
	}
	if err := s.Append([]byte(" only")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if got := plaintext(t, s); got != "single goroutine only" {
		t.Errorf("unexpected content %q", got)
	}
}

// operation is one step of a randomly generated mutation sequence.
type operation struct {
	Kind    uint8
	Payload []byte
}

func TestMutationSequence_MatchesModel(t *testing.T) {
	property := func(operations []operation) bool {
		s, err := New(Options{DefaultCapacity: 4, Random: &countingReader{}})
		if err != nil {
			return false
		}
		defer s.Close()

		var model []byte
		for _, op := range operations {
			switch op.Kind % 6 {
			case 0:
				err = s.Assign(op.Payload)
				model = append([]byte(nil), op.Payload...)
			case 1:
				err = s.Append(op.Payload)
				model = append(model, op.Payload...)
			case 2:
				err = s.AppendFrom(s)
				model = append(model, model...)
			case 3:
				err = s.Reserve(len(op.Payload) * 3)
			case 4:
				err = s.Compact()
			case 5:
				err = s.Remask()
			}
			if err != nil {
				t.Logf("operation %d failed: %v", op.Kind%6, err)
				return false
			}
			if len(model) > 1<<16 {
				break
			}
		}

		if s.Len() != len(model) || s.Cap() < s.Len() {
			return false
		}
		if s.Checksum() != checksum.Of(model) {
			return false
		}
		var content []byte
		if err := s.Use(func(plaintext []byte) error {
			content = append(content, plaintext...)
			return nil
		}); err != nil {
			return false
		}
		for index := s.Len(); index < s.Cap(); index++ {
			if s.mask[index]^s.data[index] != 0 {
				return false
			}
		}
		return bytes.Equal(content, model)
	}

	if err := quick.Check(property, &quick.Config{MaxCount: 200}); err != nil {
		t.Error(err)
	}
}
