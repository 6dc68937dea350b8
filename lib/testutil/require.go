// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"time"
)

// TB is the subset of testing.TB the helpers need.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}

// RequireClosed waits for ch to be closed (or receive a value) within
// timeout, or fails the test.
//
//	testutil.RequireClosed(t, done, 5*time.Second, "writers finished")
func RequireClosed(t TB, ch <-chan struct{}, timeout time.Duration, msgAndArgs ...any) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(timeout): //nolint:realclock test hang prevention
		t.Fatalf("timed out after %v waiting for channel close: %s", timeout, formatMessage(msgAndArgs))
	}
}

// RequireZero fails the test unless every byte of data is zero.
//
//	testutil.RequireZero(t, region.snapshot, "mask region %d", index)
func RequireZero(t TB, data []byte, msgAndArgs ...any) {
	t.Helper()
	for index, value := range data {
		if value != 0 {
			t.Fatalf("byte %d of %d is 0x%02x, want 0: %s", index, len(data), value, formatMessage(msgAndArgs))
		}
	}
}

// RequirePanics fails the test unless fn panics.
//
//	testutil.RequirePanics(t, func() { s.Len() }, "Len after Close")
func RequirePanics(t TB, fn func(), msgAndArgs ...any) {
	t.Helper()
	panicked := func() (panicked bool) {
		defer func() {
			if recover() != nil {
				panicked = true
			}
		}()
		fn()
		return false
	}()
	if !panicked {
		t.Fatalf("expected panic: %s", formatMessage(msgAndArgs))
	}
}

// formatMessage formats optional message arguments into a string.
// Accepts either a single string or a format string followed by args.
func formatMessage(msgAndArgs []any) string {
	if len(msgAndArgs) == 0 {
		return "(no message)"
	}
	if len(msgAndArgs) == 1 {
		if s, ok := msgAndArgs[0].(string); ok {
			return s
		}
		return fmt.Sprintf("%v", msgAndArgs[0])
	}
	if format, ok := msgAndArgs[0].(string); ok {
		return fmt.Sprintf(format, msgAndArgs[1:]...)
	}
	return fmt.Sprintf("%v", msgAndArgs)
}
