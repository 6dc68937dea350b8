// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireZero] fails the test if a buffer that should have been wiped
// still holds a non-zero byte, reporting the first offending index.
// [RequirePanics] runs a function that is expected to panic (use of a
// closed String or View) and fails the test if it returns normally.
//
// [RequireClosed] encapsulates the timeout safety valve pattern (select
// with time.After fallback) for tests that wait on goroutines. It is the
// only place in the test suite where a real wall-clock timeout is used.
//
// [UniqueSecret] generates distinct byte strings for tests that need many
// different contents.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no dependencies inside this module.
package testutil
