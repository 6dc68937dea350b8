// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"sync/atomic"
)

var uniqueCounter atomic.Uint64

// UniqueSecret returns a fresh byte slice of the form "prefix-N" where N
// is a monotonically increasing integer. The slice is newly allocated on
// every call, so tests may hand it to methods that wipe their input.
//
//	first := testutil.UniqueSecret("token")  // "token-1"
//	second := testutil.UniqueSecret("token") // "token-2"
func UniqueSecret(prefix string) []byte {
	return fmt.Appendf(nil, "%s-%d", prefix, uniqueCounter.Add(1))
}
