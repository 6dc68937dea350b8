// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import "github.com/awnumar/memguard"

// Zero overwrites data with zeroes.
func Zero(data []byte) {
	memguard.WipeBytes(data)
}

// Scramble overwrites data with cryptographically secure random bytes.
// Panics if the system random source fails.
func Scramble(data []byte) {
	memguard.ScrambleBytes(data)
}
