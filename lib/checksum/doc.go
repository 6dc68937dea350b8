// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package checksum computes the CRC-32 (IEEE 802.3, reflected polynomial
// 0xedb88320) of plaintext, either over a whole buffer or one byte at a
// time.
//
// The per-byte form lets a caller fold bytes into a running checksum as
// it decodes them, without materializing the plaintext in a slice. The
// state between calls is the 32-bit checksum itself and nothing else.
//
// CRC-32 detects accidental differences. It is not collision resistant
// and must not be used to decide whether two secrets are equal in a
// security context.
package checksum
