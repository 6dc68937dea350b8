// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package obfuscated provides [String], an in-memory container for
// sensitive text that never stores the plaintext at rest.
//
// A String keeps two equal-sized buffers: a mask of random bytes and
// the content XORed with that mask. Unused capacity decodes to zero, so
// it looks like the rest of the mask rather than a run of zero bytes.
// The length, capacity, and line cursor are masked too. None of this is
// encryption: anyone who can read the whole process memory can decode
// the content. It keeps secrets out of casual memory scans, core dumps,
// and swap, particularly when the buffers come from
// [secret.Locked] memory.
//
// # Storage and growth
//
// When the content outgrows the capacity, the String reallocates to
// twice the required length under a freshly generated mask, re-encoding
// byte by byte and zeroing each old byte as it goes. [String.Reserve],
// [String.Compact], and [String.Remask] control the capacity and the
// mask directly.
//
// # Ownership
//
// Methods taking a []byte borrow it. Methods taking an [Owned] (see
// [Own]) consume it and wipe it before returning.
//
// # Views
//
// Plaintext is only available through a [View]: [String.View],
// [String.MutableView], or [String.NextLine]. At most one view per
// String exists at a time; a second checkout returns
// [ErrViewOutstanding] immediately. Closing a mutable view makes its
// edits the new content. [String.Use] and [String.Edit] wrap the
// checkout in a function scope so the view is always released.
//
// # Equality
//
// [String.Equal] and [String.EqualBytes] compare lengths and CRC-32
// checksums. They are fast and never decode, but two different
// contents can share a checksum, so they are a screening test.
// [String.EqualConstantTime] and [String.EqualBytesConstantTime]
// compare every byte in time independent of the content and are the
// ones to use for authentication decisions.
//
// # Concurrency
//
// Every operation locks a per-instance mutex unless the String was
// created with Options.DisableLocking. Operations involving two
// Strings lock both in a fixed global order.
//
// Depends on lib/secret for memory, lib/checksum for CRC-32, and
// lib/config for [OptionsFromConfig].
package obfuscated
