// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret provides the backing memory for sensitive data:
// regions that are zeroed before they are released, and allocators that
// hand them out.
//
// [Buffer] allocates memory outside the Go heap via mmap(MAP_ANONYMOUS),
// locks it into physical RAM via mlock (preventing swap), and marks it
// excluded from core dumps via madvise(MADV_DONTDUMP). On Close, the
// memory is zeroed, unlocked, and unmapped. Because the memory lives
// outside the Go heap, the garbage collector cannot copy or relocate
// it.
//
// Allocators:
//
//   - [Locked] -- every region is a [Buffer]
//   - [Heap] -- ordinary Go slices, wiped on Close
//   - [PreferLocked] -- Locked, falling back to Heap (with a warning)
//     when the process has exhausted RLIMIT_MEMLOCK
//
// [Zero] and [Scramble] overwrite arbitrary slices with zeroes or
// cryptographically random bytes. Both are thin wrappers over memguard
// so that the compiler cannot elide the writes.
//
// Depends on golang.org/x/sys/unix and github.com/awnumar/memguard.
// Imported by lib/obfuscated for its mask, data, and view regions.
package secret
