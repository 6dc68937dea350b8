// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package checksum

import "hash/crc32"

var table = crc32.IEEETable

// Of returns the checksum of data. Of(nil) is 0.
func Of(data []byte) uint32 {
	return crc32.Checksum(data, table)
}

// Update returns the checksum of the concatenation of the bytes summed
// into crc and data.
func Update(crc uint32, data []byte) uint32 {
	return crc32.Update(crc, table, data)
}

// UpdateByte folds a single byte into crc. UpdateByte(Of(p), b) equals
// Of(append(p, b)).
func UpdateByte(crc uint32, value byte) uint32 {
	crc = ^crc
	crc = table[byte(crc)^value] ^ (crc >> 8)
	return ^crc
}
