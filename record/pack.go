// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package record

import (
	"sort"
)

// TagType - type code for records
type TagType uint64

// enumerate the possible record types
// this is encoded a Varint64 at start of "Packed"
const (
	// null marks beginning of list - not used as a record type
	NullTag = TagType(iota)

	// valid record types
	SnapshotTag = TagType(iota) // signed context snapshot
	MessageTag  = TagType(iota) // client request to a notary
	ReplyTag    = TagType(iota) // notary reply to a request

	// this item must be last
	InvalidTag = TagType(iota)
)

// limits
const (
	maxSignatureLength = 1024
	maxFieldLength     = 1 << 20
	maxSetCount        = 1 << 16
)

// Packed - packed records are just a byte slice
type Packed []byte

// NewPacked - start a record with its tag
func NewPacked(tag TagType) Packed {
	return ToVarint64(uint64(tag))
}

// Type - the tag of a packed record
func (record Packed) Type() TagType {
	tag, n := FromVarint64(record)
	if 0 == n || tag >= uint64(InvalidTag) {
		return NullTag
	}
	return TagType(tag)
}

// AppendUint64 - append a Varint64 to buffer
func (record Packed) AppendUint64(value uint64) Packed {
	return append(record, ToVarint64(value)...)
}

// AppendBool - a single 0/1 byte
func (record Packed) AppendBool(flag bool) Packed {
	if flag {
		return append(record, 1)
	}
	return append(record, 0)
}

// AppendBytes - append bytes to a buffer
//
// the field is prefixed by Varint64(length)
func (record Packed) AppendBytes(data []byte) Packed {
	record = append(record, ToVarint64(uint64(len(data)))...)
	return append(record, data...)
}

// AppendString - append a single string field to a buffer
//
// the field is prefixed by Varint64(length)
func (record Packed) AppendString(s string) Packed {
	record = append(record, ToVarint64(uint64(len(s)))...)
	return append(record, s...)
}

// AppendSet - append a set of numbers in ascending order
//
// duplicates are packed once: equal sets always pack equally
func (record Packed) AppendSet(numbers []uint64) Packed {
	sorted := make([]uint64, len(numbers))
	copy(sorted, numbers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	unique := sorted[:0]
	for i, n := range sorted {
		if 0 == i || n != sorted[i-1] {
			unique = append(unique, n)
		}
	}

	record = append(record, ToVarint64(uint64(len(unique)))...)
	for _, n := range unique {
		record = append(record, ToVarint64(n)...)
	}
	return record
}

// AppendStrings - a counted list of strings, order preserved
func (record Packed) AppendStrings(items []string) Packed {
	record = append(record, ToVarint64(uint64(len(items)))...)
	for _, s := range items {
		record = record.AppendString(s)
	}
	return record
}
