// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package record

import (
	"github.com/bitmark-inc/notarysync/fault"
)

// Unpacker - sequential field reader for a packed record
type Unpacker struct {
	buffer []byte
	n      int
}

// NewUnpacker - read fields from the start of buffer
func NewUnpacker(buffer []byte) *Unpacker {
	return &Unpacker{
		buffer: buffer,
		n:      0,
	}
}

// Offset - number of bytes consumed so far
func (u *Unpacker) Offset() int {
	return u.n
}

// Remaining - number of bytes not yet consumed
func (u *Unpacker) Remaining() int {
	return len(u.buffer) - u.n
}

// Tag - read the record tag and check it is the one expected
func (u *Unpacker) Tag(expected TagType) error {
	tag, err := u.Uint64()
	if nil != err {
		return err
	}
	if TagType(tag) != expected {
		return fault.ErrUnexpectedRecordTag
	}
	return nil
}

// Uint64 - read a Varint64
func (u *Unpacker) Uint64() (uint64, error) {
	value, count := FromVarint64(u.buffer[u.n:])
	if 0 == count {
		return 0, fault.ErrTruncatedRecord
	}
	u.n += count
	return value, nil
}

// Bool - read a single 0/1 byte
func (u *Unpacker) Bool() (bool, error) {
	if u.n >= len(u.buffer) {
		return false, fault.ErrTruncatedRecord
	}
	b := u.buffer[u.n]
	u.n += 1
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fault.ErrTruncatedRecord
	}
}

// Bytes - read a length prefixed byte field
//
// the result is a copy so it remains valid after the buffer is reused
func (u *Unpacker) Bytes() ([]byte, error) {
	length, err := u.Uint64()
	if nil != err {
		return nil, err
	}
	if length > maxFieldLength {
		return nil, fault.ErrPayloadTooLong
	}
	end := u.n + int(length)
	if end > len(u.buffer) {
		return nil, fault.ErrTruncatedRecord
	}
	data := make([]byte, length)
	copy(data, u.buffer[u.n:end])
	u.n = end
	return data, nil
}

// String - read a length prefixed string field
func (u *Unpacker) String() (string, error) {
	data, err := u.Bytes()
	if nil != err {
		return "", err
	}
	return string(data), nil
}

// Set - read a counted ascending set of Varint64
func (u *Unpacker) Set() ([]uint64, error) {
	count, err := u.Uint64()
	if nil != err {
		return nil, err
	}
	if count > maxSetCount {
		return nil, fault.ErrInvalidCount
	}
	numbers := make([]uint64, 0, count)
	for i := uint64(0); i < count; i += 1 {
		n, err := u.Uint64()
		if nil != err {
			return nil, err
		}
		if 0 != i && n <= numbers[i-1] {
			return nil, fault.ErrUnsortedSet
		}
		numbers = append(numbers, n)
	}
	return numbers, nil
}

// Strings - read a counted list of strings
func (u *Unpacker) Strings() ([]string, error) {
	count, err := u.Uint64()
	if nil != err {
		return nil, err
	}
	if count > maxSetCount {
		return nil, fault.ErrInvalidCount
	}
	items := make([]string, 0, count)
	for i := uint64(0); i < count; i += 1 {
		s, err := u.String()
		if nil != err {
			return nil, err
		}
		items = append(items, s)
	}
	return items, nil
}
