// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package record_test

import (
	"bytes"
	"testing"

	"github.com/bitmark-inc/notarysync/record"
)

type varintItem struct {
	value  uint64
	buffer []byte
}

var varintTests = []varintItem{
	{0x00, []byte{0x00}},
	{0x01, []byte{0x01}},
	{0x7f, []byte{0x7f}},
	{0x80, []byte{0x80, 0x01}},
	{0x3fff, []byte{0xff, 0x7f}},
	{0x4000, []byte{0x80, 0x80, 0x01}},
	{0x00ffffffffffffff, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f}},
	{0x0100000000000000, []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x01}},
	{0xffffffffffffffff, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	{0x8000000000000000, []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80}},
}

func TestToVarint64(t *testing.T) {
	for i, item := range varintTests {
		result := record.ToVarint64(item.value)
		if !bytes.Equal(result, item.buffer) {
			t.Errorf("%d: value: 0x%x  expected: %x  actual: %x", i, item.value, item.buffer, result)
		}
	}
}

func TestFromVarint64(t *testing.T) {
	for i, item := range varintTests {
		value, count := record.FromVarint64(item.buffer)
		if count != len(item.buffer) {
			t.Errorf("%d: count expected: %d  actual: %d", i, len(item.buffer), count)
		}
		if value != item.value {
			t.Errorf("%d: value expected: 0x%x  actual: 0x%x", i, item.value, value)
		}
	}
}

func TestFromVarint64Truncated(t *testing.T) {
	truncated := [][]byte{
		{},
		{0x80},
		{0xff, 0xff},
		{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80},
	}
	for i, buffer := range truncated {
		value, count := record.FromVarint64(buffer)
		if 0 != count || 0 != value {
			t.Errorf("%d: truncated buffer: %x  decoded as: 0x%x/%d", i, buffer, value, count)
		}
	}
}
