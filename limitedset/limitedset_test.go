// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package limitedset_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/notarysync/limitedset"
)

// inserting 150 distinct numbers in any order must leave the 100 largest
func TestBoundedToMostRecent(t *testing.T) {
	const total = 150
	const limit = 100

	numbers := rand.New(rand.NewSource(1)).Perm(total)

	s := limitedset.New(limit)
	for _, n := range numbers {
		s.Add(uint64(n + 1))
	}

	assert.Equal(t, limit, s.Count(), "wrong count")
	for n := uint64(1); n <= total; n += 1 {
		expected := n > total-limit
		if s.Exists(n) != expected {
			t.Errorf("number: %d  expected present: %v", n, expected)
		}
	}

	items := s.Items()
	assert.Equal(t, uint64(total-limit+1), items[0])
	assert.Equal(t, uint64(total), items[len(items)-1])
}

func TestAddition(t *testing.T) {
	s := limitedset.New(3)

	assert.True(t, s.Add(10))
	assert.True(t, s.Add(5))
	assert.False(t, s.Add(10), "duplicate must not be added")
	assert.True(t, s.Add(7))
	assert.Equal(t, []uint64{5, 7, 10}, s.Items())

	assert.False(t, s.Add(1), "smaller than a full set must be dropped")
	assert.Equal(t, []uint64{5, 7, 10}, s.Items())

	assert.True(t, s.Add(8))
	assert.Equal(t, []uint64{7, 8, 10}, s.Items())
}

func TestRemove(t *testing.T) {
	s := limitedset.New(5)
	for _, n := range []uint64{1, 2, 3, 4} {
		s.Add(n)
	}
	s.Remove(2, 4, 99)
	assert.Equal(t, []uint64{1, 3}, s.Items())
	assert.False(t, s.Exists(2))

	c := s.Clone()
	s.Clear()
	assert.Equal(t, 0, s.Count())
	assert.Equal(t, []uint64{1, 3}, c.Items(), "clone must be independent")
}
