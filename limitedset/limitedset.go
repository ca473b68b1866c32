// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package limitedset - a bounded set of request numbers
//
// once the set is full, adding a number evicts the numerically
// smallest so the set always holds the most recent acknowledgements
//
// not safe for concurrent use, the owning context serialises access
package limitedset

import (
	"sort"
)

// LimitedSet - ascending, bounded set of numbers
type LimitedSet struct {
	size  int
	items []uint64 // ascending
}

// New - create a new limited set that holds up to 'n' items
func New(n int) *LimitedSet {
	if n <= 0 {
		n = 1
	}
	return &LimitedSet{
		size:  n,
		items: make([]uint64, 0, n+1),
	}
}

// Add - add an item to the set
//
// returns false if the item was not retained: either already present
// or smaller than every item of a full set
func (ls *LimitedSet) Add(item uint64) bool {
	i, found := ls.search(item)
	if found {
		return false
	}
	if len(ls.items) == ls.size && 0 == i {
		return false
	}

	ls.items = append(ls.items, 0)
	copy(ls.items[i+1:], ls.items[i:])
	ls.items[i] = item

	if len(ls.items) > ls.size {
		ls.items = ls.items[1:] // evict the smallest
	}
	return true
}

// Remove - delete items, absent items are ignored
func (ls *LimitedSet) Remove(items ...uint64) {
	for _, item := range items {
		i, found := ls.search(item)
		if found {
			ls.items = append(ls.items[:i], ls.items[i+1:]...)
		}
	}
}

// Exists - check to see if item is in the set
func (ls *LimitedSet) Exists(item uint64) bool {
	_, found := ls.search(item)
	return found
}

// Count - number of items held
func (ls *LimitedSet) Count() int {
	return len(ls.items)
}

// Limit - maximum number of items
func (ls *LimitedSet) Limit() int {
	return ls.size
}

// Items - copy of the contents in ascending order
func (ls *LimitedSet) Items() []uint64 {
	result := make([]uint64, len(ls.items))
	copy(result, ls.items)
	return result
}

// Clear - remove everything
func (ls *LimitedSet) Clear() {
	ls.items = ls.items[:0]
}

// Clone - independent copy
func (ls *LimitedSet) Clone() *LimitedSet {
	c := New(ls.size)
	c.items = append(c.items, ls.items...)
	return c
}

func (ls *LimitedSet) search(item uint64) (int, bool) {
	i := sort.Search(len(ls.items), func(j int) bool { return ls.items[j] >= item })
	return i, i < len(ls.items) && ls.items[i] == item
}
