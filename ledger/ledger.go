// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger - transaction number bookkeeping
//
// A transaction number moves through:
//
//	tentative ──confirm──▶ issued+available ──consume──▶ issued ──consume──▶ gone
//	                              ▲                        │
//	                              └──────── recover ───────┘
//
// invariants maintained by every mutator:
//
//	available ⊆ issued
//	tentative ∩ issued = ∅
//
// The ledger is plain data, it performs no I/O and takes no locks;
// the owning context serialises access.
package ledger

import (
	"sort"

	"github.com/bitmark-inc/notarysync/fault"
)

type numberSet map[uint64]struct{}

// Ledger - issued, available and tentative numbers plus the request counter
type Ledger struct {
	issued    numberSet
	available numberSet
	tentative numberSet
	highest   uint64
	request   uint64
}

// New - empty ledger
func New() *Ledger {
	return &Ledger{
		issued:    make(numberSet),
		available: make(numberSet),
		tentative: make(numberSet),
	}
}

// Restore - rebuild a ledger from persisted state
//
// the state is checked, a ledger that violates an invariant is never
// returned
func Restore(issued []uint64, available []uint64, tentative []uint64, highest uint64, request uint64) (*Ledger, error) {
	l := New()
	for _, n := range issued {
		l.issued[n] = struct{}{}
	}
	for _, n := range available {
		l.available[n] = struct{}{}
	}
	for _, n := range tentative {
		l.tentative[n] = struct{}{}
	}
	l.highest = highest
	l.request = request

	if err := l.Check(); nil != err {
		return nil, err
	}
	return l, nil
}

// Clone - independent deep copy
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		issued:    make(numberSet, len(l.issued)),
		available: make(numberSet, len(l.available)),
		tentative: make(numberSet, len(l.tentative)),
		highest:   l.highest,
		request:   l.request,
	}
	for n := range l.issued {
		c.issued[n] = struct{}{}
	}
	for n := range l.available {
		c.available[n] = struct{}{}
	}
	for n := range l.tentative {
		c.tentative[n] = struct{}{}
	}
	return c
}

// Check - verify all invariants
func (l *Ledger) Check() error {
	for n := range l.available {
		if _, ok := l.issued[n]; !ok {
			return fault.ErrAvailableNotIssued
		}
	}
	for n := range l.tentative {
		if _, ok := l.issued[n]; ok {
			return fault.ErrTentativeIssued
		}
	}
	return nil
}

// Issue - record a number as issued and available
//
// returns false if the number is zero, still tentative, or is not
// present in both sets afterwards
func (l *Ledger) Issue(n uint64) bool {
	if 0 == n {
		return false
	}
	if _, ok := l.tentative[n]; ok {
		return false
	}
	l.issued[n] = struct{}{}
	l.available[n] = struct{}{}

	_, isIssued := l.issued[n]
	_, isAvailable := l.available[n]
	return isIssued && isAvailable
}

// ConsumeAvailable - reserve a number for use, it remains issued
func (l *Ledger) ConsumeAvailable(n uint64) bool {
	if _, ok := l.available[n]; !ok {
		return false
	}
	delete(l.available, n)
	return true
}

// ConsumeIssued - the number is closed and will never be valid again
//
// a number cannot be used while still available so it is removed from
// both sets
func (l *Ledger) ConsumeIssued(n uint64) bool {
	if _, ok := l.issued[n]; !ok {
		return false
	}
	delete(l.issued, n)
	delete(l.available, n)
	return true
}

// RecoverAvailable - undo a reservation that the notary never saw
//
// only a number that is still issued can become available again
func (l *Ledger) RecoverAvailable(n uint64) bool {
	if _, ok := l.issued[n]; !ok {
		return false
	}
	l.available[n] = struct{}{}
	return true
}

// AddTentative - a number has been offered but is not yet confirmed
func (l *Ledger) AddTentative(n uint64) bool {
	if 0 == n {
		return false
	}
	if _, ok := l.issued[n]; ok {
		return false
	}
	if _, ok := l.tentative[n]; ok {
		return false
	}
	l.tentative[n] = struct{}{}
	return true
}

// RemoveTentative - drop an offered number
func (l *Ledger) RemoveTentative(n uint64) bool {
	if _, ok := l.tentative[n]; !ok {
		return false
	}
	delete(l.tentative, n)
	return true
}

// ConfirmTentative - promote a tentative number to issued+available
func (l *Ledger) ConfirmTentative(n uint64) bool {
	if !l.RemoveTentative(n) {
		return false
	}
	return l.Issue(n)
}

// UpdateHighest - partition offered numbers against the watermark
//
// numbers above the current highest are good and raise the
// watermark, the rest are stale
func (l *Ledger) UpdateHighest(candidates []uint64) ([]uint64, []uint64) {
	good, bad, highest := UpdateHighest(candidates, l.highest)
	l.highest = highest
	return good, bad
}

// UpdateHighest - partition candidates against a ceiling
//
// returns the good numbers (above limit), the bad numbers (at or
// below limit) and the new ceiling, all in ascending order with
// repeated candidates listed once
func UpdateHighest(candidates []uint64, limit uint64) ([]uint64, []uint64, uint64) {
	good := make([]uint64, 0, len(candidates))
	bad := make([]uint64, 0)
	highest := limit
	ordered := sorted(candidates)
	for i, n := range ordered {
		if i > 0 && n == ordered[i-1] {
			continue
		}
		if n > limit {
			good = append(good, n)
			if n > highest {
				highest = n
			}
		} else {
			bad = append(bad, n)
		}
	}
	return good, bad, highest
}

// NextAvailable - lowest available number
func (l *Ledger) NextAvailable() (uint64, bool) {
	if 0 == len(l.available) {
		return 0, false
	}
	lowest := uint64(0)
	for n := range l.available {
		if 0 == lowest || n < lowest {
			lowest = n
		}
	}
	return lowest, true
}

// IncrementRequest - bump and return the request number
func (l *Ledger) IncrementRequest() uint64 {
	l.request += 1
	return l.request
}

// Request - current request number
func (l *Ledger) Request() uint64 {
	return l.request
}

// SetRequest - take a request number supplied by the notary
//
// the number never decreases
func (l *Ledger) SetRequest(n uint64) {
	if n > l.request {
		l.request = n
	}
}

// ResetRequest - administrative reset, the only way down
func (l *Ledger) ResetRequest() {
	l.request = 0
}

// Highest - the watermark
func (l *Ledger) Highest() uint64 {
	return l.highest
}

// VerifyIssued - check membership
func (l *Ledger) VerifyIssued(n uint64) bool {
	_, ok := l.issued[n]
	return ok
}

// VerifyAvailable - check membership
func (l *Ledger) VerifyAvailable(n uint64) bool {
	_, ok := l.available[n]
	return ok
}

// VerifyTentative - check membership
func (l *Ledger) VerifyTentative(n uint64) bool {
	_, ok := l.tentative[n]
	return ok
}

// Issued - ascending copy
func (l *Ledger) Issued() []uint64 {
	return l.issued.list()
}

// Available - ascending copy
func (l *Ledger) Available() []uint64 {
	return l.available.list()
}

// Tentative - ascending copy
func (l *Ledger) Tentative() []uint64 {
	return l.tentative.list()
}

func (s numberSet) list() []uint64 {
	result := make([]uint64, 0, len(s))
	for n := range s {
		result = append(result, n)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

func sorted(numbers []uint64) []uint64 {
	result := make([]uint64, len(numbers))
	copy(result, numbers)
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
