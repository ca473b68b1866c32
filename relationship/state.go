// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package relationship

import (
	"github.com/bitmark-inc/notarysync/fault"
	"github.com/bitmark-inc/notarysync/ledger"
	"github.com/bitmark-inc/notarysync/limitedset"
	"github.com/bitmark-inc/notarysync/record"
)

// MaxAcknowledgedNumbers - bound on remembered acknowledged requests
const MaxAcknowledgedNumbers = 100

// State - the mutable part of a context
//
// Update hands a private copy to its callback; the copy replaces the
// live state only if the callback succeeds and the result can be
// signed
type State struct {
	kind         Kind
	ledger       *ledger.Ledger
	acknowledged *limitedset.LimitedSet
	localHash    record.Identifier
	remoteHash   record.Identifier
	admin        Admin
}

func newState(kind Kind) *State {
	return &State{
		kind:         kind,
		ledger:       ledger.New(),
		acknowledged: limitedset.New(MaxAcknowledgedNumbers),
	}
}

func stateFromSnapshot(s *Snapshot) (*State, error) {
	l, err := s.Ledger()
	if nil != err {
		return nil, err
	}
	state := &State{
		kind:         s.Kind,
		ledger:       l,
		acknowledged: limitedset.New(MaxAcknowledgedNumbers),
		localHash:    s.LocalHash,
		remoteHash:   s.RemoteHash,
		admin:        s.Admin,
	}
	for _, r := range s.Acknowledged {
		state.acknowledged.Add(r)
	}
	return state, nil
}

func (s *State) clone() *State {
	return &State{
		kind:         s.kind,
		ledger:       s.ledger.Clone(),
		acknowledged: s.acknowledged.Clone(),
		localHash:    s.localHash,
		remoteHash:   s.remoteHash,
		admin:        s.admin,
	}
}

// IncrementRequest - next request number
func (s *State) IncrementRequest() uint64 {
	return s.ledger.IncrementRequest()
}

// Request - current request number
func (s *State) Request() uint64 {
	return s.ledger.Request()
}

// SetRequest - adopt a request number supplied by the notary
func (s *State) SetRequest(n uint64) {
	s.ledger.SetRequest(n)
}

// Issue - a confirmed number becomes issued and available
func (s *State) Issue(n uint64) error {
	if 0 == n {
		return fault.ErrZeroTransactionNumber
	}
	if s.ledger.VerifyTentative(n) {
		return fault.ErrTentativeIssued
	}
	if !s.ledger.Issue(n) {
		return fault.ErrIssueFailed
	}
	return nil
}

// ConsumeAvailable - reserve a number for an outgoing command
func (s *State) ConsumeAvailable(n uint64) error {
	if !s.ledger.ConsumeAvailable(n) {
		return fault.ErrNumberNotAvailable
	}
	return nil
}

// ConsumeIssued - the notary has closed the number
func (s *State) ConsumeIssued(n uint64) error {
	if !s.ledger.ConsumeIssued(n) {
		return fault.ErrNumberNotIssued
	}
	return nil
}

// RecoverAvailable - release a reservation the notary never used
func (s *State) RecoverAvailable(n uint64) error {
	if !s.ledger.RecoverAvailable(n) {
		return fault.ErrNumberNotIssued
	}
	return nil
}

// NextAvailable - reserve the lowest available number
func (s *State) NextAvailable() (uint64, error) {
	n, ok := s.ledger.NextAvailable()
	if !ok {
		return 0, fault.ErrNoAvailableNumbers
	}
	s.ledger.ConsumeAvailable(n)
	return n, nil
}

// AddTentative - an offered number awaiting confirmation
func (s *State) AddTentative(n uint64) error {
	if 0 == n {
		return fault.ErrZeroTransactionNumber
	}
	if s.ledger.VerifyIssued(n) {
		return fault.ErrNumberAlreadyIssued
	}
	// already tentative is not an error
	s.ledger.AddTentative(n)
	return nil
}

// RemoveTentative - a refused offer
func (s *State) RemoveTentative(n uint64) error {
	if !s.ledger.RemoveTentative(n) {
		return fault.ErrNumberNotTentative
	}
	return nil
}

// ConfirmTentative - promote an offer to issued and available
func (s *State) ConfirmTentative(n uint64) error {
	if !s.ledger.VerifyTentative(n) {
		return fault.ErrNumberNotTentative
	}
	if !s.ledger.ConfirmTentative(n) {
		return fault.ErrIssueFailed
	}
	return nil
}

// UpdateHighest - partition offered numbers against the watermark
func (s *State) UpdateHighest(candidates []uint64) ([]uint64, []uint64) {
	return s.ledger.UpdateHighest(candidates)
}

// VerifyIssued - membership test
func (s *State) VerifyIssued(n uint64) bool {
	return s.ledger.VerifyIssued(n)
}

// VerifyAvailable - membership test
func (s *State) VerifyAvailable(n uint64) bool {
	return s.ledger.VerifyAvailable(n)
}

// VerifyTentative - membership test
func (s *State) VerifyTentative(n uint64) bool {
	return s.ledger.VerifyTentative(n)
}

// SetLocalNymboxHash - hash of the nymbox as last downloaded
func (s *State) SetLocalNymboxHash(h record.Identifier) {
	s.localHash = h
}

// SetRemoteNymboxHash - hash of the nymbox as last reported by the notary
func (s *State) SetRemoteNymboxHash(h record.Identifier) {
	s.remoteHash = h
}

// LocalNymboxHash - current local hash
func (s *State) LocalNymboxHash() record.Identifier {
	return s.localHash
}

// RemoteNymboxHash - current remote hash
func (s *State) RemoteNymboxHash() record.Identifier {
	return s.remoteHash
}

// NymboxHashMatch - both hashes known and equal
func (s *State) NymboxHashMatch() bool {
	return !s.localHash.IsZero() && s.localHash == s.remoteHash
}

// AddAcknowledged - remember a reply as seen
func (s *State) AddAcknowledged(r uint64) {
	s.acknowledged.Add(r)
}

// RemoveAcknowledged - the notary has confirmed it dropped these replies
func (s *State) RemoveAcknowledged(r ...uint64) {
	s.acknowledged.Remove(r...)
}

// VerifyAcknowledged - membership test
func (s *State) VerifyAcknowledged(r uint64) bool {
	return s.acknowledged.Exists(r)
}

// Acknowledged - ascending copy
func (s *State) Acknowledged() []uint64 {
	return s.acknowledged.Items()
}

// Admin - administration session, error for peer relationships
func (s *State) Admin() (*Admin, error) {
	if ClientToNotary != s.kind {
		return nil, fault.ErrNotClientToNotary
	}
	return &s.admin, nil
}

// Reset - administrative reset of the request sequence
func (s *State) Reset() {
	s.ledger.ResetRequest()
	s.acknowledged.Clear()
}

// merge a snapshot of the same context into this state
//
// issued numbers are the union of both sides; a local available
// number survives unless the remote side has it issued and no longer
// available; nothing becomes available that is not available locally
func (s *State) merge(remote *Snapshot) error {
	remoteIssued := toSet(remote.Issued)
	remoteAvailable := toSet(remote.Available)

	issued := toSet(s.ledger.Issued())
	for n := range remoteIssued {
		issued[n] = struct{}{}
	}

	available := make([]uint64, 0)
	for _, n := range s.ledger.Available() {
		_, isIssued := remoteIssued[n]
		_, isAvailable := remoteAvailable[n]
		if !isIssued || isAvailable {
			available = append(available, n)
		}
	}

	// an offer the other side already issued is settled
	tentative := make([]uint64, 0)
	for _, n := range s.ledger.Tentative() {
		if _, ok := issued[n]; !ok {
			tentative = append(tentative, n)
		}
	}

	highest := s.ledger.Highest()
	if remote.Highest > highest {
		highest = remote.Highest
	}
	request := s.ledger.Request()
	if remote.Request > request {
		request = remote.Request
	}

	l, err := ledger.Restore(fromSet(issued), available, tentative, highest, request)
	if nil != err {
		return err
	}
	s.ledger = l

	for _, r := range remote.Acknowledged {
		s.acknowledged.Add(r)
	}
	return nil
}

func (s *State) check() error {
	return s.ledger.Check()
}

func (s *State) fill(snapshot *Snapshot) {
	snapshot.Request = s.ledger.Request()
	snapshot.LocalHash = s.localHash
	snapshot.RemoteHash = s.remoteHash
	snapshot.Issued = s.ledger.Issued()
	snapshot.Available = s.ledger.Available()
	snapshot.Tentative = s.ledger.Tentative()
	snapshot.Highest = s.ledger.Highest()
	snapshot.Acknowledged = s.acknowledged.Items()
	snapshot.Admin = s.admin
}

func toSet(numbers []uint64) map[uint64]struct{} {
	set := make(map[uint64]struct{}, len(numbers))
	for _, n := range numbers {
		set[n] = struct{}{}
	}
	return set
}

func fromSet(set map[uint64]struct{}) []uint64 {
	numbers := make([]uint64, 0, len(set))
	for n := range set {
		numbers = append(numbers, n)
	}
	return numbers
}
