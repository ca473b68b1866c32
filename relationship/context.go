// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package relationship

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/notarysync/fault"
	"github.com/bitmark-inc/notarysync/identity"
	"github.com/bitmark-inc/notarysync/record"
)

const logCategory = "context"

// Context - state shared by one local identity and one counterparty
type Context struct {
	lock sync.Mutex // state lock: held for a single mutation
	log  *logger.L

	key    Key
	kind   Kind
	policy Policy
	local  identity.Identity
	remote identity.ID
	notary identity.ID
	store  Store

	state       *State
	current     *Snapshot
	quarantined error
	sequence    uint64

	// snapshots reach the store in mutation order
	persistLock sync.Mutex
	persisted   uint64
}

// New - a fresh context
//
// for client-to-notary the remote identity is the notary; the initial
// snapshot is signed and stored before returning
func New(kind Kind, local identity.Identity, remote identity.ID, notary identity.ID, store Store, log *logger.L) (*Context, error) {
	c, err := newContext(kind, local, remote, notary, store, log)
	if nil != err {
		return nil, err
	}

	c.state = newState(kind)
	snapshot, err := c.sign(c.state)
	if nil != err {
		return nil, err
	}
	c.current = snapshot
	c.sequence = 1

	if err := c.persist(snapshot, c.sequence); nil != err {
		return nil, err
	}
	c.log.Infof("new %s context: %s", kind, c.key)
	return c, nil
}

// Restore - rebuild a context from a stored snapshot
//
// the snapshot must carry a valid signature by the local identity and
// satisfy every ledger invariant
func Restore(snapshot *Snapshot, local identity.Identity, store Store, log *logger.L) (*Context, error) {
	if nil == snapshot || nil == local {
		return nil, fault.ErrMissingParameters
	}
	if snapshot.Local != local.ID() {
		return nil, fault.ErrMismatchedContext
	}
	if err := snapshot.Verify(local); nil != err {
		return nil, err
	}

	c, err := newContext(snapshot.Kind, local, snapshot.Remote, snapshot.Notary, store, log)
	if nil != err {
		return nil, err
	}

	c.state, err = stateFromSnapshot(snapshot)
	if nil != err {
		return nil, err
	}
	c.current = snapshot
	c.sequence = 1
	c.persisted = 1

	c.log.Infof("restored %s context: %s  request: %d", c.kind, c.key, snapshot.Request)
	return c, nil
}

// Open - load a context from the store, or create it if not stored
func Open(kind Kind, local identity.Identity, remote identity.ID, notary identity.ID, store Store, log *logger.L) (*Context, error) {
	if nil == local {
		return nil, fault.ErrMissingParameters
	}
	if nil != store {
		snapshot, err := store.Load(NewKey(kind, local.ID(), remote, notary))
		if nil == err {
			return Restore(snapshot, local, store, log)
		}
		if !fault.IsErrNotFound(err) {
			return nil, err
		}
	}
	return New(kind, local, remote, notary, store, log)
}

func newContext(kind Kind, local identity.Identity, remote identity.ID, notary identity.ID, store Store, log *logger.L) (*Context, error) {
	if nil == local || remote.IsZero() || notary.IsZero() {
		return nil, fault.ErrMissingParameters
	}
	policy, err := kind.Policy()
	if nil != err {
		return nil, err
	}
	if ClientToNotary == kind && remote != notary {
		return nil, fault.ErrInvalidRelationship
	}
	if PeerToPeer == kind && remote == local.ID() {
		return nil, fault.ErrInvalidRelationship
	}
	if nil == log {
		log = logger.New(logCategory)
	}

	return &Context{
		log:    log,
		key:    NewKey(kind, local.ID(), remote, notary),
		kind:   kind,
		policy: policy,
		local:  local,
		remote: remote,
		notary: notary,
		store:  store,
	}, nil
}

// Key - storage key
func (c *Context) Key() Key {
	return c.key
}

// Kind - relationship variant
func (c *Context) Kind() Kind {
	return c.kind
}

// Policy - variant capability
func (c *Context) Policy() Policy {
	return c.policy
}

// LocalID - owner of the context
func (c *Context) LocalID() identity.ID {
	return c.local.ID()
}

// RemoteID - counterparty
func (c *Context) RemoteID() identity.ID {
	return c.remote
}

// NotaryID - notary the relationship lives on
func (c *Context) NotaryID() identity.ID {
	return c.notary
}

// Signer - the local identity, used to sign outgoing messages
func (c *Context) Signer() record.Signer {
	return c.local
}

// Update - apply fn to a copy of the state as one signed mutation
//
// nothing changes if fn fails or the new state cannot be signed; an
// invariant failure quarantines the context.  The store is called
// after the state lock is released.
func (c *Context) Update(fn func(s *State) error) error {
	snapshot, sequence, err := c.update(fn)
	if nil != err {
		return err
	}
	return c.persist(snapshot, sequence)
}

func (c *Context) update(fn func(s *State) error) (*Snapshot, uint64, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if nil != c.quarantined {
		return nil, 0, fault.ErrQuarantined
	}

	next := c.state.clone()
	if err := fn(next); nil != err {
		if fault.IsErrInvariant(err) {
			c.quarantine(err)
		}
		return nil, 0, err
	}
	if err := next.check(); nil != err {
		c.quarantine(err)
		return nil, 0, err
	}

	snapshot, err := c.sign(next)
	if nil != err {
		return nil, 0, err
	}

	c.state = next
	c.current = snapshot
	c.sequence += 1
	return snapshot, c.sequence, nil
}

// View - read the state under the lock
//
// fn must not retain s
func (c *Context) View(fn func(s *State)) {
	c.lock.Lock()
	defer c.lock.Unlock()
	fn(c.state)
}

// must hold lock
func (c *Context) sign(s *State) (*Snapshot, error) {
	snapshot := &Snapshot{
		Kind:   c.kind,
		Local:  c.local.ID(),
		Remote: c.remote,
		Notary: c.notary,
	}
	s.fill(snapshot)

	signed, err := record.Sign(snapshot.Body(), c.local)
	if nil != err {
		c.log.Warnf("%s: sign error: %s", c.key, err)
		return nil, err
	}
	snapshot.Signature = signed.Signature
	return snapshot, nil
}

// must hold lock
func (c *Context) quarantine(err error) {
	c.log.Criticalf("%s: quarantined: %s", c.key, err)
	c.quarantined = err
}

func (c *Context) persist(snapshot *Snapshot, sequence uint64) error {
	if nil == c.store {
		return nil
	}

	c.persistLock.Lock()
	defer c.persistLock.Unlock()

	// a later mutation already reached the store
	if sequence <= c.persisted {
		return nil
	}
	if !c.store.Store(snapshot) {
		c.log.Errorf("%s: store failed  request: %d", c.key, snapshot.Request)
		return fault.ErrStoreFailed
	}
	c.persisted = sequence
	return nil
}

// Snapshot - the current signed snapshot
func (c *Context) Snapshot() *Snapshot {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.current
}

// ID - content identifier of the current snapshot
func (c *Context) ID() record.Identifier {
	return c.Snapshot().ID()
}

// Refresh - re-sign the current state and store it
func (c *Context) Refresh() (*Snapshot, error) {
	var snapshot *Snapshot
	err := c.Update(func(s *State) error { return nil })
	if nil == err {
		snapshot = c.Snapshot()
	}
	return snapshot, err
}

// Quarantined - the invariant failure that stopped the context, if any
func (c *Context) Quarantined() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.quarantined
}

// Revalidate - reload the last stored snapshot and lift a quarantine
//
// a nil store means the store the context was created with.  The
// request number never goes backwards: if memory is ahead of the store
// the reloaded state keeps the higher number and is signed and stored
// again.
func (c *Context) Revalidate(store Store) error {
	if nil == store {
		store = c.store
	}
	if nil == store {
		return fault.ErrNotInitialised
	}

	snapshot, err := store.Load(c.key)
	if nil != err {
		return err
	}
	if snapshot.Key() != c.key {
		return fault.ErrMismatchedContext
	}
	if err := snapshot.Verify(c.local); nil != err {
		return err
	}
	state, err := stateFromSnapshot(snapshot)
	if nil != err {
		return err
	}

	snapshot, sequence, err := c.reload(state, snapshot)
	if nil != err {
		return err
	}
	if 0 == sequence {
		return nil
	}
	return c.persist(snapshot, sequence)
}

// reload - install a verified state, zero sequence if nothing to store
func (c *Context) reload(state *State, snapshot *Snapshot) (*Snapshot, uint64, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	sequence := uint64(0)
	if request := c.state.Request(); request > state.Request() {
		c.log.Warnf("%s: stored request: %d  behind memory: %d", c.key, state.Request(), request)
		state.SetRequest(request)
		signed, err := c.sign(state)
		if nil != err {
			return nil, 0, err
		}
		snapshot = signed
		c.sequence += 1
		sequence = c.sequence
	}

	c.state = state
	c.current = snapshot
	if nil != c.quarantined {
		c.log.Warnf("%s: quarantine lifted  request: %d", c.key, snapshot.Request)
	}
	c.quarantined = nil
	return snapshot, sequence, nil
}

// Resync - reconcile with another signed snapshot of the same context
//
// the remote snapshot must carry a valid signature of the local
// identity, anything else is refused without changing the context
func (c *Context) Resync(remote *Snapshot) error {
	if nil == remote {
		return fault.ErrMissingParameters
	}
	if remote.Key() != c.key {
		return fault.ErrMismatchedContext
	}
	if err := remote.Verify(c.local); nil != err {
		c.log.Warnf("%s: resync refused: %s", c.key, err)
		return err
	}
	return c.Update(func(s *State) error {
		return s.merge(remote)
	})
}

// IncrementRequest - next request number
func (c *Context) IncrementRequest() (uint64, error) {
	request := uint64(0)
	err := c.Update(func(s *State) error {
		request = s.IncrementRequest()
		return nil
	})
	return request, err
}

// Request - current request number
func (c *Context) Request() uint64 {
	request := uint64(0)
	c.View(func(s *State) { request = s.Request() })
	return request
}

// SetLocalNymboxHash - record the hash of the downloaded nymbox
func (c *Context) SetLocalNymboxHash(h record.Identifier) error {
	return c.Update(func(s *State) error {
		s.SetLocalNymboxHash(h)
		return nil
	})
}

// SetRemoteNymboxHash - record the hash reported by the notary
func (c *Context) SetRemoteNymboxHash(h record.Identifier) error {
	return c.Update(func(s *State) error {
		s.SetRemoteNymboxHash(h)
		return nil
	})
}

// LocalNymboxHash - current local hash
func (c *Context) LocalNymboxHash() record.Identifier {
	h := record.Identifier{}
	c.View(func(s *State) { h = s.LocalNymboxHash() })
	return h
}

// RemoteNymboxHash - current remote hash
func (c *Context) RemoteNymboxHash() record.Identifier {
	h := record.Identifier{}
	c.View(func(s *State) { h = s.RemoteNymboxHash() })
	return h
}

// NymboxHashMatch - both hashes present and equal
func (c *Context) NymboxHashMatch() bool {
	match := false
	c.View(func(s *State) { match = s.NymboxHashMatch() })
	return match
}

// AddAcknowledgedNumber - remember a reply as seen
func (c *Context) AddAcknowledgedNumber(r uint64) error {
	return c.Update(func(s *State) error {
		s.AddAcknowledged(r)
		return nil
	})
}

// RemoveAcknowledgedNumbers - forget replies the notary has dropped
func (c *Context) RemoveAcknowledgedNumbers(r []uint64) error {
	return c.Update(func(s *State) error {
		s.RemoveAcknowledged(r...)
		return nil
	})
}

// VerifyAcknowledgedNumber - membership test
func (c *Context) VerifyAcknowledgedNumber(r uint64) bool {
	ok := false
	c.View(func(s *State) { ok = s.VerifyAcknowledged(r) })
	return ok
}

// AcknowledgedNumbers - ascending copy
func (c *Context) AcknowledgedNumbers() []uint64 {
	var numbers []uint64
	c.View(func(s *State) { numbers = s.Acknowledged() })
	return numbers
}

// IssueNumber - a confirmed transaction number
func (c *Context) IssueNumber(n uint64) error {
	return c.Update(func(s *State) error {
		return s.Issue(n)
	})
}

// ConsumeAvailable - reserve a number
func (c *Context) ConsumeAvailable(n uint64) error {
	return c.Update(func(s *State) error {
		return s.ConsumeAvailable(n)
	})
}

// ConsumeIssued - close a number
func (c *Context) ConsumeIssued(n uint64) error {
	return c.Update(func(s *State) error {
		return s.ConsumeIssued(n)
	})
}

// RecoverAvailable - release a reservation
func (c *Context) RecoverAvailable(n uint64) error {
	return c.Update(func(s *State) error {
		return s.RecoverAvailable(n)
	})
}

// NextTransactionNumber - reserve the lowest available number
func (c *Context) NextTransactionNumber() (uint64, error) {
	n := uint64(0)
	err := c.Update(func(s *State) error {
		var err error
		n, err = s.NextAvailable()
		return err
	})
	return n, err
}

// AddTentativeNumber - an offered number
func (c *Context) AddTentativeNumber(n uint64) error {
	return c.Update(func(s *State) error {
		return s.AddTentative(n)
	})
}

// RemoveTentativeNumber - a refused offer
func (c *Context) RemoveTentativeNumber(n uint64) error {
	return c.Update(func(s *State) error {
		return s.RemoveTentative(n)
	})
}

// VerifyIssuedNumber - membership test
func (c *Context) VerifyIssuedNumber(n uint64) bool {
	ok := false
	c.View(func(s *State) { ok = s.VerifyIssued(n) })
	return ok
}

// VerifyAvailableNumber - membership test
func (c *Context) VerifyAvailableNumber(n uint64) bool {
	ok := false
	c.View(func(s *State) { ok = s.VerifyAvailable(n) })
	return ok
}

// VerifyTentativeNumber - membership test
func (c *Context) VerifyTentativeNumber(n uint64) bool {
	ok := false
	c.View(func(s *State) { ok = s.VerifyTentative(n) })
	return ok
}

// IssuedNumbers - ascending copy
func (c *Context) IssuedNumbers() []uint64 {
	var numbers []uint64
	c.View(func(s *State) { numbers = s.ledger.Issued() })
	return numbers
}

// AvailableNumbers - ascending copy
func (c *Context) AvailableNumbers() []uint64 {
	var numbers []uint64
	c.View(func(s *State) { numbers = s.ledger.Available() })
	return numbers
}

// TentativeNumbers - ascending copy
func (c *Context) TentativeNumbers() []uint64 {
	var numbers []uint64
	c.View(func(s *State) { numbers = s.ledger.Tentative() })
	return numbers
}

// Reset - zero the request number and forget acknowledgements
func (c *Context) Reset() error {
	err := c.Update(func(s *State) error {
		s.Reset()
		return nil
	})
	if nil == err {
		c.log.Warnf("%s: request sequence reset", c.key)
	}
	return err
}

// SetAdminPassword - begin an administration session
func (c *Context) SetAdminPassword(password string) error {
	return c.Update(func(s *State) error {
		admin, err := s.Admin()
		if nil != err {
			return err
		}
		admin.Password = password
		admin.Attempted = true
		admin.Success = false
		return nil
	})
}

// SetAdminSuccess - the notary accepted or refused the password
func (c *Context) SetAdminSuccess(success bool) error {
	return c.Update(func(s *State) error {
		admin, err := s.Admin()
		if nil != err {
			return err
		}
		admin.Attempted = true
		admin.Success = success
		return nil
	})
}

// IncrementRevision - the notary contract changed
func (c *Context) IncrementRevision() (uint64, error) {
	revision := uint64(0)
	err := c.Update(func(s *State) error {
		admin, err := s.Admin()
		if nil != err {
			return err
		}
		admin.Revision += 1
		revision = admin.Revision
		return nil
	})
	return revision, err
}

// Admin - copy of the administration session
func (c *Context) Admin() (Admin, error) {
	admin := Admin{}
	var err error
	c.View(func(s *State) {
		var a *Admin
		a, err = s.Admin()
		if nil == err {
			admin = *a
		}
	})
	return admin, err
}
