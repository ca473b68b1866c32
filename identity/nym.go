// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identity

import (
	"crypto/rand"
	"sync"

	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/notarysync/fault"
)

// Nym - a local identity whose private key can be locked away
type Nym struct {
	lock       sync.RWMutex
	public     *Public
	keystore   *Keystore
	privateKey ed25519.PrivateKey // nil while locked
}

// Generate - create a new Nym sealed under password
//
// the returned Nym is unlocked
func Generate(password string) (*Nym, error) {
	_, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if nil != err {
		return nil, err
	}
	return fromPrivateKey(privateKey, password)
}

// FromSeed - deterministic Nym, mainly for tests and recovery
//
// the returned Nym is unlocked
func FromSeed(seed []byte, password string) (*Nym, error) {
	if ed25519.SeedSize != len(seed) {
		return nil, fault.ErrInvalidKeyLength
	}
	return fromPrivateKey(ed25519.NewKeyFromSeed(seed), password)
}

func fromPrivateKey(privateKey ed25519.PrivateKey, password string) (*Nym, error) {
	keystore, err := Seal(privateKey, password)
	if nil != err {
		return nil, err
	}
	nym, err := NewNym(keystore)
	if nil != err {
		return nil, err
	}
	nym.privateKey = privateKey
	return nym, nil
}

// NewNym - a locked Nym backed by a keystore
func NewNym(keystore *Keystore) (*Nym, error) {
	public, err := NewPublic(keystore.PublicKey)
	if nil != err {
		return nil, err
	}
	return &Nym{
		public:   public,
		keystore: keystore,
	}, nil
}

// ID - identifier of this Nym
func (n *Nym) ID() ID {
	return n.public.ID()
}

// PublicKey - copy of the public key
func (n *Nym) PublicKey() []byte {
	return n.public.PublicKey()
}

// Public - verification only view of this Nym
func (n *Nym) Public() *Public {
	return n.public
}

// Keystore - the sealed form, safe to persist
func (n *Nym) Keystore() *Keystore {
	return n.keystore
}

// Unlock - open the keystore and keep the private key in memory
func (n *Nym) Unlock(password string) error {
	n.lock.RLock()
	keystore := n.keystore
	n.lock.RUnlock()

	privateKey, err := keystore.Open(password)
	if nil != err {
		return err
	}
	n.lock.Lock()
	n.privateKey = privateKey
	n.lock.Unlock()
	return nil
}

// Lock - wipe the in-memory private key
func (n *Nym) Lock() {
	n.lock.Lock()
	defer n.lock.Unlock()
	for i := range n.privateKey {
		n.privateKey[i] = 0
	}
	n.privateKey = nil
}

// IsLocked - true if signing is currently unavailable
func (n *Nym) IsLocked() bool {
	n.lock.RLock()
	defer n.lock.RUnlock()
	return nil == n.privateKey
}

// Sign - sign a message if the key is unlocked
func (n *Nym) Sign(message []byte) ([]byte, error) {
	n.lock.RLock()
	defer n.lock.RUnlock()
	if nil == n.privateKey {
		return nil, fault.ErrIdentityLocked
	}
	return ed25519.Sign(n.privateKey, message), nil
}

// Verify - check a signature made by this Nym
func (n *Nym) Verify(message []byte, signature []byte) bool {
	return n.public.Verify(message, signature)
}

// Drop - lock and forget the keystore, the Nym can no longer be unlocked
func (n *Nym) Drop() {
	n.Lock()
	n.lock.Lock()
	n.keystore = &Keystore{PublicKey: n.public.PublicKey()}
	n.lock.Unlock()
}
