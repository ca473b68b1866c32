// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fixtures

import (
	"sync"

	"github.com/bitmark-inc/notarysync/identity"
)

// Password - passphrase sealing every fixture keystore
const Password = "correct horse battery staple"

var (
	once   sync.Once
	client *identity.Nym
	peer   *identity.Nym
	notary *identity.Nym
)

// keystore sealing is slow, build the fixtures once per test binary
func setupIdentities() {
	client = mustNym(0x11)
	peer = mustNym(0x22)
	notary = mustNym(0x33)
}

func mustNym(b byte) *identity.Nym {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = b
	}
	nym, err := identity.FromSeed(seed, Password)
	if nil != err {
		panic(err)
	}
	return nym
}

// Client - unlocked client Nym
func Client() *identity.Nym {
	once.Do(setupIdentities)
	return client
}

// Peer - unlocked second Nym
func Peer() *identity.Nym {
	once.Do(setupIdentities)
	return peer
}

// Notary - unlocked notary signing key
func Notary() *identity.Nym {
	once.Do(setupIdentities)
	return notary
}

// FreshClient - a separate client Nym that tests may lock or drop
func FreshClient() *identity.Nym {
	return mustNym(0x44)
}
