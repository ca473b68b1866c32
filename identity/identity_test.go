// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identity_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/notarysync/fault"
	"github.com/bitmark-inc/notarysync/identity"
)

const password = "correct horse battery staple"

func seed(b byte) []byte {
	s := make([]byte, 32)
	for i := range s {
		s[i] = b
	}
	return s
}

func TestSignVerify(t *testing.T) {
	nym, err := identity.FromSeed(seed(1), password)
	require.NoError(t, err)
	assert.False(t, nym.IsLocked())

	message := []byte("request 17")
	signature, err := nym.Sign(message)
	require.NoError(t, err)

	assert.True(t, nym.Verify(message, signature))
	assert.True(t, identity.Verify(nym.PublicKey(), message, signature))
	assert.True(t, nym.Public().Verify(message, signature))
	assert.False(t, nym.Verify([]byte("request 18"), signature))
}

func TestLockedNymCannotSign(t *testing.T) {
	nym, err := identity.FromSeed(seed(2), password)
	require.NoError(t, err)

	nym.Lock()
	assert.True(t, nym.IsLocked())

	_, err = nym.Sign([]byte("x"))
	assert.Equal(t, fault.ErrIdentityLocked, err)
	assert.True(t, fault.IsErrSigning(err))

	assert.Equal(t, fault.ErrWrongPassword, nym.Unlock("wrong"))
	assert.True(t, nym.IsLocked())

	require.NoError(t, nym.Unlock(password))
	_, err = nym.Sign([]byte("x"))
	assert.NoError(t, err)
}

func TestDroppedNymCannotUnlock(t *testing.T) {
	nym, err := identity.FromSeed(seed(3), password)
	require.NoError(t, err)

	nym.Drop()
	assert.True(t, nym.IsLocked())
	assert.Error(t, nym.Unlock(password))
}

func TestPublicCannotSign(t *testing.T) {
	nym, err := identity.FromSeed(seed(4), password)
	require.NoError(t, err)

	public, err := identity.NewPublic(nym.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, nym.ID(), public.ID())

	_, err = public.Sign([]byte("x"))
	assert.Equal(t, fault.ErrSigningUnavailable, err)

	_, err = identity.NewPublic([]byte{1, 2, 3})
	assert.Equal(t, fault.ErrInvalidPublicKey, err)
}

func TestKeystoreFile(t *testing.T) {
	dir, err := os.MkdirTemp("", "keystore")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	fileName := filepath.Join(dir, "nym.json")

	_, err = identity.LoadKeystore(fileName)
	assert.Equal(t, fault.ErrKeystoreNotFound, err)

	nym, err := identity.FromSeed(seed(5), password)
	require.NoError(t, err)
	require.NoError(t, nym.Keystore().Save(fileName))

	keystore, err := identity.LoadKeystore(fileName)
	require.NoError(t, err)

	restored, err := identity.NewNym(keystore)
	require.NoError(t, err)
	assert.True(t, restored.IsLocked(), "restored Nym must start locked")
	assert.Equal(t, nym.ID(), restored.ID())

	require.NoError(t, restored.Unlock(password))
	signature, err := restored.Sign([]byte("hello"))
	require.NoError(t, err)
	assert.True(t, nym.Verify([]byte("hello"), signature))
}

func TestIDText(t *testing.T) {
	nym, err := identity.FromSeed(seed(6), password)
	require.NoError(t, err)

	id := nym.ID()
	decoded, err := identity.IDFromBase58(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, decoded)

	_, err = identity.IDFromBase58("0OIl")
	assert.Equal(t, fault.ErrInvalidIdentifier, err)
}

func TestConcurrentSigning(t *testing.T) {
	nym, err := identity.FromSeed(seed(7), password)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i += 1 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			message := []byte{byte(i)}
			signature, err := nym.Sign(message)
			assert.NoError(t, err)
			assert.True(t, nym.Verify(message, signature))
		}(i)
	}
	wg.Wait()
}
