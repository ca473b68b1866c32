// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/notarysync/fault"
	"github.com/bitmark-inc/notarysync/fixtures"
	"github.com/bitmark-inc/notarysync/relationship"
	"github.com/bitmark-inc/notarysync/storage"
)

func TestContextStoreUninitialised(t *testing.T) {
	_, err := storage.NewContextStore(0)
	assert.Equal(t, fault.ErrNotInitialised, err)
}

func TestContextRoundTrip(t *testing.T) {
	for _, backend := range backends {
		setup(t, backend)

		store, err := storage.NewContextStore(0)
		require.Nil(t, err)

		n := fixtures.Notary().ID()
		c, err := relationship.New(relationship.ClientToNotary, fixtures.Client(), n, n, store, nil)
		require.Nil(t, err)
		require.Nil(t, c.IssueNumber(7))
		require.Nil(t, c.IssueNumber(9))
		_, err = c.IncrementRequest()
		require.Nil(t, err)

		packed, err := store.Packed(c.Key())
		require.Nil(t, err)
		assert.Equal(t, []byte(c.Snapshot().Pack()), packed, "%s: stored bytes differ", backend)

		// reopen the database so reads come from disk
		storage.Finalise()
		require.Nil(t, storage.Initialise(backend, databaseName, storage.ReadWrite))
		store, err = storage.NewContextStore(0)
		require.Nil(t, err)

		restored, err := relationship.Open(relationship.ClientToNotary, fixtures.Client(), n, n, store, nil)
		require.Nil(t, err, backend)
		assert.Equal(t, c.ID(), restored.ID(), "%s: restored snapshot differs", backend)
		assert.Equal(t, []uint64{7, 9}, restored.AvailableNumbers())
		assert.Equal(t, uint64(1), restored.Request())

		keys, err := store.Keys()
		require.Nil(t, err)
		assert.Equal(t, []relationship.Key{c.Key()}, keys)

		require.Nil(t, store.Delete(c.Key()))
		_, err = store.Load(c.Key())
		assert.Equal(t, fault.ErrContextNotFound, err)

		teardown()
	}
}

func TestContextStoreReadOnly(t *testing.T) {
	setup(t, storage.LevelDB)
	defer teardown()

	store, err := storage.NewContextStore(0)
	require.Nil(t, err)
	n := fixtures.Notary().ID()
	c, err := relationship.New(relationship.ClientToNotary, fixtures.Client(), n, n, store, nil)
	require.Nil(t, err)

	storage.Finalise()
	require.Nil(t, storage.Initialise(storage.LevelDB, databaseName, storage.ReadOnly))
	store, err = storage.NewContextStore(0)
	require.Nil(t, err)

	snapshot, err := store.Load(c.Key())
	require.Nil(t, err)
	assert.Nil(t, snapshot.Verify(fixtures.Client()))
	assert.False(t, store.Store(snapshot), "store accepted on read only database")
}
