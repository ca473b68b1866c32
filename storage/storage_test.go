// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/notarysync/fault"
	"github.com/bitmark-inc/notarysync/fixtures"
	"github.com/bitmark-inc/notarysync/storage"
)

// test database file
const databaseName = "test-storage"

var backends = []string{storage.LevelDB, storage.BoltDB}

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

// remove all files created by test
func removeFiles() {
	os.RemoveAll(databaseName + ".leveldb")
	os.RemoveAll(databaseName + ".bolt")
}

// configure for testing
func setup(t *testing.T, backend string) {
	removeFiles()
	err := storage.Initialise(backend, databaseName, storage.ReadWrite)
	require.Nil(t, err, "storage initialise error")
}

// post test cleanup
func teardown() {
	storage.Finalise()
	removeFiles()
}

func TestPoolAccess(t *testing.T) {
	for _, backend := range backends {
		setup(t, backend)
		p := storage.Pool.TestData

		assert.Nil(t, p.Get([]byte("key-one")), "%s: data before put", backend)
		assert.False(t, p.Has([]byte("key-one")), "%s: has before put", backend)

		for _, e := range []storage.Element{
			{Key: []byte("key-two"), Value: []byte("data-two")},
			{Key: []byte("key-one"), Value: []byte("data-one")},
			{Key: []byte("key-three"), Value: []byte("data-three")},
		} {
			require.Nil(t, p.Put(e.Key, e.Value), "%s: put", backend)
		}
		require.Nil(t, p.Put([]byte("key-one"), []byte("data-one(NEW)")))

		assert.Equal(t, []byte("data-one(NEW)"), p.Get([]byte("key-one")), backend)
		assert.True(t, p.Has([]byte("key-two")), backend)

		require.Nil(t, p.Delete([]byte("key-two")))
		assert.False(t, p.Has([]byte("key-two")), "%s: deleted key present", backend)

		elements, err := p.Fetch(0)
		require.Nil(t, err)
		assert.Equal(t, []storage.Element{
			{Key: []byte("key-one"), Value: []byte("data-one(NEW)")},
			{Key: []byte("key-three"), Value: []byte("data-three")},
		}, elements, backend)

		elements, err = p.Fetch(1)
		require.Nil(t, err)
		assert.Equal(t, 1, len(elements), backend)

		// other pools do not see the data
		elements, err = storage.Pool.Contexts.Fetch(0)
		require.Nil(t, err)
		assert.Equal(t, 0, len(elements), "%s: pool prefix leak", backend)

		teardown()
	}
}

func TestInitialise(t *testing.T) {
	setup(t, storage.LevelDB)
	defer teardown()

	err := storage.Initialise(storage.LevelDB, databaseName, storage.ReadWrite)
	assert.Equal(t, fault.ErrAlreadyInitialised, err)

	storage.Finalise()
	err = storage.Initialise("no-such-backend", databaseName, storage.ReadWrite)
	assert.Equal(t, fault.ErrInvalidBackend, err)
}

func TestReadOnly(t *testing.T) {
	for _, backend := range backends {
		setup(t, backend)
		require.Nil(t, storage.Pool.TestData.Put([]byte("key"), []byte("value")))
		storage.Finalise()

		err := storage.Initialise(backend, databaseName, storage.ReadOnly)
		require.Nil(t, err, "%s: read only open", backend)
		assert.True(t, storage.IsReadOnly())

		assert.Equal(t, []byte("value"), storage.Pool.TestData.Get([]byte("key")), backend)
		assert.Equal(t, fault.ErrReadOnly, storage.Pool.TestData.Put([]byte("key"), []byte("new")))
		assert.Equal(t, fault.ErrReadOnly, storage.Pool.TestData.Delete([]byte("key")))

		teardown()
	}
}
