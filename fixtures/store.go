// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fixtures

import (
	"sync"

	"github.com/bitmark-inc/notarysync/fault"
	"github.com/bitmark-inc/notarysync/relationship"
)

// MemoryStore - in-memory snapshot store keeping packed bytes
type MemoryStore struct {
	sync.Mutex
	data   map[relationship.Key][]byte
	stored int
	fail   bool
}

// NewMemoryStore - empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[relationship.Key][]byte),
	}
}

// Store - keep the packed form
func (m *MemoryStore) Store(snapshot *relationship.Snapshot) bool {
	m.Lock()
	defer m.Unlock()
	if m.fail {
		return false
	}
	m.data[snapshot.Key()] = snapshot.Pack()
	m.stored += 1
	return true
}

// Load - decode the packed form
func (m *MemoryStore) Load(key relationship.Key) (*relationship.Snapshot, error) {
	m.Lock()
	packed, ok := m.data[key]
	m.Unlock()
	if !ok {
		return nil, fault.ErrContextNotFound
	}
	return relationship.ParseSnapshot(packed)
}

// Packed - raw stored bytes
func (m *MemoryStore) Packed(key relationship.Key) []byte {
	m.Lock()
	defer m.Unlock()
	return m.data[key]
}

// Stored - number of successful Store calls
func (m *MemoryStore) Stored() int {
	m.Lock()
	defer m.Unlock()
	return m.stored
}

// SetFail - make every Store call fail
func (m *MemoryStore) SetFail(fail bool) {
	m.Lock()
	defer m.Unlock()
	m.fail = fail
}
