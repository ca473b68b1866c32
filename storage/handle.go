// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/bitmark-inc/notarysync/fault"
)

// internal marker to end a Map early
var errStop = fault.ProcessError("stop")

// PoolHandle - access to one prefixed pool
type PoolHandle struct {
	prefix byte
}

// Element - a binary data item
type Element struct {
	Key   []byte
	Value []byte
}

// prepend the prefix onto the key
func (p *PoolHandle) prefixKey(key []byte) []byte {
	prefixedKey := make([]byte, 1, len(key)+1)
	prefixedKey[0] = p.prefix
	return append(prefixedKey, key...)
}

// Put - store a key/value bytes pair to the database
func (p *PoolHandle) Put(key []byte, value []byte) error {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == poolData.database {
		fault.Panicf("pool.Put nil database")
	}
	if poolData.readOnly {
		return fault.ErrReadOnly
	}
	return poolData.database.put(p.prefixKey(key), value)
}

// Delete - remove a key from the database
func (p *PoolHandle) Delete(key []byte) error {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == poolData.database {
		fault.Panicf("pool.Delete nil database")
	}
	if poolData.readOnly {
		return fault.ErrReadOnly
	}
	return poolData.database.delete(p.prefixKey(key))
}

// Get - read a value for a given key
//
// nil if not found
func (p *PoolHandle) Get(key []byte) []byte {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == poolData.database {
		return nil
	}
	value, err := poolData.database.get(p.prefixKey(key))
	fault.PanicIfError("pool.Get", err)
	return value
}

// Has - check if a key exists
func (p *PoolHandle) Has(key []byte) bool {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == poolData.database {
		return false
	}
	value, err := poolData.database.has(p.prefixKey(key))
	fault.PanicIfError("pool.Has", err)
	return value
}

// Map - call fn for every element in key order
//
// stops at the first error from fn
func (p *PoolHandle) Map(fn func(e Element) error) error {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == poolData.database {
		return fault.ErrNotInitialised
	}
	return poolData.database.each(p.prefix, func(key []byte, value []byte) error {
		return fn(Element{Key: key, Value: value})
	})
}

// Fetch - up to count elements in key order, zero for all
func (p *PoolHandle) Fetch(count int) ([]Element, error) {
	elements := make([]Element, 0, 16)
	err := p.Map(func(e Element) error {
		if count > 0 && len(elements) >= count {
			return errStop
		}
		elements = append(elements, e)
		return nil
	})
	if errStop == err {
		err = nil
	}
	return elements, err
}
