// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"
	bolt "go.etcd.io/bbolt"

	"github.com/bitmark-inc/notarysync/fault"
)

// backend - raw key/value access, keys include the pool prefix byte
//
// get returns nil, nil for a missing key
type backend interface {
	get(key []byte) ([]byte, error)
	put(key []byte, value []byte) error
	delete(key []byte) error
	has(key []byte) (bool, error)
	each(prefix byte, fn func(key []byte, value []byte) error) error
	close() error
}

// LevelDB: the prefix is the first byte of the key
type levelBackend struct {
	db *leveldb.DB
}

func openLevelDB(name string, readOnly bool) (backend, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	}

	db, err := leveldb.OpenFile(name, opt)
	if nil != err {
		return nil, err
	}
	return &levelBackend{db: db}, nil
}

func (l *levelBackend) get(key []byte) ([]byte, error) {
	value, err := l.db.Get(key, nil)
	if leveldb.ErrNotFound == err {
		return nil, nil
	}
	return value, err
}

func (l *levelBackend) put(key []byte, value []byte) error {
	return l.db.Put(key, value, nil)
}

func (l *levelBackend) delete(key []byte) error {
	return l.db.Delete(key, nil)
}

func (l *levelBackend) has(key []byte) (bool, error) {
	return l.db.Has(key, nil)
}

func (l *levelBackend) each(prefix byte, fn func(key []byte, value []byte) error) error {
	iter := l.db.NewIterator(ldb_util.BytesPrefix([]byte{prefix}), nil)
	defer iter.Release()

	for iter.Next() {

		// contents of the returned slice must not be modified, and are
		// only valid until the next call to Next
		key := iter.Key()
		value := iter.Value()

		dataKey := make([]byte, len(key)-1) // strip the prefix
		copy(dataKey, key[1:])              // ...

		dataValue := make([]byte, len(value))
		copy(dataValue, value)

		if err := fn(dataKey, dataValue); nil != err {
			return err
		}
	}
	return iter.Error()
}

func (l *levelBackend) close() error {
	return l.db.Close()
}

// BoltDB: one bucket per prefix byte
type boltBackend struct {
	db *bolt.DB
}

func openBoltDB(name string, readOnly bool) (backend, error) {
	opt := &bolt.Options{
		Timeout:  time.Second,
		ReadOnly: readOnly,
	}
	db, err := bolt.Open(name, 0600, opt)
	if nil != err {
		return nil, err
	}
	return &boltBackend{db: db}, nil
}

func split(key []byte) ([]byte, []byte, error) {
	if len(key) < 2 {
		return nil, nil, fault.ErrInvalidKeyLength
	}
	return key[:1], key[1:], nil
}

func (b *boltBackend) get(key []byte) ([]byte, error) {
	bucket, k, err := split(key)
	if nil != err {
		return nil, err
	}

	var value []byte
	err = b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucket)
		if nil == bkt {
			return nil
		}

		// only valid for the life of the transaction
		if v := bkt.Get(k); nil != v {
			value = make([]byte, len(v))
			copy(value, v)
		}
		return nil
	})
	return value, err
}

func (b *boltBackend) put(key []byte, value []byte) error {
	bucket, k, err := split(key)
	if nil != err {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bkt, err := tx.CreateBucketIfNotExists(bucket)
		if nil != err {
			return err
		}
		return bkt.Put(k, value)
	})
}

func (b *boltBackend) delete(key []byte) error {
	bucket, k, err := split(key)
	if nil != err {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucket)
		if nil == bkt {
			return nil
		}
		return bkt.Delete(k)
	})
}

func (b *boltBackend) has(key []byte) (bool, error) {
	value, err := b.get(key)
	return nil != value, err
}

func (b *boltBackend) each(prefix byte, fn func(key []byte, value []byte) error) error {
	return b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte{prefix})
		if nil == bkt {
			return nil
		}
		return bkt.ForEach(func(k []byte, v []byte) error {
			dataKey := make([]byte, len(k))
			copy(dataKey, k)
			dataValue := make([]byte, len(v))
			copy(dataValue, v)
			return fn(dataKey, dataValue)
		})
	})
}

func (b *boltBackend) close() error {
	return b.db.Close()
}
