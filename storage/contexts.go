// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/patrickmn/go-cache"

	"github.com/bitmark-inc/notarysync/fault"
	"github.com/bitmark-inc/notarysync/record"
	"github.com/bitmark-inc/notarysync/relationship"
)

const (
	defaultCacheLifetime = 10 * time.Minute
	sweepInterval        = time.Minute
)

// ContextStore - snapshot store over the Contexts pool
//
// reads are served from a cache of packed snapshots; expired entries
// are removed by Run
type ContextStore struct {
	log   *logger.L
	pool  *PoolHandle
	cache *cache.Cache
}

// NewContextStore - store for the initialised database
//
// a zero lifetime selects the default
func NewContextStore(lifetime time.Duration) (*ContextStore, error) {
	poolData.RLock()
	initialised := nil != poolData.database
	poolData.RUnlock()

	if !initialised || nil == Pool.Contexts {
		return nil, fault.ErrNotInitialised
	}
	if lifetime <= 0 {
		lifetime = defaultCacheLifetime
	}

	return &ContextStore{
		log:   logger.New("contexts"),
		pool:  Pool.Contexts,
		cache: cache.New(lifetime, cache.NoExpiration),
	}, nil
}

// Store - write the packed snapshot, false on failure
func (s *ContextStore) Store(snapshot *relationship.Snapshot) bool {
	key := snapshot.Key()
	packed := snapshot.Pack()

	if err := s.pool.Put(key.Bytes(), packed); nil != err {
		s.log.Errorf("store: %s  error: %s", key, err)
		s.cache.Delete(key.String())
		return false
	}
	s.cache.SetDefault(key.String(), []byte(packed))
	s.log.Debugf("stored: %s  request: %d", key, snapshot.Request)
	return true
}

// Load - the last stored snapshot of a context
func (s *ContextStore) Load(key relationship.Key) (*relationship.Snapshot, error) {
	packed, err := s.Packed(key)
	if nil != err {
		return nil, err
	}
	return relationship.ParseSnapshot(packed)
}

// Packed - the raw stored record
func (s *ContextStore) Packed(key relationship.Key) ([]byte, error) {
	if item, ok := s.cache.Get(key.String()); ok {
		return item.([]byte), nil
	}

	packed := s.pool.Get(key.Bytes())
	if nil == packed {
		return nil, fault.ErrContextNotFound
	}
	s.cache.SetDefault(key.String(), packed)
	return packed, nil
}

// Delete - remove a stored context
func (s *ContextStore) Delete(key relationship.Key) error {
	s.cache.Delete(key.String())
	return s.pool.Delete(key.Bytes())
}

// Keys - every stored context key, in key order
func (s *ContextStore) Keys() ([]relationship.Key, error) {
	keys := make([]relationship.Key, 0, 16)
	err := s.pool.Map(func(e Element) error {
		id := record.Identifier{}
		if err := record.IdentifierFromBytes(&id, e.Key); nil != err {
			s.log.Warnf("skip invalid key: %x", e.Key)
			return nil
		}
		keys = append(keys, relationship.Key(id))
		return nil
	})
	return keys, err
}

// Run - cache sweeper, implements background.Process
func (s *ContextStore) Run(args interface{}, shutdown <-chan struct{}) {
	s.log.Info("sweeper starting…")

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-ticker.C:
			before := s.cache.ItemCount()
			s.cache.DeleteExpired()
			s.log.Debugf("sweep: cached: %d → %d", before, s.cache.ItemCount())
		}
	}
	s.log.Info("sweeper stopped")
}
