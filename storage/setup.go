// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/notarysync/fault"
)

// exported storage pools
//
// note all must be exported (i.e. initial capital) or initialisation will panic
type pools struct {
	Contexts *PoolHandle `prefix:"C"`
	TestData *PoolHandle `prefix:"Z"`
}

// Pool - the set of exported pools
var Pool pools

// database backends
const (
	LevelDB = "leveldb"
	BoltDB  = "bolt"
)

// pool access modes
const (
	ReadOnly  = true
	ReadWrite = false
)

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

const currentDBVersion = 0x100

// holds the database handle
var poolData struct {
	sync.RWMutex
	log      *logger.L
	database backend
	readOnly bool
}

// Initialise - open up the database connection
//
// this must be called before any pool is accessed
func Initialise(kind string, database string, readOnly bool) error {
	poolData.Lock()
	defer poolData.Unlock()

	ok := false

	if nil != poolData.database {
		return fault.ErrAlreadyInitialised
	}

	poolData.log = logger.New("storage")

	defer func() {
		if !ok {
			dbClose()
		}
	}()

	db, err := openBackend(kind, database, readOnly)
	if nil != err {
		return err
	}
	poolData.database = db
	poolData.readOnly = readOnly

	version, err := getVersion(db)
	if nil != err {
		return err
	}

	// ensure no database downgrade
	if version > currentDBVersion {
		poolData.log.Criticalf("database version: %d > current version: %d", version, currentDBVersion)
		return fmt.Errorf("database version: %d > current version: %d", version, currentDBVersion)
	}

	if 0 == version {
		if readOnly {
			poolData.log.Criticalf("database: %s is not initialised", database)
			return fault.ErrNotInitialised
		}

		// database was empty so tag as current version
		err = putVersion(db, currentDBVersion)
		if nil != err {
			return err
		}
	}

	// this will be a struct type
	poolType := reflect.TypeOf(Pool)

	// get write access by using pointer + Elem()
	poolValue := reflect.ValueOf(&Pool).Elem()

	// scan each field
	for i := 0; i < poolType.NumField(); i += 1 {

		fieldInfo := poolType.Field(i)

		prefixTag := fieldInfo.Tag.Get("prefix")
		if 1 != len(prefixTag) {
			return fmt.Errorf("pool: %v has invalid prefix: %q", fieldInfo, prefixTag)
		}

		p := &PoolHandle{
			prefix: prefixTag[0],
		}
		poolValue.Field(i).Set(reflect.ValueOf(p))
	}

	poolData.log.Infof("opened %s database: %s  version: %d", kind, database, currentDBVersion)

	ok = true // prevent db close
	return nil
}

func openBackend(kind string, database string, readOnly bool) (backend, error) {
	switch kind {
	case LevelDB, "":
		return openLevelDB(database+".leveldb", readOnly)
	case BoltDB:
		return openBoltDB(database+".bolt", readOnly)
	default:
		return nil, fault.ErrInvalidBackend
	}
}

func dbClose() {
	if nil != poolData.database {
		if err := poolData.database.close(); nil != err {
			poolData.log.Errorf("close error: %s", err)
		}
		poolData.database = nil
	}
}

// Finalise - close the database connection
func Finalise() {
	poolData.Lock()
	dbClose()
	poolData.Unlock()
}

// IsReadOnly - true if opened for inspection only
func IsReadOnly() bool {
	poolData.RLock()
	defer poolData.RUnlock()
	return poolData.readOnly
}

func getVersion(db backend) (int, error) {
	versionValue, err := db.get(versionKey)
	if nil != err {
		return 0, err
	}
	if nil == versionValue {
		return 0, nil
	}

	if 4 != len(versionValue) {
		return 0, fmt.Errorf("incompatible database version length: expected: %d  actual: %d", 4, len(versionValue))
	}

	version := int(binary.BigEndian.Uint32(versionValue))
	return version, nil
}

func putVersion(db backend, version int) error {
	currentVersion := make([]byte, 4)
	binary.BigEndian.PutUint32(currentVersion, uint32(version))

	return db.put(versionKey, currentVersion)
}
