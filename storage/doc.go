// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk context store
//
// maintain separate pools of a number of elements in key->value form
//
// The database is either LevelDB (default) or BoltDB.  Each pool is
// defined by a prefix byte obtained from the prefix tag in the struct
// defining the available pools.  In LevelDB the prefix is prepended to
// every key, in BoltDB each prefix is its own bucket.
//
// Notes:
// 1. ++           = concatenation of byte data
// 2. context key  = SHA3-256(kind ++ local ID ++ remote ID ++ notary ID)
// 3. *others*     = byte values of various length
//
// Version:
//
//	0x00 ++ "VERSION"          - database version
//	                             data: big endian uint32
//
// Contexts:
//
//	C ++ context key           - latest signed snapshot of a context
//	                             data: packed snapshot record
//
// Testing:
//
//	Z ++ key                   - testing data
package storage
