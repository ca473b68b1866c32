// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package relationship - the synchronised state one identity keeps
// for one counterparty
//
// A Context binds a transaction number ledger, the nymbox hash pair
// and the bounded set of acknowledged request numbers to a
// (local identity, remote identity, notary) triple.  Every change
// produces a new signed snapshot which is handed to the store after
// the state lock has been released.
//
// Snapshot record layout:
//
//	Varint64(tag=1)
//	Varint64(version)
//	Varint64(kind)
//	Varint64(32) || local ID
//	Varint64(32) || remote ID
//	Varint64(32) || notary ID
//	Varint64(request number)
//	Varint64(0|32) || local nymbox hash
//	Varint64(0|32) || remote nymbox hash
//	set issued
//	set available
//	set tentative
//	Varint64(highest)
//	set acknowledged
//	Varint64(length) || admin password
//	byte admin attempted
//	byte admin success
//	Varint64(revision)
//	Varint64(length) || signature
//
// where set is Varint64(count) followed by the Varint64 numbers in
// ascending order
package relationship
