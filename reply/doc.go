// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package reply - messages to a notary, its replies and their
// classification
//
// Message record layout:
//
//	Varint64(tag=2)
//	Varint64(32) || local ID
//	Varint64(32) || notary ID
//	Varint64(length) || command
//	Varint64(request number)
//	set acknowledged
//	Varint64(0|32) || local nymbox hash
//	set transaction numbers
//	Varint64(count) followed by receipt IDs as strings
//	Varint64(length) || payload
//	Varint64(length) || signature
//
// Reply record layout:
//
//	Varint64(tag=3)
//	Varint64(32) || notary ID
//	Varint64(32) || local ID
//	Varint64(length) || command
//	Varint64(echoed request number)
//	Varint64(status)
//	Varint64(0|32) || notary nymbox hash
//	set offered numbers
//	set confirmed numbers
//	set refused numbers
//	Varint64(length) || payload
//	Varint64(length) || signature
package reply
