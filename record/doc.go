// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package record - canonical signed records
//
// Every signed record is packed as:
//
//	Varint64(tag) || field… || Varint64(len(signature)) || signature
//
// fields are Varint64 integers, Varint64(length) prefixed byte
// strings, or Varint64(count) prefixed ascending sets of Varint64.
//
// The body (everything before the signature) is byte-for-byte
// reproducible from the record's state; its SHA3-256 digest is the
// record's content identifier and is also the message that is signed.
package record
