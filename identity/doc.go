// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package identity - Nym identities
//
// A Nym owns an ed25519 signing key. The private key lives in a
// passphrase sealed keystore and is only present in memory between
// Unlock and Lock; while locked, Sign fails with a signing error and
// nothing is signed.
//
// Counterparties (notaries) are represented by Public, which can
// verify but never sign.
package identity
