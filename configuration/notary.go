// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"encoding/hex"

	"github.com/bitmark-inc/notarysync/fault"
	"github.com/bitmark-inc/notarysync/identity"
	"github.com/bitmark-inc/notarysync/zmqutil"
)

// NotaryType - one notary server
//
// the signing key is hex ed25519, the server key is the tagged
// "PUBLIC:hex" CURVE key written by zmqutil.MakeKeyPair
type NotaryType struct {
	Name      string `gluamapper:"name" json:"name"`
	ID        string `gluamapper:"id" json:"id"`
	PublicKey string `gluamapper:"public_key" json:"public_key"`
	Address   string `gluamapper:"address" json:"address"`
	ServerKey string `gluamapper:"server_key" json:"server_key"`
}

// Public - the notary signing key, checked against the configured ID
func (n NotaryType) Public() (*identity.Public, error) {
	key, err := hex.DecodeString(n.PublicKey)
	if nil != err {
		return nil, fault.ErrInvalidPublicKey
	}
	public, err := identity.NewPublic(key)
	if nil != err {
		return nil, err
	}
	if "" != n.ID {
		id, err := identity.IDFromBase58(n.ID)
		if nil != err {
			return nil, err
		}
		if id != public.ID() {
			return nil, fault.ErrMismatchedNotaryKey
		}
	}
	return public, nil
}

// CurveKey - the raw CURVE server key
func (n NotaryType) CurveKey() ([]byte, error) {
	return zmqutil.ReadPublicKey(n.ServerKey)
}
