// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identity

import (
	"bytes"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/notarysync/fault"
	"github.com/bitmark-inc/notarysync/record"
)

// ID - a Nym or notary identifier: digest of its public key
type ID record.Identifier

// Identity - the signing capability handed to a context
//
// Sign must be safe for concurrent use
type Identity interface {
	ID() ID
	PublicKey() []byte
	Sign(message []byte) ([]byte, error)
	Verify(message []byte, signature []byte) bool
}

// NewID - identifier for a public key
func NewID(publicKey []byte) ID {
	return ID(record.NewIdentifier(publicKey))
}

// IDFromBase58 - decode the text form of an identifier
func IDFromBase58(s string) (ID, error) {
	id := ID{}
	buffer, err := base58.Decode(s)
	if nil != err {
		return id, fault.ErrInvalidIdentifier
	}
	if len(buffer) != len(id) {
		return id, fault.ErrInvalidIdentifier
	}
	copy(id[:], buffer)
	return id, nil
}

// IDFromBytes - copy a byte slice into an identifier
func IDFromBytes(buffer []byte) (ID, error) {
	id := ID{}
	if len(buffer) != len(id) {
		return id, fault.ErrInvalidIdentifier
	}
	copy(id[:], buffer)
	return id, nil
}

// String - base58 text form
func (id ID) String() string {
	return base58.Encode(id[:])
}

// Bytes - raw identifier
func (id ID) Bytes() []byte {
	return id[:]
}

// IsZero - true if never set
func (id ID) IsZero() bool {
	return id == ID{}
}

// MarshalText - base58 for configuration and JSON
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText - base58 for configuration and JSON
func (id *ID) UnmarshalText(s []byte) error {
	decoded, err := IDFromBase58(string(s))
	if nil != err {
		return err
	}
	*id = decoded
	return nil
}

// Verify - check an ed25519 signature against a public key
func Verify(publicKey []byte, message []byte, signature []byte) bool {
	if ed25519.PublicKeySize != len(publicKey) || ed25519.SignatureSize != len(signature) {
		return false
	}
	return ed25519.Verify(publicKey, message, signature)
}

// Public - a counterparty known only by its public key
type Public struct {
	id        ID
	publicKey ed25519.PublicKey
}

// NewPublic - wrap a counterparty public key
func NewPublic(publicKey []byte) (*Public, error) {
	if ed25519.PublicKeySize != len(publicKey) {
		return nil, fault.ErrInvalidPublicKey
	}
	key := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(key, publicKey)
	return &Public{
		id:        NewID(key),
		publicKey: key,
	}, nil
}

// ID - identifier of the public key
func (p *Public) ID() ID {
	return p.id
}

// PublicKey - copy of the public key
func (p *Public) PublicKey() []byte {
	return append([]byte{}, p.publicKey...)
}

// Sign - a counterparty cannot sign locally
func (p *Public) Sign(message []byte) ([]byte, error) {
	return nil, fault.ErrSigningUnavailable
}

// Verify - check a signature made by the counterparty
func (p *Public) Verify(message []byte, signature []byte) bool {
	return Verify(p.publicKey, message, signature)
}

// Equal - same key
func (p *Public) Equal(other *Public) bool {
	return nil != other && bytes.Equal(p.publicKey, other.publicKey)
}
