// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package record

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/notarysync/fault"
)

// IdentifierLength - bytes in a content identifier
const IdentifierLength = 32

// Identifier - SHA3-256 digest of a record's signature-excluded body
type Identifier [IdentifierLength]byte

// NewIdentifier - digest some bytes
func NewIdentifier(data []byte) Identifier {
	return sha3.Sum256(data)
}

// IdentifierFromBytes - copy a byte slice into an identifier
func IdentifierFromBytes(id *Identifier, buffer []byte) error {
	if IdentifierLength != len(buffer) {
		return fault.ErrInvalidIdentifier
	}
	copy(id[:], buffer)
	return nil
}

// IsZero - true if never set
func (id Identifier) IsZero() bool {
	return id == Identifier{}
}

// String - hex form
func (id Identifier) String() string {
	return hex.EncodeToString(id[:])
}

// GoString - debug form
func (id Identifier) GoString() string {
	return "<SHA3-256:" + hex.EncodeToString(id[:]) + ">"
}

// MarshalText - convert identifier to text
func (id Identifier) MarshalText() ([]byte, error) {
	buffer := make([]byte, hex.EncodedLen(IdentifierLength))
	hex.Encode(buffer, id[:])
	return buffer, nil
}

// UnmarshalText - convert text into an identifier
func (id *Identifier) UnmarshalText(s []byte) error {
	if hex.EncodedLen(IdentifierLength) != len(s) {
		return fault.ErrInvalidIdentifier
	}
	_, err := hex.Decode(id[:], s)
	return err
}
