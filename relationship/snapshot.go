// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package relationship

import (
	"encoding/hex"

	"github.com/bitmark-inc/notarysync/fault"
	"github.com/bitmark-inc/notarysync/identity"
	"github.com/bitmark-inc/notarysync/ledger"
	"github.com/bitmark-inc/notarysync/record"
)

const snapshotVersion = 1

// Key - stable storage key of a context, independent of its content
type Key record.Identifier

// NewKey - key for a (kind, local, remote, notary) combination
func NewKey(kind Kind, local identity.ID, remote identity.ID, notary identity.ID) Key {
	buffer := record.NewPacked(record.SnapshotTag).
		AppendUint64(uint64(kind)).
		AppendBytes(local.Bytes()).
		AppendBytes(remote.Bytes()).
		AppendBytes(notary.Bytes())
	return Key(record.NewIdentifier(buffer))
}

// Bytes - raw key
func (k Key) Bytes() []byte {
	return k[:]
}

// String - hex form
func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// KeyFromString - parse the hex form
func KeyFromString(s string) (Key, error) {
	k := Key{}
	buffer, err := hex.DecodeString(s)
	if nil != err {
		return k, fault.ErrInvalidIdentifier
	}
	id := record.Identifier{}
	if err := record.IdentifierFromBytes(&id, buffer); nil != err {
		return k, err
	}
	return Key(id), nil
}

// Admin - notary administration session, client-to-notary only
type Admin struct {
	Password  string
	Attempted bool
	Success   bool
	Revision  uint64
}

// Snapshot - the signed, persistable form of a context
type Snapshot struct {
	Kind         Kind
	Local        identity.ID
	Remote       identity.ID
	Notary       identity.ID
	Request      uint64
	LocalHash    record.Identifier
	RemoteHash   record.Identifier
	Issued       []uint64
	Available    []uint64
	Tentative    []uint64
	Highest      uint64
	Acknowledged []uint64
	Admin        Admin
	Signature    []byte
}

// Key - storage key
func (s *Snapshot) Key() Key {
	return NewKey(s.Kind, s.Local, s.Remote, s.Notary)
}

// Body - canonical signature-excluded form
func (s *Snapshot) Body() record.Packed {
	return record.NewPacked(record.SnapshotTag).
		AppendUint64(snapshotVersion).
		AppendUint64(uint64(s.Kind)).
		AppendBytes(s.Local.Bytes()).
		AppendBytes(s.Remote.Bytes()).
		AppendBytes(s.Notary.Bytes()).
		AppendUint64(s.Request).
		AppendBytes(hashBytes(s.LocalHash)).
		AppendBytes(hashBytes(s.RemoteHash)).
		AppendSet(s.Issued).
		AppendSet(s.Available).
		AppendSet(s.Tentative).
		AppendUint64(s.Highest).
		AppendSet(s.Acknowledged).
		AppendString(s.Admin.Password).
		AppendBool(s.Admin.Attempted).
		AppendBool(s.Admin.Success).
		AppendUint64(s.Admin.Revision)
}

// ID - content identifier
func (s *Snapshot) ID() record.Identifier {
	return record.NewIdentifier(s.Body())
}

// Pack - body followed by the signature
func (s *Snapshot) Pack() record.Packed {
	signed := record.Signed{
		Body:      s.Body(),
		Signature: s.Signature,
	}
	return signed.Pack()
}

// Verify - check the signature against the local identity
func (s *Snapshot) Verify(verifier record.Verifier) error {
	signed := record.Signed{
		Body:      s.Body(),
		Signature: s.Signature,
	}
	return signed.Verify(verifier)
}

// Ledger - rebuild the transaction number ledger
func (s *Snapshot) Ledger() (*ledger.Ledger, error) {
	return ledger.Restore(s.Issued, s.Available, s.Tentative, s.Highest, s.Request)
}

// ParseSnapshot - decode a packed snapshot
//
// the signature is not checked, call Verify with the owner's identity
func ParseSnapshot(buffer []byte) (*Snapshot, error) {
	s := &Snapshot{}

	signed, err := record.Open(buffer, record.SnapshotTag, func(u *record.Unpacker) error {
		version, err := u.Uint64()
		if nil != err {
			return err
		}
		if snapshotVersion != version {
			return fault.ErrWrongRecordVersion
		}

		kind, err := u.Uint64()
		if nil != err {
			return err
		}
		s.Kind = Kind(kind)
		if _, err := s.Kind.Policy(); nil != err {
			return err
		}

		for _, id := range []*identity.ID{&s.Local, &s.Remote, &s.Notary} {
			buffer, err := u.Bytes()
			if nil != err {
				return err
			}
			*id, err = identity.IDFromBytes(buffer)
			if nil != err {
				return err
			}
		}

		s.Request, err = u.Uint64()
		if nil != err {
			return err
		}

		for _, h := range []*record.Identifier{&s.LocalHash, &s.RemoteHash} {
			buffer, err := u.Bytes()
			if nil != err {
				return err
			}
			*h, err = hashFromBytes(buffer)
			if nil != err {
				return err
			}
		}

		for _, set := range []*[]uint64{&s.Issued, &s.Available, &s.Tentative} {
			*set, err = u.Set()
			if nil != err {
				return err
			}
		}

		s.Highest, err = u.Uint64()
		if nil != err {
			return err
		}

		s.Acknowledged, err = u.Set()
		if nil != err {
			return err
		}

		s.Admin.Password, err = u.String()
		if nil != err {
			return err
		}
		s.Admin.Attempted, err = u.Bool()
		if nil != err {
			return err
		}
		s.Admin.Success, err = u.Bool()
		if nil != err {
			return err
		}
		s.Admin.Revision, err = u.Uint64()
		return err
	})
	if nil != err {
		return nil, err
	}

	s.Signature = signed.Signature
	return s, nil
}

// an absent hash packs as an empty field
func hashBytes(h record.Identifier) []byte {
	if h.IsZero() {
		return []byte{}
	}
	return h[:]
}

func hashFromBytes(buffer []byte) (record.Identifier, error) {
	h := record.Identifier{}
	if 0 == len(buffer) {
		return h, nil
	}
	err := record.IdentifierFromBytes(&h, buffer)
	return h, err
}
