// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reply

import (
	"github.com/bitmark-inc/notarysync/fault"
	"github.com/bitmark-inc/notarysync/identity"
	"github.com/bitmark-inc/notarysync/record"
)

// MaxPayloadLength - largest command or reply payload
const MaxPayloadLength = 1 << 18

// Message - a signed, sequenced command to a notary
type Message struct {
	Local        identity.ID
	Notary       identity.ID
	Command      string
	Request      uint64
	Acknowledged []uint64
	NymboxHash   record.Identifier
	Numbers      []uint64
	Receipts     []string
	Payload      []byte
	Signature    []byte
}

// Body - canonical signature-excluded form
func (m *Message) Body() record.Packed {
	return record.NewPacked(record.MessageTag).
		AppendBytes(m.Local.Bytes()).
		AppendBytes(m.Notary.Bytes()).
		AppendString(m.Command).
		AppendUint64(m.Request).
		AppendSet(m.Acknowledged).
		AppendBytes(hashBytes(m.NymboxHash)).
		AppendSet(m.Numbers).
		AppendStrings(m.Receipts).
		AppendBytes(m.Payload)
}

// Sign - replace the signature
func (m *Message) Sign(signer record.Signer) error {
	if "" == m.Command {
		return fault.ErrCommandRequired
	}
	if len(m.Payload) > MaxPayloadLength {
		return fault.ErrPayloadTooLong
	}
	signed, err := record.Sign(m.Body(), signer)
	if nil != err {
		return err
	}
	m.Signature = signed.Signature
	return nil
}

// Verify - check the signature
func (m *Message) Verify(verifier record.Verifier) error {
	signed := record.Signed{
		Body:      m.Body(),
		Signature: m.Signature,
	}
	return signed.Verify(verifier)
}

// ID - content identifier
func (m *Message) ID() record.Identifier {
	return record.NewIdentifier(m.Body())
}

// Pack - wire form
func (m *Message) Pack() record.Packed {
	signed := record.Signed{
		Body:      m.Body(),
		Signature: m.Signature,
	}
	return signed.Pack()
}

// ParseMessage - decode the wire form
func ParseMessage(buffer []byte) (*Message, error) {
	m := &Message{}
	signed, err := record.Open(buffer, record.MessageTag, func(u *record.Unpacker) error {
		var err error
		if m.Local, err = unpackID(u); nil != err {
			return err
		}
		if m.Notary, err = unpackID(u); nil != err {
			return err
		}
		if m.Command, err = u.String(); nil != err {
			return err
		}
		if m.Request, err = u.Uint64(); nil != err {
			return err
		}
		if m.Acknowledged, err = u.Set(); nil != err {
			return err
		}
		if m.NymboxHash, err = unpackHash(u); nil != err {
			return err
		}
		if m.Numbers, err = u.Set(); nil != err {
			return err
		}
		if m.Receipts, err = u.Strings(); nil != err {
			return err
		}
		m.Payload, err = u.Bytes()
		return err
	})
	if nil != err {
		return nil, err
	}
	m.Signature = signed.Signature
	return m, nil
}

func hashBytes(h record.Identifier) []byte {
	if h.IsZero() {
		return []byte{}
	}
	return h[:]
}

func unpackHash(u *record.Unpacker) (record.Identifier, error) {
	h := record.Identifier{}
	buffer, err := u.Bytes()
	if nil != err || 0 == len(buffer) {
		return h, err
	}
	err = record.IdentifierFromBytes(&h, buffer)
	return h, err
}

func unpackID(u *record.Unpacker) (identity.ID, error) {
	buffer, err := u.Bytes()
	if nil != err {
		return identity.ID{}, err
	}
	return identity.IDFromBytes(buffer)
}
