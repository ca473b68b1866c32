// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reply

import (
	"github.com/bitmark-inc/notarysync/identity"
	"github.com/bitmark-inc/notarysync/record"
)

// Status - the notary's verdict on a message
type Status uint64

// reply status values
const (
	InvalidStatus    Status = iota
	Success          Status = iota // command executed
	Failure          Status = iota // command refused
	DuplicateRequest Status = iota // request number already answered
	NymboxMismatch   Status = iota // stamped nymbox hash is not the notary's
)

// String - name of the status
func (s Status) String() string {
	switch s {
	case Success:
		return "Success"
	case Failure:
		return "Failure"
	case DuplicateRequest:
		return "DuplicateRequest"
	case NymboxMismatch:
		return "NymboxMismatch"
	default:
		return "Invalid"
	}
}

// Reply - a notary's signed answer
//
// Offered lists numbers granted by getTransactionNumbers; Confirmed
// and Refused settle tentative numbers during processNymbox
type Reply struct {
	Notary     identity.ID
	Local      identity.ID
	Command    string
	Request    uint64
	Status     Status
	NymboxHash record.Identifier
	Offered    []uint64
	Confirmed  []uint64
	Refused    []uint64
	Payload    []byte
	Signature  []byte
}

// Body - canonical signature-excluded form
func (r *Reply) Body() record.Packed {
	return record.NewPacked(record.ReplyTag).
		AppendBytes(r.Notary.Bytes()).
		AppendBytes(r.Local.Bytes()).
		AppendString(r.Command).
		AppendUint64(r.Request).
		AppendUint64(uint64(r.Status)).
		AppendBytes(hashBytes(r.NymboxHash)).
		AppendSet(r.Offered).
		AppendSet(r.Confirmed).
		AppendSet(r.Refused).
		AppendBytes(r.Payload)
}

// Sign - notary side signing, used by test notaries and tools
func (r *Reply) Sign(signer record.Signer) error {
	signed, err := record.Sign(r.Body(), signer)
	if nil != err {
		return err
	}
	r.Signature = signed.Signature
	return nil
}

// Verify - check the notary signature
func (r *Reply) Verify(verifier record.Verifier) error {
	signed := record.Signed{
		Body:      r.Body(),
		Signature: r.Signature,
	}
	return signed.Verify(verifier)
}

// ID - content identifier
func (r *Reply) ID() record.Identifier {
	return record.NewIdentifier(r.Body())
}

// Pack - wire form
func (r *Reply) Pack() record.Packed {
	signed := record.Signed{
		Body:      r.Body(),
		Signature: r.Signature,
	}
	return signed.Pack()
}

// ParseReply - decode the wire form
func ParseReply(buffer []byte) (*Reply, error) {
	r := &Reply{}
	signed, err := record.Open(buffer, record.ReplyTag, func(u *record.Unpacker) error {
		var err error
		if r.Notary, err = unpackID(u); nil != err {
			return err
		}
		if r.Local, err = unpackID(u); nil != err {
			return err
		}
		if r.Command, err = u.String(); nil != err {
			return err
		}
		if r.Request, err = u.Uint64(); nil != err {
			return err
		}
		status, err := u.Uint64()
		if nil != err {
			return err
		}
		r.Status = Status(status)
		if r.NymboxHash, err = unpackHash(u); nil != err {
			return err
		}
		if r.Offered, err = u.Set(); nil != err {
			return err
		}
		if r.Confirmed, err = u.Set(); nil != err {
			return err
		}
		if r.Refused, err = u.Set(); nil != err {
			return err
		}
		r.Payload, err = u.Bytes()
		return err
	})
	if nil != err {
		return nil, err
	}
	r.Signature = signed.Signature
	return r, nil
}

// To - an unsigned reply addressed to the sender of m
func To(m *Message, status Status) *Reply {
	return &Reply{
		Notary:  m.Notary,
		Local:   m.Local,
		Command: m.Command,
		Request: m.Request,
		Status:  status,
	}
}
