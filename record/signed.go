// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package record

import (
	"github.com/bitmark-inc/notarysync/fault"
)

// Signer - anything able to produce a signature over a message
type Signer interface {
	Sign(message []byte) ([]byte, error)
}

// Verifier - anything able to check a signature over a message
type Verifier interface {
	Verify(message []byte, signature []byte) bool
}

// Signed - a canonical body with exactly one current signature
type Signed struct {
	Body      Packed
	Signature []byte
}

// Sign - attach a signature to a body
//
// any previous signature is discarded, a record only ever carries
// the signature over its current body
func Sign(body Packed, signer Signer) (*Signed, error) {
	if nil == signer {
		return nil, fault.ErrSigningUnavailable
	}
	signature, err := signer.Sign(body)
	if nil != err {
		return nil, err
	}
	if len(signature) > maxSignatureLength {
		return nil, fault.ErrSignatureTooLong
	}
	return &Signed{
		Body:      body,
		Signature: signature,
	}, nil
}

// ID - content identifier of the signature-excluded body
func (s *Signed) ID() Identifier {
	return NewIdentifier(s.Body)
}

// Verify - check the signature against a public identity
func (s *Signed) Verify(verifier Verifier) error {
	if nil == verifier || 0 == len(s.Signature) {
		return fault.ErrInvalidSignature
	}
	if !verifier.Verify(s.Body, s.Signature) {
		return fault.ErrInvalidSignature
	}
	return nil
}

// Pack - body followed by the signature
func (s *Signed) Pack() Packed {
	buffer := make(Packed, 0, len(s.Body)+len(s.Signature)+Varint64MaximumBytes)
	buffer = append(buffer, s.Body...)
	return buffer.AppendBytes(s.Signature)
}

// Open - split a packed record into body and signature
//
// fields reads the body fields in order after the tag has been
// checked; whatever it has not consumed is taken as the signature and
// must be the final field
func Open(buffer []byte, tag TagType, fields func(u *Unpacker) error) (*Signed, error) {
	u := NewUnpacker(buffer)
	if err := u.Tag(tag); nil != err {
		return nil, err
	}
	if err := fields(u); nil != err {
		return nil, err
	}

	body := make(Packed, u.Offset())
	copy(body, buffer[:u.Offset()])

	signature, err := u.Bytes()
	if nil != err {
		return nil, err
	}
	if len(signature) > maxSignatureLength {
		return nil, fault.ErrSignatureTooLong
	}
	if 0 != u.Remaining() {
		return nil, fault.ErrTrailingData
	}
	return &Signed{
		Body:      body,
		Signature: signature,
	}, nil
}
