// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reply

import (
	"github.com/bitmark-inc/notarysync/identity"
	"github.com/bitmark-inc/notarysync/record"
)

// Outcome - what a reply means for the message that was sent
type Outcome int

// the outcome taxonomy
const (
	Accepted           Outcome = iota // executed; consume numbers, advance hash
	StaleRequestNumber Outcome = iota // already answered; no side effects
	NymboxOutOfSync    Outcome = iota // catch up then send again
	Rejected           Outcome = iota // refused; release numbers
	Malformed          Outcome = iota // unusable; discard and retry
)

// String - name of the outcome
func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "Accepted"
	case StaleRequestNumber:
		return "StaleRequestNumber"
	case NymboxOutOfSync:
		return "NymboxOutOfSync"
	case Rejected:
		return "Rejected"
	case Malformed:
		return "Malformed"
	default:
		return "Unknown"
	}
}

// Expectation - what a reply to a particular message must look like
type Expectation struct {
	Notary       record.Verifier
	NotaryID     identity.ID
	LocalID      identity.ID
	Command      string
	Request      uint64
	Acknowledged func(request uint64) bool
}

// Expect - expectation for a sent message
func Expect(m *Message, notary record.Verifier, acknowledged func(uint64) bool) *Expectation {
	return &Expectation{
		Notary:       notary,
		NotaryID:     m.Notary,
		LocalID:      m.Local,
		Command:      m.Command,
		Request:      m.Request,
		Acknowledged: acknowledged,
	}
}

// Classify - map a reply onto an outcome
//
// signature, addressing and command are checked before anything else
func Classify(r *Reply, e *Expectation) Outcome {
	if nil == r || nil == e {
		return Malformed
	}
	if nil != r.Verify(e.Notary) {
		return Malformed
	}
	if r.Notary != e.NotaryID || r.Local != e.LocalID || r.Command != e.Command {
		return Malformed
	}

	if 0 != r.Request && nil != e.Acknowledged && e.Acknowledged(r.Request) {
		return StaleRequestNumber
	}
	if r.Request != e.Request {
		return Malformed
	}

	switch r.Status {
	case Success:
		return Accepted
	case Failure:
		return Rejected
	case DuplicateRequest:
		return StaleRequestNumber
	case NymboxMismatch:
		return NymboxOutOfSync
	default:
		return Malformed
	}
}
