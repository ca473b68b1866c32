// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package relationship

import (
	"github.com/bitmark-inc/notarysync/fault"
	"github.com/bitmark-inc/notarysync/reply"
)

// Kind - the relationship variant
type Kind uint64

// relationship variants
const (
	InvalidKind    Kind = iota
	PeerToPeer     Kind = iota // two Nyms that share a notary
	ClientToNotary Kind = iota // a Nym and the notary it transacts on
)

// String - name of the variant
func (k Kind) String() string {
	switch k {
	case PeerToPeer:
		return "peer-to-peer"
	case ClientToNotary:
		return "client-to-notary"
	default:
		return "invalid"
	}
}

// KindFromString - parse a variant name
func KindFromString(s string) (Kind, error) {
	switch s {
	case "peer-to-peer", "p2p":
		return PeerToPeer, nil
	case "client-to-notary", "notary":
		return ClientToNotary, nil
	default:
		return InvalidKind, fault.ErrInvalidRelationship
	}
}

// Policy - the behaviour that differs between variants
type Policy interface {
	Kind() Kind
	NeedsRequestNumber(command string) bool
	HasAdminSession() bool
}

// Policy - capability for this variant
func (k Kind) Policy() (Policy, error) {
	switch k {
	case PeerToPeer:
		return peerPolicy{}, nil
	case ClientToNotary:
		return notaryPolicy{}, nil
	default:
		return nil, fault.ErrInvalidRelationship
	}
}

// messages between peers travel inside notary messages and carry no
// sequence of their own
type peerPolicy struct{}

func (peerPolicy) Kind() Kind                     { return PeerToPeer }
func (peerPolicy) NeedsRequestNumber(string) bool { return false }
func (peerPolicy) HasAdminSession() bool          { return false }

type notaryPolicy struct{}

func (notaryPolicy) Kind() Kind            { return ClientToNotary }
func (notaryPolicy) HasAdminSession() bool { return true }
func (notaryPolicy) NeedsRequestNumber(command string) bool {
	return reply.NeedsRequestNumber(command)
}
