// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fixtures

import (
	"context"
	"sync"

	"github.com/bitmark-inc/notarysync/fault"
	"github.com/bitmark-inc/notarysync/identity"
	"github.com/bitmark-inc/notarysync/record"
	"github.com/bitmark-inc/notarysync/reply"
)

// default count for getTransactionNumbers
const offerCount = 3

// FakeNotary - scripted in-process notary, usable as a delivery transport
type FakeNotary struct {
	sync.Mutex
	signer     identity.Identity
	client     record.Verifier
	nymboxHash record.Identifier
	answered   map[uint64]*reply.Reply
	issued     map[uint64]bool // true while unused
	offered    []uint64
	next       uint64
	request    uint64
	refuse     map[string]bool
	loseSends  int
	loseReply  int
	commands   []string
	requests   []uint64
	override   func(m *reply.Message) (*reply.Reply, bool)
}

// NewFakeNotary - notary signing with Notary() and verifying Client()
func NewFakeNotary(nymboxHash record.Identifier) *FakeNotary {
	return &FakeNotary{
		signer:     Notary(),
		client:     Client(),
		nymboxHash: nymboxHash,
		answered:   make(map[uint64]*reply.Reply),
		issued:     make(map[uint64]bool),
		next:       1000,
		refuse:     make(map[string]bool),
	}
}

// Issue - numbers the client already holds
func (n *FakeNotary) Issue(numbers ...uint64) {
	n.Lock()
	defer n.Unlock()
	for _, i := range numbers {
		n.issued[i] = true
	}
}

// SetNymboxHash - new items arrived in the nymbox
func (n *FakeNotary) SetNymboxHash(h record.Identifier) {
	n.Lock()
	defer n.Unlock()
	n.nymboxHash = h
}

// Refuse - answer a command with Failure
func (n *FakeNotary) Refuse(command string) {
	n.Lock()
	defer n.Unlock()
	n.refuse[command] = true
}

// SetOverride - replace the answer to selected messages
//
// a reply returned with true is signed by the notary and sent as is
func (n *FakeNotary) SetOverride(fn func(m *reply.Message) (*reply.Reply, bool)) {
	n.Lock()
	defer n.Unlock()
	n.override = fn
}

// LoseSends - the next count messages never arrive
func (n *FakeNotary) LoseSends(count int) {
	n.Lock()
	defer n.Unlock()
	n.loseSends = count
}

// LoseReplies - the next count messages are executed but the reply is lost
func (n *FakeNotary) LoseReplies(count int) {
	n.Lock()
	defer n.Unlock()
	n.loseReply = count
}

// Commands - every command received, lost ones included
func (n *FakeNotary) Commands() []string {
	n.Lock()
	defer n.Unlock()
	return append([]string{}, n.commands...)
}

// Requests - request numbers received, in order
func (n *FakeNotary) Requests() []uint64 {
	n.Lock()
	defer n.Unlock()
	return append([]uint64{}, n.requests...)
}

// Send - implements the delivery transport
func (n *FakeNotary) Send(ctx context.Context, m *reply.Message) (*reply.Reply, error) {
	n.Lock()
	n.commands = append(n.commands, m.Command)
	n.requests = append(n.requests, m.Request)

	if n.loseSends > 0 {
		n.loseSends -= 1
		n.Unlock()
		<-ctx.Done()
		return nil, fault.ErrTimeout
	}

	r := n.execute(m)

	if n.loseReply > 0 {
		n.loseReply -= 1
		n.Unlock()
		<-ctx.Done()
		return nil, fault.ErrTimeout
	}
	n.Unlock()
	return r, nil
}

// must hold lock
func (n *FakeNotary) execute(m *reply.Message) *reply.Reply {
	if nil != n.override {
		if r, ok := n.override(m); ok {
			return n.sign(r)
		}
	}

	if 0 != m.Request {
		if _, ok := n.answered[m.Request]; ok {
			return n.sign(reply.To(m, reply.DuplicateRequest))
		}
		if m.Request > n.request {
			n.request = m.Request
		}
	}

	r := n.answer(m)
	if 0 != m.Request {
		n.answered[m.Request] = r
	}
	return r
}

// must hold lock
func (n *FakeNotary) answer(m *reply.Message) *reply.Reply {
	if nil != m.Verify(n.client) {
		return n.sign(reply.To(m, reply.Failure))
	}

	financial := reply.NeedsRequestNumber(m.Command) && !reply.IsCatchUp(m.Command)
	if financial && m.NymboxHash != n.nymboxHash {
		return n.sign(reply.To(m, reply.NymboxMismatch))
	}

	r := reply.To(m, reply.Success)
	switch m.Command {
	case reply.GetNymbox, reply.GetBoxReceipt, reply.PingNotary, reply.RegisterNym:

	case reply.GetRequestNumber:
		r.Payload = record.ToVarint64(n.request)

	case reply.ProcessNymbox:
		r.Confirmed = n.offered
		for _, i := range n.offered {
			n.issued[i] = true
		}
		n.offered = nil

	case reply.GetTransactionNumbers:
		for i := 0; i < offerCount; i += 1 {
			n.next += 1
			r.Offered = append(r.Offered, n.next)
			n.offered = append(n.offered, n.next)
		}

	default:
		if n.refuse[m.Command] {
			r.Status = reply.Failure
			break
		}
		for _, i := range m.Numbers {
			if !n.issued[i] {
				r.Status = reply.Failure
				break
			}
		}
		if reply.Success == r.Status {
			for _, i := range m.Numbers {
				delete(n.issued, i)
			}
		}
	}
	return n.sign(r)
}

// must hold lock
func (n *FakeNotary) sign(r *reply.Reply) *reply.Reply {
	r.NymboxHash = n.nymboxHash
	if err := r.Sign(n.signer); nil != err {
		panic(err)
	}
	return r
}
