// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reply_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/notarysync/fault"
	"github.com/bitmark-inc/notarysync/fixtures"
	"github.com/bitmark-inc/notarysync/record"
	"github.com/bitmark-inc/notarysync/reply"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

func newMessage(t *testing.T) *reply.Message {
	m := &reply.Message{
		Local:        fixtures.Client().ID(),
		Notary:       fixtures.Notary().ID(),
		Command:      reply.NotarizeTransaction,
		Request:      12,
		Acknowledged: []uint64{10, 8},
		NymboxHash:   record.NewIdentifier([]byte("box")),
		Numbers:      []uint64{101},
		Receipts:     []string{"r-1", "r-2"},
		Payload:      []byte("transfer 5"),
	}
	require.Nil(t, m.Sign(fixtures.Client()))
	return m
}

func signedReply(t *testing.T, m *reply.Message, status reply.Status) *reply.Reply {
	r := reply.To(m, status)
	r.NymboxHash = record.NewIdentifier([]byte("box"))
	require.Nil(t, r.Sign(fixtures.Notary()))
	return r
}

func TestMessageWireForm(t *testing.T) {
	m := newMessage(t)

	packed := m.Pack()
	assert.Equal(t, record.MessageTag, packed.Type())

	decoded, err := reply.ParseMessage(packed)
	require.Nil(t, err)
	assert.Equal(t, []uint64{8, 10}, decoded.Acknowledged, "set order")
	assert.Equal(t, m.Receipts, decoded.Receipts)
	assert.Equal(t, m.ID(), decoded.ID())
	assert.True(t, bytes.Equal(packed, decoded.Pack()))
	assert.Nil(t, decoded.Verify(fixtures.Client()))
	assert.Equal(t, fault.ErrInvalidSignature, decoded.Verify(fixtures.Notary()))

	_, err = reply.ParseReply(packed)
	assert.Equal(t, fault.ErrUnexpectedRecordTag, err)
}

func TestMessageSignChecks(t *testing.T) {
	m := &reply.Message{}
	assert.Equal(t, fault.ErrCommandRequired, m.Sign(fixtures.Client()))

	m.Command = reply.PingNotary
	m.Payload = make([]byte, reply.MaxPayloadLength+1)
	assert.Equal(t, fault.ErrPayloadTooLong, m.Sign(fixtures.Client()))
}

func TestReplyWireForm(t *testing.T) {
	m := newMessage(t)
	r := signedReply(t, m, reply.Success)
	r.Offered = []uint64{30, 31}
	require.Nil(t, r.Sign(fixtures.Notary()))

	decoded, err := reply.ParseReply(r.Pack())
	require.Nil(t, err)
	assert.Equal(t, reply.Success, decoded.Status)
	assert.Equal(t, []uint64{30, 31}, decoded.Offered)
	assert.Equal(t, uint64(12), decoded.Request)
	assert.Nil(t, decoded.Verify(fixtures.Notary()))
}

func TestClassify(t *testing.T) {
	m := newMessage(t)
	acknowledged := func(r uint64) bool { return 7 == r }

	forged := signedReply(t, m, reply.Success)
	forged.Signature = nil
	require.Nil(t, forged.Sign(fixtures.Client()))

	misrouted := reply.To(m, reply.Success)
	misrouted.Local = fixtures.Peer().ID()
	require.Nil(t, misrouted.Sign(fixtures.Notary()))

	otherCommand := reply.To(m, reply.Success)
	otherCommand.Command = reply.GetNymbox
	require.Nil(t, otherCommand.Sign(fixtures.Notary()))

	old := reply.To(m, reply.Success)
	old.Request = 7
	require.Nil(t, old.Sign(fixtures.Notary()))

	wrongRequest := reply.To(m, reply.Success)
	wrongRequest.Request = 13
	require.Nil(t, wrongRequest.Sign(fixtures.Notary()))

	unknown := reply.To(m, reply.Status(99))
	require.Nil(t, unknown.Sign(fixtures.Notary()))

	items := []struct {
		name     string
		r        *reply.Reply
		expected reply.Outcome
	}{
		{"success", signedReply(t, m, reply.Success), reply.Accepted},
		{"failure", signedReply(t, m, reply.Failure), reply.Rejected},
		{"duplicate", signedReply(t, m, reply.DuplicateRequest), reply.StaleRequestNumber},
		{"mismatch", signedReply(t, m, reply.NymboxMismatch), reply.NymboxOutOfSync},
		{"acknowledged", old, reply.StaleRequestNumber},
		{"nil", nil, reply.Malformed},
		{"forged", forged, reply.Malformed},
		{"misrouted", misrouted, reply.Malformed},
		{"command", otherCommand, reply.Malformed},
		{"request", wrongRequest, reply.Malformed},
		{"status", unknown, reply.Malformed},
	}

	for _, item := range items {
		e := reply.Expect(m, fixtures.Notary(), acknowledged)
		actual := reply.Classify(item.r, e)
		assert.Equal(t, item.expected, actual, "%s: outcome: %s", item.name, actual)
	}
}

func TestNeedsRequestNumber(t *testing.T) {
	assert.False(t, reply.NeedsRequestNumber(reply.PingNotary))
	assert.False(t, reply.NeedsRequestNumber(reply.RegisterNym))
	assert.False(t, reply.NeedsRequestNumber(reply.GetRequestNumber))
	assert.True(t, reply.NeedsRequestNumber(reply.ProcessNymbox))
	assert.True(t, reply.IsCatchUp(reply.GetBoxReceipt))
	assert.False(t, reply.IsCatchUp(reply.NotarizeTransaction))
}
