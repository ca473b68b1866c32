// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package relationship_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/notarysync/fault"
	"github.com/bitmark-inc/notarysync/fixtures"
	"github.com/bitmark-inc/notarysync/record"
	"github.com/bitmark-inc/notarysync/relationship"
)

// copy of the current snapshot, fields may be changed before signing
func remoteOf(c *relationship.Context) *relationship.Snapshot {
	s := *c.Snapshot()
	s.Signature = nil
	return &s
}

// sign the remote snapshot as the owner of the context
func signed(t *testing.T, s *relationship.Snapshot) *relationship.Snapshot {
	r, err := record.Sign(s.Body(), fixtures.Client())
	require.Nil(t, err, "sign remote")
	s.Signature = r.Signature
	return s
}

func TestResyncMerge(t *testing.T) {
	c := newNotaryContext(t, nil)
	for _, n := range []uint64{1, 2, 3, 4} {
		assert.Nil(t, c.IssueNumber(n))
	}
	assert.Nil(t, c.AddTentativeNumber(8))
	assert.Nil(t, c.AddTentativeNumber(9))
	assert.Nil(t, c.AddAcknowledgedNumber(3))

	remote := remoteOf(c)
	remote.Issued = []uint64{2, 3, 8, 20} // 1 and 4 unknown remotely
	remote.Available = []uint64{3, 8, 20} // 2 spent remotely
	remote.Tentative = nil
	remote.Request = 50
	remote.Highest = 20
	remote.Acknowledged = []uint64{40}

	assert.Nil(t, c.Resync(signed(t, remote)))

	assert.Equal(t, []uint64{1, 2, 3, 4, 8, 20}, c.IssuedNumbers(), "issued is the union")
	assert.Equal(t, []uint64{1, 3, 4}, c.AvailableNumbers(), "available merge")
	assert.Equal(t, []uint64{9}, c.TentativeNumbers(), "settled offer still tentative")
	assert.Equal(t, uint64(50), c.Request(), "request number")
	assert.Equal(t, []uint64{3, 40}, c.AcknowledgedNumbers())
	assert.Nil(t, c.Quarantined())
}

func TestResyncNeverFabricatesAvailability(t *testing.T) {
	c := newNotaryContext(t, nil)
	assert.Nil(t, c.IssueNumber(1))
	assert.Nil(t, c.ConsumeAvailable(1))

	remote := remoteOf(c)
	remote.Issued = []uint64{1, 2}
	remote.Available = []uint64{1, 2}

	assert.Nil(t, c.Resync(signed(t, remote)))
	assert.Equal(t, 0, len(c.AvailableNumbers()), "remote availability adopted")
	assert.Equal(t, []uint64{1, 2}, c.IssuedNumbers())
}

func TestResyncRequestNeverDecreases(t *testing.T) {
	c := newNotaryContext(t, nil)
	for i := 0; i < 3; i += 1 {
		_, err := c.IncrementRequest()
		assert.Nil(t, err)
	}
	remote := remoteOf(c)
	remote.Request = 1

	assert.Nil(t, c.Resync(signed(t, remote)))
	assert.Equal(t, uint64(3), c.Request())
}

func TestResyncRejectsOtherContext(t *testing.T) {
	c := newNotaryContext(t, nil)
	p, err := relationship.New(relationship.PeerToPeer, fixtures.Client(), fixtures.Peer().ID(), fixtures.Notary().ID(), nil, nil)
	assert.Nil(t, err)

	assert.Equal(t, fault.ErrMismatchedContext, c.Resync(p.Snapshot()))
	assert.Equal(t, fault.ErrMissingParameters, c.Resync(nil))
}

func TestResyncRefusesUnsignedSnapshot(t *testing.T) {
	c := newNotaryContext(t, nil)
	assert.Nil(t, c.IssueNumber(1))
	before := c.Snapshot()

	forged := remoteOf(c)
	forged.Issued = []uint64{1, 7, 8, 9}
	forged.Request = 1 << 62
	assert.Equal(t, fault.ErrInvalidSignature, c.Resync(forged))

	tampered := signed(t, remoteOf(c))
	tampered.Request = 1 << 62
	assert.Equal(t, fault.ErrInvalidSignature, c.Resync(tampered))

	foreign := remoteOf(c)
	r, err := record.Sign(foreign.Body(), fixtures.Peer())
	require.Nil(t, err)
	foreign.Signature = r.Signature
	assert.Equal(t, fault.ErrInvalidSignature, c.Resync(foreign))

	assert.Equal(t, []uint64{1}, c.IssuedNumbers())
	assert.Equal(t, uint64(0), c.Request())
	assert.Equal(t, before, c.Snapshot(), "context changed")
	assert.Nil(t, c.Quarantined())
}
