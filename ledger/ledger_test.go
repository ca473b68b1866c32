// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/notarysync/fault"
	"github.com/bitmark-inc/notarysync/ledger"
)

func TestIssueConsumeRecover(t *testing.T) {
	l := ledger.New()

	assert.True(t, l.Issue(5), "issue")
	assert.True(t, l.VerifyIssued(5), "issued")
	assert.True(t, l.VerifyAvailable(5), "available")

	assert.True(t, l.ConsumeIssued(5), "consume issued")
	assert.False(t, l.VerifyIssued(5), "still issued")
	assert.False(t, l.VerifyAvailable(5), "still available")

	assert.False(t, l.RecoverAvailable(5), "recovered a closed number")
	assert.Nil(t, l.Check(), "invariant")
}

func TestConsumeAvailableThenRecover(t *testing.T) {
	l := ledger.New()
	l.Issue(7)

	assert.True(t, l.ConsumeAvailable(7))
	assert.False(t, l.ConsumeAvailable(7), "consumed twice")
	assert.True(t, l.VerifyIssued(7))
	assert.False(t, l.VerifyAvailable(7))

	assert.True(t, l.RecoverAvailable(7))
	assert.True(t, l.VerifyAvailable(7))
}

func TestIssueRejectsZeroAndTentative(t *testing.T) {
	l := ledger.New()
	assert.False(t, l.Issue(0), "zero")

	assert.True(t, l.AddTentative(9))
	assert.False(t, l.Issue(9), "tentative issued directly")
	assert.False(t, l.AddTentative(9), "duplicate tentative")

	assert.True(t, l.ConfirmTentative(9))
	assert.False(t, l.VerifyTentative(9))
	assert.True(t, l.VerifyAvailable(9))
	assert.False(t, l.AddTentative(9), "issued number made tentative")
	assert.False(t, l.ConfirmTentative(9), "confirmed twice")
}

func TestUpdateHighest(t *testing.T) {
	good, bad, highest := ledger.UpdateHighest([]uint64{12, 3, 10, 11, 15}, 10)
	assert.Equal(t, []uint64{11, 12, 15}, good, "good")
	assert.Equal(t, []uint64{3, 10}, bad, "bad")
	assert.Equal(t, uint64(15), highest, "highest")

	good, bad, highest = ledger.UpdateHighest([]uint64{12, 9, 12, 9, 11}, 10)
	assert.Equal(t, []uint64{11, 12}, good, "repeated good")
	assert.Equal(t, []uint64{9}, bad, "repeated bad")
	assert.Equal(t, uint64(12), highest)

	good, bad, highest = ledger.UpdateHighest(nil, 20)
	assert.Equal(t, 0, len(good))
	assert.Equal(t, 0, len(bad))
	assert.Equal(t, uint64(20), highest)

	l := ledger.New()
	good, bad = l.UpdateHighest([]uint64{4, 5})
	assert.Equal(t, []uint64{4, 5}, good)
	assert.Equal(t, 0, len(bad))
	good, bad = l.UpdateHighest([]uint64{5, 6})
	assert.Equal(t, []uint64{6}, good)
	assert.Equal(t, []uint64{5}, bad)
	assert.Equal(t, uint64(6), l.Highest())
}

func TestRequestNumber(t *testing.T) {
	l := ledger.New()
	assert.Equal(t, uint64(1), l.IncrementRequest())
	assert.Equal(t, uint64(2), l.IncrementRequest())

	l.SetRequest(1)
	assert.Equal(t, uint64(2), l.Request(), "request went backwards")
	l.SetRequest(40)
	assert.Equal(t, uint64(40), l.Request())

	l.ResetRequest()
	assert.Equal(t, uint64(0), l.Request())
}

func TestCloneIsIndependent(t *testing.T) {
	l := ledger.New()
	l.Issue(1)
	l.Issue(2)

	c := l.Clone()
	c.ConsumeIssued(1)
	c.IncrementRequest()

	assert.Equal(t, []uint64{1, 2}, l.Issued())
	assert.Equal(t, []uint64{2}, c.Issued())
	assert.Equal(t, uint64(0), l.Request())
}

func TestRestore(t *testing.T) {
	l, err := ledger.Restore([]uint64{3, 1, 2}, []uint64{2}, []uint64{8}, 8, 17)
	assert.Nil(t, err)
	assert.Equal(t, []uint64{1, 2, 3}, l.Issued())
	assert.Equal(t, []uint64{2}, l.Available())
	assert.Equal(t, []uint64{8}, l.Tentative())
	assert.Equal(t, uint64(17), l.Request())

	n, ok := l.NextAvailable()
	assert.True(t, ok)
	assert.Equal(t, uint64(2), n)

	_, err = ledger.Restore([]uint64{1}, []uint64{1, 2}, nil, 0, 0)
	assert.Equal(t, fault.ErrAvailableNotIssued, err)

	_, err = ledger.Restore([]uint64{1}, nil, []uint64{1}, 0, 0)
	assert.Equal(t, fault.ErrTentativeIssued, err)
}

// random operation sequences must never break the invariants
func TestInvariantUnderRandomOperations(t *testing.T) {
	r := rand.New(rand.NewSource(20200101))

	for round := 0; round < 50; round += 1 {
		l := ledger.New()
		for step := 0; step < 1000; step += 1 {
			n := uint64(r.Intn(40))
			switch r.Intn(7) {
			case 0:
				l.Issue(n)
			case 1:
				l.ConsumeAvailable(n)
			case 2:
				l.ConsumeIssued(n)
			case 3:
				l.RecoverAvailable(n)
			case 4:
				l.AddTentative(n)
			case 5:
				l.RemoveTentative(n)
			case 6:
				l.ConfirmTentative(n)
			}
			if err := l.Check(); nil != err {
				t.Fatalf("round: %d  step: %d  error: %s", round, step, err)
			}
		}
	}
}
