// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package delivery_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/notarysync/delivery"
	"github.com/bitmark-inc/notarysync/delivery/mocks"
	"github.com/bitmark-inc/notarysync/fault"
	"github.com/bitmark-inc/notarysync/fixtures"
	"github.com/bitmark-inc/notarysync/record"
	"github.com/bitmark-inc/notarysync/reply"
)

// sends block until the gate is opened or the send is abandoned
func gated(notary *fixtures.FakeNotary, gate <-chan struct{}) func(context.Context, *reply.Message) (*reply.Reply, error) {
	return func(ctx context.Context, m *reply.Message) (*reply.Reply, error) {
		select {
		case <-gate:
			return notary.Send(ctx, m)
		case <-ctx.Done():
			return nil, fault.ErrTimeout
		}
	}
}

func slowConfiguration() delivery.Configuration {
	config := testConfiguration()
	config.Timeout = 5 * time.Second
	return config
}

func awaiting(e *delivery.Engine) func() bool {
	return func() bool {
		return delivery.AwaitingReply == e.Status().State
	}
}

func TestCancelQueued(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gate := make(chan struct{})
	notary := fixtures.NewFakeNotary(h1)
	transport := mocks.NewMockTransport(ctrl)
	transport.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(gated(notary, gate)).Times(1)

	c := newContext(t, record.Identifier{}, record.Identifier{})
	e := newEngine(t, c, transport, slowConfiguration())
	defer e.Shutdown()

	first := e.Submit(reply.PingNotary, delivery.Arguments{})
	second := e.Submit(reply.PingNotary, delivery.Arguments{})

	assert.True(t, second.Cancel(), "cancel refused")
	assert.False(t, second.Cancel(), "second cancel accepted")
	close(gate)

	result := wait(t, first)
	assert.Equal(t, delivery.Success, result.State)

	result = wait(t, second)
	assert.Equal(t, delivery.Cancelled, result.State)
	assert.Equal(t, fault.ErrCancelled, result.Err)

	assert.Eventually(t, func() bool {
		s := e.Status()
		return delivery.Idle == s.State && 0 == s.Queued
	}, time.Second, 5*time.Millisecond)
}

func TestCancelInFlight(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gate := make(chan struct{})
	notary := fixtures.NewFakeNotary(h2)
	transport := mocks.NewMockTransport(ctrl)
	transport.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(gated(notary, gate)).Times(1)

	c := newContext(t, h1, h1)
	e := newEngine(t, c, transport, slowConfiguration())
	defer e.Shutdown()

	h := e.Submit(reply.PingNotary, delivery.Arguments{})
	require.Eventually(t, awaiting(e), time.Second, time.Millisecond)

	assert.True(t, h.Cancel())
	result, ok := h.Waiter().Result()
	require.True(t, ok, "not resolved by cancel")
	assert.Equal(t, delivery.Cancelled, result.State)

	close(gate)

	// the late reply still reaches the context
	assert.Eventually(t, func() bool {
		return h2 == c.RemoteNymboxHash()
	}, time.Second, 5*time.Millisecond)

	result = wait(t, h)
	assert.Equal(t, delivery.Cancelled, result.State, "cancelled result overwritten")
}

func TestShutdownCancelsPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gate := make(chan struct{})
	defer close(gate)
	notary := fixtures.NewFakeNotary(h1)
	transport := mocks.NewMockTransport(ctrl)
	transport.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(gated(notary, gate)).Times(1)

	c := newContext(t, h1, h1, 5)
	e := newEngine(t, c, transport, slowConfiguration())

	inFlight := e.Submit(reply.NotarizeTransaction, delivery.Arguments{Numbers: 1})
	require.Eventually(t, awaiting(e), time.Second, time.Millisecond)
	queued := e.Submit(reply.PingNotary, delivery.Arguments{})

	done := e.Shutdown()
	_, ok := done.Waiter().Result()
	assert.True(t, ok, "shutdown handle unresolved")

	for _, h := range []*delivery.Handle{inFlight, queued} {
		result, ok := h.Waiter().Result()
		require.True(t, ok, "pending handle unresolved after shutdown")
		assert.Equal(t, delivery.Cancelled, result.State)
	}
	assert.Equal(t, []uint64{5}, c.AvailableNumbers(), "reserved number not released")

	result := wait(t, e.Submit(reply.PingNotary, delivery.Arguments{}))
	assert.Equal(t, delivery.Cancelled, result.State)
	assert.Equal(t, fault.ErrEngineStopped, result.Err)

	// repeated shutdown is harmless
	e.Shutdown()
}

func TestQueueFull(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gate := make(chan struct{})
	notary := fixtures.NewFakeNotary(h1)
	transport := mocks.NewMockTransport(ctrl)
	transport.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(gated(notary, gate)).Times(2)

	config := slowConfiguration()
	config.QueueSize = 1
	c := newContext(t, h1, h1)
	e := newEngine(t, c, transport, config)
	defer e.Shutdown()

	first := e.Submit(reply.PingNotary, delivery.Arguments{})
	require.Eventually(t, awaiting(e), time.Second, time.Millisecond)

	second := e.Submit(reply.PingNotary, delivery.Arguments{})
	third := e.Submit(reply.PingNotary, delivery.Arguments{})

	result, ok := third.Waiter().Result()
	require.True(t, ok, "overflow not rejected at once")
	assert.Equal(t, delivery.Failed, result.State)
	assert.Equal(t, fault.ErrQueueFull, result.Err)

	close(gate)
	assert.Equal(t, delivery.Success, wait(t, first).State)
	assert.Equal(t, delivery.Success, wait(t, second).State)
}
