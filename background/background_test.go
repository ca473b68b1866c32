// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package background_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/notarysync/background"
)

type ticker struct {
	ticks    int64
	finished int64
}

func (state *ticker) Run(args interface{}, shutdown <-chan struct{}) {
	interval := args.(time.Duration)

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-time.After(interval):
			atomic.AddInt64(&state.ticks, 1)
		}
	}
	atomic.StoreInt64(&state.finished, 1)
}

func TestStartStop(t *testing.T) {
	t1 := &ticker{}
	t2 := &ticker{}

	p := background.Start(background.Processes{t1, t2}, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	p.Stop()

	// Stop returns only after every Run has returned
	assert.Equal(t, int64(1), atomic.LoadInt64(&t1.finished), "first process still running")
	assert.Equal(t, int64(1), atomic.LoadInt64(&t2.finished), "second process still running")
	assert.NotEqual(t, int64(0), atomic.LoadInt64(&t1.ticks), "first process never ran")
	assert.NotEqual(t, int64(0), atomic.LoadInt64(&t2.ticks), "second process never ran")
}

func TestStopNil(t *testing.T) {
	var p *background.T
	p.Stop()
}
