// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package delivery

import (
	"context"
	"sync"

	"github.com/bitmark-inc/notarysync/fault"
	"github.com/bitmark-inc/notarysync/reply"
)

// Result - terminal outcome of one submission
//
// Err is nil for Success, the failure kind for Failed and
// fault.ErrCancelled for Cancelled
type Result struct {
	State           State
	Reply           *reply.Reply
	NumbersAccepted []uint64
	NumbersRejected []uint64
	Err             error
}

// Handle - single-shot completion of one submission
type Handle struct {
	once   sync.Once
	done   chan struct{}
	result Result
}

// Waiter - read-only view of a handle, safe to copy and share
type Waiter struct {
	h *Handle
}

func newHandle() *Handle {
	return &Handle{
		done: make(chan struct{}),
	}
}

func resolvedHandle(result Result) *Handle {
	h := newHandle()
	h.resolve(result)
	return h
}

// resolve - first caller wins, returns false if already resolved
func (h *Handle) resolve(result Result) bool {
	resolved := false
	h.once.Do(func() {
		h.result = result
		close(h.done)
		resolved = true
	})
	return resolved
}

func (h *Handle) isResolved() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Cancel - resolve as Cancelled
//
// a queued submission is never sent; one already in flight still has
// its reply applied to the context
func (h *Handle) Cancel() bool {
	return h.resolve(Result{
		State: Cancelled,
		Err:   fault.ErrCancelled,
	})
}

// Waiter - a shareable read-only view
func (h *Handle) Waiter() Waiter {
	return Waiter{h: h}
}

// Done - closed once resolved
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait - block until resolved or ctx ends
func (h *Handle) Wait(ctx context.Context) (Result, error) {
	return h.Waiter().Wait(ctx)
}

// Done - closed once resolved
func (w Waiter) Done() <-chan struct{} {
	return w.h.done
}

// Result - the result if already resolved
func (w Waiter) Result() (Result, bool) {
	select {
	case <-w.h.done:
		return w.h.result, true
	default:
		return Result{}, false
	}
}

// Wait - block until resolved or ctx ends
func (w Waiter) Wait(ctx context.Context) (Result, error) {
	select {
	case <-w.h.done:
		return w.h.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
