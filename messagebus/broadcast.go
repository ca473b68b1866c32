// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package messagebus

import (
	"sync"
)

const defaultListenerSize = 100

// Message - one broadcast item
type Message struct {
	Command string
	Item    interface{}
}

// BroadcastQueue - fan out to every listener
//
// a listener whose channel is full misses the message, senders never
// block
type BroadcastQueue struct {
	sync.RWMutex
	listeners []chan Message
	released  bool
}

type busses struct {
	Delivery *BroadcastQueue
}

// Bus - the process-wide queues
var Bus = busses{
	Delivery: &BroadcastQueue{},
}

// Send - deliver to all current listeners
func (b *BroadcastQueue) Send(command string, item interface{}) {
	b.RLock()
	defer b.RUnlock()

	m := Message{
		Command: command,
		Item:    item,
	}
	for _, l := range b.listeners {
		select {
		case l <- m:
		default:
		}
	}
}

// Chan - register a new listener
//
// size <= 0 selects the default buffer size
func (b *BroadcastQueue) Chan(size int) <-chan Message {
	if size <= 0 {
		size = defaultListenerSize
	}
	c := make(chan Message, size)

	b.Lock()
	defer b.Unlock()
	if b.released {
		close(c)
		return c
	}
	b.listeners = append(b.listeners, c)
	return c
}

// Unsubscribe - remove and close one listener
func (b *BroadcastQueue) Unsubscribe(c <-chan Message) {
	b.Lock()
	defer b.Unlock()
	for i, l := range b.listeners {
		if (<-chan Message)(l) == c {
			close(l)
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			return
		}
	}
}

// Release - close every listener, later listeners are closed at once
func (b *BroadcastQueue) Release() {
	b.Lock()
	defer b.Unlock()
	for _, l := range b.listeners {
		close(l)
	}
	b.listeners = nil
	b.released = true
}
