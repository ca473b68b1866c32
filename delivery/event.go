// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package delivery

import (
	"github.com/bitmark-inc/notarysync/messagebus"
	"github.com/bitmark-inc/notarysync/relationship"
)

// EventCommand - messagebus command of state change events
const EventCommand = "delivery"

// Event - published on messagebus.Bus.Delivery for every transition
type Event struct {
	Context relationship.Key
	Command string
	Request uint64
	State   State
}

func publish(key relationship.Key, command string, request uint64, state State) {
	messagebus.Bus.Delivery.Send(EventCommand, Event{
		Context: key,
		Command: command,
		Request: request,
		State:   state,
	})
}
