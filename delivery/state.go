// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package delivery

// State - engine session state, also the state of a resolved result
type State int

// session states
const (
	Idle              State = iota
	NeedNymbox        State = iota
	NeedProcessNymbox State = iota
	NeedBoxItems      State = iota
	PendingSend       State = iota
	AwaitingReply     State = iota
	Success           State = iota
	Failed            State = iota
	Cancelled         State = iota
)

// String - name of the state
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case NeedNymbox:
		return "NeedNymbox"
	case NeedProcessNymbox:
		return "NeedProcessNymbox"
	case NeedBoxItems:
		return "NeedBoxItems"
	case PendingSend:
		return "PendingSend"
	case AwaitingReply:
		return "AwaitingReply"
	case Success:
		return "Success"
	case Failed:
		return "Failed"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// IsTerminal - a state that resolves a handle
func (s State) IsTerminal() bool {
	return Success == s || Failed == s || Cancelled == s
}
