// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reply

// commands the engine itself issues or treats specially
const (
	PingNotary            = "pingNotary"
	RegisterNym           = "registerNym"
	GetRequestNumber      = "getRequestNumber"
	GetNymbox             = "getNymbox"
	ProcessNymbox         = "processNymbox"
	GetBoxReceipt         = "getBoxReceipt"
	GetTransactionNumbers = "getTransactionNumbers"
	NotarizeTransaction   = "notarizeTransaction"
)

// commands answered without a request number
var withoutRequestNumber = map[string]struct{}{
	PingNotary:       {},
	GetRequestNumber: {},
	RegisterNym:      {},
}

// NeedsRequestNumber - false for the handful of commands a notary
// answers before a request sequence exists
func NeedsRequestNumber(command string) bool {
	_, ok := withoutRequestNumber[command]
	return !ok
}

// IsCatchUp - commands the engine schedules on its own to bring the
// nymbox back into agreement
func IsCatchUp(command string) bool {
	switch command {
	case GetNymbox, ProcessNymbox, GetBoxReceipt:
		return true
	default:
		return false
	}
}
