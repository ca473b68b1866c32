// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package delivery - turn submitted commands into signed, sequenced
// messages and drive them to a terminal result
//
// One engine owns one client-to-notary context.  A single worker
// drains the submission queue; before any command that needs a
// request number it brings the nymbox back into agreement:
//
//	Idle ─▶ NeedNymbox ─▶ NeedProcessNymbox ─▶ PendingSend ─▶ AwaitingReply ─▶ Success | Failed ─▶ Idle
//	  │                                          ▲
//	  └──────────────▶ NeedBoxItems ─────────────┘
//
// Lock order is send-ordering then context state.  The state lock is
// only held to stamp or to apply a reply, never across the network.
package delivery
