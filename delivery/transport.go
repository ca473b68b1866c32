// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package delivery

//go:generate mockgen -source=transport.go -destination=mocks/transport.go -package=mocks

import (
	"context"

	"github.com/bitmark-inc/notarysync/reply"
)

// Transport - deliver one message and wait for one reply
//
// the engine bounds each call with a deadline on ctx; a transport
// returns a fault.NetworkError on timeout or connection loss and may
// return duplicated or stale replies
type Transport interface {
	Send(ctx context.Context, message *reply.Message) (*reply.Reply, error)
}
