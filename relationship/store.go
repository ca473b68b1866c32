// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package relationship

//go:generate mockgen -source=store.go -destination=mocks/store.go -package=mocks

// Store - durable home of signed snapshots
//
// Load returns fault.ErrContextNotFound for an unknown key
type Store interface {
	Store(snapshot *Snapshot) bool
	Load(key Key) (*Snapshot, error)
}
