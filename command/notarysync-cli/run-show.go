// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/notarysync/identity"
	"github.com/bitmark-inc/notarysync/record"
	"github.com/bitmark-inc/notarysync/relationship"
)

type adminView struct {
	Attempted bool   `json:"attempted"`
	Success   bool   `json:"success"`
	Revision  uint64 `json:"revision"`
}

type snapshotView struct {
	Key          string            `json:"key"`
	ID           record.Identifier `json:"id"`
	Kind         string            `json:"kind"`
	Local        identity.ID       `json:"local"`
	Remote       identity.ID       `json:"remote"`
	Notary       identity.ID       `json:"notary"`
	Request      uint64            `json:"request"`
	LocalHash    record.Identifier `json:"localNymboxHash"`
	RemoteHash   record.Identifier `json:"remoteNymboxHash"`
	Issued       []uint64          `json:"issued"`
	Available    []uint64          `json:"available"`
	Tentative    []uint64          `json:"tentative"`
	Highest      uint64            `json:"highest"`
	Acknowledged []uint64          `json:"acknowledged"`
	Admin        *adminView        `json:"admin,omitempty"`
}

func newSnapshotView(s *relationship.Snapshot) *snapshotView {
	v := &snapshotView{
		Key:          s.Key().String(),
		ID:           s.ID(),
		Kind:         s.Kind.String(),
		Local:        s.Local,
		Remote:       s.Remote,
		Notary:       s.Notary,
		Request:      s.Request,
		LocalHash:    s.LocalHash,
		RemoteHash:   s.RemoteHash,
		Issued:       s.Issued,
		Available:    s.Available,
		Tentative:    s.Tentative,
		Highest:      s.Highest,
		Acknowledged: s.Acknowledged,
	}
	// the admin password is never displayed
	if relationship.ClientToNotary == s.Kind {
		v.Admin = &adminView{
			Attempted: s.Admin.Attempted,
			Success:   s.Admin.Success,
			Revision:  s.Admin.Revision,
		}
	}
	return v
}

func getKey(c *cli.Context) (relationship.Key, error) {
	text := c.Args().First()
	if "" == text {
		return relationship.Key{}, fmt.Errorf("context key is required")
	}
	return relationship.KeyFromString(text)
}

func runShow(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	key, err := getKey(c)
	if nil != err {
		return err
	}

	if c.Bool("raw") {
		packed, err := m.store.Packed(key)
		if nil != err {
			return err
		}
		fmt.Fprintf(m.w, "%s\n", hex.EncodeToString(packed))
		return nil
	}

	snapshot, err := m.store.Load(key)
	if nil != err {
		return err
	}

	return printJson(m.w, newSnapshotView(snapshot))
}
