// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/urfave/cli"
)

type contextEntry struct {
	Key     string `json:"key"`
	Kind    string `json:"kind"`
	Local   string `json:"local"`
	Notary  string `json:"notary"`
	Request uint64 `json:"request"`
	Error   string `json:"error,omitempty"`
}

func runList(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	keys, err := m.store.Keys()
	if nil != err {
		return err
	}

	entries := make([]contextEntry, 0, len(keys))
	for _, key := range keys {
		entry := contextEntry{
			Key: key.String(),
		}
		snapshot, err := m.store.Load(key)
		if nil != err {
			entry.Error = err.Error()
		} else {
			entry.Kind = snapshot.Kind.String()
			entry.Local = snapshot.Local.String()
			entry.Notary = snapshot.Notary.String()
			entry.Request = snapshot.Request
		}
		entries = append(entries, entry)
	}

	return printJson(m.w, entries)
}
