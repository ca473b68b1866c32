// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/notarysync/fault"
	"github.com/bitmark-inc/notarysync/identity"
)

type verifyResult struct {
	Key       string `json:"key"`
	Signature bool   `json:"signature"`
	Ledger    bool   `json:"ledger"`
	Error     string `json:"error,omitempty"`
}

// the public half of the keystore is enough, no password is needed
func runVerify(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	key, err := getKey(c)
	if nil != err {
		return err
	}

	keystoreFile := c.String("keystore")
	if "" == keystoreFile {
		return fmt.Errorf("keystore file is required")
	}
	keystore, err := identity.LoadKeystore(keystoreFile)
	if nil != err {
		return err
	}
	nym, err := identity.NewNym(keystore)
	if nil != err {
		return err
	}

	snapshot, err := m.store.Load(key)
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "nym: %s  local: %s\n", nym.ID(), snapshot.Local)
	}

	result := verifyResult{
		Key: key.String(),
	}
	if snapshot.Local != nym.ID() {
		result.Error = fault.ErrMismatchedContext.Error()
		return printJson(m.w, result)
	}

	if err := snapshot.Verify(nym.Public()); nil != err {
		result.Error = err.Error()
		return printJson(m.w, result)
	}
	result.Signature = true

	if _, err := snapshot.Ledger(); nil != err {
		result.Error = err.Error()
		return printJson(m.w, result)
	}
	result.Ledger = true

	return printJson(m.w, result)
}
