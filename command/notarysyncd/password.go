// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/ssh/terminal"

	"github.com/bitmark-inc/notarysync/fault"
)

const minimumPasswordLength = 8

// the environment variable wins, otherwise prompt on the terminal
func readPassword(environment string) (string, error) {
	if "" != environment {
		if password := os.Getenv(environment); "" != password {
			return password, nil
		}
	}
	return promptPassword("keystore password: ")
}

func promptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !terminal.IsTerminal(fd) {
		return "", fault.ErrPasswordRequired
	}

	fmt.Fprint(os.Stderr, prompt)
	password, err := terminal.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if nil != err {
		return "", err
	}
	return string(password), nil
}

// new password entered twice
func promptNewPassword() (string, error) {
	password, err := promptPassword("set keystore password (length >= 8): ")
	if nil != err {
		return "", err
	}
	if len(password) < minimumPasswordLength {
		return "", fault.ErrInvalidPasswordLength
	}

	verify, err := promptPassword("verify password: ")
	if nil != err {
		return "", err
	}
	if password != verify {
		return "", fault.ErrPasswordMismatch
	}
	return password, nil
}
