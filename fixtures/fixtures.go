// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fixtures - shared test set-up: logging, identities, an
// in-memory snapshot store and a scripted notary
package fixtures

import (
	"fmt"
	"os"

	"github.com/bitmark-inc/logger"
)

const (
	logDirectory = "testing"
	logFile      = "testing.log"
	logLevelEnv  = "NOTARYSYNC_TEST_LOG"
)

// SetupTestLogger - file logger under ./testing
//
// the level is critical unless NOTARYSYNC_TEST_LOG names another one
func SetupTestLogger() {
	removeLogFiles()
	_ = os.Mkdir(logDirectory, 0700)

	level := os.Getenv(logLevelEnv)
	if "" == level {
		level = "critical"
	}

	_ = logger.Initialise(logger.Configuration{
		Directory: logDirectory,
		File:      logFile,
		Size:      1 << 20,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: level,
		},
	})
}

// TeardownTestLogger - stop logging, the log files are kept if a
// level was requested
func TeardownTestLogger() {
	logger.Finalise()
	if "" == os.Getenv(logLevelEnv) {
		removeLogFiles()
	}
}

func removeLogFiles() {
	if err := os.RemoveAll(logDirectory); nil != err {
		fmt.Printf("remove: %q  error: %s\n", logDirectory, err)
	}
}
