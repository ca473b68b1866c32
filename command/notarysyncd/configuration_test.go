// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/notarysync/fixtures"
	"github.com/bitmark-inc/notarysync/storage"
)

const serverKey = "PUBLIC:0102030405060708091011121314151617181920212223242526272829303132"

func notaryEntry(name string) string {
	return `
    {
        name = "` + name + `",
        id = "` + fixtures.Notary().ID().String() + `",
        public_key = "` + hex.EncodeToString(fixtures.Notary().PublicKey()) + `",
        address = "127.0.0.1:2136",
        server_key = "` + serverKey + `",
    },`
}

func writeConfiguration(t *testing.T, body string) (string, string) {
	directory, err := ioutil.TempDir("", "notarysyncd")
	require.Nil(t, err)
	fileName := filepath.Join(directory, "notarysyncd.conf")
	require.Nil(t, ioutil.WriteFile(fileName, []byte(body), 0600))
	return directory, fileName
}

func TestGetConfiguration(t *testing.T) {
	directory, fileName := writeConfiguration(t, `
local M = {}
M.data_directory = "."
M.database = {
    backend = "Bolt",
    cache = "5m",
}
M.notaries = {`+notaryEntry("first")+`
}
M.delivery = {
    attempts = 4,
    timeout = "3s",
}
return M
`)
	defer os.RemoveAll(directory)

	// temporary directories may be reached through a symlink
	directory, err := filepath.EvalSymlinks(directory)
	require.Nil(t, err)
	fileName = filepath.Join(directory, filepath.Base(fileName))

	options, err := getConfiguration(fileName)
	require.Nil(t, err)

	assert.Equal(t, filepath.Clean(directory), options.DataDirectory)
	assert.Equal(t, storage.BoltDB, options.Database.Backend)
	assert.Equal(t, "5m", options.Database.Cache)
	assert.Equal(t, filepath.Join(directory, defaultDatabaseDirectory, defaultDatabaseName), options.Database.Name)
	assert.Equal(t, filepath.Join(directory, defaultKeystoreFile), options.Identity.Keystore)
	assert.Equal(t, defaultPasswordEnvironment, options.Identity.Password)
	assert.Equal(t, filepath.Join(directory, defaultClientPrivateKey), options.Client.PrivateKey)
	assert.Equal(t, filepath.Join(directory, defaultLogDirectory), options.Logging.Directory)
	assert.Equal(t, defaultLogFile, options.Logging.File)
	assert.Equal(t, "", options.PidFile)

	require.Equal(t, 1, len(options.Notaries))
	assert.Equal(t, "first", options.Notaries[0].Name)

	c, err := options.Delivery.Configuration()
	require.Nil(t, err)
	assert.Equal(t, 4, c.Attempts)

	info, err := os.Stat(filepath.Join(directory, defaultDatabaseDirectory))
	require.Nil(t, err)
	assert.True(t, info.IsDir(), "database directory created")
}

func TestGetConfigurationErrors(t *testing.T) {
	items := []struct {
		name string
		body string
	}{
		{"no notaries", `return { data_directory = "." }`},
		{"bad backend", `return { data_directory = ".", database = { backend = "sqlite" }, notaries = {` + notaryEntry("a") + `} }`},
		{"duplicate notary", `return { data_directory = ".", notaries = {` + notaryEntry("a") + notaryEntry("a") + `} }`},
		{"blank data directory", `return { notaries = {` + notaryEntry("a") + `} }`},
		{"bad duration", `return { data_directory = ".", delivery = { timeout = "soon" }, notaries = {` + notaryEntry("a") + `} }`},
		{"database path", `return { data_directory = ".", database = { name = "x/y" }, notaries = {` + notaryEntry("a") + `} }`},
	}

	for _, item := range items {
		directory, fileName := writeConfiguration(t, item.body)
		_, err := getConfiguration(fileName)
		assert.NotNil(t, err, item.name)
		os.RemoveAll(directory)
	}
}

func TestFilenameWithDirectory(t *testing.T) {
	assert.Equal(t, "nym.keystore", getFilenameWithDirectory(nil, defaultKeystoreFile))
	assert.Equal(t, "/tmp/x/nym.keystore", getFilenameWithDirectory([]string{"/tmp/x"}, defaultKeystoreFile))
}
