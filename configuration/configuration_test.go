// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration_test

import (
	"encoding/hex"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/notarysync/configuration"
	"github.com/bitmark-inc/notarysync/fault"
	"github.com/bitmark-inc/notarysync/fixtures"
)

const testFile = "test.conf"

type testConfiguration struct {
	DataDirectory string                     `gluamapper:"data_directory"`
	Notaries      []configuration.NotaryType `gluamapper:"notaries"`
	Delivery      configuration.DeliveryType `gluamapper:"delivery"`
	Levels        map[string]string          `gluamapper:"levels"`
}

func writeFile(t *testing.T, text string) {
	require.Nil(t, ioutil.WriteFile(testFile, []byte(text), 0600))
}

func TestParseConfigurationFile(t *testing.T) {
	defer os.Remove(testFile)

	notaryKey := hex.EncodeToString(fixtures.Notary().PublicKey())
	writeFile(t, `
local M = {}
M.data_directory = "."
M.notaries = {
    {
        name = "local",
        id = "`+fixtures.Notary().ID().String()+`",
        public_key = "`+notaryKey+`",
        address = "127.0.0.1:2136",
        server_key = "PUBLIC:0102030405060708091011121314151617181920212223242526272829303132",
    },
}
M.delivery = {
    attempts = 7,
    timeout = "2s",
    initial_backoff = "100ms",
    send_rate = 2.5,
    queue_size = 20,
}
M.levels = {
    delivery = "debug",
}
return M
`)

	options := &testConfiguration{}
	err := configuration.ParseConfigurationFile(testFile, options)
	require.Nil(t, err)

	assert.Equal(t, ".", options.DataDirectory)
	assert.Equal(t, "debug", options.Levels["delivery"])
	require.Equal(t, 1, len(options.Notaries))

	n := options.Notaries[0]
	assert.Equal(t, "local", n.Name)
	assert.Equal(t, "127.0.0.1:2136", n.Address)

	public, err := n.Public()
	require.Nil(t, err)
	assert.Equal(t, fixtures.Notary().ID(), public.ID())

	key, err := n.CurveKey()
	require.Nil(t, err)
	assert.Equal(t, 32, len(key))

	c, err := options.Delivery.Configuration()
	require.Nil(t, err)
	assert.Equal(t, 7, c.Attempts)
	assert.Equal(t, 2*time.Second, c.Timeout)
	assert.Equal(t, 100*time.Millisecond, c.InitialBackoff)
	assert.Equal(t, time.Duration(0), c.MaximumBackoff, "unset duration filled")
	assert.Equal(t, 2.5, c.SendRate)
	assert.Equal(t, 20, c.QueueSize)
}

func TestParseErrors(t *testing.T) {
	defer os.Remove(testFile)

	options := testConfiguration{}
	err := configuration.ParseConfigurationFile(testFile, options)
	assert.Equal(t, fault.ErrInvalidStructPointer, err, "non-pointer accepted")

	writeFile(t, `return 42`)
	err = configuration.ParseConfigurationFile(testFile, &options)
	assert.Equal(t, fault.ErrConfigurationNotTable, err)

	writeFile(t, `this is not lua`)
	err = configuration.ParseConfigurationFile(testFile, &options)
	assert.NotNil(t, err, "syntax error accepted")
}

func TestNotaryKeys(t *testing.T) {
	n := configuration.NotaryType{
		ID:        fixtures.Peer().ID().String(),
		PublicKey: hex.EncodeToString(fixtures.Notary().PublicKey()),
	}
	_, err := n.Public()
	assert.Equal(t, fault.ErrMismatchedNotaryKey, err)

	n.PublicKey = "not hex"
	_, err = n.Public()
	assert.Equal(t, fault.ErrInvalidPublicKey, err)

	n.ServerKey = "PRIVATE:0102030405060708091011121314151617181920212223242526272829303132"
	_, err = n.CurveKey()
	assert.Equal(t, fault.ErrInvalidPublicKeyFile, err)
}

func TestDeliveryDurations(t *testing.T) {
	_, err := configuration.DeliveryType{Timeout: "ten seconds"}.Configuration()
	assert.NotNil(t, err)

	c, err := configuration.DeliveryType{ResultLifetime: "1h"}.Configuration()
	require.Nil(t, err)
	assert.Equal(t, time.Hour, c.ResultLifetime)
}

func TestEnsureAbsolute(t *testing.T) {
	assert.Equal(t, filepath.Join("/data", "log"), configuration.EnsureAbsolute("/data", "log"))
	assert.Equal(t, "/var/log", configuration.EnsureAbsolute("/data", "/var/log/"))
}
