// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/notarysync/configuration"
	"github.com/bitmark-inc/notarysync/storage"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultKeystoreFile        = "nym.keystore"
	defaultClientPublicKey     = "client.public"
	defaultClientPrivateKey    = "client.private"
	defaultDatabaseDirectory   = "data"
	defaultDatabaseName        = "notarysync"
	defaultPasswordEnvironment = "NOTARYSYNC_PASSWORD"

	defaultLogDirectory = "log"
	defaultLogFile      = "notarysyncd.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		logger.DefaultTag: "critical",
	}
)

// DatabaseType - storage backend selection
type DatabaseType struct {
	Backend   string `gluamapper:"backend" json:"backend"`
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
	Cache     string `gluamapper:"cache" json:"cache"`
}

// IdentityType - the local Nym
type IdentityType struct {
	Keystore string `gluamapper:"keystore" json:"keystore"`
	Password string `gluamapper:"password_environment" json:"password_environment"`
}

// ClientType - CURVE keys used towards every notary
type ClientType struct {
	PrivateKey string `gluamapper:"private_key" json:"private_key"`
	PublicKey  string `gluamapper:"public_key" json:"public_key"`
}

// Configuration - the daemon settings
type Configuration struct {
	DataDirectory string                     `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string                     `gluamapper:"pidfile" json:"pidfile"`
	Metrics       string                     `gluamapper:"metrics" json:"metrics"`
	Database      DatabaseType               `gluamapper:"database" json:"database"`
	Identity      IdentityType               `gluamapper:"identity" json:"identity"`
	Client        ClientType                 `gluamapper:"client" json:"client"`
	Notaries      []configuration.NotaryType `gluamapper:"notaries" json:"notaries"`
	Delivery      configuration.DeliveryType `gluamapper:"delivery" json:"delivery"`
	Logging       logger.Configuration       `gluamapper:"logging" json:"logging"`
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default
		Metrics:       "", // no metrics listener by default

		Database: DatabaseType{
			Backend:   storage.LevelDB,
			Directory: defaultDatabaseDirectory,
			Name:      defaultDatabaseName,
		},

		Identity: IdentityType{
			Keystore: defaultKeystoreFile,
			Password: defaultPasswordEnvironment,
		},

		Client: ClientType{
			PrivateKey: defaultClientPrivateKey,
			PublicKey:  defaultClientPublicKey,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options); err != nil {
		return nil, err
	}

	options.Database.Backend = strings.ToLower(options.Database.Backend)
	switch options.Database.Backend {
	case storage.LevelDB, storage.BoltDB:
	default:
		return nil, fmt.Errorf("Database: backend: %q is not supported", options.Database.Backend)
	}

	if 0 == len(options.Notaries) {
		return nil, fmt.Errorf("Notaries: at least one notary is required")
	}
	names := make(map[string]struct{})
	for i, n := range options.Notaries {
		if "" == n.Name {
			return nil, fmt.Errorf("Notaries: entry: %d has no name", i+1)
		}
		if _, ok := names[n.Name]; ok {
			return nil, fmt.Errorf("Notaries: duplicate name: %q", n.Name)
		}
		names[n.Name] = struct{}{}
		if _, err := n.Public(); nil != err {
			return nil, fmt.Errorf("Notaries: %q: %s", n.Name, err)
		}
		if _, err := n.CurveKey(); nil != err {
			return nil, fmt.Errorf("Notaries: %q: server key: %s", n.Name, err)
		}
	}

	if _, err := options.Delivery.Configuration(); nil != err {
		return nil, fmt.Errorf("Delivery: %s", err)
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("Path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	}
	options.DataDirectory = filepath.Clean(options.DataDirectory)

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("Path: %q is not a directory", options.DataDirectory)
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.Database.Directory,
		&options.Identity.Keystore,
		&options.Client.PrivateKey,
		&options.Client.PublicKey,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = configuration.EnsureAbsolute(options.DataDirectory, *f)
	}

	// optional absolute paths i.e. blank or an absolute path
	optionalAbsolute := []*string{
		&options.PidFile,
	}
	for _, f := range optionalAbsolute {
		if "" != *f {
			*f = configuration.EnsureAbsolute(options.DataDirectory, *f)
		}
	}

	// fail if any of these are not simple file names i.e. must
	// not contain path seperator, then add the correct directory
	// prefix, file item is first and corresponding directory is
	// second (or nil if no prefix can be added)
	mustNotBePaths := [][2]*string{
		{&options.Database.Name, &options.Database.Directory},
		{&options.Logging.File, nil},
	}
	for _, f := range mustNotBePaths {
		switch filepath.Dir(*f[0]) {
		case "", ".":
			if nil != f[1] {
				*f[0] = configuration.EnsureAbsolute(*f[1], *f[0])
			}
		default:
			return nil, fmt.Errorf("Files: %q is not plain name", *f[0])
		}
	}

	// create directories if they do not already exist
	for _, d := range []string{
		options.Database.Directory,
		options.Logging.Directory,
	} {
		if err := os.MkdirAll(d, 0700); nil != err {
			return nil, err
		}
	}

	// done
	return options, nil
}
