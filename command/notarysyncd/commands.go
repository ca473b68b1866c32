// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/exitwithstatus"
	promversion "github.com/prometheus/common/version"

	"github.com/bitmark-inc/notarysync/fault"
	"github.com/bitmark-inc/notarysync/identity"
	"github.com/bitmark-inc/notarysync/zmqutil"
)

// setup command handler
//
// commands that run to create key files these commands cannot access
// any internal database or states or the configuration file
func processSetupCommand(program string, arguments []string) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		arguments = arguments[1:]
	}

	switch command {
	case "gen-identity", "identity":
		keystoreFilename := getFilenameWithDirectory(arguments, defaultKeystoreFile)
		if fileExists(keystoreFilename) {
			fmt.Printf("generate keystore: %q error: %s\n", keystoreFilename, fault.ErrKeyFileAlreadyExists)
			exitwithstatus.Exit(1)
		}

		password := os.Getenv(defaultPasswordEnvironment)
		if "" == password {
			var err error
			password, err = promptNewPassword()
			if nil != err {
				fmt.Printf("generate keystore: %q error: %s\n", keystoreFilename, err)
				exitwithstatus.Exit(1)
			}
		}

		nym, err := identity.Generate(password)
		if nil != err {
			fmt.Printf("generate keystore: %q error: %s\n", keystoreFilename, err)
			exitwithstatus.Exit(1)
		}
		defer nym.Drop()

		if err := nym.Keystore().Save(keystoreFilename); nil != err {
			os.Remove(keystoreFilename)
			fmt.Printf("generate keystore: %q error: %s\n", keystoreFilename, err)
			exitwithstatus.Exit(1)
		}
		fmt.Printf("generated keystore: %q\n", keystoreFilename)
		fmt.Printf("nym ID: %s\n", nym.ID())

	case "gen-client-keys", "client":
		publicKeyFilename := getFilenameWithDirectory(arguments, defaultClientPublicKey)
		privateKeyFilename := getFilenameWithDirectory(arguments, defaultClientPrivateKey)
		err := zmqutil.MakeKeyPair(publicKeyFilename, privateKeyFilename)
		if nil != err {
			fmt.Printf("generate private key: %q and public key: %q error: %s\n", privateKeyFilename, publicKeyFilename, err)
			exitwithstatus.Exit(1)
		}
		fmt.Printf("generated private key: %q and public key: %q\n", privateKeyFilename, publicKeyFilename)

	case "start", "run":
		return false // continue processing

	case "config-test", "cfg", "show-identity", "id":
		return false // defer processing until configuration is read

	case "version", "v":
		fmt.Printf("%s\n", promversion.Print(program))

	default:
		switch command {
		case "help", "h", "?":
		case "", " ":
			fmt.Printf("error: missing command\n")
		default:
			fmt.Printf("error: no such command: %q\n", command)
		}
		fmt.Printf("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [[command|help] arguments...]\n", program)

		fmt.Printf("supported commands:\n\n")
		fmt.Printf("  help                       (h)      - display this message\n\n")
		fmt.Printf("  version                    (v)      - display version and build information\n\n")

		fmt.Printf("  gen-identity [DIR]         (identity) - create an encrypted keystore in: %q\n", "DIR/"+defaultKeystoreFile)
		fmt.Printf("                                        password from $%s or the terminal\n", defaultPasswordEnvironment)
		fmt.Printf("\n")

		fmt.Printf("  gen-client-keys [DIR]      (client) - create CURVE private key in: %q\n", "DIR/"+defaultClientPrivateKey)
		fmt.Printf("                                        and the public key in: %q\n", "DIR/"+defaultClientPublicKey)
		fmt.Printf("\n")

		fmt.Printf("  start                      (run)    - just run the program, same as no arguments\n")
		fmt.Printf("                                        for convienience when passing script arguments\n")
		fmt.Printf("\n")

		fmt.Printf("  config-test                (cfg)    - just check the configuration file\n")
		fmt.Printf("\n")

		fmt.Printf("  show-identity              (id)     - display the nym ID of the configured keystore\n")
		fmt.Printf("\n")

		exitwithstatus.Exit(1)
	}

	// indicate processing complete and perform normal exit from main
	return true
}

// configuration command handler
//
// commands that only need the configuration
func processConfigCommand(arguments []string, options *Configuration) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "config-test", "cfg":
		fmt.Printf("configuration ok\n")
		fmt.Printf("  database: %s  %q\n", options.Database.Backend, options.Database.Name)
		fmt.Printf("  keystore: %q\n", options.Identity.Keystore)
		for _, n := range options.Notaries {
			fmt.Printf("  notary: %-16s %s  %s\n", n.Name, n.ID, n.Address)
		}

	case "show-identity", "id":
		keystore, err := identity.LoadKeystore(options.Identity.Keystore)
		if nil != err {
			fmt.Printf("keystore: %q error: %s\n", options.Identity.Keystore, err)
			exitwithstatus.Exit(1)
		}
		nym, err := identity.NewNym(keystore)
		if nil != err {
			fmt.Printf("keystore: %q error: %s\n", options.Identity.Keystore, err)
			exitwithstatus.Exit(1)
		}
		fmt.Printf("%s\n", nym.ID())

	default:
		return false
	}
	return true
}

// get the first argument as a directory name and join with filename
func getFilenameWithDirectory(arguments []string, name string) string {
	directory := "."
	if len(arguments) >= 1 && "" != arguments[0] {
		directory = arguments[0]
	}
	return filepath.Join(directory, name)
}

func fileExists(name string) bool {
	_, err := os.Stat(name)
	return nil == err
}
