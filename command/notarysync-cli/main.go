// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/notarysync/storage"
)

type metadata struct {
	store   *storage.ContextStore
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	app := newApp(os.Stdout, os.Stderr)
	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

func newApp(w io.Writer, e io.Writer) *cli.App {

	app := cli.NewApp()
	app.Name = "notarysync-cli"
	app.Usage = "inspect stored client/notary contexts"
	app.Version = version
	app.HideVersion = true

	app.Writer = w
	app.ErrWriter = e

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:  "backend, b",
			Value: storage.LevelDB,
			Usage: " database `BACKEND` [leveldb|bolt]",
		},
		cli.StringFlag{
			Name:  "database, d",
			Value: "",
			Usage: "*database `NAME` without the backend suffix",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "list",
			Usage:  "list the keys of every stored context",
			Action: runList,
		},
		{
			Name:      "show",
			Usage:     "display a stored context snapshot",
			ArgsUsage: "KEY\n   (* = required)",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "raw, r",
					Usage: " output the packed record as hex",
				},
			},
			Action: runShow,
		},
		{
			Name:      "verify",
			Usage:     "check the signature and ledger of a stored context",
			ArgsUsage: "KEY\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "keystore, k",
					Value: "",
					Usage: "*keystore `FILE` of the local nym",
				},
			},
			Action: runVerify,
		},
		{
			Name:  "version",
			Usage: "display notarysync-cli version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	// open the database read only
	app.Before = func(c *cli.Context) error {

		e := c.App.ErrWriter
		w := c.App.Writer
		verbose := c.GlobalBool("verbose")

		// to suppress opening the database for certain commands
		command := c.Args().Get(0)
		switch command {
		case "", "version", "help", "h":
			return nil
		}

		database := c.GlobalString("database")
		if "" == database {
			return fmt.Errorf("database name is required")
		}
		backend := c.GlobalString("backend")

		if verbose {
			fmt.Fprintf(e, "database: %s  %q\n", backend, database)
		}

		err := storage.Initialise(backend, database, storage.ReadOnly)
		if nil != err {
			return err
		}

		store, err := storage.NewContextStore(0)
		if nil != err {
			storage.Finalise()
			return err
		}

		c.App.Metadata["config"] = &metadata{
			store:   store,
			verbose: verbose,
			e:       e,
			w:       w,
		}
		return nil
	}

	app.After = func(c *cli.Context) error {
		if _, ok := c.App.Metadata["config"].(*metadata); !ok {
			return nil
		}
		delete(c.App.Metadata, "config")
		storage.Finalise()
		return nil
	}

	return app
}

// indented JSON, one value per call
func printJson(w io.Writer, value interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
