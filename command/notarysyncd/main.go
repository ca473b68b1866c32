// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promversion "github.com/prometheus/common/version"

	"github.com/bitmark-inc/notarysync/background"
	"github.com/bitmark-inc/notarysync/delivery"
	"github.com/bitmark-inc/notarysync/fault"
	"github.com/bitmark-inc/notarysync/identity"
	"github.com/bitmark-inc/notarysync/messagebus"
	"github.com/bitmark-inc/notarysync/storage"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	promversion.Version = version

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		processSetupCommand(program, []string{"version"})
		return
	}

	if len(options["help"]) > 0 {
		processSetupCommand(program, []string{"help"})
		return
	}

	// these commands do not require the configuration and
	// process data needed for initial setup
	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := getConfiguration(configurationFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// these commands require the configuration and
	// perform enquiries on the configuration
	if len(arguments) > 0 && processConfigCommand(arguments, theConfiguration) {
		return
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// last resort channel for storage panics
	if err = fault.Initialise(); nil != err {
		exitwithstatus.Message("%s: fault setup failed with error: %s", program, err)
	}
	defer fault.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Infof("build: %s", promversion.BuildContext())
	log.Debugf("theConfiguration: %v", theConfiguration)

	// ------------------
	// start of real main
	// ------------------

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	// engine tuning was checked when the configuration was read
	deliveryConfiguration, _ := theConfiguration.Delivery.Configuration()

	cacheLifetime := time.Duration(0)
	if "" != theConfiguration.Database.Cache {
		cacheLifetime, err = time.ParseDuration(theConfiguration.Database.Cache)
		if nil != err {
			exitwithstatus.Message("%s: database cache: %q error: %s", program, theConfiguration.Database.Cache, err)
		}
	}

	// metrics on a private listener
	err = delivery.RegisterMetrics(prometheus.DefaultRegisterer)
	if nil != err {
		log.Criticalf("metrics register error: %s", err)
		exitwithstatus.Message("metrics register error: %s", err)
	}
	if "" != theConfiguration.Metrics {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Infof("metrics listener on: %s", theConfiguration.Metrics)
			err := http.ListenAndServe(theConfiguration.Metrics, mux)
			log.Errorf("metrics listener error: %s", err)
		}()
	}

	// unlock the local nym before anything can sign
	log.Infof("keystore: %q", theConfiguration.Identity.Keystore)
	keystore, err := identity.LoadKeystore(theConfiguration.Identity.Keystore)
	if nil != err {
		log.Criticalf("keystore load error: %s", err)
		exitwithstatus.Message("keystore load error: %s", err)
	}
	nym, err := identity.NewNym(keystore)
	if nil != err {
		log.Criticalf("keystore error: %s", err)
		exitwithstatus.Message("keystore error: %s", err)
	}
	password, err := readPassword(theConfiguration.Identity.Password)
	if nil != err {
		log.Criticalf("keystore password error: %s", err)
		exitwithstatus.Message("keystore password error: %s", err)
	}
	err = nym.Unlock(password)
	if nil != err {
		log.Criticalf("keystore unlock error: %s", err)
		exitwithstatus.Message("keystore unlock error: %s", err)
	}
	defer nym.Drop()
	log.Infof("nym: %s", nym.ID())

	// start the data storage
	log.Info("initialise storage")
	err = storage.Initialise(theConfiguration.Database.Backend, theConfiguration.Database.Name, storage.ReadWrite)
	if nil != err {
		log.Criticalf("storage initialise error: %s", err)
		exitwithstatus.Message("storage initialise error: %s", err)
	}
	defer storage.Finalise()

	contexts, err := storage.NewContextStore(cacheLifetime)
	if nil != err {
		log.Criticalf("context store error: %s", err)
		exitwithstatus.Message("context store error: %s", err)
	}

	processes := background.Start(background.Processes{
		contexts,
		&eventReporter{log: logger.New("events")},
	}, nil)
	defer processes.Stop()

	keys, err := readCurveKeys(theConfiguration.Client)
	if nil != err {
		log.Criticalf("client keys error: %s", err)
		exitwithstatus.Message("client keys error: %s", err)
	}

	sessions := make([]*session, 0, len(theConfiguration.Notaries))
	defer func() {
		for _, s := range sessions {
			log.Infof("stopping: %s", s.name)
			s.stop()
		}
		messagebus.Bus.Delivery.Release()
	}()

	for _, n := range theConfiguration.Notaries {
		log.Infof("notary: %s  id: %s  address: %s", n.Name, n.ID, n.Address)
		s, err := startSession(n, nym, keys, contexts, deliveryConfiguration)
		if nil != err {
			log.Criticalf("notary: %s  start error: %s", n.Name, err)
			exitwithstatus.Message("notary: %s  start error: %s", n.Name, err)
		}
		sessions = append(sessions, s)
	}

	// a failed ping is reported, the engine keeps retrying later submissions
	for _, s := range sessions {
		result, err := s.ping()
		if nil != err {
			log.Warnf("notary: %s  ping error: %s", s.name, err)
			continue
		}
		if delivery.Success != result.State {
			log.Warnf("notary: %s  ping: %s  error: %v", s.name, result.State, result.Err)
			continue
		}
		log.Infof("notary: %s  ping: ok", s.name)
	}

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}

	log.Info("shutting down…")
}
