// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/notarysync/configuration"
	"github.com/bitmark-inc/notarysync/delivery"
	"github.com/bitmark-inc/notarysync/identity"
	"github.com/bitmark-inc/notarysync/messagebus"
	"github.com/bitmark-inc/notarysync/relationship"
	"github.com/bitmark-inc/notarysync/reply"
	"github.com/bitmark-inc/notarysync/zmqutil"
)

const (
	pingTimeout     = 30 * time.Second
	eventBufferSize = 200
)

// one notary: its transport and the engine driving the context
type session struct {
	name      string
	transport *zmqutil.Transport
	engine    *delivery.Engine
}

// client CURVE keys shared by every transport
type curveKeys struct {
	private []byte
	public  []byte
}

func readCurveKeys(client ClientType) (*curveKeys, error) {
	privateData, err := zmqutil.ReadKeyFile(client.PrivateKey)
	if nil != err {
		return nil, err
	}
	private, err := zmqutil.ReadPrivateKey(privateData)
	if nil != err {
		return nil, err
	}

	publicData, err := zmqutil.ReadKeyFile(client.PublicKey)
	if nil != err {
		return nil, err
	}
	public, err := zmqutil.ReadPublicKey(publicData)
	if nil != err {
		return nil, err
	}

	return &curveKeys{
		private: private,
		public:  public,
	}, nil
}

// open the context for a notary and start its engine
func startSession(n configuration.NotaryType, nym *identity.Nym, keys *curveKeys, store relationship.Store, config delivery.Configuration) (*session, error) {
	notary, err := n.Public()
	if nil != err {
		return nil, err
	}
	serverKey, err := n.CurveKey()
	if nil != err {
		return nil, err
	}

	transport, err := zmqutil.NewTransport(n.Address, serverKey, keys.private, keys.public, logger.New("transport-"+n.Name))
	if nil != err {
		return nil, err
	}

	c, err := relationship.Open(relationship.ClientToNotary, nym, notary.ID(), notary.ID(), store, logger.New("context-"+n.Name))
	if nil != err {
		transport.Close()
		return nil, err
	}

	engine, err := delivery.New(c, notary, transport, config, logger.New("delivery-"+n.Name))
	if nil != err {
		transport.Close()
		return nil, err
	}

	return &session{
		name:      n.Name,
		transport: transport,
		engine:    engine,
	}, nil
}

// ping and wait for the terminal result
func (s *session) ping() (delivery.Result, error) {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return s.engine.Submit(reply.PingNotary, delivery.Arguments{}).Wait(ctx)
}

func (s *session) stop() {
	s.engine.Shutdown()
	s.transport.Close()
}

// log every delivery state change, implements background.Process
type eventReporter struct {
	log *logger.L
}

func (r *eventReporter) Run(args interface{}, shutdown <-chan struct{}) {
	queue := messagebus.Bus.Delivery.Chan(eventBufferSize)
	defer messagebus.Bus.Delivery.Unsubscribe(queue)

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case item, ok := <-queue:
			if !ok {
				break loop
			}
			event, ok := item.Item.(delivery.Event)
			if !ok {
				r.log.Warnf("unexpected item: %v", item)
				continue loop
			}
			r.log.Debugf("context: %s  command: %s  request: %d  state: %s", event.Context, event.Command, event.Request, event.State)
		}
	}
	r.log.Info("shutting down…")
}
