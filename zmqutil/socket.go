// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zmqutil

import (
	"sync"
	"time"

	zmq "github.com/pebbe/zmq4"
)

const (
	heartbeatInterval = 15 * time.Second
	heartbeatTimeout  = 60 * time.Second
	heartbeatTTL      = 120 * time.Second
)

var authentication struct {
	once sync.Once
	err  error
}

// StartAuthentication - start the ZAP handler, once per process
//
// only a side that binds a CURVE server socket needs this
func StartAuthentication() error {
	authentication.once.Do(func() {
		zmq.AuthSetVerbose(false)
		authentication.err = zmq.AuthStart()
	})
	return authentication.err
}

// heartbeats need libzmq 4.2, older libraries just skip them
func setHeartbeat(socket *zmq.Socket) error {
	setters := []func(time.Duration) error{
		socket.SetHeartbeatIvl,
		socket.SetHeartbeatTimeout,
		socket.SetHeartbeatTtl,
	}
	values := []time.Duration{heartbeatInterval, heartbeatTimeout, heartbeatTTL}
	for i, set := range setters {
		if err := set(values[i]); nil != err && zmq.ErrorNotImplemented42 != err {
			return err
		}
	}
	return nil
}

// NewServerSocket - a CURVE server socket accepting any client key
//
// used by notary simulators; StartAuthentication must have been called
func NewServerSocket(socketType zmq.Type, zapDomain string, privateKey []byte, publicKey []byte, v6 bool) (*zmq.Socket, error) {

	socket, err := zmq.NewSocket(socketType)
	if nil != err {
		return nil, err
	}

	zmq.AuthCurveAdd(zapDomain, zmq.CURVE_ALLOW_ANY)

	err = socket.SetCurveServer(1)
	if nil != err {
		goto failure
	}
	err = socket.SetCurveSecretkey(string(privateKey))
	if nil != err {
		goto failure
	}
	err = socket.SetZapDomain(zapDomain)
	if nil != err {
		goto failure
	}
	err = socket.SetIdentity(string(publicKey))
	if nil != err {
		goto failure
	}
	err = socket.SetIpv6(v6)
	if nil != err {
		goto failure
	}
	err = socket.SetLinger(0)
	if nil != err {
		goto failure
	}
	err = setHeartbeat(socket)
	if nil != err {
		goto failure
	}
	return socket, nil

failure:
	socket.Close()
	return nil, err
}
