// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zmqutil

import (
	"crypto/rand"
	"net"
	"strings"
	"time"

	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/notarysync/fault"
)

const (
	keySize        = 32
	identitySize   = 32
	reconnectDelay = 5 * time.Millisecond
)

// connection - a CURVE REQ socket to one notary with its own poller
//
// the socket can be replaced by reopen without losing the endpoint
type connection struct {
	publicKey  []byte
	privateKey []byte
	serverKey  []byte
	address    string // "tcp://host:port"
	v6         bool
	socket     *zmq.Socket
	poller     *zmq.Poller
}

func newConnection(address string, serverKey []byte, privateKey []byte, publicKey []byte) (*connection, error) {
	if keySize != len(publicKey) || keySize != len(serverKey) {
		return nil, fault.ErrInvalidPublicKey
	}
	if keySize != len(privateKey) {
		return nil, fault.ErrInvalidPrivateKey
	}
	endpoint, v6, err := canonicalAddress(address)
	if nil != err {
		return nil, err
	}

	c := &connection{
		publicKey:  append([]byte{}, publicKey...),
		privateKey: append([]byte{}, privateKey...),
		serverKey:  append([]byte{}, serverKey...),
		address:    endpoint,
		v6:         v6,
	}
	if err := c.open(); nil != err {
		return nil, err
	}
	return c, nil
}

// host:port, IPv6 hosts in brackets
func canonicalAddress(address string) (string, bool, error) {
	host, port, err := net.SplitHostPort(address)
	if nil != err || "" == host || "" == port {
		return "", false, fault.ErrInvalidAddress
	}
	v6 := strings.Contains(host, ":")
	return "tcp://" + net.JoinHostPort(host, port), v6, nil
}

func (c *connection) open() error {
	socket, err := zmq.NewSocket(zmq.REQ)
	if nil != err {
		return err
	}

	// local identity is a random value
	id := make([]byte, identitySize)
	if _, err := rand.Read(id); nil != err {
		socket.Close()
		return err
	}

	err = socket.SetCurveServer(0)
	if nil != err {
		goto failure
	}
	err = socket.SetCurvePublickey(string(c.publicKey))
	if nil != err {
		goto failure
	}
	err = socket.SetCurveSecretkey(string(c.privateKey))
	if nil != err {
		goto failure
	}
	err = socket.SetCurveServerkey(string(c.serverKey))
	if nil != err {
		goto failure
	}
	err = socket.SetIdentity(string(id))
	if nil != err {
		goto failure
	}
	err = socket.SetLinger(0)
	if nil != err {
		goto failure
	}

	// a resend after a lost reply is allowed and a late reply to an
	// earlier send is dropped by the socket
	err = socket.SetReqCorrelate(1)
	if nil != err {
		goto failure
	}
	err = socket.SetReqRelaxed(1)
	if nil != err {
		goto failure
	}

	err = setHeartbeat(socket)
	if nil != err {
		goto failure
	}

	// IPv6 state must be set before connect
	err = socket.SetIpv6(c.v6)
	if nil != err {
		goto failure
	}
	err = socket.Connect(c.address)
	if nil != err {
		goto failure
	}

	c.socket = socket
	c.poller = zmq.NewPoller()
	c.poller.Add(socket, zmq.POLLIN)
	return nil

failure:
	socket.Close()
	return err
}

func (c *connection) close() error {
	if nil == c.socket {
		return nil
	}
	c.socket.Disconnect(c.address)
	err := c.socket.Close()
	c.socket = nil
	c.poller = nil
	return err
}

// drop the socket and connect again to the same endpoint
func (c *connection) reopen() error {
	if err := c.close(); nil != err {
		return err
	}

	// let the old socket finish closing and limit the reconnect rate
	time.Sleep(reconnectDelay)
	return c.open()
}

func (c *connection) isOpen() bool {
	return nil != c.socket
}

// single frame
func (c *connection) send(data []byte) error {
	if nil == c.socket {
		return fault.ErrNotConnected
	}
	_, err := c.socket.SendBytes(data, 0)
	return err
}

// true if a reply is ready within wait
func (c *connection) poll(wait time.Duration) (bool, error) {
	if nil == c.poller {
		return false, fault.ErrNotConnected
	}
	polled, err := c.poller.Poll(wait)
	if nil != err {
		return false, err
	}
	return 0 != len(polled), nil
}

// non-blocking, EAGAIN if nothing correlated with the last send
func (c *connection) receive() ([][]byte, error) {
	if nil == c.socket {
		return nil, fault.ErrNotConnected
	}
	return c.socket.RecvMessageBytes(zmq.DONTWAIT)
}
