// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zmqutil

import (
	"context"
	"sync"
	"syscall"
	"time"

	"github.com/bitmark-inc/logger"
	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/notarysync/fault"
	"github.com/bitmark-inc/notarysync/reply"
)

// upper bound on a single wait, cancellation is checked between waits
const pollInterval = 50 * time.Millisecond

// Transport - CURVE secured REQ connection to one notary
//
// each message is a single frame holding the packed message record,
// the reply is a single frame holding the packed reply record
type Transport struct {
	sync.Mutex
	log  *logger.L
	conn *connection
}

// NewTransport - connect to a notary
func NewTransport(address string, serverPublicKey []byte, privateKey []byte, publicKey []byte, log *logger.L) (*Transport, error) {
	if nil == log {
		log = logger.New("zmqutil")
	}

	conn, err := newConnection(address, serverPublicKey, privateKey, publicKey)
	if nil != err {
		log.Errorf("connect to: %q  error: %s", address, err)
		return nil, err
	}
	log.Infof("connected to: %s", conn.address)

	return &Transport{
		log:  log,
		conn: conn,
	}, nil
}

// Send - implements the delivery transport
//
// returns fault.ErrTimeout if ctx ends before a reply arrives
func (t *Transport) Send(ctx context.Context, m *reply.Message) (*reply.Reply, error) {
	t.Lock()
	defer t.Unlock()

	if !t.conn.isOpen() {
		if err := t.conn.reopen(); nil != err {
			return nil, fault.ErrNotConnected
		}
	}

	err := t.conn.send([]byte(m.Pack()))
	if nil != err {
		t.log.Warnf("send: %s  request: %d  error: %s", m.Command, m.Request, err)
		t.reconnect()
		return nil, fault.ErrNotConnected
	}

	for {
		wait := pollInterval
		if deadline, ok := ctx.Deadline(); ok {
			if remaining := time.Until(deadline); remaining < wait {
				wait = remaining
			}
		}
		if nil != ctx.Err() || wait <= 0 {
			t.log.Debugf("timeout: %s  request: %d", m.Command, m.Request)
			return nil, fault.ErrTimeout
		}

		ready, err := t.conn.poll(wait)
		if nil != err {
			t.log.Warnf("poll error: %s", err)
			t.reconnect()
			return nil, fault.ErrNotConnected
		}
		if !ready {
			continue
		}

		data, err := t.conn.receive()
		if nil != err {
			// nothing correlated with the current request
			if zmq.Errno(syscall.EAGAIN) == zmq.AsErrno(err) {
				continue
			}
			t.log.Warnf("receive error: %s", err)
			t.reconnect()
			return nil, fault.ErrNotConnected
		}
		if 1 != len(data) {
			t.log.Warnf("receive: %d frames", len(data))
			continue
		}

		return reply.ParseReply(data[0])
	}
}

// Close - disconnect
func (t *Transport) Close() error {
	t.Lock()
	defer t.Unlock()
	return t.conn.close()
}

// String - the notary endpoint
func (t *Transport) String() string {
	return t.conn.address
}

// must hold lock
func (t *Transport) reconnect() {
	if err := t.conn.reopen(); nil != err {
		t.log.Errorf("reconnect to: %s  error: %s", t.conn.address, err)
	}
}
