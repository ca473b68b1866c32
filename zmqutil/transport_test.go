// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zmqutil_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	zmq "github.com/pebbe/zmq4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/notarysync/fault"
	"github.com/bitmark-inc/notarysync/fixtures"
	"github.com/bitmark-inc/notarysync/identity"
	"github.com/bitmark-inc/notarysync/record"
	"github.com/bitmark-inc/notarysync/reply"
	"github.com/bitmark-inc/notarysync/zmqutil"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

type server struct {
	address   string
	publicKey []byte
	stop      chan struct{}
	done      chan struct{}
}

// REP socket on a random loopback port, answering through notary if
// one is given, otherwise never receiving
func startServer(t *testing.T, notary *fixtures.FakeNotary) *server {
	require.Nil(t, zmqutil.StartAuthentication())

	publicKey, privateKey, err := zmqutil.NewKeyPair()
	require.Nil(t, err)

	socket, err := zmqutil.NewServerSocket(zmq.REP, "test-notary", privateKey, publicKey, false)
	require.Nil(t, err)
	require.Nil(t, socket.SetRcvtimeo(20*time.Millisecond))
	require.Nil(t, socket.Bind("tcp://127.0.0.1:*"))

	endpoint, err := socket.GetLastEndpoint()
	require.Nil(t, err)

	s := &server{
		address:   strings.TrimPrefix(endpoint, "tcp://"),
		publicKey: publicKey,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		defer socket.Close()
		if nil == notary {
			<-s.stop
			return
		}
		for {
			select {
			case <-s.stop:
				return
			default:
			}
			data, err := socket.RecvBytes(0)
			if nil != err {
				continue
			}
			m, err := reply.ParseMessage(data)
			if nil != err {
				socket.SendBytes([]byte{}, 0)
				continue
			}
			r, _ := notary.Send(context.Background(), m)
			socket.SendBytes(r.Pack(), 0)
		}
	}()
	return s
}

func (s *server) Stop() {
	close(s.stop)
	<-s.done
}

func newTransport(t *testing.T, s *server) *zmqutil.Transport {
	publicKey, privateKey, err := zmqutil.NewKeyPair()
	require.Nil(t, err)
	transport, err := zmqutil.NewTransport(s.address, s.publicKey, privateKey, publicKey, nil)
	require.Nil(t, err, "new transport")
	return transport
}

func ping(t *testing.T, request uint64) *reply.Message {
	n := fixtures.Notary().ID()
	m := &reply.Message{
		Local:   fixtures.Client().ID(),
		Notary:  n,
		Command: reply.PingNotary,
		Request: request,
	}
	require.Nil(t, m.Sign(fixtures.Client()))
	return m
}

func TestTransportRoundTrip(t *testing.T) {
	h := record.NewIdentifier([]byte("nymbox"))
	s := startServer(t, fixtures.NewFakeNotary(h))
	defer s.Stop()

	transport := newTransport(t, s)
	defer transport.Close()
	assert.Equal(t, "tcp://"+s.address, transport.String())

	notary, err := identity.NewPublic(fixtures.Notary().PublicKey())
	require.Nil(t, err)

	for i := 0; i < 3; i += 1 {
		m := ping(t, 0)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		r, err := transport.Send(ctx, m)
		cancel()
		require.Nil(t, err, "send: %d", i)

		assert.Equal(t, reply.Accepted, reply.Classify(r, reply.Expect(m, notary, nil)))
		assert.Equal(t, h, r.NymboxHash)
	}
}

func TestTransportTimeout(t *testing.T) {
	s := startServer(t, nil)
	defer s.Stop()

	transport := newTransport(t, s)
	defer transport.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := transport.Send(ctx, ping(t, 1))
	assert.Equal(t, fault.ErrTimeout, err)
	assert.True(t, time.Since(start) < 2*time.Second, "timeout not honoured")

	// the socket accepts a resend after a lost reply
	ctx, cancel = context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = transport.Send(ctx, ping(t, 1))
	assert.Equal(t, fault.ErrTimeout, err)
}

func TestTransportParameters(t *testing.T) {
	publicKey, privateKey, err := zmqutil.NewKeyPair()
	require.Nil(t, err)

	_, err = zmqutil.NewTransport("no-port", publicKey, privateKey, publicKey, nil)
	assert.Equal(t, fault.ErrInvalidAddress, err)

	_, err = zmqutil.NewTransport("127.0.0.1:2136", publicKey[:10], privateKey, publicKey, nil)
	assert.Equal(t, fault.ErrInvalidPublicKey, err)

	_, err = zmqutil.NewTransport("127.0.0.1:2136", publicKey, privateKey[:10], publicKey, nil)
	assert.Equal(t, fault.ErrInvalidPrivateKey, err)
}
