// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package delivery

import (
	"context"
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/notarysync/background"
	"github.com/bitmark-inc/notarysync/fault"
	"github.com/bitmark-inc/notarysync/identity"
	"github.com/bitmark-inc/notarysync/relationship"
)

const logCategory = "delivery"

// Arguments - what a command needs besides its name
type Arguments struct {
	Payload  []byte   // opaque command body
	Numbers  int      // transaction numbers to reserve for the command
	Receipts []string // box receipts that must be downloaded first
}

type submission struct {
	command   string
	arguments Arguments
	handle    *Handle
}

// Status - session view for reporting
type Status struct {
	State   State
	Command string
	Request uint64
	Queued  int
}

// Engine - delivery session for one client-to-notary context
type Engine struct {
	log       *logger.L
	context   *relationship.Context
	notary    *identity.Public
	transport Transport
	config    Configuration
	limiter   *rate.Limiter
	results   *cache.Cache // resolved results and downloaded box receipts
	label     string

	queue chan *submission

	// held for one attempt: at most one message in flight
	sendLock sync.Mutex

	// session state
	lock    sync.Mutex
	state   State
	command string
	request uint64
	stopped bool

	// worker only
	forceCatchUp bool

	ctx        context.Context
	cancel     context.CancelFunc
	background *background.T
}

// New - create an engine and start its worker
func New(c *relationship.Context, notary *identity.Public, transport Transport, config Configuration, log *logger.L) (*Engine, error) {
	if nil == c || nil == notary || nil == transport {
		return nil, fault.ErrMissingParameters
	}
	if relationship.ClientToNotary != c.Kind() {
		return nil, fault.ErrNotClientToNotary
	}
	if notary.ID() != c.NotaryID() {
		return nil, fault.ErrMismatchedContext
	}
	config, err := config.validate()
	if nil != err {
		return nil, err
	}
	if nil == log {
		log = logger.New(logCategory)
	}

	limit := rate.Inf
	if config.SendRate > 0 {
		limit = rate.Limit(config.SendRate)
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		log:       log,
		context:   c,
		notary:    notary,
		transport: transport,
		config:    config,
		limiter:   rate.NewLimiter(limit, 1),
		results:   cache.New(config.ResultLifetime, 2*config.ResultLifetime),
		label:     notary.ID().String(),
		queue:     make(chan *submission, config.QueueSize),
		state:     Idle,
		ctx:       ctx,
		cancel:    cancel,
	}

	e.background = background.Start(background.Processes{e}, nil)
	e.log.Infof("started: context: %s  notary: %s", c.Key(), e.label)
	return e, nil
}

// Submit - queue a command, the handle is returned at once
func (e *Engine) Submit(command string, arguments Arguments) *Handle {
	if "" == command {
		return resolvedHandle(Result{State: Failed, Err: fault.ErrCommandRequired})
	}
	if arguments.Numbers < 0 {
		return resolvedHandle(Result{State: Failed, Err: fault.ErrInvalidCount})
	}

	s := &submission{
		command:   command,
		arguments: arguments,
		handle:    newHandle(),
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	if e.stopped {
		s.handle.resolve(Result{State: Cancelled, Err: fault.ErrEngineStopped})
		return s.handle
	}

	select {
	case e.queue <- s:
		queueDepth.WithLabelValues(e.label).Inc()
	default:
		e.log.Warnf("queue full: dropped: %s", command)
		s.handle.resolve(Result{State: Failed, Err: fault.ErrQueueFull})
	}
	return s.handle
}

// Snapshot - the context's current signed snapshot
func (e *Engine) Snapshot() *relationship.Snapshot {
	return e.context.Snapshot()
}

// Context - the context this engine drives
func (e *Engine) Context() *relationship.Context {
	return e.context
}

// Status - current session state
func (e *Engine) Status() Status {
	e.lock.Lock()
	defer e.lock.Unlock()
	return Status{
		State:   e.state,
		Command: e.command,
		Request: e.request,
		Queued:  len(e.queue),
	}
}

// Shutdown - stop the worker and cancel everything pending
//
// the worker has exited before this returns; the returned handle is
// already resolved
func (e *Engine) Shutdown() *Handle {
	e.lock.Lock()
	if e.stopped {
		e.lock.Unlock()
		return resolvedHandle(Result{State: Success})
	}
	e.stopped = true
	e.lock.Unlock()

	e.log.Info("shutting down…")
	e.cancel()
	e.background.Stop()
	e.log.Info("stopped")

	return resolvedHandle(Result{State: Success})
}

// Run - the worker, implements background.Process
func (e *Engine) Run(args interface{}, shutdown <-chan struct{}) {
loop:
	for {
		select {
		case <-shutdown:
			break loop
		case s := <-e.queue:
			queueDepth.WithLabelValues(e.label).Dec()
			e.process(s)
		}
	}

	// nothing can be queued once stopped is set
	for {
		select {
		case s := <-e.queue:
			queueDepth.WithLabelValues(e.label).Dec()
			e.finish(s, Result{State: Cancelled, Err: fault.ErrCancelled})
		default:
			return
		}
	}
}

func (e *Engine) process(s *submission) {
	// cancelled while queued
	if s.handle.isResolved() {
		e.log.Debugf("skip cancelled: %s", s.command)
		return
	}
	if nil != e.ctx.Err() {
		e.finish(s, Result{State: Cancelled, Err: fault.ErrCancelled})
		return
	}
	if err := e.context.Quarantined(); nil != err {
		e.finish(s, Result{State: Failed, Err: err})
		return
	}

	result := e.deliver(s)
	e.finish(s, result)
}

func (e *Engine) finish(s *submission, result Result) {
	if !s.handle.resolve(result) {
		e.log.Debugf("%s: result after cancel: %s", s.command, result.State)
	}
	resolvedResults.WithLabelValues(e.label, result.State.String()).Inc()
	e.setState(Idle, "", 0)
}

func (e *Engine) setState(state State, command string, request uint64) {
	e.lock.Lock()
	e.state = state
	e.command = command
	e.request = request
	e.lock.Unlock()

	publish(e.context.Key(), command, request, state)
}
