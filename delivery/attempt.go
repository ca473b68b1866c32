// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package delivery

import (
	"context"
	"time"

	"github.com/bitmark-inc/notarysync/fault"
	"github.com/bitmark-inc/notarysync/record"
	"github.com/bitmark-inc/notarysync/relationship"
	"github.com/bitmark-inc/notarysync/reply"
)

// deliver - catch up as needed, then send the submitted command
//
// a NymboxMismatch reply loops back through catch-up and re-drives
// the command with a fresh request number; it is only surfaced once
// the configured rounds are used up, whether or not the command itself
// goes through catch-up
func (e *Engine) deliver(s *submission) Result {
	rounds := 0
	redrives := 0
	for {
		if e.needsCatchUp(s.command) {
			if rounds >= e.config.CatchUpRounds {
				e.log.Warnf("%s: catch-up rounds exhausted", s.command)
				return Result{State: Failed, Err: fault.ErrNymboxOutOfSync}
			}
			rounds += 1
			if result, ok := e.catchUp(); !ok {
				return result
			}
			continue
		}

		if result, ok := e.fetchReceipts(s.arguments.Receipts); !ok {
			return result
		}

		result, outOfSync := e.attempt(s.command, s.arguments)
		if !outOfSync {
			return result
		}
		e.forceCatchUp = true

		redrives += 1
		if redrives > e.config.CatchUpRounds {
			e.log.Warnf("%s: still out of sync after %d re-drives", s.command, redrives-1)
			return result
		}
		if !e.pause(e.config.backoff(redrives)) {
			return Result{State: Cancelled, Err: fault.ErrCancelled}
		}
	}
}

// financial commands wait until both nymbox hashes agree
func (e *Engine) needsCatchUp(command string) bool {
	if reply.IsCatchUp(command) || !e.context.Policy().NeedsRequestNumber(command) {
		return false
	}
	return e.forceCatchUp || !e.context.NymboxHashMatch()
}

// download the nymbox, then process it
func (e *Engine) catchUp() (Result, bool) {
	e.setState(NeedNymbox, reply.GetNymbox, 0)
	result, outOfSync := e.attempt(reply.GetNymbox, Arguments{})
	if outOfSync {
		return result, true
	}
	if Success != result.State {
		return result, false
	}

	e.setState(NeedProcessNymbox, reply.ProcessNymbox, 0)
	result, outOfSync = e.attempt(reply.ProcessNymbox, Arguments{})
	if outOfSync {
		return result, true
	}
	if Success != result.State {
		return result, false
	}

	e.forceCatchUp = false
	return result, true
}

// one getBoxReceipt per receipt not yet downloaded
func (e *Engine) fetchReceipts(receipts []string) (Result, bool) {
	for _, id := range receipts {
		if _, ok := e.results.Get(receiptPrefix + id); ok {
			continue
		}

		e.setState(NeedBoxItems, reply.GetBoxReceipt, 0)
		result, _ := e.attempt(reply.GetBoxReceipt, Arguments{Receipts: []string{id}})
		if Success != result.State {
			e.log.Warnf("box receipt: %q  error: %v", id, result.Err)
			return result, false
		}
		e.results.SetDefault(receiptPrefix+id, true)
	}
	return Result{State: Success}, true
}

// attempt - stamp, sign and send one message until it is answered
//
// retries resend the identical signed message; the second result is
// true if the notary reported a nymbox mismatch
func (e *Engine) attempt(command string, arguments Arguments) (Result, bool) {
	e.sendLock.Lock()
	defer e.sendLock.Unlock()

	message, reserved, err := e.stamp(command, arguments)
	if nil != err {
		e.log.Warnf("%s: stamp error: %s", command, err)
		return Result{State: Failed, Err: err}, false
	}
	e.setState(PendingSend, command, message.Request)

	expect := reply.Expect(message, e.notary, e.context.VerifyAcknowledgedNumber)

	for try := 1; try <= e.config.Attempts; try += 1 {
		if try > 1 {
			sendRetries.WithLabelValues(e.label).Inc()
			if !e.pause(e.config.backoff(try - 1)) {
				break
			}
		}
		if err := e.limiter.Wait(e.ctx); nil != err {
			break
		}

		e.setState(AwaitingReply, command, message.Request)
		sendAttempts.WithLabelValues(e.label).Inc()

		ctx, cancel := context.WithTimeout(e.ctx, e.config.Timeout)
		r, err := e.transport.Send(ctx, message)
		cancel()

		if nil != e.ctx.Err() {
			break
		}
		if nil != err {
			e.log.Warnf("%s: request: %d  try: %d  send error: %s", command, message.Request, try, err)
			e.setState(PendingSend, command, message.Request)
			continue
		}

		outcome := reply.Classify(r, expect)
		replyOutcomes.WithLabelValues(e.label, outcome.String()).Inc()
		e.log.Debugf("%s: request: %d  outcome: %s", command, message.Request, outcome)

		// unusable, or a duplicate of some earlier reply
		if reply.Malformed == outcome || (reply.StaleRequestNumber == outcome && r.Request != message.Request) {
			e.setState(PendingSend, command, message.Request)
			continue
		}

		return e.apply(message, r, outcome, reserved), reply.NymboxOutOfSync == outcome
	}

	// never answered: the request number stays burned, the numbers return
	e.release(reserved)

	if nil != e.ctx.Err() {
		return Result{State: Cancelled, Err: fault.ErrCancelled}, false
	}
	e.log.Errorf("%s: request: %d  no reply after %d attempts", command, message.Request, e.config.Attempts)
	return Result{State: Failed, Err: fault.ErrNetworkUnavailable, NumbersRejected: reserved}, false
}

// stamp - number and sign a message under the context lock
func (e *Engine) stamp(command string, arguments Arguments) (*reply.Message, []uint64, error) {
	message := &reply.Message{
		Local:    e.context.LocalID(),
		Notary:   e.context.NotaryID(),
		Command:  command,
		Receipts: arguments.Receipts,
		Payload:  arguments.Payload,
	}
	needsRequest := e.context.Policy().NeedsRequestNumber(command)

	var reserved []uint64
	err := e.context.Update(func(s *relationship.State) error {
		reserved = make([]uint64, 0, arguments.Numbers)
		if needsRequest {
			message.Request = s.IncrementRequest()
		}
		message.Acknowledged = s.Acknowledged()
		message.NymboxHash = s.LocalNymboxHash()
		for i := 0; i < arguments.Numbers; i += 1 {
			n, err := s.NextAvailable()
			if nil != err {
				return err
			}
			reserved = append(reserved, n)
		}
		message.Numbers = reserved
		return message.Sign(e.context.Signer())
	})

	if fault.ErrStoreFailed == err {
		e.release(reserved)
	}
	if nil != err {
		return nil, nil, err
	}
	return message, reserved, nil
}

// apply - feed a classified reply back into the context
func (e *Engine) apply(message *reply.Message, r *reply.Reply, outcome reply.Outcome, reserved []uint64) Result {
	switch outcome {
	case reply.Accepted:
		return e.accept(message, r, reserved)

	case reply.StaleRequestNumber:
		return e.stale(message, r)

	case reply.NymboxOutOfSync:
		err := e.context.Update(func(s *relationship.State) error {
			for _, n := range reserved {
				_ = s.RecoverAvailable(n)
			}
			if !r.NymboxHash.IsZero() {
				s.SetRemoteNymboxHash(r.NymboxHash)
			}
			acknowledge(s, message)
			return nil
		})
		e.logUpdate(message, err)
		return Result{State: Failed, Reply: r, Err: fault.ErrNymboxOutOfSync}

	case reply.Rejected:
		err := e.context.Update(func(s *relationship.State) error {
			for _, n := range reserved {
				_ = s.RecoverAvailable(n)
			}
			acknowledge(s, message)
			return nil
		})
		e.logUpdate(message, err)
		result := Result{
			State:           Failed,
			Reply:           r,
			NumbersRejected: reserved,
			Err:             fault.ErrRejected,
		}
		e.remember(message, result)
		return result

	default:
		return Result{State: Failed, Reply: r, Err: fault.ErrInvalidSignature}
	}
}

func (e *Engine) accept(message *reply.Message, r *reply.Reply, reserved []uint64) Result {
	var accepted []uint64
	var rejected []uint64
	staleOffers := false

	err := e.context.Update(func(s *relationship.State) error {
		accepted = append(make([]uint64, 0, len(reserved)), reserved...)
		rejected = make([]uint64, 0)

		for _, n := range reserved {
			if err := s.ConsumeIssued(n); nil != err {
				return err
			}
		}

		if !r.NymboxHash.IsZero() {
			if reply.GetNymbox == message.Command {
				s.SetLocalNymboxHash(r.NymboxHash)
			} else {
				s.SetRemoteNymboxHash(r.NymboxHash)
			}
		}
		acknowledge(s, message)

		if reply.GetRequestNumber == message.Command {
			if n, count := record.FromVarint64(r.Payload); count > 0 {
				s.SetRequest(n)
			}
		}

		for _, n := range r.Confirmed {
			if !s.VerifyTentative(n) {
				continue
			}
			if err := s.ConfirmTentative(n); nil != err {
				return err
			}
			accepted = append(accepted, n)
		}
		for _, n := range r.Refused {
			if nil == s.RemoveTentative(n) {
				rejected = append(rejected, n)
			}
		}

		good, bad := s.UpdateHighest(r.Offered)
		for _, n := range good {
			if nil != s.AddTentative(n) {
				bad = append(bad, n)
			}
		}
		staleOffers = len(bad) > 0
		rejected = append(rejected, bad...)
		return nil
	})

	if nil != err && fault.ErrStoreFailed != err {
		e.log.Errorf("%s: request: %d  apply error: %s", message.Command, message.Request, err)
		return Result{State: Failed, Reply: r, Err: err}
	}
	e.logUpdate(message, err)

	if staleOffers {
		e.log.Warnf("%s: offered numbers at or below watermark: %v", message.Command, rejected)
		e.forceCatchUp = true
	}

	result := Result{
		State:           Success,
		Reply:           r,
		NumbersAccepted: accepted,
		NumbersRejected: rejected,
	}
	e.remember(message, result)
	return result
}

// stale - the notary already answered this request number
//
// the first resolution is replayed if remembered, otherwise the
// command counts as done without deriving anything from the reply
func (e *Engine) stale(message *reply.Message, r *reply.Reply) Result {
	if result, ok := e.recall(message); ok {
		return result
	}

	err := e.context.Update(func(s *relationship.State) error {
		acknowledge(s, message)
		return nil
	})
	e.logUpdate(message, err)

	result := Result{
		State: Success,
		Reply: r,
	}
	e.remember(message, result)
	return result
}

func acknowledge(s *relationship.State, message *reply.Message) {
	if 0 != message.Request {
		s.AddAcknowledged(message.Request)
	}
}

// release - return reserved numbers to available
func (e *Engine) release(reserved []uint64) {
	if 0 == len(reserved) {
		return
	}
	err := e.context.Update(func(s *relationship.State) error {
		for _, n := range reserved {
			_ = s.RecoverAvailable(n)
		}
		return nil
	})
	if nil != err {
		e.log.Errorf("release: %v  error: %s", reserved, err)
	}
}

func (e *Engine) logUpdate(message *reply.Message, err error) {
	if nil != err {
		e.log.Errorf("%s: request: %d  update error: %s", message.Command, message.Request, err)
	}
}

// results are keyed by the content identifier of the signed message,
// a request number can be reused after an administrative reset
const (
	resultPrefix  = "result:"
	receiptPrefix = "receipt:"
)

func (e *Engine) remember(message *reply.Message, result Result) {
	if 0 == message.Request {
		return
	}
	e.results.SetDefault(resultPrefix+message.ID().String(), result)
}

func (e *Engine) recall(message *reply.Message) (Result, bool) {
	if 0 == message.Request {
		return Result{}, false
	}
	item, ok := e.results.Get(resultPrefix + message.ID().String())
	if !ok {
		return Result{}, false
	}
	return item.(Result), true
}

// pause - false if the engine is shutting down
func (e *Engine) pause(d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-e.ctx.Done():
		return false
	}
}
