// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package delivery

import (
	"time"

	"github.com/bitmark-inc/notarysync/fault"
)

// Configuration - engine tuning
type Configuration struct {
	Attempts       int           // sends of one message before giving up
	Timeout        time.Duration // bound on a single send
	InitialBackoff time.Duration // pause before the first retry
	MaximumBackoff time.Duration // ceiling of the doubling pause
	SendRate       float64       // messages per second, zero for unlimited
	ResultLifetime time.Duration // how long resolved results are remembered
	QueueSize      int           // pending submissions
	CatchUpRounds  int           // nymbox catch-up rounds per command
}

// DefaultConfiguration - values used for anything left at zero
func DefaultConfiguration() Configuration {
	return Configuration{
		Attempts:       5,
		Timeout:        10 * time.Second,
		InitialBackoff: 250 * time.Millisecond,
		MaximumBackoff: 8 * time.Second,
		SendRate:       0,
		ResultLifetime: 10 * time.Minute,
		QueueSize:      100,
		CatchUpRounds:  3,
	}
}

// fill zero values from the defaults and check the rest
func (c Configuration) validate() (Configuration, error) {
	d := DefaultConfiguration()
	if 0 == c.Attempts {
		c.Attempts = d.Attempts
	}
	if 0 == c.Timeout {
		c.Timeout = d.Timeout
	}
	if 0 == c.InitialBackoff {
		c.InitialBackoff = d.InitialBackoff
	}
	if 0 == c.MaximumBackoff {
		c.MaximumBackoff = d.MaximumBackoff
	}
	if 0 == c.ResultLifetime {
		c.ResultLifetime = d.ResultLifetime
	}
	if 0 == c.QueueSize {
		c.QueueSize = d.QueueSize
	}
	if 0 == c.CatchUpRounds {
		c.CatchUpRounds = d.CatchUpRounds
	}

	if c.Attempts < 0 || c.QueueSize < 0 || c.CatchUpRounds < 0 || c.SendRate < 0 {
		return c, fault.ErrInvalidCount
	}
	if c.Timeout < 0 || c.InitialBackoff < 0 || c.ResultLifetime < 0 {
		return c, fault.ErrInvalidCount
	}
	if c.MaximumBackoff < c.InitialBackoff {
		c.MaximumBackoff = c.InitialBackoff
	}
	return c, nil
}

// pause before the given retry, doubling up to the maximum
func (c Configuration) backoff(retry int) time.Duration {
	pause := c.InitialBackoff
	for i := 1; i < retry; i += 1 {
		pause *= 2
		if pause >= c.MaximumBackoff {
			return c.MaximumBackoff
		}
	}
	return pause
}
