// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"time"

	"github.com/bitmark-inc/notarysync/delivery"
)

// DeliveryType - engine tuning as written in the configuration file
//
// durations are Go duration strings e.g. "10s", blank for the default
type DeliveryType struct {
	Attempts       int     `gluamapper:"attempts" json:"attempts"`
	Timeout        string  `gluamapper:"timeout" json:"timeout"`
	InitialBackoff string  `gluamapper:"initial_backoff" json:"initial_backoff"`
	MaximumBackoff string  `gluamapper:"maximum_backoff" json:"maximum_backoff"`
	SendRate       float64 `gluamapper:"send_rate" json:"send_rate"`
	ResultLifetime string  `gluamapper:"result_lifetime" json:"result_lifetime"`
	QueueSize      int     `gluamapper:"queue_size" json:"queue_size"`
	CatchUpRounds  int     `gluamapper:"catch_up_rounds" json:"catch_up_rounds"`
}

// Configuration - convert to the engine form
func (d DeliveryType) Configuration() (delivery.Configuration, error) {
	c := delivery.Configuration{
		Attempts:      d.Attempts,
		SendRate:      d.SendRate,
		QueueSize:     d.QueueSize,
		CatchUpRounds: d.CatchUpRounds,
	}

	durations := []struct {
		value  string
		target *time.Duration
	}{
		{d.Timeout, &c.Timeout},
		{d.InitialBackoff, &c.InitialBackoff},
		{d.MaximumBackoff, &c.MaximumBackoff},
		{d.ResultLifetime, &c.ResultLifetime},
	}
	for _, item := range durations {
		if "" == item.value {
			continue
		}
		duration, err := time.ParseDuration(item.value)
		if nil != err {
			return delivery.Configuration{}, err
		}
		*item.target = duration
	}
	return c, nil
}
