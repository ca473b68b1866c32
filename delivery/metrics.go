// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package delivery

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	sendAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notarysync_delivery_send_attempts_total",
			Help: "Number of messages handed to the transport",
		},
		[]string{"notary"},
	)
	sendRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notarysync_delivery_send_retries_total",
			Help: "Number of resends after a timeout or unusable reply",
		},
		[]string{"notary"},
	)
	replyOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notarysync_delivery_reply_outcomes_total",
			Help: "Classified replies by outcome",
		},
		[]string{"notary", "outcome"},
	)
	resolvedResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notarysync_delivery_results_total",
			Help: "Resolved submissions by terminal state",
		},
		[]string{"notary", "state"},
	)
	queueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "notarysync_delivery_queue_depth",
			Help: "Submissions waiting for the worker",
		},
		[]string{"notary"},
	)
)

// RegisterMetrics - add the delivery collectors to a registry
func RegisterMetrics(registerer prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		sendAttempts,
		sendRetries,
		replyOutcomes,
		resolvedResults,
		queueDepth,
	}
	for _, c := range collectors {
		err := registerer.Register(c)
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			continue
		}
		if nil != err {
			return err
		}
	}
	return nil
}
