// Zonewatch - Live Location Tracking and Zone Alerting for Telegram
// Copyright 2026 Zonewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/zonewatch/zonewatch

// Package metrics provides Prometheus instrumentation for Zonewatch.
//
// Metrics are registered on the default registry via promauto and
// exposed by the ops HTTP server at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Location pipeline metrics
	LocationsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locations_received_total",
			Help: "Total number of location events received from the transport",
		},
		[]string{"kind"},
	)

	LocationsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "locations_rejected_total",
			Help: "Total number of location events dropped by the accept filter",
		},
	)

	ZoneTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zone_transitions_total",
			Help: "Total number of zone transition events detected",
		},
		[]string{"direction", "zone_type"},
	)

	TrackedUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tracked_users",
			Help: "Current number of users with tracked state",
		},
	)

	// Notification metrics
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total number of notifications delivered to admins",
		},
		[]string{"category"},
	)

	NotificationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_failed_total",
			Help: "Total number of notification deliveries that failed",
		},
		[]string{"category"},
	)

	// Absence sweeper metrics
	SweepTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "absence_sweep_ticks_total",
			Help: "Total number of absence sweep passes executed",
		},
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "absence_sweep_duration_seconds",
			Help:    "Duration of absence sweep passes in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	AbsenceAlerts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "absence_alerts_total",
			Help: "Total number of absence alerts sent",
		},
	)

	// Transport metrics
	TelegramRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_requests_total",
			Help: "Total number of Telegram Bot API calls",
		},
		[]string{"method", "outcome"},
	)

	PollCycles = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_poll_cycles_total",
			Help: "Total number of getUpdates long-poll cycles",
		},
	)
)
