// Zonewatch - Live Location Tracking and Zone Alerting for Telegram
// Copyright 2026 Zonewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/zonewatch/zonewatch

// Package notify fans notification events out to the configured admins.
//
// A single logical event (a zone transition, a broadcast start or stop,
// or an absence alert) is delivered independently to each admin after
// applying the zone-interest filter and the admin's effective
// notification settings. Delivery is best effort: a failure for one
// admin is logged and never aborts the remaining sends, and nothing is
// retried.
package notify

import (
	"context"

	"github.com/zonewatch/zonewatch/internal/logging"
	"github.com/zonewatch/zonewatch/internal/metrics"
	"github.com/zonewatch/zonewatch/internal/policy"
	"github.com/zonewatch/zonewatch/internal/zone"
)

// Category identifies the kind of notification event. The category is
// threaded end-to-end and drives per-admin gating; gating never inspects
// the event text.
type Category string

const (
	CategoryBroadcastStart Category = "broadcast_start"
	CategoryBroadcastStop  Category = "broadcast_stop"
	CategoryZoneEnter      Category = "zone_enter"
	CategoryZoneExit       Category = "zone_exit"
	CategoryAbsence        Category = "absence"
)

// Coordinate is a latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64
	Lng float64
}

// Event is one logical notification to fan out.
type Event struct {
	Category Category
	Text     string

	// SenderID identifies the tracked user the event is about.
	SenderID int64

	// SenderName is the transport-supplied display name, used when no
	// configured name exists for the sender.
	SenderName string

	// Location, when set, is attached as a location message for admins
	// whose effective settings request it.
	Location *Coordinate

	// Zone is the zone context for zone_enter/zone_exit events; it
	// feeds the per-admin interest filter.
	Zone *zone.Zone
}

// Sender delivers messages to a recipient chat. Implemented by the
// Telegram client; test doubles implement it in-memory.
type Sender interface {
	// SendMessage delivers text to the recipient. May fail
	// independently per call.
	SendMessage(ctx context.Context, chatID int64, text string) error

	// SendLocation delivers a coordinate as a location message.
	SendLocation(ctx context.Context, chatID int64, lat, lng float64) error
}

// ShowSenderOptions controls how the sender label is composed.
type ShowSenderOptions struct {
	ShowName bool `json:"show_name" koanf:"show_name"`
	ShowID   bool `json:"show_id" koanf:"show_id"`
}

// Dispatcher fans events out to admins. Immutable after construction;
// safe for concurrent use from the inbound handler and the sweeper.
type Dispatcher struct {
	sender   Sender
	resolver *policy.Resolver
	admins   []policy.Admin
	names    map[int64]string
	show     ShowSenderOptions
}

// NewDispatcher creates a dispatcher for the given admin set.
// configuredNames maps sender ids to names from config, with admin names
// taking precedence over accept-filter user names.
func NewDispatcher(
	sender Sender,
	resolver *policy.Resolver,
	admins []policy.Admin,
	configuredNames map[int64]string,
	show ShowSenderOptions,
) *Dispatcher {
	names := make(map[int64]string, len(configuredNames))
	for id, name := range configuredNames {
		names[id] = name
	}
	return &Dispatcher{
		sender:   sender,
		resolver: resolver,
		admins:   admins,
		names:    names,
		show:     show,
	}
}

// Dispatch delivers the event to every interested admin. Ordering
// between admins is not meaningful; failures are independent.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) {
	if len(d.admins) == 0 {
		logging.Info().Str("category", string(ev.Category)).Msg("no admins configured, dropping notification")
		return
	}
	for i := range d.admins {
		d.DispatchTo(ctx, &d.admins[i], ev)
	}
}

// DispatchTo delivers the event to a single admin, applying the interest
// filter and the admin's effective gates. Used by Dispatch and directly
// by the absence sweeper, whose events are inherently per-admin.
func (d *Dispatcher) DispatchTo(ctx context.Context, adm *policy.Admin, ev Event) {
	if isZoneEvent(ev.Category) && ev.Zone != nil && !adm.InterestedIn(ev.Zone.ID) {
		return
	}

	eff := d.resolver.EffectiveSettings(adm)
	if !categoryAllowed(ev.Category, eff) {
		return
	}

	text := ev.Text + "\nFrom: " + d.SenderLabel(ev.SenderID, ev.SenderName)

	if err := d.sender.SendMessage(ctx, adm.ID, text); err != nil {
		metrics.NotificationsFailed.WithLabelValues(string(ev.Category)).Inc()
		logging.Warn().Err(err).
			Int64("admin_id", adm.ID).
			Str("category", string(ev.Category)).
			Msg("failed to deliver notification")
		return
	}
	metrics.NotificationsSent.WithLabelValues(string(ev.Category)).Inc()

	if ev.Location != nil && eff.SendCurrentLocationWithAlert {
		if err := d.sender.SendLocation(ctx, adm.ID, ev.Location.Lat, ev.Location.Lng); err != nil {
			metrics.NotificationsFailed.WithLabelValues(string(ev.Category)).Inc()
			logging.Warn().Err(err).
				Int64("admin_id", adm.ID).
				Msg("failed to deliver location attachment")
		}
	}
}

// SenderLabel resolves the label identifying a tracked user in outbound
// texts. A name configured for the id wins over the transport-supplied
// display name; show_name and show_id toggle the parts independently,
// and when both are off the label degrades to the bare id.
func (d *Dispatcher) SenderLabel(senderID int64, displayName string) string {
	var parts []string

	if d.show.ShowName {
		if name, ok := d.names[senderID]; ok && name != "" {
			parts = append(parts, name)
		} else if displayName != "" {
			parts = append(parts, displayName)
		}
	}
	if d.show.ShowID {
		parts = append(parts, "id="+formatID(senderID))
	}

	if len(parts) == 0 {
		return formatID(senderID)
	}

	label := parts[0]
	for _, p := range parts[1:] {
		label += ", " + p
	}
	return label
}

// isZoneEvent reports whether the category is a zone transition.
func isZoneEvent(c Category) bool {
	return c == CategoryZoneEnter || c == CategoryZoneExit
}

// categoryAllowed applies the admin's effective gates. Zone transitions
// always pass: zone safety notifications are not optional chrome like
// broadcast start/stop messages.
func categoryAllowed(c Category, eff policy.NotifySettings) bool {
	switch c {
	case CategoryBroadcastStart:
		return eff.NotifyLocationStart
	case CategoryBroadcastStop:
		return eff.NotifyLocationStop
	case CategoryAbsence:
		return eff.NotifyAbsentEnabled
	default:
		return true
	}
}
