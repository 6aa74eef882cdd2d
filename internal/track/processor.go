// Zonewatch - Live Location Tracking and Zone Alerting for Telegram
// Copyright 2026 Zonewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/zonewatch/zonewatch

package track

import (
	"context"
	"sort"
	"time"

	"github.com/zonewatch/zonewatch/internal/logging"
	"github.com/zonewatch/zonewatch/internal/metrics"
	"github.com/zonewatch/zonewatch/internal/notify"
	"github.com/zonewatch/zonewatch/internal/policy"
	"github.com/zonewatch/zonewatch/internal/zone"
)

// EventKind distinguishes how a location report arrived.
type EventKind string

const (
	// KindOneShot is a single location message.
	KindOneShot EventKind = "one_shot"

	// KindLiveStart opens a live location session.
	KindLiveStart EventKind = "live_start"

	// KindLiveUpdate is a position update within a live session.
	KindLiveUpdate EventKind = "live_update"

	// KindLiveEnd closes a live location session.
	KindLiveEnd EventKind = "live_end"
)

// LocationEvent is one inbound location report from the transport.
type LocationEvent struct {
	UserID      int64
	DisplayName string
	Lat         float64
	Lng         float64
	Kind        EventKind

	// At is the report time; the zero value means "now".
	At time.Time
}

// Processor drives the inbound pipeline for one location event: accept
// filter, classification, transition diff, state update, and dispatch.
// State mutation commits before any outbound send; classification and
// diffing hold no locks.
type Processor struct {
	catalog    *zone.Catalog
	store      *StateStore
	resolver   *policy.Resolver
	dispatcher *notify.Dispatcher
	filter     AcceptFilter

	now func() time.Time
}

// NewProcessor creates a processor over the given collaborators.
func NewProcessor(
	catalog *zone.Catalog,
	store *StateStore,
	resolver *policy.Resolver,
	dispatcher *notify.Dispatcher,
	filter AcceptFilter,
) *Processor {
	return &Processor{
		catalog:    catalog,
		store:      store,
		resolver:   resolver,
		dispatcher: dispatcher,
		filter:     filter,
		now:        time.Now,
	}
}

// Handle processes one location event end to end.
func (p *Processor) Handle(ctx context.Context, ev LocationEvent) {
	metrics.LocationsReceived.WithLabelValues(string(ev.Kind)).Inc()

	if !p.filter.Allows(ev.UserID) {
		metrics.LocationsRejected.Inc()
		logging.Debug().Int64("user_id", ev.UserID).Msg("location dropped by accept filter")
		return
	}

	at := ev.At
	if at.IsZero() {
		at = p.now()
	}
	at = at.UTC()

	newZones := p.catalog.Classify(ev.Lat, ev.Lng)
	prevZones := p.store.Previous(ev.UserID)
	entered, exited := DiffTransitions(prevZones, newZones, p.catalog)

	// Commit state before any outbound send so the next event's
	// Previous read reflects this one, and so a location update ends
	// the absence episode regardless of delivery outcome.
	p.store.Update(ev.UserID, ev.Lat, ev.Lng, at, newZones)
	metrics.TrackedUsers.Set(float64(p.store.Len()))

	logging.Info().
		Int64("user_id", ev.UserID).
		Str("kind", string(ev.Kind)).
		Float64("lat", ev.Lat).
		Float64("lng", ev.Lng).
		Int("zones", len(newZones)).
		Int("entered", len(entered)).
		Int("exited", len(exited)).
		Msg("location processed")

	switch ev.Kind {
	case KindLiveStart:
		secureZone, dangerZone := p.firstZonesByType(newZones)
		p.dispatcher.Dispatch(ctx, notify.Event{
			Category:   notify.CategoryBroadcastStart,
			Text:       notify.BroadcastStartText(secureZone, dangerZone),
			SenderID:   ev.UserID,
			SenderName: ev.DisplayName,
		})
	case KindLiveEnd:
		p.dispatcher.Dispatch(ctx, notify.Event{
			Category:   notify.CategoryBroadcastStop,
			Text:       notify.BroadcastStopText(),
			SenderID:   ev.UserID,
			SenderName: ev.DisplayName,
			Location:   &notify.Coordinate{Lat: ev.Lat, Lng: ev.Lng},
		})
	}

	p.dispatchTransitions(ctx, ev, entered, true)
	p.dispatchTransitions(ctx, ev, exited, false)
}

// dispatchTransitions emits zone enter or exit events for the given
// representative ids, gated by each zone's effective notify flags.
func (p *Processor) dispatchTransitions(ctx context.Context, ev LocationEvent, ids []int64, entering bool) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		z := p.catalog.Get(id)
		if z == nil {
			continue
		}

		notifyEnter, notifyExit := p.resolver.ZoneNotify(z)

		var category notify.Category
		var text string
		var direction string
		if entering {
			if !notifyEnter {
				continue
			}
			category = notify.CategoryZoneEnter
			text = notify.ZoneEnterText(z)
			direction = "enter"
		} else {
			if !notifyExit {
				continue
			}
			category = notify.CategoryZoneExit
			text = notify.ZoneExitText(z)
			direction = "exit"
		}

		metrics.ZoneTransitions.WithLabelValues(direction, string(z.Type)).Inc()

		p.dispatcher.Dispatch(ctx, notify.Event{
			Category:   category,
			Text:       text,
			SenderID:   ev.UserID,
			SenderName: ev.DisplayName,
			Location:   &notify.Coordinate{Lat: ev.Lat, Lng: ev.Lng},
			Zone:       z,
		})
	}
}

// firstZonesByType returns the first secure and first danger zone, in
// catalog order, among the given membership set. Either may be nil.
func (p *Processor) firstZonesByType(ids map[int64]struct{}) (secureZone, dangerZone *zone.Zone) {
	for _, z := range p.catalog.All() {
		if _, ok := ids[z.ID]; !ok {
			continue
		}
		switch z.Type {
		case zone.TypeSecure:
			if secureZone == nil {
				z := z
				secureZone = &z
			}
		case zone.TypeDanger:
			if dangerZone == nil {
				z := z
				dangerZone = &z
			}
		}
	}
	return secureZone, dangerZone
}
