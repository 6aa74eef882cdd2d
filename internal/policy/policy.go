// Zonewatch - Live Location Tracking and Zone Alerting for Telegram
// Copyright 2026 Zonewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/zonewatch/zonewatch

// Package policy resolves the layered notification configuration into
// effective per-admin and per-zone decisions.
//
// Two independent layers exist:
//
//   - admin settings: global defaults unless the admin sets override,
//     in which case the admin's own settings apply wholesale. There is
//     no partial override.
//   - zone enter/exit notifications: the zone's own flags when the zone
//     sets override, else the global default for the zone's type.
//
// All inputs are pre-validated configuration; resolution never fails.
package policy

import "github.com/zonewatch/zonewatch/internal/zone"

// NotifySettings is the set of per-admin notification switches. The
// same value type serves as the global default and as an admin's
// override block.
type NotifySettings struct {
	NotifyLocationStart          bool `json:"notify_location_start" koanf:"notify_location_start"`
	NotifyLocationStop           bool `json:"notify_location_stop" koanf:"notify_location_stop"`
	NotifyAbsentEnabled          bool `json:"notify_absent_enabled" koanf:"notify_absent_enabled"`
	NotifyAbsentMinutes          int  `json:"notify_absent_minutes" koanf:"notify_absent_minutes"`
	SendCurrentLocationWithAlert bool `json:"send_current_location_with_alert" koanf:"send_current_location_with_alert"`
}

// DefaultNotifySettings returns the documented defaults applied when the
// config omits the global Telegram section.
func DefaultNotifySettings() NotifySettings {
	return NotifySettings{
		NotifyLocationStart: true,
		NotifyLocationStop:  true,
		NotifyAbsentEnabled: false,
		NotifyAbsentMinutes: 10,
	}
}

// Admin is a notification recipient.
type Admin struct {
	ID       int64          `json:"id"`
	Name     string         `json:"name,omitempty"`
	Override bool           `json:"override"`
	Settings NotifySettings `json:"settings"`

	// ZoneIDs restricts which zones' transition events the admin
	// receives. Empty means every zone. The filter never applies to
	// start, stop, or absence events.
	ZoneIDs []int64 `json:"zones,omitempty"`
}

// InterestedIn reports whether the admin receives transition events for
// the given zone.
func (a *Admin) InterestedIn(zoneID int64) bool {
	if len(a.ZoneIDs) == 0 {
		return true
	}
	for _, id := range a.ZoneIDs {
		if id == zoneID {
			return true
		}
	}
	return false
}

// ZoneDefaults is the global enter/exit notification default, one pair
// per zone type.
type ZoneDefaults struct {
	SecureNotifyEnter bool `json:"secure_notify_enter" koanf:"secure_notify_enter"`
	SecureNotifyExit  bool `json:"secure_notify_exit" koanf:"secure_notify_exit"`
	DangerNotifyEnter bool `json:"danger_notify_enter" koanf:"danger_notify_enter"`
	DangerNotifyExit  bool `json:"danger_notify_exit" koanf:"danger_notify_exit"`
}

// DefaultZoneDefaults returns the documented defaults: every transition
// notifies unless configured otherwise.
func DefaultZoneDefaults() ZoneDefaults {
	return ZoneDefaults{
		SecureNotifyEnter: true,
		SecureNotifyExit:  true,
		DangerNotifyEnter: true,
		DangerNotifyExit:  true,
	}
}

// Resolver resolves effective notification decisions against the loaded
// global configuration. Immutable after construction.
type Resolver struct {
	global       NotifySettings
	zoneDefaults ZoneDefaults
}

// NewResolver creates a resolver for the given global defaults.
func NewResolver(global NotifySettings, zoneDefaults ZoneDefaults) *Resolver {
	return &Resolver{global: global, zoneDefaults: zoneDefaults}
}

// EffectiveSettings returns the admin's effective notification settings:
// the global defaults verbatim unless the admin overrides, in which case
// the admin's own settings verbatim. Override is all-or-nothing.
func (r *Resolver) EffectiveSettings(a *Admin) NotifySettings {
	if !a.Override {
		return r.global
	}
	return a.Settings
}

// ZoneNotify returns the effective (enter, exit) notification flags for
// a zone: the zone's own flags when it overrides, else the global
// default for the zone's type.
func (r *Resolver) ZoneNotify(z *zone.Zone) (enter, exit bool) {
	if z.Notifications.Override {
		return z.Notifications.NotifyOnEnter, z.Notifications.NotifyOnExit
	}
	if z.Type == zone.TypeDanger {
		return r.zoneDefaults.DangerNotifyEnter, r.zoneDefaults.DangerNotifyExit
	}
	return r.zoneDefaults.SecureNotifyEnter, r.zoneDefaults.SecureNotifyExit
}
