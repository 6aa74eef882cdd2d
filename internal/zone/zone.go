// Zonewatch - Live Location Tracking and Zone Alerting for Telegram
// Copyright 2026 Zonewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/zonewatch/zonewatch

// Package zone defines the geographic zone model and the classifier that
// maps a coordinate to the set of zones containing it.
package zone

import (
	"fmt"
	"strconv"
)

// Type classifies a zone as secure or danger.
type Type string

const (
	// TypeSecure marks areas users are expected to stay in.
	TypeSecure Type = "secure"

	// TypeDanger marks areas that should trigger attention when entered.
	TypeDanger Type = "danger"
)

// Valid reports whether t is a known zone type.
func (t Type) Valid() bool {
	return t == TypeSecure || t == TypeDanger
}

// Notifications holds a per-zone override of the global enter/exit
// notification defaults. When Override is false the other fields are
// ignored and the global default for the zone's type applies.
type Notifications struct {
	Override      bool `json:"override" koanf:"override"`
	NotifyOnEnter bool `json:"notify_on_enter" koanf:"notify_on_enter"`
	NotifyOnExit  bool `json:"notify_on_exit" koanf:"notify_on_exit"`
}

// Zone is a circular geographic area. Zones are immutable after load.
type Zone struct {
	ID            int64         `json:"id"`
	Type          Type          `json:"type"`
	Name          string        `json:"name,omitempty"`
	CenterLat     float64       `json:"center_lat"`
	CenterLng     float64       `json:"center_lng"`
	RadiusM       float64       `json:"radius_m"`
	Notifications Notifications `json:"notifications"`
}

// GroupKey identifies the logical area a zone belongs to. Zones sharing
// a name and type are one logical area; anonymous zones stand alone.
// Representative selection during transition diffing happens per key.
type GroupKey struct {
	Type Type
	// Label is the zone name for named zones, or the decimal zone id
	// for anonymous ones. The named bit disambiguates a zone literally
	// named "7" from the anonymous zone with id 7.
	Label string
	Named bool
}

// Key returns the grouping key for z.
func (z *Zone) Key() GroupKey {
	if z.Name != "" {
		return GroupKey{Type: z.Type, Label: z.Name, Named: true}
	}
	return GroupKey{Type: z.Type, Label: strconv.FormatInt(z.ID, 10)}
}

// Describe returns a human-readable reference to the zone for
// notification texts: the quoted name when present, else "#id".
func (z *Zone) Describe() string {
	if z.Name != "" {
		return fmt.Sprintf("%q", z.Name)
	}
	return fmt.Sprintf("#%d", z.ID)
}
