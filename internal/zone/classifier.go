// Zonewatch - Live Location Tracking and Zone Alerting for Telegram
// Copyright 2026 Zonewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/zonewatch/zonewatch

package zone

import "math"

// earthRadiusM is the mean Earth radius used by the haversine formula.
const earthRadiusM = 6371000.0

// HaversineM calculates the great-circle distance between two points
// using the haversine formula. Returns distance in meters.
func HaversineM(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180.0
	lon1Rad := lon1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	lon2Rad := lon2 * math.Pi / 180.0

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

// Contains reports whether the point lies within the zone. A point
// exactly on the boundary (distance == radius) counts as inside.
func (z *Zone) Contains(lat, lng float64) bool {
	return HaversineM(lat, lng, z.CenterLat, z.CenterLng) <= z.RadiusM
}

// Classify returns the ids of every catalog zone containing the point.
// Pure, O(number of zones); malformed zones never reach the catalog.
func (c *Catalog) Classify(lat, lng float64) map[int64]struct{} {
	ids := make(map[int64]struct{})
	for i := range c.zones {
		if c.zones[i].Contains(lat, lng) {
			ids[c.zones[i].ID] = struct{}{}
		}
	}
	return ids
}
