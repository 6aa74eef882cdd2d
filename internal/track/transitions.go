// Zonewatch - Live Location Tracking and Zone Alerting for Telegram
// Copyright 2026 Zonewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/zonewatch/zonewatch

package track

import "github.com/zonewatch/zonewatch/internal/zone"

// DiffTransitions computes the stable entered and exited zone events
// between two membership sets.
//
// Raw ids are first grouped by their zone's grouping key, so several
// overlapping zones sharing a name and type count as one logical area:
// moving among them fires nothing, and entering any of them fires once.
// The diff runs over grouping keys; for each key present only in the new
// grouping one representative id is emitted (the lowest id sharing the
// key, for determinism), and likewise for keys present only in the
// previous grouping. Ids absent from the catalog are skipped.
//
// Pure function; the caller persists the new membership set.
func DiffTransitions(prev, next map[int64]struct{}, catalog *zone.Catalog) (entered, exited []int64) {
	prevGroups := groupByKey(prev, catalog)
	nextGroups := groupByKey(next, catalog)

	for key, rep := range nextGroups {
		if _, ok := prevGroups[key]; !ok {
			entered = append(entered, rep)
		}
	}
	for key, rep := range prevGroups {
		if _, ok := nextGroups[key]; !ok {
			exited = append(exited, rep)
		}
	}
	return entered, exited
}

// groupByKey maps each grouping key present in ids to its lowest member
// id. Stale ids with no catalog entry are dropped.
func groupByKey(ids map[int64]struct{}, catalog *zone.Catalog) map[zone.GroupKey]int64 {
	groups := make(map[zone.GroupKey]int64)
	for id := range ids {
		z := catalog.Get(id)
		if z == nil {
			continue
		}
		key := z.Key()
		if rep, ok := groups[key]; !ok || id < rep {
			groups[key] = id
		}
	}
	return groups
}
