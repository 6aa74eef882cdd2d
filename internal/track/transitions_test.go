// Zonewatch - Live Location Tracking and Zone Alerting for Telegram
// Copyright 2026 Zonewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/zonewatch/zonewatch

package track

import (
	"sort"
	"testing"

	"github.com/zonewatch/zonewatch/internal/zone"
)

func idSet(ids ...int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func sortedCopy(ids []int64) []int64 {
	out := append([]int64(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	a, b = sortedCopy(a), sortedCopy(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDiffTransitions(t *testing.T) {
	catalog := zone.NewCatalog([]zone.Zone{
		{ID: 1, Type: zone.TypeSecure, Name: "Home"},
		{ID: 2, Type: zone.TypeDanger, Name: "Riverbank"},
		{ID: 3, Type: zone.TypeDanger, Name: "Riverbank"}, // overlaps zone 2 as one logical area
		{ID: 4, Type: zone.TypeSecure},                    // anonymous
		{ID: 5, Type: zone.TypeSecure, Name: "Riverbank"}, // same name, different type
	})

	tests := []struct {
		name        string
		prev, next  map[int64]struct{}
		wantEntered []int64
		wantExited  []int64
	}{
		{
			name:        "first report enters everything",
			prev:        idSet(),
			next:        idSet(1, 4),
			wantEntered: []int64{1, 4},
		},
		{
			name: "no movement no events",
			prev: idSet(1, 4),
			next: idSet(1, 4),
		},
		{
			name:        "simple enter and exit",
			prev:        idSet(1),
			next:        idSet(4),
			wantEntered: []int64{4},
			wantExited:  []int64{1},
		},
		{
			name:        "grouped zones fire once with lowest id",
			prev:        idSet(),
			next:        idSet(2, 3),
			wantEntered: []int64{2},
		},
		{
			name: "moving within a group fires nothing",
			prev: idSet(2),
			next: idSet(3),
		},
		{
			name:       "leaving the whole group fires one exit",
			prev:       idSet(2, 3),
			next:       idSet(),
			wantExited: []int64{2},
		},
		{
			name:        "same name different type is a separate area",
			prev:        idSet(2),
			next:        idSet(5),
			wantEntered: []int64{5},
			wantExited:  []int64{2},
		},
		{
			name:        "stale ids are ignored",
			prev:        idSet(99),
			next:        idSet(1),
			wantEntered: []int64{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entered, exited := DiffTransitions(tt.prev, tt.next, catalog)
			if !equalIDs(entered, tt.wantEntered) {
				t.Errorf("entered = %v, want %v", entered, tt.wantEntered)
			}
			if !equalIDs(exited, tt.wantExited) {
				t.Errorf("exited = %v, want %v", exited, tt.wantExited)
			}
		})
	}
}

func TestDiffTransitionsIdempotent(t *testing.T) {
	catalog := zone.NewCatalog([]zone.Zone{
		{ID: 1, Type: zone.TypeSecure, Name: "Home"},
	})

	// Re-diffing an unchanged membership must never re-report.
	membership := idSet(1)
	for i := 0; i < 3; i++ {
		entered, exited := DiffTransitions(membership, membership, catalog)
		if len(entered) != 0 || len(exited) != 0 {
			t.Fatalf("iteration %d: entered=%v exited=%v, want none", i, entered, exited)
		}
	}
}
