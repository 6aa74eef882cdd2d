// Zonewatch - Live Location Tracking and Zone Alerting for Telegram
// Copyright 2026 Zonewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/zonewatch/zonewatch

// Package track owns the in-memory tracking state: each user's last
// known position and zone membership, the absence-notified pair set,
// and the transition detection over zone membership changes.
package track

import (
	"sync"
	"time"
)

// UserState is a user's last accepted location report.
type UserState struct {
	Lat       float64
	Lng       float64
	UpdatedAt time.Time
	ZoneIDs   map[int64]struct{}
}

// UserSnapshot is a consistent copy of one user's state, taken under the
// store lock for the absence sweep.
type UserSnapshot struct {
	UserID    int64
	Lat       float64
	Lng       float64
	UpdatedAt time.Time
}

// absencePair identifies one (user, admin) absence alert.
type absencePair struct {
	UserID  int64
	AdminID int64
}

// StateStore holds all mutable tracking state. Entries are created on
// the first accepted location and overwritten on every update; they are
// never deleted for the lifetime of the process.
//
// The inbound handler and the absence sweeper both read and mutate the
// store concurrently; a single mutex serializes every access so the
// sweeper always observes a non-torn (timestamp, zone set) pair.
type StateStore struct {
	mu              sync.Mutex
	users           map[int64]*UserState
	absenceNotified map[absencePair]struct{}
}

// NewStateStore creates an empty state store.
func NewStateStore() *StateStore {
	return &StateStore{
		users:           make(map[int64]*UserState),
		absenceNotified: make(map[absencePair]struct{}),
	}
}

// Previous returns a copy of the user's current zone membership, or an
// empty set if the user is unknown.
func (s *StateStore) Previous(userID int64) map[int64]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := make(map[int64]struct{})
	if st, ok := s.users[userID]; ok {
		for id := range st.ZoneIDs {
			prev[id] = struct{}{}
		}
	}
	return prev
}

// Update replaces the user's stored state with the new position,
// timestamp, and zone membership. Any absence-notified pairs for the
// user are cleared: a location update ends the silence episode for
// every admin at once.
//
// Must be called exactly once per accepted location event, after
// classification and before dispatch, so that Previous always reflects
// the prior event rather than the one being processed.
func (s *StateStore) Update(userID int64, lat, lng float64, at time.Time, zoneIDs map[int64]struct{}) {
	ids := make(map[int64]struct{}, len(zoneIDs))
	for id := range zoneIDs {
		ids[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[userID] = &UserState{
		Lat:       lat,
		Lng:       lng,
		UpdatedAt: at,
		ZoneIDs:   ids,
	}

	for pair := range s.absenceNotified {
		if pair.UserID == userID {
			delete(s.absenceNotified, pair)
		}
	}
}

// Snapshot returns a consistent copy of every tracked user's position
// and timestamp for the absence sweep.
func (s *StateStore) Snapshot() []UserSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snaps := make([]UserSnapshot, 0, len(s.users))
	for id, st := range s.users {
		snaps = append(snaps, UserSnapshot{
			UserID:    id,
			Lat:       st.Lat,
			Lng:       st.Lng,
			UpdatedAt: st.UpdatedAt,
		})
	}
	return snaps
}

// Len returns the number of tracked users.
func (s *StateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// AbsenceNotified reports whether an absence alert was already sent to
// the admin for the user's current silence episode.
func (s *StateStore) AbsenceNotified(userID, adminID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.absenceNotified[absencePair{UserID: userID, AdminID: adminID}]
	return ok
}

// MarkAbsenceNotified records that an absence alert was sent to the
// admin for the user's current silence episode. The pair stays set until
// the user's next location update clears it, even if thresholds change
// or the feature is toggled in between.
func (s *StateStore) MarkAbsenceNotified(userID, adminID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.absenceNotified[absencePair{UserID: userID, AdminID: adminID}] = struct{}{}
}
