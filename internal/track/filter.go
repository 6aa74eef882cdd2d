// Zonewatch - Live Location Tracking and Zone Alerting for Telegram
// Copyright 2026 Zonewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/zonewatch/zonewatch

package track

// FilterMode selects how inbound senders are filtered.
type FilterMode string

const (
	// FilterAny accepts locations from every sender.
	FilterAny FilterMode = "any"

	// FilterList accepts locations only from the configured sender ids.
	FilterList FilterMode = "list"
)

// AcceptFilter decides whether a sender's locations are processed.
// Rejection is a filter, not an error: dropped events are not reported
// back to the sender.
type AcceptFilter struct {
	mode    FilterMode
	allowed map[int64]struct{}
}

// NewAcceptFilter builds a filter. An unknown mode falls back to
// FilterAny, matching the config loader's default.
func NewAcceptFilter(mode FilterMode, allowedIDs []int64) AcceptFilter {
	if mode != FilterList {
		mode = FilterAny
	}
	allowed := make(map[int64]struct{}, len(allowedIDs))
	for _, id := range allowedIDs {
		allowed[id] = struct{}{}
	}
	return AcceptFilter{mode: mode, allowed: allowed}
}

// Mode returns the effective filter mode.
func (f AcceptFilter) Mode() FilterMode {
	return f.mode
}

// Allows reports whether locations from the sender are accepted.
func (f AcceptFilter) Allows(senderID int64) bool {
	if f.mode == FilterAny {
		return true
	}
	_, ok := f.allowed[senderID]
	return ok
}
