// Zonewatch - Live Location Tracking and Zone Alerting for Telegram
// Copyright 2026 Zonewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/zonewatch/zonewatch

package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/zonewatch/zonewatch/internal/metrics"
	"github.com/zonewatch/zonewatch/internal/policy"
	"github.com/zonewatch/zonewatch/internal/zone"
)

// mockSender records sends and can fail for chosen chat ids.
type mockSender struct {
	messages   map[int64][]string
	locations  map[int64]int
	failFor    map[int64]struct{}
	failLocFor map[int64]struct{}
}

func newMockSender() *mockSender {
	return &mockSender{
		messages:   make(map[int64][]string),
		locations:  make(map[int64]int),
		failFor:    make(map[int64]struct{}),
		failLocFor: make(map[int64]struct{}),
	}
}

func (m *mockSender) SendMessage(_ context.Context, chatID int64, text string) error {
	if _, fail := m.failFor[chatID]; fail {
		return errors.New("chat unreachable")
	}
	m.messages[chatID] = append(m.messages[chatID], text)
	return nil
}

func (m *mockSender) SendLocation(_ context.Context, chatID int64, _, _ float64) error {
	if _, fail := m.failLocFor[chatID]; fail {
		return errors.New("chat unreachable")
	}
	m.locations[chatID]++
	return nil
}

func defaultResolver() *policy.Resolver {
	return policy.NewResolver(policy.DefaultNotifySettings(), policy.DefaultZoneDefaults())
}

func TestDispatchFansOutToAllAdmins(t *testing.T) {
	sender := newMockSender()
	admins := []policy.Admin{{ID: 1}, {ID: 2}, {ID: 3}}
	d := NewDispatcher(sender, defaultResolver(), admins, nil, ShowSenderOptions{})

	d.Dispatch(context.Background(), Event{
		Category: CategoryBroadcastStart,
		Text:     "started",
		SenderID: 100,
	})

	for _, adm := range admins {
		if len(sender.messages[adm.ID]) != 1 {
			t.Errorf("admin %d received %d messages, want 1", adm.ID, len(sender.messages[adm.ID]))
		}
	}
}

func TestDispatchFailureIsolation(t *testing.T) {
	sender := newMockSender()
	sender.failFor[1] = struct{}{}
	admins := []policy.Admin{{ID: 1}, {ID: 2}}
	d := NewDispatcher(sender, defaultResolver(), admins, nil, ShowSenderOptions{})

	d.Dispatch(context.Background(), Event{
		Category: CategoryBroadcastStop,
		Text:     "stopped",
		SenderID: 100,
	})

	if len(sender.messages[2]) != 1 {
		t.Error("delivery failure for one admin must not affect the others")
	}
}

func TestDispatchCategoryGating(t *testing.T) {
	tests := []struct {
		name     string
		settings policy.NotifySettings
		category Category
		want     bool
	}{
		{
			name:     "start gated off",
			settings: policy.NotifySettings{NotifyLocationStop: true},
			category: CategoryBroadcastStart,
			want:     false,
		},
		{
			name:     "stop gated on",
			settings: policy.NotifySettings{NotifyLocationStop: true},
			category: CategoryBroadcastStop,
			want:     true,
		},
		{
			name:     "absence gated off",
			settings: policy.NotifySettings{NotifyLocationStart: true},
			category: CategoryAbsence,
			want:     false,
		},
		{
			name:     "zone events always pass",
			settings: policy.NotifySettings{},
			category: CategoryZoneEnter,
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := newMockSender()
			admins := []policy.Admin{{ID: 1, Override: true, Settings: tt.settings}}
			d := NewDispatcher(sender, defaultResolver(), admins, nil, ShowSenderOptions{})

			d.Dispatch(context.Background(), Event{Category: tt.category, Text: "x", SenderID: 100})

			got := len(sender.messages[1]) == 1
			if got != tt.want {
				t.Errorf("delivered = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDispatchZoneInterestFilter(t *testing.T) {
	sender := newMockSender()
	admins := []policy.Admin{
		{ID: 1, ZoneIDs: []int64{5}},
		{ID: 2},
	}
	d := NewDispatcher(sender, defaultResolver(), admins, nil, ShowSenderOptions{})
	z := &zone.Zone{ID: 7, Type: zone.TypeDanger}

	d.Dispatch(context.Background(), Event{
		Category: CategoryZoneEnter,
		Text:     "entered",
		SenderID: 100,
		Zone:     z,
	})

	if len(sender.messages[1]) != 0 {
		t.Error("admin scoped to other zones should not receive the event")
	}
	if len(sender.messages[2]) != 1 {
		t.Error("unscoped admin should receive the event")
	}

	// The interest filter never applies to non-zone events.
	d.Dispatch(context.Background(), Event{
		Category: CategoryBroadcastStart,
		Text:     "started",
		SenderID: 100,
	})
	if len(sender.messages[1]) != 1 {
		t.Error("zone scoping must not filter broadcast events")
	}
}

func TestDispatchLocationAttachment(t *testing.T) {
	loc := &Coordinate{Lat: 55.0, Lng: 37.0}

	t.Run("attached when enabled", func(t *testing.T) {
		sender := newMockSender()
		admins := []policy.Admin{{ID: 1, Override: true, Settings: policy.NotifySettings{
			NotifyLocationStop:           true,
			SendCurrentLocationWithAlert: true,
		}}}
		d := NewDispatcher(sender, defaultResolver(), admins, nil, ShowSenderOptions{})

		d.Dispatch(context.Background(), Event{Category: CategoryBroadcastStop, Text: "x", SenderID: 100, Location: loc})
		if sender.locations[1] != 1 {
			t.Errorf("locations sent = %d, want 1", sender.locations[1])
		}
	})

	t.Run("skipped when disabled", func(t *testing.T) {
		sender := newMockSender()
		d := NewDispatcher(sender, defaultResolver(), []policy.Admin{{ID: 1}}, nil, ShowSenderOptions{})

		d.Dispatch(context.Background(), Event{Category: CategoryBroadcastStop, Text: "x", SenderID: 100, Location: loc})
		if sender.locations[1] != 0 {
			t.Errorf("locations sent = %d, want 0", sender.locations[1])
		}
	})

	t.Run("failed attachment counts as a failed notification", func(t *testing.T) {
		sender := newMockSender()
		sender.failLocFor[1] = struct{}{}
		admins := []policy.Admin{{ID: 1, Override: true, Settings: policy.NotifySettings{
			NotifyLocationStop:           true,
			SendCurrentLocationWithAlert: true,
		}}}
		d := NewDispatcher(sender, defaultResolver(), admins, nil, ShowSenderOptions{})

		before := testutil.ToFloat64(metrics.NotificationsFailed.WithLabelValues(string(CategoryBroadcastStop)))
		d.Dispatch(context.Background(), Event{Category: CategoryBroadcastStop, Text: "x", SenderID: 100, Location: loc})
		after := testutil.ToFloat64(metrics.NotificationsFailed.WithLabelValues(string(CategoryBroadcastStop)))

		if got := after - before; got != 1 {
			t.Errorf("NotificationsFailed delta = %v, want 1", got)
		}
		// The text message itself was delivered before the attachment failed.
		if len(sender.messages[1]) != 1 {
			t.Errorf("messages delivered = %d, want 1", len(sender.messages[1]))
		}
	})
}

func TestSenderLabel(t *testing.T) {
	names := map[int64]string{100: "Alice"}

	tests := []struct {
		name        string
		show        ShowSenderOptions
		senderID    int64
		displayName string
		want        string
	}{
		{"both off degrades to bare id", ShowSenderOptions{}, 100, "Alice T", "100"},
		{"configured name wins", ShowSenderOptions{ShowName: true}, 100, "Alice T", "Alice"},
		{"display name as fallback", ShowSenderOptions{ShowName: true}, 200, "Bob", "Bob"},
		{"id only", ShowSenderOptions{ShowID: true}, 200, "Bob", "id=200"},
		{"name and id", ShowSenderOptions{ShowName: true, ShowID: true}, 100, "", "Alice, id=100"},
		{"name on but unknown sender without display name", ShowSenderOptions{ShowName: true}, 300, "", "300"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDispatcher(newMockSender(), defaultResolver(), nil, names, tt.show)
			if got := d.SenderLabel(tt.senderID, tt.displayName); got != tt.want {
				t.Errorf("SenderLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDispatchAppendsSenderLine(t *testing.T) {
	sender := newMockSender()
	d := NewDispatcher(sender, defaultResolver(), []policy.Admin{{ID: 1}},
		map[int64]string{100: "Alice"}, ShowSenderOptions{ShowName: true})

	d.Dispatch(context.Background(), Event{Category: CategoryBroadcastStart, Text: "started", SenderID: 100})

	want := "started\nFrom: Alice"
	if got := sender.messages[1][0]; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}
