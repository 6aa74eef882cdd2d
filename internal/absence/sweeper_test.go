// Zonewatch - Live Location Tracking and Zone Alerting for Telegram
// Copyright 2026 Zonewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/zonewatch/zonewatch

package absence

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/zonewatch/zonewatch/internal/notify"
	"github.com/zonewatch/zonewatch/internal/policy"
	"github.com/zonewatch/zonewatch/internal/track"
)

type mockSender struct {
	messages  map[int64][]string
	locations map[int64]int
}

func newMockSender() *mockSender {
	return &mockSender{
		messages:  make(map[int64][]string),
		locations: make(map[int64]int),
	}
}

func (m *mockSender) SendMessage(_ context.Context, chatID int64, text string) error {
	m.messages[chatID] = append(m.messages[chatID], text)
	return nil
}

func (m *mockSender) SendLocation(_ context.Context, chatID int64, _, _ float64) error {
	m.locations[chatID]++
	return nil
}

// fixture wires a sweeper over a fresh store with a controllable clock.
type fixture struct {
	sender  *mockSender
	store   *track.StateStore
	sweeper *Sweeper
	now     time.Time
}

func newFixture(global policy.NotifySettings, admins []policy.Admin) *fixture {
	f := &fixture{
		sender: newMockSender(),
		store:  track.NewStateStore(),
		now:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	resolver := policy.NewResolver(global, policy.DefaultZoneDefaults())
	dispatcher := notify.NewDispatcher(f.sender, resolver, admins, nil, notify.ShowSenderOptions{})
	f.sweeper = NewSweeper(f.store, resolver, dispatcher, admins, DefaultConfig())
	f.sweeper.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) report(userID int64, at time.Time) {
	f.store.Update(userID, 55.0, 37.0, at, nil)
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func absentGlobal(minutes int) policy.NotifySettings {
	return policy.NotifySettings{
		NotifyAbsentEnabled: true,
		NotifyAbsentMinutes: minutes,
	}
}

func TestSweepAlertsAfterThreshold(t *testing.T) {
	f := newFixture(absentGlobal(10), []policy.Admin{{ID: 1}})
	f.report(100, f.now)
	ctx := context.Background()

	// Under the threshold: silence.
	f.advance(5 * time.Minute)
	f.sweeper.Sweep(ctx)
	if len(f.sender.messages[1]) != 0 {
		t.Fatalf("alert fired before threshold: %v", f.sender.messages[1])
	}

	// Over the threshold: exactly one alert.
	f.advance(6 * time.Minute)
	f.sweeper.Sweep(ctx)
	if len(f.sender.messages[1]) != 1 {
		t.Fatalf("alerts = %d, want 1", len(f.sender.messages[1]))
	}
	if !strings.Contains(f.sender.messages[1][0], "No location from 100 for 11 minutes") {
		t.Errorf("alert text = %q", f.sender.messages[1][0])
	}
}

func TestSweepAlertsOncePerEpisode(t *testing.T) {
	f := newFixture(absentGlobal(10), []policy.Admin{{ID: 1}})
	f.report(100, f.now)
	ctx := context.Background()

	f.advance(15 * time.Minute)
	for i := 0; i < 4; i++ {
		f.sweeper.Sweep(ctx)
		f.advance(time.Minute)
	}
	if len(f.sender.messages[1]) != 1 {
		t.Fatalf("alerts = %d, want 1 per silence episode", len(f.sender.messages[1]))
	}

	// A new location report starts a new episode.
	f.report(100, f.now)
	f.advance(15 * time.Minute)
	f.sweeper.Sweep(ctx)
	if len(f.sender.messages[1]) != 2 {
		t.Fatalf("alerts = %d, want 2 after the episode reset", len(f.sender.messages[1]))
	}
}

func TestSweepPerAdminThresholds(t *testing.T) {
	admins := []policy.Admin{
		{ID: 1, Override: true, Settings: absentGlobal(5)},
		{ID: 2, Override: true, Settings: absentGlobal(30)},
		{ID: 3, Override: true, Settings: policy.NotifySettings{NotifyAbsentMinutes: 5}}, // disabled
	}
	f := newFixture(policy.DefaultNotifySettings(), admins)
	f.report(100, f.now)
	ctx := context.Background()

	f.advance(10 * time.Minute)
	f.sweeper.Sweep(ctx)

	if len(f.sender.messages[1]) != 1 {
		t.Errorf("admin 1 (5 min threshold) alerts = %d, want 1", len(f.sender.messages[1]))
	}
	if len(f.sender.messages[2]) != 0 {
		t.Errorf("admin 2 (30 min threshold) alerts = %d, want 0", len(f.sender.messages[2]))
	}
	if len(f.sender.messages[3]) != 0 {
		t.Errorf("admin 3 (disabled) alerts = %d, want 0", len(f.sender.messages[3]))
	}

	// Later the slower admin crosses its threshold too, without
	// re-alerting the faster one.
	f.advance(25 * time.Minute)
	f.sweeper.Sweep(ctx)
	if len(f.sender.messages[1]) != 1 {
		t.Errorf("admin 1 re-alerted within the same episode")
	}
	if len(f.sender.messages[2]) != 1 {
		t.Errorf("admin 2 alerts = %d, want 1", len(f.sender.messages[2]))
	}
}

func TestSweepLocationAttachment(t *testing.T) {
	admins := []policy.Admin{{ID: 1, Override: true, Settings: policy.NotifySettings{
		NotifyAbsentEnabled:          true,
		NotifyAbsentMinutes:          5,
		SendCurrentLocationWithAlert: true,
	}}}
	f := newFixture(policy.DefaultNotifySettings(), admins)
	f.report(100, f.now)

	f.advance(10 * time.Minute)
	f.sweeper.Sweep(context.Background())

	if f.sender.locations[1] != 1 {
		t.Errorf("location attachments = %d, want 1", f.sender.locations[1])
	}
}

func TestSweepIgnoresUntrackedUsers(t *testing.T) {
	f := newFixture(absentGlobal(5), []policy.Admin{{ID: 1}})

	// No users have ever reported.
	f.advance(time.Hour)
	f.sweeper.Sweep(context.Background())
	if len(f.sender.messages[1]) != 0 {
		t.Errorf("alerts = %d for an empty store, want 0", len(f.sender.messages[1]))
	}
}

func TestSweeperStartStop(t *testing.T) {
	f := newFixture(absentGlobal(5), []policy.Admin{{ID: 1}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := f.sweeper.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := f.sweeper.Start(ctx); err == nil {
		t.Error("second Start() should fail")
	}
	if err := f.sweeper.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	// Stop is idempotent.
	if err := f.sweeper.Stop(); err != nil {
		t.Fatalf("second Stop() error: %v", err)
	}
}
