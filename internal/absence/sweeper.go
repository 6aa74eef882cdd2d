// Zonewatch - Live Location Tracking and Zone Alerting for Telegram
// Copyright 2026 Zonewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/zonewatch/zonewatch

// Package absence implements the periodic sweep that alerts admins when
// a tracked user has been silent longer than the admin's threshold.
//
// Each (user, admin) pair is alerted at most once per silence episode;
// the pair set lives in the shared state store and is cleared the moment
// the user reports a location again. A sweep failure is logged and the
// sweeper resumes on the next tick; it only stops on explicit shutdown.
package absence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/zonewatch/zonewatch/internal/logging"
	"github.com/zonewatch/zonewatch/internal/metrics"
	"github.com/zonewatch/zonewatch/internal/notify"
	"github.com/zonewatch/zonewatch/internal/policy"
	"github.com/zonewatch/zonewatch/internal/track"
)

// Config holds sweeper configuration.
type Config struct {
	// Interval is the sweep cadence (default: 1 minute).
	Interval time.Duration
}

// DefaultConfig returns the default sweeper configuration.
func DefaultConfig() Config {
	return Config{Interval: time.Minute}
}

// Sweeper periodically scans tracked users for staleness and notifies
// admins whose absence threshold has elapsed.
type Sweeper struct {
	store      *track.StateStore
	resolver   *policy.Resolver
	dispatcher *notify.Dispatcher
	admins     []policy.Admin
	config     Config
	logger     zerolog.Logger

	now func() time.Time

	// Runtime state
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSweeper creates a sweeper over the shared tracking state.
func NewSweeper(
	store *track.StateStore,
	resolver *policy.Resolver,
	dispatcher *notify.Dispatcher,
	admins []policy.Admin,
	config Config,
) *Sweeper {
	if config.Interval <= 0 {
		config.Interval = time.Minute
	}
	return &Sweeper{
		store:      store,
		resolver:   resolver,
		dispatcher: dispatcher,
		admins:     admins,
		config:     config,
		logger:     logging.With().Str("component", "absence-sweeper").Logger(),
		now:        time.Now,
	}
}

// Start begins the sweep loop.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("absence sweeper already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info().
		Dur("interval", s.config.Interval).
		Int("admins", len(s.admins)).
		Msg("starting absence sweeper")

	go s.run(ctx)
	return nil
}

// Stop stops the sweep loop and waits for it to finish. Abandoning an
// in-flight tick is safe: all shared-state mutations are atomic per
// user under the store lock.
func (s *Sweeper) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	close(s.stopCh)
	<-s.doneCh

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info().Msg("absence sweeper stopped")
	return nil
}

// run is the sweep loop.
func (s *Sweeper) run(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.safeSweep(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// safeSweep runs one sweep pass, containing any panic so an unexpected
// failure never terminates the loop.
func (s *Sweeper) safeSweep(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("absence sweep failed")
		}
	}()

	start := s.now()
	s.Sweep(ctx)
	metrics.SweepTicks.Inc()
	metrics.SweepDuration.Observe(s.now().Sub(start).Seconds())
}

// Sweep executes a single pass over all tracked users and admins.
// Exported for tests; production code reaches it through the loop.
func (s *Sweeper) Sweep(ctx context.Context) {
	users := s.store.Snapshot()
	if len(users) == 0 {
		return
	}

	now := s.now().UTC()
	for _, user := range users {
		silentFor := now.Sub(user.UpdatedAt)

		for i := range s.admins {
			adm := &s.admins[i]
			eff := s.resolver.EffectiveSettings(adm)
			if !eff.NotifyAbsentEnabled {
				continue
			}
			threshold := time.Duration(eff.NotifyAbsentMinutes) * time.Minute
			if silentFor < threshold {
				continue
			}
			if s.store.AbsenceNotified(user.UserID, adm.ID) {
				continue
			}

			s.notifyAbsence(ctx, adm, user, silentFor, eff)
			s.store.MarkAbsenceNotified(user.UserID, adm.ID)
		}
	}
}

// notifyAbsence sends one absence alert. The pair is marked notified by
// the caller even on delivery failure; alerts are never retried.
func (s *Sweeper) notifyAbsence(ctx context.Context, adm *policy.Admin, user track.UserSnapshot, silentFor time.Duration, eff policy.NotifySettings) {
	label := s.dispatcher.SenderLabel(user.UserID, "")

	ev := notify.Event{
		Category: notify.CategoryAbsence,
		Text:     notify.AbsenceText(label, int(silentFor.Minutes())),
		SenderID: user.UserID,
	}
	if eff.SendCurrentLocationWithAlert {
		ev.Location = &notify.Coordinate{Lat: user.Lat, Lng: user.Lng}
	}

	s.dispatcher.DispatchTo(ctx, adm, ev)
	metrics.AbsenceAlerts.Inc()

	s.logger.Info().
		Int64("user_id", user.UserID).
		Int64("admin_id", adm.ID).
		Dur("silent_for", silentFor).
		Msg("absence alert sent")
}
