// Zonewatch - Live Location Tracking and Zone Alerting for Telegram
// Copyright 2026 Zonewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/zonewatch/zonewatch

package services

import (
	"context"
	"fmt"
)

// SweepManager matches the absence sweeper's Start/Stop lifecycle.
// Satisfied by *absence.Sweeper.
type SweepManager interface {
	Start(ctx context.Context) error
	Stop() error
}

// SweeperService adapts the sweeper's Start/Stop pattern to suture's
// Serve pattern: start, block until cancellation, stop.
type SweeperService struct {
	manager SweepManager
	name    string
}

// NewSweeperService creates a supervised wrapper around the sweeper.
func NewSweeperService(manager SweepManager) *SweeperService {
	return &SweeperService{
		manager: manager,
		name:    "absence-sweeper",
	}
}

// Serve implements suture.Service. If Start fails the error is
// returned immediately and suture restarts the service with backoff.
func (s *SweeperService) Serve(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		return fmt.Errorf("absence sweeper start failed: %w", err)
	}

	<-ctx.Done()

	if err := s.manager.Stop(); err != nil {
		return fmt.Errorf("absence sweeper stop failed: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for suture log messages.
func (s *SweeperService) String() string {
	return s.name
}
