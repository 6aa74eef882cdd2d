// Zonewatch - Live Location Tracking and Zone Alerting for Telegram
// Copyright 2026 Zonewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/zonewatch/zonewatch

// Package services wraps Zonewatch components as suture services.
package services

import (
	"context"
)

// UpdateSource matches *telegram.Poller's RunWithContext method.
type UpdateSource interface {
	RunWithContext(ctx context.Context) error
}

// PollerService runs the Telegram long-poll loop under supervision.
// The poller's RunWithContext already follows the suture contract
// (block until the context is canceled, then return ctx.Err()), so
// the wrapper only adds the service name.
type PollerService struct {
	source UpdateSource
	name   string
}

// NewPollerService creates a supervised wrapper around the poller.
func NewPollerService(source UpdateSource) *PollerService {
	return &PollerService{
		source: source,
		name:   "telegram-poller",
	}
}

// Serve implements suture.Service.
func (p *PollerService) Serve(ctx context.Context) error {
	return p.source.RunWithContext(ctx)
}

// String implements fmt.Stringer for suture log messages.
func (p *PollerService) String() string {
	return p.name
}
