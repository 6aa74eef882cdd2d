// Zonewatch - Live Location Tracking and Zone Alerting for Telegram
// Copyright 2026 Zonewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/zonewatch/zonewatch

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/zonewatch/zonewatch/internal/validation"
)

// Validate checks the loaded configuration for consistency. List
// entries (zones, admins, accept_from users) are validated during
// lenient loading; this covers the scalar settings.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return fmt.Errorf("telegram.token is required (set BOT_TOKEN)")
	}
	if c.Telegram.PollTimeout <= 0 || c.Telegram.PollTimeout > 50*time.Second {
		return fmt.Errorf("telegram.poll_timeout must be in (0, 50s], got %s", c.Telegram.PollTimeout)
	}
	if c.Absence.SweepInterval <= 0 {
		return fmt.Errorf("absence.sweep_interval must be positive, got %s", c.Absence.SweepInterval)
	}
	if c.Telegram.Global.NotifyAbsentMinutes <= 0 {
		return fmt.Errorf("telegram.global.notify_absent_minutes must be positive, got %d",
			c.Telegram.Global.NotifyAbsentMinutes)
	}
	if c.Ops.Enabled {
		if c.Ops.Port < 1 || c.Ops.Port > 65535 {
			return fmt.Errorf("ops.port must be in [1, 65535], got %d", c.Ops.Port)
		}
	}
	return nil
}

// validateZone runs the struct tags on one zone entry.
func validateZone(zc *ZoneConfig) error {
	if err := validation.ValidateStruct(zc); err != nil {
		return err
	}
	return nil
}
