// Zonewatch - Live Location Tracking and Zone Alerting for Telegram
// Copyright 2026 Zonewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/zonewatch/zonewatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/zonewatch/zonewatch/internal/logging"
	"github.com/zonewatch/zonewatch/internal/policy"
	"github.com/zonewatch/zonewatch/internal/zone"
)

const delim = "."

// envMappings maps environment variable names to config keys. Only
// listed variables are consulted; everything else in the process
// environment is ignored.
var envMappings = map[string]string{
	"BOT_TOKEN":              "telegram.token",
	"ZONEWATCH_POLL_TIMEOUT": "telegram.poll_timeout",
	"ZONEWATCH_SWEEP_EVERY":  "absence.sweep_interval",
	"ZONEWATCH_OPS_ENABLED":  "ops.enabled",
	"ZONEWATCH_OPS_HOST":     "ops.host",
	"ZONEWATCH_OPS_PORT":     "ops.port",
	"LOG_LEVEL":              "logging.level",
	"LOG_FORMAT":             "logging.format",
	"LOG_CALLER":             "logging.caller",
}

// defaultConfig returns the built-in defaults applied before the file
// and environment layers.
func defaultConfig() Config {
	return Config{
		Global: ZoneGlobalConfig{
			Secure: ZoneTypeDefaults{NotifyEnter: true, NotifyExit: true},
			Danger: ZoneTypeDefaults{NotifyEnter: true, NotifyExit: true},
		},
		Telegram: TelegramConfig{
			PollTimeout: 50 * time.Second,
			Global:      policy.DefaultNotifySettings(),
			AcceptFrom:  AcceptFromConfig{Mode: "any"},
		},
		Absence: AbsenceConfig{
			SweepInterval: time.Minute,
		},
		Ops: OpsConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8080,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration: defaults, then the JSON config file
// (if one exists), then environment overrides. Zone and admin entries
// are unmarshalled one at a time so a single malformed entry is
// dropped instead of failing the whole load.
func Load() (*Config, error) {
	k := koanf.New(delim)

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	path := findConfigFile()
	if path != "" {
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
		logging.Debug().Str("path", path).Msg("Loaded config file")
	} else {
		logging.Debug().Msg("No config file found, using defaults and environment")
	}

	if err := k.Load(env.Provider("", delim, envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Re-load list sections leniently, entry by entry.
	cfg.Zones = loadZones(k)
	cfg.Telegram.Admins = loadAdmins(k)
	cfg.Telegram.AcceptFrom.Users = loadAcceptUsers(k)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// findConfigFile returns the first existing config file path, checking
// CONFIG_PATH, then the working directory, then /etc/zonewatch.
func findConfigFile() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	for _, p := range []string{"config.json", "/etc/zonewatch/config.json"} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransform maps a known environment variable to its config key.
// Unknown variables are dropped by returning an empty key.
func envTransform(s string) string {
	if key, ok := envMappings[strings.ToUpper(s)]; ok {
		return key
	}
	return ""
}

func loadZones(k *koanf.Koanf) []ZoneConfig {
	slices := k.Slices("zones")
	zones := make([]ZoneConfig, 0, len(slices))
	seen := make(map[int64]struct{}, len(slices))
	for i, entry := range slices {
		var zc ZoneConfig
		if err := entry.Unmarshal("", &zc); err != nil {
			logging.Warn().Err(err).Int("index", i).Msg("Skipping malformed zone entry")
			continue
		}
		if err := validateZone(&zc); err != nil {
			logging.Warn().Err(err).Int("index", i).Int64("zone_id", zc.ID).
				Msg("Skipping invalid zone entry")
			continue
		}
		if _, dup := seen[zc.ID]; dup {
			logging.Warn().Int64("zone_id", zc.ID).Msg("Skipping duplicate zone id")
			continue
		}
		if !zone.Type(zc.Type).Valid() {
			logging.Warn().Int64("zone_id", zc.ID).Str("type", zc.Type).
				Msg("Unknown zone type, treating as secure")
			zc.Type = string(zone.TypeSecure)
		}
		seen[zc.ID] = struct{}{}
		zones = append(zones, zc)
	}
	return zones
}

func loadAdmins(k *koanf.Koanf) []AdminConfig {
	slices := k.Slices("telegram.admins")
	admins := make([]AdminConfig, 0, len(slices))
	for i, entry := range slices {
		var ac AdminConfig
		if err := entry.Unmarshal("", &ac); err != nil {
			logging.Warn().Err(err).Int("index", i).Msg("Skipping malformed admin entry")
			continue
		}
		// Group and channel chat ids are negative; only a missing id
		// is invalid.
		if ac.ID == 0 {
			logging.Warn().Int("index", i).Msg("Skipping admin entry without an id")
			continue
		}
		if ac.Override && ac.NotifyAbsentMinutes <= 0 {
			def := policy.DefaultNotifySettings().NotifyAbsentMinutes
			logging.Warn().Int64("admin_id", ac.ID).Int("fallback_minutes", def).
				Msg("Admin override has non-positive absence threshold, using default")
			ac.NotifyAbsentMinutes = def
		}
		admins = append(admins, ac)
	}
	return admins
}

func loadAcceptUsers(k *koanf.Koanf) []AcceptUserConfig {
	slices := k.Slices("telegram.accept_from.users")
	users := make([]AcceptUserConfig, 0, len(slices))
	for i, entry := range slices {
		var uc AcceptUserConfig
		if err := entry.Unmarshal("", &uc); err != nil {
			logging.Warn().Err(err).Int("index", i).Msg("Skipping malformed accept_from user")
			continue
		}
		if uc.ID == 0 {
			logging.Warn().Int("index", i).Msg("Skipping accept_from user without an id")
			continue
		}
		users = append(users, uc)
	}
	return users
}
