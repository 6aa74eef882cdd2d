// Zonewatch - Live Location Tracking and Zone Alerting for Telegram
// Copyright 2026 Zonewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/zonewatch/zonewatch

// Package config loads and validates the Zonewatch configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in sensible defaults for every optional setting
//  2. Config File: JSON config file (CONFIG_PATH or config.json)
//  3. Environment Variables: override any setting (BOT_TOKEN, LOG_LEVEL, ...)
//
// Zone and admin entries are loaded leniently: a malformed entry is
// logged and dropped without failing the load. A missing bot token is
// the only fatal condition.
//
// Config is immutable after Load() and safe for concurrent reads.
package config

import (
	"time"

	"github.com/zonewatch/zonewatch/internal/notify"
	"github.com/zonewatch/zonewatch/internal/policy"
	"github.com/zonewatch/zonewatch/internal/track"
	"github.com/zonewatch/zonewatch/internal/zone"
)

// Config holds all application configuration.
type Config struct {
	Global   ZoneGlobalConfig `koanf:"global"`
	Zones    []ZoneConfig     `koanf:"zones"`
	Telegram TelegramConfig   `koanf:"telegram"`
	Absence  AbsenceConfig    `koanf:"absence"`
	Ops      OpsConfig        `koanf:"ops"`
	Logging  LoggingConfig    `koanf:"logging"`
}

// ZoneTypeDefaults is one enter/exit notification pair.
type ZoneTypeDefaults struct {
	NotifyEnter bool `koanf:"notify_enter"`
	NotifyExit  bool `koanf:"notify_exit"`
}

// ZoneGlobalConfig is the global zone notification default, one pair
// per zone type.
type ZoneGlobalConfig struct {
	Secure ZoneTypeDefaults `koanf:"secure"`
	Danger ZoneTypeDefaults `koanf:"danger"`
}

// ZoneCenterConfig is a zone's center coordinate.
type ZoneCenterConfig struct {
	Lat float64 `koanf:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `koanf:"lng" validate:"gte=-180,lte=180"`
}

// ZoneConfig is one zone entry from the config file. Entries failing
// validation are dropped with a warning at load time.
type ZoneConfig struct {
	ID            int64              `koanf:"id" validate:"gt=0"`
	Type          string             `koanf:"type"`
	Name          string             `koanf:"name"`
	Center        ZoneCenterConfig   `koanf:"center"`
	RadiusM       float64            `koanf:"radius_m" validate:"gt=0"`
	Notifications zone.Notifications `koanf:"notifications"`
}

// AdminConfig is one admin entry from the config file. The five
// notification fields only take effect when Override is set. The id is
// a Telegram chat id; group and channel ids are negative.
type AdminConfig struct {
	ID                           int64  `koanf:"id"`
	Name                         string `koanf:"name"`
	Override                     bool   `koanf:"override"`
	NotifyLocationStart          bool   `koanf:"notify_location_start"`
	NotifyLocationStop           bool   `koanf:"notify_location_stop"`
	NotifyAbsentEnabled          bool   `koanf:"notify_absent_enabled"`
	NotifyAbsentMinutes          int    `koanf:"notify_absent_minutes"`
	SendCurrentLocationWithAlert bool   `koanf:"send_current_location_with_alert"`

	// Zones restricts the admin's interest to the listed zone ids;
	// empty means all zones. Non-numeric entries are dropped at load.
	Zones []int64 `koanf:"zones"`
}

// AcceptUserConfig is one allow-listed sender, identified by chat id.
type AcceptUserConfig struct {
	ID   int64  `koanf:"id"`
	Name string `koanf:"name"`
}

// AcceptFromConfig filters which senders' locations are processed.
type AcceptFromConfig struct {
	Mode  string             `koanf:"mode"`
	Users []AcceptUserConfig `koanf:"users"`
}

// TelegramConfig groups everything transport-related.
type TelegramConfig struct {
	// Token is the bot token. Required; usually supplied via BOT_TOKEN.
	Token string `koanf:"token"`

	// PollTimeout is the getUpdates server-side hold time.
	PollTimeout time.Duration `koanf:"poll_timeout"`

	Global     policy.NotifySettings    `koanf:"global"`
	Admins     []AdminConfig            `koanf:"admins"`
	AcceptFrom AcceptFromConfig         `koanf:"accept_from"`
	ShowSender notify.ShowSenderOptions `koanf:"show_sender"`
}

// AbsenceConfig configures the absence sweeper.
type AbsenceConfig struct {
	// SweepInterval is the sweep cadence.
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// OpsConfig configures the operational HTTP server (health, metrics).
type OpsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Host    string `koanf:"host"`
	Port    int    `koanf:"port"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// ZoneCatalog builds the immutable zone catalog from the loaded zones.
func (c *Config) ZoneCatalog() *zone.Catalog {
	zones := make([]zone.Zone, 0, len(c.Zones))
	for _, zc := range c.Zones {
		zones = append(zones, zone.Zone{
			ID:            zc.ID,
			Type:          zone.Type(zc.Type),
			Name:          zc.Name,
			CenterLat:     zc.Center.Lat,
			CenterLng:     zc.Center.Lng,
			RadiusM:       zc.RadiusM,
			Notifications: zc.Notifications,
		})
	}
	return zone.NewCatalog(zones)
}

// ZoneDefaults converts the global zone section to the policy layer's
// value type.
func (c *Config) ZoneDefaults() policy.ZoneDefaults {
	return policy.ZoneDefaults{
		SecureNotifyEnter: c.Global.Secure.NotifyEnter,
		SecureNotifyExit:  c.Global.Secure.NotifyExit,
		DangerNotifyEnter: c.Global.Danger.NotifyEnter,
		DangerNotifyExit:  c.Global.Danger.NotifyExit,
	}
}

// Admins converts the admin entries to the policy layer's value type.
func (c *Config) Admins() []policy.Admin {
	admins := make([]policy.Admin, 0, len(c.Telegram.Admins))
	for _, ac := range c.Telegram.Admins {
		admins = append(admins, policy.Admin{
			ID:       ac.ID,
			Name:     ac.Name,
			Override: ac.Override,
			Settings: policy.NotifySettings{
				NotifyLocationStart:          ac.NotifyLocationStart,
				NotifyLocationStop:           ac.NotifyLocationStop,
				NotifyAbsentEnabled:          ac.NotifyAbsentEnabled,
				NotifyAbsentMinutes:          ac.NotifyAbsentMinutes,
				SendCurrentLocationWithAlert: ac.SendCurrentLocationWithAlert,
			},
			ZoneIDs: ac.Zones,
		})
	}
	return admins
}

// AcceptFilter builds the inbound sender filter.
func (c *Config) AcceptFilter() track.AcceptFilter {
	ids := make([]int64, 0, len(c.Telegram.AcceptFrom.Users))
	for _, u := range c.Telegram.AcceptFrom.Users {
		ids = append(ids, u.ID)
	}
	return track.NewAcceptFilter(track.FilterMode(c.Telegram.AcceptFrom.Mode), ids)
}

// ConfiguredNames maps sender ids to names from config. Admin names
// take precedence over accept-filter user names.
func (c *Config) ConfiguredNames() map[int64]string {
	names := make(map[int64]string)
	for _, u := range c.Telegram.AcceptFrom.Users {
		if u.Name != "" {
			names[u.ID] = u.Name
		}
	}
	for _, a := range c.Telegram.Admins {
		if a.Name != "" {
			names[a.ID] = a.Name
		}
	}
	return names
}
