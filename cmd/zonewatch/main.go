// Zonewatch - Live Location Tracking and Zone Alerting for Telegram
// Copyright 2026 Zonewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/zonewatch/zonewatch

// Zonewatch watches live Telegram locations, classifies them against
// configured geographic zones, and alerts admins about zone
// transitions, broadcast start/stop, and prolonged silence.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zonewatch/zonewatch/internal/absence"
	"github.com/zonewatch/zonewatch/internal/config"
	"github.com/zonewatch/zonewatch/internal/logging"
	"github.com/zonewatch/zonewatch/internal/notify"
	"github.com/zonewatch/zonewatch/internal/ops"
	"github.com/zonewatch/zonewatch/internal/policy"
	"github.com/zonewatch/zonewatch/internal/supervisor"
	"github.com/zonewatch/zonewatch/internal/supervisor/services"
	"github.com/zonewatch/zonewatch/internal/telegram"
	"github.com/zonewatch/zonewatch/internal/track"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config not yet available, the default logger is fine here.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	catalog := cfg.ZoneCatalog()
	admins := cfg.Admins()

	logging.Info().
		Int("zones", catalog.Len()).
		Int("admins", len(admins)).
		Str("accept_mode", string(cfg.AcceptFilter().Mode())).
		Msg("Starting Zonewatch")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := telegram.NewClient(cfg.Telegram.Token)

	// Verify the token before supervision starts. A bad token is a
	// configuration error, not something restarts can fix.
	checkCtx, checkCancel := context.WithTimeout(ctx, 15*time.Second)
	me, err := client.GetMe(checkCtx)
	checkCancel()
	if err != nil {
		logging.Fatal().Err(err).Msg("Telegram token check failed")
	}
	logging.Info().
		Int64("bot_id", me.ID).
		Str("bot_username", me.Username).
		Msg("Telegram token verified")

	resolver := policy.NewResolver(cfg.Telegram.Global, cfg.ZoneDefaults())
	store := track.NewStateStore()
	dispatcher := notify.NewDispatcher(client, resolver, admins,
		cfg.ConfiguredNames(), cfg.Telegram.ShowSender)
	processor := track.NewProcessor(catalog, store, resolver, dispatcher, cfg.AcceptFilter())
	poller := telegram.NewPoller(client, processor, telegram.PollerConfig{
		PollTimeout: cfg.Telegram.PollTimeout,
	})
	sweeper := absence.NewSweeper(store, resolver, dispatcher, admins, absence.Config{
		Interval: cfg.Absence.SweepInterval,
	})

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddIngestService(services.NewPollerService(poller))
	tree.AddIngestService(services.NewSweeperService(sweeper))

	var opsServer *ops.Server
	if cfg.Ops.Enabled {
		opsServer = ops.NewServer(cfg.Ops.Host, cfg.Ops.Port)
		tree.AddOpsService(services.NewHTTPService(opsServer.HTTPServer(), 10*time.Second))
		logging.Info().Str("addr", opsServer.HTTPServer().Addr).Msg("Ops HTTP server enabled")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)
	if opsServer != nil {
		opsServer.SetReady(true)
	}

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Zonewatch stopped")
}
