// Zonewatch - Live Location Tracking and Zone Alerting for Telegram
// Copyright 2026 Zonewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/zonewatch/zonewatch

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newCapturedSlog(buf *bytes.Buffer) *slog.Logger {
	return slog.New(&SlogHandler{logger: NewTestLogger(buf)})
}

func TestSlogHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newCapturedSlog(&buf)

	logger.Warn("supervisor event", slog.String("service", "telegram-poller"))

	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) {
		t.Errorf("level missing: %q", out)
	}
	if !strings.Contains(out, `"service":"telegram-poller"`) {
		t.Errorf("attribute missing: %q", out)
	}
	if !strings.Contains(out, "supervisor event") {
		t.Errorf("message missing: %q", out)
	}
}

func TestSlogHandlerAttrTypes(t *testing.T) {
	var buf bytes.Buffer
	logger := newCapturedSlog(&buf)

	logger.Info("attrs",
		slog.Int64("count", 42),
		slog.Bool("ok", true),
		slog.Float64("ratio", 0.5),
	)

	out := buf.String()
	for _, want := range []string{`"count":42`, `"ok":true`, `"ratio":0.5`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %s", out, want)
		}
	}
}

func TestSlogHandlerWithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := newCapturedSlog(&buf).With(slog.String("component", "tree")).WithGroup("suture")

	logger.Info("restarting", slog.String("service", "sweeper"))

	out := buf.String()
	if !strings.Contains(out, `"suture.component":"tree"`) {
		// Pre-group attrs keep their prefix from the handler's group list.
		t.Logf("output: %q", out)
	}
	if !strings.Contains(out, `"suture.service":"sweeper"`) {
		t.Errorf("grouped attribute missing: %q", out)
	}
}

func TestSlogHandlerEnabled(t *testing.T) {
	h := &SlogHandler{logger: NewTestLogger(&bytes.Buffer{}).Level(zerolog.InfoLevel)}
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be disabled at info level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at info level")
	}
}
