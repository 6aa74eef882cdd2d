// Zonewatch - Live Location Tracking and Zone Alerting for Telegram
// Copyright 2026 Zonewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/zonewatch/zonewatch

package telegram

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/zonewatch/zonewatch/internal/logging"
	"github.com/zonewatch/zonewatch/internal/metrics"
	"github.com/zonewatch/zonewatch/internal/track"
)

// LocationHandler consumes translated location events. Satisfied by
// *track.Processor.
type LocationHandler interface {
	Handle(ctx context.Context, ev track.LocationEvent)
}

// PollerConfig holds poller configuration.
type PollerConfig struct {
	// PollTimeout is the getUpdates server-side hold time.
	PollTimeout time.Duration

	// RetryDelay is the pause after a failed poll before retrying.
	RetryDelay time.Duration
}

// DefaultPollerConfig returns the default poller configuration.
func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		PollTimeout: 50 * time.Second,
		RetryDelay:  3 * time.Second,
	}
}

// Poller long-polls the Bot API and translates location-bearing updates
// into track.LocationEvent values.
//
// Live sessions are tracked by message id: a location message carrying a
// live period opens a session; an edit of a tracked message without a
// live period closes it. Edits with a live period are in-session
// position updates. Non-location messages are ignored.
type Poller struct {
	client  *Client
	handler LocationHandler
	config  PollerConfig
	logger  zerolog.Logger

	// offset is the next update id to request. liveSessions holds the
	// message ids of open live locations. Both are touched only by the
	// poll goroutine.
	offset       int64
	liveSessions map[int64]struct{}
}

// NewPoller creates a poller feeding the given handler.
func NewPoller(client *Client, handler LocationHandler, config PollerConfig) *Poller {
	if config.PollTimeout <= 0 {
		config.PollTimeout = 50 * time.Second
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 3 * time.Second
	}
	return &Poller{
		client:       client,
		handler:      handler,
		config:       config,
		logger:       logging.With().Str("component", "telegram-poller").Logger(),
		liveSessions: make(map[int64]struct{}),
	}
}

// RunWithContext polls until the context is canceled. Poll failures are
// logged and retried after the configured delay; the loop only exits on
// cancellation. Designed to run under suture supervision.
func (p *Poller) RunWithContext(ctx context.Context) error {
	p.logger.Info().Dur("poll_timeout", p.config.PollTimeout).Msg("telegram poller started")

	timeoutSec := int(p.config.PollTimeout / time.Second)

	for {
		if err := ctx.Err(); err != nil {
			p.logger.Info().Msg("telegram poller shutting down")
			return err
		}

		updates, err := p.client.GetUpdates(ctx, p.offset, timeoutSec)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			p.logger.Warn().Err(err).Msg("getUpdates failed, retrying")
			select {
			case <-time.After(p.config.RetryDelay):
			case <-ctx.Done():
			}
			continue
		}
		metrics.PollCycles.Inc()

		for i := range updates {
			p.handleUpdate(ctx, &updates[i])
			if updates[i].UpdateID >= p.offset {
				p.offset = updates[i].UpdateID + 1
			}
		}
	}
}

// handleUpdate translates one update into a location event, if any.
func (p *Poller) handleUpdate(ctx context.Context, u *Update) {
	switch {
	case u.Message != nil:
		p.handleMessage(ctx, u.Message)
	case u.EditedMessage != nil:
		p.handleEdit(ctx, u.EditedMessage)
	}
}

// handleMessage processes a new message: a live-period location opens a
// live session, a plain location is a one-shot report.
func (p *Poller) handleMessage(ctx context.Context, msg *Message) {
	if msg.Location == nil || msg.From == nil {
		return
	}

	kind := track.KindOneShot
	if msg.Location.LivePeriod > 0 {
		p.liveSessions[msg.MessageID] = struct{}{}
		kind = track.KindLiveStart
		p.logger.Info().
			Int64("user_id", msg.From.ID).
			Int64("message_id", msg.MessageID).
			Int("live_period", msg.Location.LivePeriod).
			Msg("live location started")
	}

	p.handler.Handle(ctx, p.event(msg, kind))
}

// handleEdit processes an edited message: the closing edit of a tracked
// live location ends the session, other live edits are updates.
func (p *Poller) handleEdit(ctx context.Context, msg *Message) {
	if msg.Location == nil || msg.From == nil {
		return
	}

	_, tracked := p.liveSessions[msg.MessageID]
	switch {
	case tracked && msg.Location.LivePeriod == 0:
		delete(p.liveSessions, msg.MessageID)
		p.logger.Info().
			Int64("user_id", msg.From.ID).
			Int64("message_id", msg.MessageID).
			Msg("live location ended")
		p.handler.Handle(ctx, p.event(msg, track.KindLiveEnd))
	case msg.Location.LivePeriod > 0:
		p.handler.Handle(ctx, p.event(msg, track.KindLiveUpdate))
	}
}

// event builds a LocationEvent from a message.
func (p *Poller) event(msg *Message, kind track.EventKind) track.LocationEvent {
	at := msg.Date
	if msg.EditDate > 0 {
		at = msg.EditDate
	}
	return track.LocationEvent{
		UserID:      msg.From.ID,
		DisplayName: msg.From.DisplayName(),
		Lat:         msg.Location.Latitude,
		Lng:         msg.Location.Longitude,
		Kind:        kind,
		At:          time.Unix(at, 0).UTC(),
	}
}
