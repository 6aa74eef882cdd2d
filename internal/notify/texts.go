// Zonewatch - Live Location Tracking and Zone Alerting for Telegram
// Copyright 2026 Zonewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/zonewatch/zonewatch

package notify

import (
	"fmt"
	"strconv"

	"github.com/zonewatch/zonewatch/internal/zone"
)

// BroadcastStartText describes where a live broadcast started, based on
// the user's zone membership right after the opening update. secureZone
// and dangerZone are the first zones of each type the user is inside,
// or nil.
func BroadcastStartText(secureZone, dangerZone *zone.Zone) string {
	switch {
	case secureZone != nil && dangerZone == nil:
		return "▶️ Started broadcasting from secure zone " + secureZone.Describe()
	case dangerZone != nil && secureZone == nil:
		return "▶️ Started broadcasting from danger zone " + dangerZone.Describe()
	case secureZone != nil && dangerZone != nil:
		return "▶️ Started broadcasting: inside a secure and a danger zone at once"
	default:
		return "▶️ Started broadcasting outside all configured zones"
	}
}

// BroadcastStopText describes the end of a live broadcast.
func BroadcastStopText() string {
	return "⏹ Live location broadcast ended"
}

// ZoneEnterText describes entering a zone.
func ZoneEnterText(z *zone.Zone) string {
	if z.Type == zone.TypeDanger {
		return "🔴 Entered danger zone " + z.Describe()
	}
	return "✅ Returned to secure zone " + z.Describe()
}

// ZoneExitText describes leaving a zone.
func ZoneExitText(z *zone.Zone) string {
	if z.Type == zone.TypeDanger {
		return "⚠️ Left danger zone " + z.Describe()
	}
	return "⚠️ Left secure zone " + z.Describe()
}

// AbsenceText describes a prolonged location silence.
func AbsenceText(label string, minutes int) string {
	return fmt.Sprintf("⏰ No location from %s for %d minutes", label, minutes)
}

// formatID renders a sender id for labels.
func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
