// Zonewatch - Live Location Tracking and Zone Alerting for Telegram
// Copyright 2026 Zonewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/zonewatch/zonewatch

package zone

// Catalog is the immutable set of configured zones. It is built once at
// startup from validated config entries and safe for concurrent reads.
type Catalog struct {
	zones []Zone
	byID  map[int64]*Zone
}

// NewCatalog builds a catalog from the given zones. The slice is copied;
// callers may reuse it. Duplicate ids keep the first occurrence.
func NewCatalog(zones []Zone) *Catalog {
	c := &Catalog{
		zones: make([]Zone, 0, len(zones)),
		byID:  make(map[int64]*Zone, len(zones)),
	}
	for _, z := range zones {
		if _, dup := c.byID[z.ID]; dup {
			continue
		}
		c.zones = append(c.zones, z)
		c.byID[z.ID] = &c.zones[len(c.zones)-1]
	}
	return c
}

// Get returns the zone with the given id, or nil if the catalog does not
// contain it. Stale ids from previously stored membership resolve to nil
// and are skipped by callers.
func (c *Catalog) Get(id int64) *Zone {
	return c.byID[id]
}

// All returns the catalog's zones in load order. The returned slice must
// not be modified.
func (c *Catalog) All() []Zone {
	return c.zones
}

// Len returns the number of zones in the catalog.
func (c *Catalog) Len() int {
	return len(c.zones)
}
