// Zonewatch - Live Location Tracking and Zone Alerting for Telegram
// Copyright 2026 Zonewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/zonewatch/zonewatch

package validation

import (
	"errors"
	"strings"
	"testing"
)

type zoneEntry struct {
	ID      int64   `validate:"gt=0"`
	Lat     float64 `validate:"gte=-90,lte=90"`
	Lng     float64 `validate:"gte=-180,lte=180"`
	RadiusM float64 `validate:"gt=0"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name       string
		entry      zoneEntry
		wantFields []string
	}{
		{
			name:  "valid entry",
			entry: zoneEntry{ID: 1, Lat: 55.7, Lng: 37.6, RadiusM: 500},
		},
		{
			name:       "latitude out of range",
			entry:      zoneEntry{ID: 1, Lat: 91, Lng: 0, RadiusM: 500},
			wantFields: []string{"Lat"},
		},
		{
			name:       "several failures reported together",
			entry:      zoneEntry{ID: 0, Lat: 0, Lng: -200, RadiusM: -1},
			wantFields: []string{"ID", "Lng", "RadiusM"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.entry)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", err)
				}
				return
			}

			var se *StructError
			if !errors.As(err, &se) {
				t.Fatalf("ValidateStruct() = %T, want *StructError", err)
			}
			if len(se.Fields) != len(tt.wantFields) {
				t.Fatalf("failed fields = %+v, want %v", se.Fields, tt.wantFields)
			}
			for i, want := range tt.wantFields {
				if se.Fields[i].Field != want {
					t.Errorf("field[%d] = %s, want %s", i, se.Fields[i].Field, want)
				}
			}
			for _, want := range tt.wantFields {
				if !strings.Contains(se.Error(), want) {
					t.Errorf("Error() = %q, want it to mention %s", se.Error(), want)
				}
			}
		})
	}
}

func TestGetValidatorIsSingleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same instance")
	}
}
