// Zonewatch - Live Location Tracking and Zone Alerting for Telegram
// Copyright 2026 Zonewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/zonewatch/zonewatch

// Package validation provides struct validation using
// go-playground/validator v10 behind a thread-safe singleton.
//
// Config entry structs carry validate tags, and the loader calls
// ValidateStruct per entry so one malformed zone or admin can be
// reported and dropped without failing the whole load:
//
//	type zoneEntry struct {
//	    ID      int64   `validate:"gt=0"`
//	    Lat     float64 `validate:"gte=-90,lte=90"`
//	    RadiusM float64 `validate:"gt=0"`
//	}
//
//	if err := validation.ValidateStruct(&entry); err != nil {
//	    logging.Warn().Err(err).Msg("dropping invalid zone")
//	}
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single field validation failure.
type FieldError struct {
	Field string
	Tag   string
	Param string
}

// Error returns a human-readable message for the failure.
func (e FieldError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s failed %s=%s", e.Field, e.Tag, e.Param)
	}
	return fmt.Sprintf("%s failed %s", e.Field, e.Tag)
}

// StructError is a collection of field validation failures for one
// struct.
type StructError struct {
	Fields []FieldError
}

// Error implements the error interface with a combined message.
func (e *StructError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return strings.Join(msgs, "; ")
}

// GetValidator returns the singleton validator instance. Thread-safe;
// struct metadata is cached across calls.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct validates a struct using the singleton validator.
// Returns nil when validation passes, or a *StructError listing every
// failed field.
func ValidateStruct(s interface{}) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	se := &StructError{Fields: make([]FieldError, len(verrs))}
	for i, fe := range verrs {
		se.Fields[i] = FieldError{
			Field: fe.Field(),
			Tag:   fe.Tag(),
			Param: fe.Param(),
		}
	}
	return se
}
