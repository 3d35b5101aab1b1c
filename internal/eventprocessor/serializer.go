// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package eventprocessor

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/platewise/internal/models"
)

// Marshal validates and encodes a change event.
func Marshal(ev models.ChangeEvent) ([]byte, error) {
	if err := validateEvent(ev); err != nil {
		return nil, err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// Unmarshal decodes and validates a change event.
func Unmarshal(data []byte) (models.ChangeEvent, error) {
	var ev models.ChangeEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return models.ChangeEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	if err := validateEvent(ev); err != nil {
		return models.ChangeEvent{}, err
	}
	return ev, nil
}

func validateEvent(ev models.ChangeEvent) error {
	if ev.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidEvent)
	}
	if !ev.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, ev.Kind)
	}
	if ev.Kind == models.ChangePreferences && ev.UserID == "" {
		return fmt.Errorf("%w: preference change without user id", ErrInvalidEvent)
	}
	return nil
}
