// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

//go:build !nats

package eventprocessor

import "github.com/rs/zerolog"

// NATSAvailable reports whether the binary was built with the NATS backend.
const NATSAvailable = false

// NewNATSBus returns ErrNATSNotEnabled. Build with -tags nats for the NATS backend.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewNATSBus(_ Config, _ zerolog.Logger) (*Bus, error) {
	return nil, ErrNATSNotEnabled
}
