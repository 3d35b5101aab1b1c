// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

// Package eventprocessor carries change notifications between the stores
// that own catalog and preference data and the recommendation feeds that
// react to them.
//
// Events are models.ChangeEvent values encoded with go-json into Watermill
// messages on two topics:
//
//	platewise.catalog       restaurant.changed, menu.changed, rating.changed
//	platewise.preferences   preferences.changed
//
// The default backend is Watermill's in-process gochannel pub/sub. Building
// with -tags nats adds a NATS backend (core NATS subjects, optionally served
// by an embedded nats-server) so several replicas share one event stream.
//
// Publishing goes through a gobreaker circuit breaker. Consumers run a
// Watermill router with panic recovery and bounded retry; events that still
// fail are logged and dropped because every event only triggers a recompute
// that a later event will trigger again.
package eventprocessor
