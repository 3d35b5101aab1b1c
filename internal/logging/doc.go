// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

/*
Package logging provides centralized zerolog-based logging for Platewise.

A global logger is configured once at startup with Init and read everywhere
else. Components receive a zerolog.Logger by value and derive their own
child logger with a component field.

# Quick Start

	logging.Init(logging.Config{Level: "info", Format: "json"})
	logging.Info().Msg("Server starting")

	hub := logging.WithComponent("feed-hub")
	hub.Debug().Str("user_id", id).Msg("feed created")

# Context

Request-scoped values travel in the context and are attached by Ctx:

	ctx = logging.ContextWithRequestID(ctx, middleware.GetReqID(ctx))
	ctx = logging.ContextWithUserID(ctx, userID)
	logging.Ctx(ctx).Info().Msg("recommendations served")

# Adapters

  - SlogHandler bridges log/slog callers such as sutureslog.
  - WatermillAdapter implements watermill.LoggerAdapter for the event bus.

# Conventions

Always terminate log chains with .Msg() or .Send():

	logging.Info().Str("key", "value").Msg("message")  // Correct
	logging.Info().Str("key", "value")                 // WRONG - log not emitted
*/
package logging
