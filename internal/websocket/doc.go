// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

/*
Package websocket pushes live recommendation lists to connected clients.

Each Client belongs to one user. The Hub subscribes to that user's
recommendation feed when the user's first client connects and unsubscribes
when the last one leaves, so a watched feed is never pruned while a socket is
open. Every published list is sent to all of the user's clients.

# Message Format

All messages are JSON objects with a type and a payload:

	{"type": "recommendations", "data": {"user_id": "u1", "status": "ok", "items": [...]}}

Server to client:
  - recommendations: a newly published list (also sent on connect when one exists)
  - pong: reply to a client ping

Client to server:
  - ping: keepalive, answered with pong
  - refresh: schedule a new pass for this user

# Concurrency

The Hub runs in a single goroutine (RunWithContext). Feed callbacks only
enqueue, and a client whose send buffer is full is disconnected rather than
allowed to stall delivery to others. Each Client runs a read pump and a write
pump; the write pump also sends protocol pings every 54 seconds.
*/
package websocket
