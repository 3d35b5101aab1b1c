// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

/*
Package services adapts Platewise components to suture.Service.

Each wrapper translates a component lifecycle into Serve(ctx) error and
names itself through fmt.Stringer for supervisor logs:

  - HTTPServerService: ListenAndServe with graceful Shutdown on cancel.
  - WebSocketHubService: delegates to the hub's RunWithContext.
  - FeedService: subscribes to change-event topics, routes each event to the
    feed hub, and evicts idle feeds on PruneInterval.
  - EmbeddedNATSService: watches an in-process NATS server and shuts it
    down on cancel.

Wrappers depend on small interfaces rather than concrete packages so they
can be tested with doubles.
*/
package services
