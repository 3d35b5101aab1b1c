// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

/*
Package supervisor runs Platewise's long-lived services under suture v4.

Services are grouped into three layers that restart independently:

	RootSupervisor ("platewise")
	├── DataSupervisor ("data-layer")
	│   └── EmbeddedNATSService (events.backend=nats with embedded server)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── FeedService (change events into feeds, idle feed pruning)
	│   └── WebSocketHubService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services restart with backoff. Supervisor events are logged through
sutureslog.

Usage:

	tree, err := supervisor.NewSupervisorTree(slogger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddMessagingService(services.NewFeedService(bus, feeds, cfg, logger))
	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = tree.Serve(ctx)

Services return ctx.Err() on shutdown. Returning suture.ErrDoNotRestart
stops a service permanently; suture.ErrTerminateSupervisorTree stops the
whole tree.
*/
package supervisor
