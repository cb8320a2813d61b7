// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the livepoll API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(coord, hub, cfg, logger)

# Endpoints

Health and metrics:

	GET /health
	GET /stats

Sessions:

	POST /sessions - Issue a user id and session token

Polls:

	GET  /polls      - All polls, newest first
	GET  /polls/{id} - Current state of one poll
	POST /polls      - Create poll (requires session)

Live events (requires session, token in query or Authorization header):

	GET /ws - Websocket carrying createPoll/vote intents and
	          pollCreated/voteUpdated/error events

Every route except /health goes through middleware.WithLogging.
*/
package router
