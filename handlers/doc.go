// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP and websocket handlers for the livepoll API.

# Handler Types

Each handler is a struct built by a constructor:

  - PollHandler: poll queries and REST creation
  - SessionHandler: sign-in, issues a user id and session token
  - SocketHandler: the live event channel
  - StatsHandler: connection and vote counters

	pollHandler := handlers.NewPollHandler(coord)

Poll handlers never touch storage directly. All reads and writes go
through the coordinator.

# Event Channel

ServeWS upgrades an authenticated request and registers the socket with the
hub. Frames are JSON envelopes:

	{"event":"createPoll","data":{"question":"Lunch?","options":["Tacos","Pho"]}}
	{"event":"vote","data":{"pollId":"...","optionIndex":1}}

A missing userId is filled from the session. A userId naming anyone else is
rejected. Successful intents are answered by the broadcast every client
receives (pollCreated, voteUpdated). Failures produce an error event on the
sending socket only:

	{"event":"error","data":"Poll not found"}

Intents from one socket are applied in arrival order.

# Errors

Coordinator errors map through pollerr: invalid input is 400 with the
validation message, a missing poll is 404, and storage failures are 500
with a generic message.
*/
package handlers
