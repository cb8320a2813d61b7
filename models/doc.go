// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, wire, request, and response types.

# Domain Types

  - Poll: question, ordered options, per-option tally, creator
  - VoteRecord: one user's active choice on one poll

A poll's tally always has the same length as its options, and the sum
of the tally equals the number of vote records stored for that poll.

# Limits

	MinOptions      = 2
	MaxOptions      = 13
	MaxOptionLength = 400 (characters)

# Wire Events

Websocket frames are JSON envelopes:

	{"event": "vote", "data": {"pollId": "...", "optionIndex": 1, "userId": "..."}}

Client to server:

  - createPoll: CreatePollRequest
  - vote: VoteRequest

Server to client:

  - pollCreated: Poll
  - voteUpdated: Poll
  - error: string message (sent only to the originating connection)

Event values are encoded with MarshalJSON into the same envelope shape.

# Response Types

  - CreatePollResponse: message, poll
  - CreateSessionResponse: user_id, display_name, token
  - StatsResponse: connection and mutation counters
  - ErrorResponse: error, message
*/
package models
