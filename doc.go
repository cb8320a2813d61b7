// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the livepoll server.

livepoll lets signed-in users create multiple-choice polls and vote on
them, pushing every change to all connected clients over a websocket.
Each user holds at most one active vote per poll; a revote moves it.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=file:livepoll.db SESSION_SALT=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): connection string (not needed for memory)
  - SESSION_SALT (--session-salt): Secret for session token HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite, postgres, mongo or memory (default: sqlite)
  - MONGO_DATABASE (--mongo-db): database name for mongo (default: livepoll)
  - SEND_QUEUE_SIZE (--queue): per-connection outbound buffer (default: 64)
  - OP_TIMEOUT (--op-timeout): storage timeout per mutation (default: 5s)
  - ENV_FILE (--env-file): dotenv file loaded first (default: .env)
  - LOG_LEVEL: debug, info, warn or error (default: info)
  - LOG_FORMAT: text or json (default: text)

A storage backend that cannot be reached at startup exits with status 1.

# Architecture

  - coordinator: the only writer of poll and vote state, serialized per poll
  - ledger: per-user vote records and tally deltas
  - hub: broadcast of committed changes to every connection
  - store: Memory, SQL (postgres/sqlite) and mongostore backends
  - handlers: REST, session and websocket handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, session checks, JSON helpers
  - models: Domain, wire and response types
  - pollerr: Error kinds and their client-facing messages
  - auth: Session tokens
  - db: SQL connection and schema
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
