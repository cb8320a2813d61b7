// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseType: sqlite (default), postgres, mongo, or memory
  - DatabaseURL: Connection string (required unless memory)
  - MongoDatabase: Database name for the mongo backend (default: livepoll)
  - SessionSalt: Secret for user session tokens (required)
  - SendQueueSize: Outbound events buffered per connection (default: 64)
  - OpTimeout: Storage deadline for one poll mutation (default: 5s)
  - LogLevel, LogFormat: slog handler settings (env only)

# CLI Flags

	-p              Server port
	-d              Database URL
	-t              Database type
	--mongo-db      Mongo database name
	--session-salt  Session token salt
	--queue         Per-connection queue size
	--op-timeout    Mutation timeout
	--env-file      Dotenv file to load

# Environment Variables

Flags fall back to environment variables:

	PORT            → -p
	DATABASE_URL    → -d
	DATABASE_TYPE   → -t
	MONGO_DATABASE  → --mongo-db
	SESSION_SALT    → --session-salt
	SEND_QUEUE_SIZE → --queue
	OP_TIMEOUT      → --op-timeout
	ENV_FILE        → --env-file

CLI flags take precedence over environment variables, and variables already
present in the environment take precedence over the env file. A missing env
file (default .env) is ignored.
*/
package cliparse
