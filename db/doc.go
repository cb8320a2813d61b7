// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles SQL connections and schema creation.

# Connecting

Connect opens the database with the named driver, pings it, and creates
the schema:

	conn, err := db.Connect(ctx, db.DriverSQLite, "file:livepoll.db")
	if err != nil {
		log.Fatal(err)
	}

Both drivers are registered by this package:

  - postgres: github.com/lib/pq
  - sqlite: modernc.org/sqlite (pure Go, no cgo)

SQLite connections are limited to one open connection.

# Tables

  - poll: question, options (JSON), tally (JSON), creator
  - vote: the vote ledger, one row per (poll_id, user_id)

# Relationships

	poll 1──* vote

The vote foreign key uses ON DELETE CASCADE.

CreateSchema is safe to call multiple times - uses IF NOT EXISTS for all
tables and indexes.
*/
package db
