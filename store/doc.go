// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists polls and the vote ledger.

# Interfaces

  - PollStore: Create, FindByID, Save, List
  - VoteStore: FindVote, CountVotes
  - Store: both, plus SaveWithVote and Close

SaveWithVote is the only write path for votes. It overwrites the poll's
tally and upserts the (poll_id, user_id) record as one unit, so a failed
write leaves both untouched.

# Implementations

  - Memory: maps guarded by a RWMutex, used for tests and DATABASE_TYPE=memory
  - SQL: database/sql over postgres or sqlite; SaveWithVote runs in a transaction
  - mongostore.Store: one document per poll with the ledger embedded

Every non-not-found failure is returned as a *pollerr.StorageError and
logged with the operation name.
*/
package store
