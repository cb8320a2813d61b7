// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package coordinator applies poll creation and votes.

# Mutations

CreatePoll and ApplyVote are the only entry points that change poll or
ledger state. ApplyVote runs under a per-poll mutex:

 1. load the poll (ErrPollNotFound)
 2. ledger.RecordVote (ErrInvalidOption)
 3. apply the delta to a copy of the tally
 4. store.SaveWithVote commits tally and vote record together
 5. publish voteUpdated, then release the lock

A storage failure in step 4 leaves both the tally and the ledger as they
were. Locks are keyed by poll id and reference counted, so idle polls hold
no memory and votes on different polls never wait on each other.

Mutations run on a context detached from the caller, bounded by
Options.OpTimeout. A client that disconnects mid-vote does not cancel it.

# Queries

GetPoll and ListPolls read committed state without taking a lock.
*/
package coordinator
