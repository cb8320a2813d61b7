// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger tracks which option each user has chosen on each poll.

A user holds at most one active vote per poll. RecordVote compares the
requested option with the stored record and returns a Delta:

	first vote       Previous: NoOption  Next: i
	same option      Previous: NoOption  Next: NoOption
	different option Previous: old       Next: i

The ledger does not write. The coordinator applies the delta to the tally
and commits the tally and Delta.Record with store.SaveWithVote while holding
the poll's lock.
*/
package ledger
