// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"

	"github.com/danielhkuo/livepoll/models"
)

// PollStore persists poll records by identifier
type PollStore interface {
	// Create assigns an identifier and creation time and stores the poll
	Create(ctx context.Context, question string, options []string, tally []int, creatorID string) (models.Poll, error)
	// FindByID returns pollerr.ErrPollNotFound when no poll has id
	FindByID(ctx context.Context, id string) (models.Poll, error)
	// Save overwrites the poll with the same identifier
	Save(ctx context.Context, poll models.Poll) error
	// List returns all polls, newest first
	List(ctx context.Context) ([]models.Poll, error)
}

// VoteStore persists vote ledger entries
type VoteStore interface {
	FindVote(ctx context.Context, pollID, userID string) (models.VoteRecord, bool, error)
	CountVotes(ctx context.Context, pollID string) (int, error)
}

// Store is the full persistence boundary used by the coordinator
type Store interface {
	PollStore
	VoteStore
	// SaveWithVote overwrites the poll's tally and upserts vote in one atomic step
	SaveWithVote(ctx context.Context, poll models.Poll, vote models.VoteRecord) error
	Close() error
}
