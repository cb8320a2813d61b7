// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/pollerr"
	"github.com/danielhkuo/livepoll/store"
)

// ErrTallyMismatch means a vote record points at an option whose count is
// already zero. The ledger and tally have diverged.
var ErrTallyMismatch = errors.New("tally does not match vote ledger")

// Delta is the tally change produced by one vote. Previous and Next are
// option indexes or models.NoOption.
type Delta struct {
	Previous int
	Next     int
	Record   models.VoteRecord
}

// Changed reports whether applying the delta alters the tally
func (d Delta) Changed() bool {
	return d.Next != models.NoOption
}

// Apply returns a new tally with the delta applied. tally is not modified.
func (d Delta) Apply(tally []int) ([]int, error) {
	out := append([]int(nil), tally...)
	if d.Previous != models.NoOption {
		if d.Previous >= len(out) || out[d.Previous] == 0 {
			return nil, fmt.Errorf("%w: option %d in tally %v", ErrTallyMismatch, d.Previous, tally)
		}
		out[d.Previous]--
	}
	if d.Next != models.NoOption && d.Next < len(out) {
		out[d.Next]++
	}
	return out, nil
}

// Ledger computes vote deltas against the stored vote records. It holds no
// state of its own; callers must serialize calls per poll and commit the
// returned Record together with the new tally.
type Ledger struct {
	votes store.VoteStore
	now   func() time.Time
}

func New(votes store.VoteStore) *Ledger {
	return &Ledger{votes: votes, now: time.Now}
}

// RecordVote looks up userID's current vote on poll and returns the delta
// that moves it to optionIndex.
func (l *Ledger) RecordVote(ctx context.Context, poll models.Poll, userID string, optionIndex int) (Delta, error) {
	if optionIndex < 0 || optionIndex >= len(poll.Options) {
		return Delta{}, pollerr.InvalidOption(optionIndex, len(poll.Options))
	}

	existing, found, err := l.votes.FindVote(ctx, poll.ID, userID)
	if err != nil {
		return Delta{}, err
	}

	record := models.VoteRecord{
		PollID:      poll.ID,
		UserID:      userID,
		OptionIndex: optionIndex,
		UpdatedAt:   l.now().UTC(),
	}

	switch {
	case !found:
		return Delta{Previous: models.NoOption, Next: optionIndex, Record: record}, nil
	case existing.OptionIndex == optionIndex:
		existing.PollID = poll.ID
		return Delta{Previous: models.NoOption, Next: models.NoOption, Record: existing}, nil
	default:
		return Delta{Previous: existing.OptionIndex, Next: optionIndex, Record: record}, nil
	}
}
