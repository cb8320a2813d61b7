// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/danielhkuo/livepoll/ledger"
	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/pollerr"
	"github.com/danielhkuo/livepoll/store"
)

// DefaultOpTimeout bounds the storage work of a single mutation
const DefaultOpTimeout = 5 * time.Second

// ErrMissingUser is returned for intents that carry no user id. It is a
// client error, so it maps like any other invalid input.
var ErrMissingUser = fmt.Errorf("%w: user id is required", pollerr.ErrInvalidPoll)

// Publisher receives committed state changes
type Publisher interface {
	PublishPollCreated(poll models.Poll)
	PublishVoteUpdated(poll models.Poll)
}

type Options struct {
	OpTimeout time.Duration
	Logger    *slog.Logger
}

// Stats are running counters since the coordinator was created
type Stats struct {
	PollsCreated int64
	VotesApplied int64
}

// Coordinator is the only writer of poll and ledger state. Votes on one
// poll are serialized; different polls proceed in parallel.
type Coordinator struct {
	store     store.Store
	ledger    *ledger.Ledger
	publisher Publisher
	locks     *pollLocks
	opTimeout time.Duration
	logger    *slog.Logger

	pollsCreated atomic.Int64
	votesApplied atomic.Int64
}

func New(s store.Store, publisher Publisher, opts Options) *Coordinator {
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = DefaultOpTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Coordinator{
		store:     s,
		ledger:    ledger.New(s),
		publisher: publisher,
		locks:     newPollLocks(),
		opTimeout: opts.OpTimeout,
		logger:    opts.Logger,
	}
}

// CreatePoll validates and stores a new poll with a zero tally, then
// broadcasts it. The question and options are stored trimmed.
func (c *Coordinator) CreatePoll(ctx context.Context, req models.CreatePollRequest) (models.Poll, error) {
	req.Question, req.Options = trimPoll(req.Question, req.Options)
	if err := ValidatePoll(req.Question, req.Options); err != nil {
		return models.Poll{}, err
	}
	if req.UserID == "" {
		return models.Poll{}, ErrMissingUser
	}

	ctx, cancel := c.mutationContext(ctx)
	defer cancel()

	// The id is assigned by the store, so no other operation can reference
	// this poll until Create returns.
	poll, err := c.store.Create(ctx, req.Question, req.Options, make([]int, len(req.Options)), req.UserID)
	if err != nil {
		return models.Poll{}, err
	}

	c.pollsCreated.Add(1)
	c.logger.Info("poll created", "poll_id", poll.ID, "user_id", req.UserID, "options", len(poll.Options))
	c.publisher.PublishPollCreated(poll.Clone())
	return poll, nil
}

// ApplyVote records userID's choice on a poll and broadcasts the new tally.
// A repeated vote for the same option writes nothing but still broadcasts.
func (c *Coordinator) ApplyVote(ctx context.Context, req models.VoteRequest) (models.Poll, error) {
	if req.UserID == "" {
		return models.Poll{}, ErrMissingUser
	}

	unlock := c.locks.lock(req.PollID)
	defer unlock()

	ctx, cancel := c.mutationContext(ctx)
	defer cancel()

	poll, err := c.store.FindByID(ctx, req.PollID)
	if err != nil {
		return models.Poll{}, err
	}

	delta, err := c.ledger.RecordVote(ctx, poll, req.UserID, req.OptionIndex)
	if err != nil {
		return models.Poll{}, err
	}

	if delta.Changed() {
		tally, err := delta.Apply(poll.Tally)
		if err != nil {
			c.logger.Error("vote ledger diverged from tally",
				"poll_id", poll.ID,
				"user_id", req.UserID,
				"error", err,
			)
			return models.Poll{}, pollerr.Storage("apply vote", err)
		}
		next := poll.Clone()
		next.Tally = tally
		if err := c.store.SaveWithVote(ctx, next, delta.Record); err != nil {
			return models.Poll{}, err
		}
		poll = next
		c.votesApplied.Add(1)
		c.logger.Debug("vote applied",
			"poll_id", poll.ID,
			"user_id", req.UserID,
			"previous", delta.Previous,
			"option", delta.Next,
		)
	}

	// Still under the poll lock: per-poll broadcast order matches commit order
	c.publisher.PublishVoteUpdated(poll.Clone())
	return poll, nil
}

// GetPoll returns the committed state of one poll
func (c *Coordinator) GetPoll(ctx context.Context, id string) (models.Poll, error) {
	return c.store.FindByID(ctx, id)
}

// ListPolls returns every poll, newest first
func (c *Coordinator) ListPolls(ctx context.Context) ([]models.Poll, error) {
	return c.store.List(ctx)
}

func (c *Coordinator) Stats() Stats {
	return Stats{
		PollsCreated: c.pollsCreated.Load(),
		VotesApplied: c.votesApplied.Load(),
	}
}

// mutationContext detaches from the caller so a disconnecting client does
// not abort a mutation it started.
func (c *Coordinator) mutationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), c.opTimeout)
}

// trimPoll returns the question and a copy of options with surrounding
// whitespace removed
func trimPoll(question string, options []string) (string, []string) {
	trimmed := make([]string, len(options))
	for i, opt := range options {
		trimmed[i] = strings.TrimSpace(opt)
	}
	return strings.TrimSpace(question), trimmed
}

// ValidatePoll checks creation input against the poll limits. Lengths are
// counted in characters after trimming.
func ValidatePoll(question string, options []string) error {
	question, options = trimPoll(question, options)
	if question == "" {
		return pollerr.InvalidPoll("question is required")
	}
	if len(options) < models.MinOptions {
		return pollerr.InvalidPoll(fmt.Sprintf("at least %d options are required", models.MinOptions))
	}
	if len(options) > models.MaxOptions {
		return pollerr.InvalidPoll(fmt.Sprintf("at most %d options are allowed", models.MaxOptions))
	}
	for i, opt := range options {
		if opt == "" {
			return pollerr.InvalidPoll(fmt.Sprintf("option %d is empty", i+1))
		}
		if utf8.RuneCountInString(opt) > models.MaxOptionLength {
			return pollerr.InvalidPoll(fmt.Sprintf("option %d exceeds %d characters", i+1, models.MaxOptionLength))
		}
	}
	return nil
}
