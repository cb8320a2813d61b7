// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/pollerr"
)

// SQL is a Store over database/sql. Queries use $N placeholders, which both
// lib/pq and modernc sqlite accept.
type SQL struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQL(db *sql.DB, logger *slog.Logger) *SQL {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQL{db: db, logger: logger}
}

func (s *SQL) Create(ctx context.Context, question string, options []string, tally []int, creatorID string) (models.Poll, error) {
	poll := models.Poll{
		ID:        uuid.NewString(),
		Question:  question,
		Options:   options,
		Tally:     tally,
		CreatorID: creatorID,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}.Clone()

	optionsJSON, tallyJSON, err := encodePoll(poll)
	if err != nil {
		return models.Poll{}, s.fail("create poll", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO poll (id, question, options, tally, creator_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, poll.ID, poll.Question, optionsJSON, tallyJSON, poll.CreatorID, poll.CreatedAt)
	if err != nil {
		return models.Poll{}, s.fail("create poll", err, "poll_id", poll.ID)
	}

	return poll, nil
}

func (s *SQL) FindByID(ctx context.Context, id string) (models.Poll, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, question, options, tally, creator_id, created_at
		FROM poll
		WHERE id = $1
	`, id)

	poll, err := scanPoll(row)
	if err == sql.ErrNoRows {
		return models.Poll{}, pollerr.ErrPollNotFound
	}
	if err != nil {
		return models.Poll{}, s.fail("find poll", err, "poll_id", id)
	}
	return poll, nil
}

func (s *SQL) Save(ctx context.Context, poll models.Poll) error {
	optionsJSON, tallyJSON, err := encodePoll(poll)
	if err != nil {
		return s.fail("save poll", err, "poll_id", poll.ID)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE poll
		SET question = $1, options = $2, tally = $3, creator_id = $4
		WHERE id = $5
	`, poll.Question, optionsJSON, tallyJSON, poll.CreatorID, poll.ID)
	if err != nil {
		return s.fail("save poll", err, "poll_id", poll.ID)
	}
	return s.requireRow(res, "save poll", poll.ID)
}

func (s *SQL) List(ctx context.Context) ([]models.Poll, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question, options, tally, creator_id, created_at
		FROM poll
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, s.fail("list polls", err)
	}
	defer rows.Close()

	polls := []models.Poll{}
	for rows.Next() {
		poll, err := scanPoll(rows)
		if err != nil {
			return nil, s.fail("list polls", err)
		}
		polls = append(polls, poll)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("list polls", err)
	}
	return polls, nil
}

func (s *SQL) FindVote(ctx context.Context, pollID, userID string) (models.VoteRecord, bool, error) {
	rec := models.VoteRecord{PollID: pollID, UserID: userID}
	err := s.db.QueryRowContext(ctx, `
		SELECT option_index, updated_at FROM vote WHERE poll_id = $1 AND user_id = $2
	`, pollID, userID).Scan(&rec.OptionIndex, &rec.UpdatedAt)

	if err == sql.ErrNoRows {
		return models.VoteRecord{}, false, nil
	}
	if err != nil {
		return models.VoteRecord{}, false, s.fail("find vote", err, "poll_id", pollID, "user_id", userID)
	}
	return rec, true, nil
}

func (s *SQL) CountVotes(ctx context.Context, pollID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vote WHERE poll_id = $1`, pollID).Scan(&n)
	if err != nil {
		return 0, s.fail("count votes", err, "poll_id", pollID)
	}
	return n, nil
}

func (s *SQL) SaveWithVote(ctx context.Context, poll models.Poll, vote models.VoteRecord) error {
	tallyJSON, err := json.Marshal(poll.Tally)
	if err != nil {
		return s.fail("save vote", err, "poll_id", poll.ID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.fail("save vote", err, "poll_id", poll.ID)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE poll SET tally = $1 WHERE id = $2`, string(tallyJSON), poll.ID)
	if err != nil {
		return s.fail("save vote", err, "poll_id", poll.ID)
	}
	if err := s.requireRow(res, "save vote", poll.ID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO vote (poll_id, user_id, option_index, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (poll_id, user_id)
		DO UPDATE SET option_index = excluded.option_index, updated_at = excluded.updated_at
	`, vote.PollID, vote.UserID, vote.OptionIndex, vote.UpdatedAt.UTC())
	if err != nil {
		return s.fail("save vote", err, "poll_id", poll.ID, "user_id", vote.UserID)
	}

	if err := tx.Commit(); err != nil {
		return s.fail("save vote", err, "poll_id", poll.ID)
	}
	return nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}

// requireRow maps a zero-row update to ErrPollNotFound
func (s *SQL) requireRow(res sql.Result, op, pollID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return s.fail(op, err, "poll_id", pollID)
	}
	if n == 0 {
		return pollerr.ErrPollNotFound
	}
	return nil
}

func (s *SQL) fail(op string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+4)
	fields = append(fields, "op", op, "error", err)
	fields = append(fields, attrs...)
	s.logger.Error("sql store operation failed", fields...)
	return pollerr.Storage(op, err)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPoll(row scanner) (models.Poll, error) {
	var poll models.Poll
	var optionsJSON, tallyJSON string
	if err := row.Scan(&poll.ID, &poll.Question, &optionsJSON, &tallyJSON, &poll.CreatorID, &poll.CreatedAt); err != nil {
		return models.Poll{}, err
	}
	if err := json.Unmarshal([]byte(optionsJSON), &poll.Options); err != nil {
		return models.Poll{}, fmt.Errorf("decode options: %w", err)
	}
	if err := json.Unmarshal([]byte(tallyJSON), &poll.Tally); err != nil {
		return models.Poll{}, fmt.Errorf("decode tally: %w", err)
	}
	poll.CreatedAt = poll.CreatedAt.UTC()
	return poll, nil
}

func encodePoll(poll models.Poll) (options string, tally string, err error) {
	if len(poll.Options) != len(poll.Tally) {
		return "", "", errors.New("tally length does not match options")
	}
	o, err := json.Marshal(poll.Options)
	if err != nil {
		return "", "", err
	}
	t, err := json.Marshal(poll.Tally)
	if err != nil {
		return "", "", err
	}
	return string(o), string(t), nil
}

var _ Store = (*SQL)(nil)
