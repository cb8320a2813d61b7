// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/pollerr"
)

type voteKey struct {
	pollID string
	userID string
}

// Memory is a process-local Store. Returned polls never alias stored slices.
type Memory struct {
	mu    sync.RWMutex
	polls map[string]models.Poll
	votes map[voteKey]models.VoteRecord
	count map[string]int // poll_id -> number of vote records
}

func NewMemory() *Memory {
	return &Memory{
		polls: make(map[string]models.Poll),
		votes: make(map[voteKey]models.VoteRecord),
		count: make(map[string]int),
	}
}

func (m *Memory) Create(ctx context.Context, question string, options []string, tally []int, creatorID string) (models.Poll, error) {
	poll := models.Poll{
		ID:        uuid.NewString(),
		Question:  question,
		Options:   options,
		Tally:     tally,
		CreatorID: creatorID,
		CreatedAt: time.Now().UTC(),
	}.Clone()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.polls[poll.ID] = poll
	return poll.Clone(), nil
}

func (m *Memory) FindByID(ctx context.Context, id string) (models.Poll, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	poll, ok := m.polls[id]
	if !ok {
		return models.Poll{}, pollerr.ErrPollNotFound
	}
	return poll.Clone(), nil
}

func (m *Memory) Save(ctx context.Context, poll models.Poll) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked(poll)
}

func (m *Memory) saveLocked(poll models.Poll) error {
	existing, ok := m.polls[poll.ID]
	if !ok {
		return pollerr.ErrPollNotFound
	}
	updated := poll.Clone()
	updated.CreatedAt = existing.CreatedAt
	m.polls[poll.ID] = updated
	return nil
}

func (m *Memory) List(ctx context.Context) ([]models.Poll, error) {
	m.mu.RLock()
	polls := make([]models.Poll, 0, len(m.polls))
	for _, p := range m.polls {
		polls = append(polls, p.Clone())
	}
	m.mu.RUnlock()

	sort.Slice(polls, func(i, j int) bool {
		if !polls[i].CreatedAt.Equal(polls[j].CreatedAt) {
			return polls[i].CreatedAt.After(polls[j].CreatedAt)
		}
		return polls[i].ID < polls[j].ID
	})
	return polls, nil
}

func (m *Memory) FindVote(ctx context.Context, pollID, userID string) (models.VoteRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.votes[voteKey{pollID, userID}]
	return rec, ok, nil
}

func (m *Memory) CountVotes(ctx context.Context, pollID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.count[pollID], nil
}

func (m *Memory) SaveWithVote(ctx context.Context, poll models.Poll, vote models.VoteRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.saveLocked(poll); err != nil {
		return err
	}
	key := voteKey{vote.PollID, vote.UserID}
	if _, exists := m.votes[key]; !exists {
		m.count[vote.PollID]++
	}
	m.votes[key] = vote
	return nil
}

func (m *Memory) Close() error {
	return nil
}

var _ Store = (*Memory)(nil)
