// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/livepoll/db"
	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/pollerr"
)

func newSQLiteStore(t *testing.T) *SQL {
	t.Helper()
	conn, err := db.Connect(context.Background(), db.DriverSQLite, "file:"+filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	s := NewSQL(conn, nil)
	t.Cleanup(func() { s.Close() })
	return s
}

// Each backend must pass the same contract
func backends(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": newSQLiteStore(t),
	}
}

func TestStore_CreateAndFind(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			poll, err := s.Create(ctx, "Best editor?", []string{"vim", "emacs", "nano"}, []int{0, 0, 0}, "u1")
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if poll.ID == "" {
				t.Error("Create() should assign an ID")
			}
			if poll.CreatedAt.IsZero() {
				t.Error("Create() should set CreatedAt")
			}

			got, err := s.FindByID(ctx, poll.ID)
			if err != nil {
				t.Fatalf("FindByID() error = %v", err)
			}
			if got.Question != poll.Question || got.CreatorID != "u1" {
				t.Errorf("FindByID() = %+v, want %+v", got, poll)
			}
			if len(got.Options) != 3 || got.Options[1] != "emacs" {
				t.Errorf("options not preserved: %v", got.Options)
			}
			if len(got.Tally) != 3 || got.TotalVotes() != 0 {
				t.Errorf("tally not preserved: %v", got.Tally)
			}
			if !got.CreatedAt.Equal(poll.CreatedAt) {
				t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, poll.CreatedAt)
			}
		})
	}
}

func TestStore_FindByIDNotFound(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.FindByID(context.Background(), "does-not-exist")
			if !errors.Is(err, pollerr.ErrPollNotFound) {
				t.Errorf("FindByID() error = %v, want ErrPollNotFound", err)
			}
		})
	}
}

func TestStore_Save(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			poll, _ := s.Create(ctx, "Q?", []string{"A", "B"}, []int{0, 0}, "u1")

			poll.Tally = []int{3, 1}
			if err := s.Save(ctx, poll); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			got, _ := s.FindByID(ctx, poll.ID)
			if got.Tally[0] != 3 || got.Tally[1] != 1 {
				t.Errorf("Save() did not persist tally: %v", got.Tally)
			}

			missing := poll
			missing.ID = "nope"
			if err := s.Save(ctx, missing); !errors.Is(err, pollerr.ErrPollNotFound) {
				t.Errorf("Save(missing) error = %v, want ErrPollNotFound", err)
			}
		})
	}
}

func TestStore_ReturnedPollsDoNotAlias(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			poll, _ := s.Create(ctx, "Q?", []string{"A", "B"}, []int{0, 0}, "u1")

			got, _ := s.FindByID(ctx, poll.ID)
			got.Tally[0] = 99

			again, _ := s.FindByID(ctx, poll.ID)
			if again.Tally[0] != 0 {
				t.Errorf("mutating a returned poll changed stored state: %v", again.Tally)
			}
		})
	}
}

func TestStore_List(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			polls, err := s.List(ctx)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(polls) != 0 {
				t.Errorf("expected empty list, got %d", len(polls))
			}

			first, _ := s.Create(ctx, "first", []string{"A", "B"}, []int{0, 0}, "u1")
			time.Sleep(2 * time.Millisecond)
			second, _ := s.Create(ctx, "second", []string{"A", "B"}, []int{0, 0}, "u1")

			polls, err = s.List(ctx)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(polls) != 2 {
				t.Fatalf("expected 2 polls, got %d", len(polls))
			}
			if polls[0].ID != second.ID || polls[1].ID != first.ID {
				t.Errorf("List() should be newest first, got %s, %s", polls[0].Question, polls[1].Question)
			}
		})
	}
}

func TestStore_SaveWithVote(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			poll, _ := s.Create(ctx, "Q?", []string{"A", "B"}, []int{0, 0}, "u1")

			if _, found, err := s.FindVote(ctx, poll.ID, "voter"); err != nil || found {
				t.Fatalf("FindVote() before vote: found=%v err=%v", found, err)
			}

			poll.Tally = []int{1, 0}
			rec := models.VoteRecord{PollID: poll.ID, UserID: "voter", OptionIndex: 0, UpdatedAt: time.Now()}
			if err := s.SaveWithVote(ctx, poll, rec); err != nil {
				t.Fatalf("SaveWithVote() error = %v", err)
			}

			// Revote replaces the record
			poll.Tally = []int{0, 1}
			rec.OptionIndex = 1
			if err := s.SaveWithVote(ctx, poll, rec); err != nil {
				t.Fatalf("SaveWithVote() revote error = %v", err)
			}

			got, found, err := s.FindVote(ctx, poll.ID, "voter")
			if err != nil || !found {
				t.Fatalf("FindVote() found=%v err=%v", found, err)
			}
			if got.OptionIndex != 1 {
				t.Errorf("FindVote() option = %d, want 1", got.OptionIndex)
			}

			n, err := s.CountVotes(ctx, poll.ID)
			if err != nil {
				t.Fatalf("CountVotes() error = %v", err)
			}
			if n != 1 {
				t.Errorf("CountVotes() = %d, want 1", n)
			}

			stored, _ := s.FindByID(ctx, poll.ID)
			if stored.Tally[0] != 0 || stored.Tally[1] != 1 {
				t.Errorf("tally = %v, want [0 1]", stored.Tally)
			}
		})
	}
}

func TestStore_SaveWithVoteMissingPoll(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			poll := models.Poll{ID: "ghost", Options: []string{"A", "B"}, Tally: []int{1, 0}}
			rec := models.VoteRecord{PollID: "ghost", UserID: "voter", OptionIndex: 0, UpdatedAt: time.Now()}

			err := s.SaveWithVote(ctx, poll, rec)
			if !errors.Is(err, pollerr.ErrPollNotFound) {
				t.Errorf("SaveWithVote() error = %v, want ErrPollNotFound", err)
			}

			// Nothing committed
			if n, _ := s.CountVotes(ctx, "ghost"); n != 0 {
				t.Errorf("CountVotes() = %d after failed save, want 0", n)
			}
		})
	}
}

func TestSQL_ClosedDatabaseIsStorageFailure(t *testing.T) {
	s := newSQLiteStore(t)
	s.Close()

	_, err := s.FindByID(context.Background(), "any")
	if !errors.Is(err, pollerr.ErrStorage) {
		t.Errorf("FindByID() on closed db error = %v, want ErrStorage", err)
	}
}
