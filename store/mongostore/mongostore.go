// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mongostore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/pollerr"
	"github.com/danielhkuo/livepoll/store"
)

const collectionName = "polls"

// Store keeps each poll as one document. Ledger entries live inside the
// poll document under "voters", so a tally change and its vote record are
// written by a single-document update.
type Store struct {
	client *mongo.Client
	polls  *mongo.Collection
	logger *slog.Logger
}

type voterEntry struct {
	UserID      string    `bson:"user_id"`
	OptionIndex int       `bson:"option_index"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

type pollDocument struct {
	ID        string                `bson:"_id"`
	Question  string                `bson:"question"`
	Options   []string              `bson:"options"`
	Tally     []int                 `bson:"tally"`
	CreatorID string                `bson:"creator_id"`
	CreatedAt time.Time             `bson:"created_at"`
	Voters    map[string]voterEntry `bson:"voters,omitempty"`
}

func (d pollDocument) toPoll() models.Poll {
	return models.Poll{
		ID:        d.ID,
		Question:  d.Question,
		Options:   d.Options,
		Tally:     d.Tally,
		CreatorID: d.CreatorID,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

// Connect dials uri, pings the primary, and ensures indexes on database
func Connect(ctx context.Context, uri, database string, logger *slog.Logger) (*Store, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	s := &Store{
		client: client,
		polls:  client.Database(database).Collection(collectionName),
		logger: logger,
	}

	_, err = s.polls.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create mongo index: %w", err)
	}

	return s, nil
}

func (s *Store) Create(ctx context.Context, question string, labels []string, tally []int, creatorID string) (models.Poll, error) {
	doc := pollDocument{
		ID:        uuid.NewString(),
		Question:  question,
		Options:   append([]string(nil), labels...),
		Tally:     append([]int(nil), tally...),
		CreatorID: creatorID,
		// BSON dates carry millisecond precision
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	if _, err := s.polls.InsertOne(ctx, doc); err != nil {
		return models.Poll{}, s.fail("create poll", err, "poll_id", doc.ID)
	}
	return doc.toPoll(), nil
}

func (s *Store) FindByID(ctx context.Context, id string) (models.Poll, error) {
	var doc pollDocument
	err := s.polls.FindOne(ctx, bson.M{"_id": id},
		options.FindOne().SetProjection(bson.M{"voters": 0}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Poll{}, pollerr.ErrPollNotFound
	}
	if err != nil {
		return models.Poll{}, s.fail("find poll", err, "poll_id", id)
	}
	return doc.toPoll(), nil
}

func (s *Store) Save(ctx context.Context, poll models.Poll) error {
	res, err := s.polls.UpdateOne(ctx, bson.M{"_id": poll.ID}, bson.M{
		"$set": bson.M{
			"question":   poll.Question,
			"options":    poll.Options,
			"tally":      poll.Tally,
			"creator_id": poll.CreatorID,
		},
	})
	if err != nil {
		return s.fail("save poll", err, "poll_id", poll.ID)
	}
	if res.MatchedCount == 0 {
		return pollerr.ErrPollNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]models.Poll, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"voters": 0})

	cursor, err := s.polls.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, s.fail("list polls", err)
	}

	var docs []pollDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, s.fail("list polls", err)
	}

	polls := make([]models.Poll, 0, len(docs))
	for _, doc := range docs {
		polls = append(polls, doc.toPoll())
	}
	return polls, nil
}

func (s *Store) FindVote(ctx context.Context, pollID, userID string) (models.VoteRecord, bool, error) {
	key := voterKey(userID)

	var doc pollDocument
	err := s.polls.FindOne(ctx, bson.M{"_id": pollID},
		options.FindOne().SetProjection(bson.M{"voters." + key: 1}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.VoteRecord{}, false, nil
	}
	if err != nil {
		return models.VoteRecord{}, false, s.fail("find vote", err, "poll_id", pollID, "user_id", userID)
	}

	entry, ok := doc.Voters[key]
	if !ok {
		return models.VoteRecord{}, false, nil
	}
	return models.VoteRecord{
		PollID:      pollID,
		UserID:      entry.UserID,
		OptionIndex: entry.OptionIndex,
		UpdatedAt:   entry.UpdatedAt.UTC(),
	}, true, nil
}

func (s *Store) CountVotes(ctx context.Context, pollID string) (int, error) {
	var doc pollDocument
	err := s.polls.FindOne(ctx, bson.M{"_id": pollID},
		options.FindOne().SetProjection(bson.M{"voters": 1}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, s.fail("count votes", err, "poll_id", pollID)
	}
	return len(doc.Voters), nil
}

func (s *Store) SaveWithVote(ctx context.Context, poll models.Poll, vote models.VoteRecord) error {
	entry := voterEntry{
		UserID:      vote.UserID,
		OptionIndex: vote.OptionIndex,
		UpdatedAt:   vote.UpdatedAt.UTC(),
	}

	set := bson.M{"tally": poll.Tally}
	set["voters."+voterKey(vote.UserID)] = entry

	res, err := s.polls.UpdateOne(ctx, bson.M{"_id": poll.ID}, bson.M{"$set": set})
	if err != nil {
		return s.fail("save vote", err, "poll_id", poll.ID, "user_id", vote.UserID)
	}
	if res.MatchedCount == 0 {
		return pollerr.ErrPollNotFound
	}
	return nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// voterKey makes a user id safe to use as a document field name
func voterKey(userID string) string {
	return "u" + hex.EncodeToString([]byte(userID))
}

func (s *Store) fail(op string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+4)
	fields = append(fields, "op", op, "error", err)
	fields = append(fields, attrs...)
	s.logger.Error("mongo store operation failed", fields...)
	return pollerr.Storage(op, err)
}

var _ store.Store = (*Store)(nil)
