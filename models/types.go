package models

import (
	"encoding/json"
	"time"
)

// Poll limits enforced on creation
const (
	MinOptions      = 2
	MaxOptions      = 13
	MaxOptionLength = 400 // characters, not bytes
)

// Client -> server events
const (
	EventCreatePoll = "createPoll"
	EventVote       = "vote"
)

// Server -> client events
const (
	EventPollCreated = "pollCreated"
	EventVoteUpdated = "voteUpdated"
	EventError       = "error"
)

// NoOption marks the absent side of a VoteDelta
const NoOption = -1

// Domain types

type Poll struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Options   []string  `json:"options"`
	Tally     []int     `json:"tally"`
	CreatorID string    `json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a copy that shares no slices with p
func (p Poll) Clone() Poll {
	c := p
	c.Options = append([]string(nil), p.Options...)
	c.Tally = append([]int(nil), p.Tally...)
	return c
}

// TotalVotes is the sum of the tally
func (p Poll) TotalVotes() int {
	total := 0
	for _, n := range p.Tally {
		total += n
	}
	return total
}

// VoteRecord is a user's active choice on a poll. One per (PollID, UserID).
type VoteRecord struct {
	PollID      string    `json:"poll_id"`
	UserID      string    `json:"user_id"`
	OptionIndex int       `json:"option_index"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Wire types

// Envelope is a single websocket frame in either direction
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Event is an outbound frame before encoding
type Event struct {
	Name    string
	Payload any
}

// MarshalJSON encodes the event in Envelope form
func (e Event) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: e.Name, Data: data})
}

func PollCreated(p Poll) Event {
	return Event{Name: EventPollCreated, Payload: p}
}

func VoteUpdated(p Poll) Event {
	return Event{Name: EventVoteUpdated, Payload: p}
}

func ErrorEvent(msg string) Event {
	return Event{Name: EventError, Payload: msg}
}

// Request types

type CreatePollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	UserID   string   `json:"userId"`
}

type VoteRequest struct {
	PollID      string `json:"pollId"`
	OptionIndex int    `json:"optionIndex"`
	UserID      string `json:"userId"`
}

type CreateSessionRequest struct {
	DisplayName string `json:"display_name"`
}

// Response types

type CreatePollResponse struct {
	Message string `json:"message"`
	Poll    Poll   `json:"poll"`
}

type CreateSessionResponse struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Token       string `json:"token"`
}

type StatsResponse struct {
	Connections      int    `json:"connections"`
	PollsCreated     int64  `json:"polls_created"`
	VotesApplied     int64  `json:"votes_applied"`
	VotesAppliedText string `json:"votes_applied_text"`
	StartedAt        string `json:"started_at"`
	Uptime           string `json:"uptime"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
