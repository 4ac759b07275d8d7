package models

import "time"

// MaxNominationsPerDay caps how many nominations a single day may hold
const MaxNominationsPerDay = 3

// Nomination is a proposal to execute the nominee, made by the nominator
type Nomination struct {
	ID              string
	Day             int
	NomineeSeat     int
	NominatorSeat   int
	CreatedAt       time.Time
	Confirmed       bool
	VoteStarted     bool
	VoteCompleted   bool
	ManualVoteTotal *int
}

// Vote is an immutable record of one ballot
type Vote struct {
	ID           string
	Day          int
	NominationID string
	NomineeSeat  int
	VoterSeat    int
	PlayerID     string
	Value        bool
	Auto         bool
	CastAt       time.Time
}

// VoteSession tracks the turn-ordered progress of a vote on one nomination
type VoteSession struct {
	NominationID string
	Order        []string // player ids
	CurrentIndex int
	Finished     bool
	Votes        map[string]bool
}

// NewVoteSession creates a session positioned at the first voter
func NewVoteSession(nominationID string, order []string) *VoteSession {
	return &VoteSession{
		NominationID: nominationID,
		Order:        order,
		Votes:        make(map[string]bool),
	}
}

// CurrentPlayerID returns the voter expected next, or "" once the order is exhausted
func (s *VoteSession) CurrentPlayerID() string {
	if s.Finished || s.CurrentIndex >= len(s.Order) {
		return ""
	}
	return s.Order[s.CurrentIndex]
}

// Action is a host-entered night action fact
type Action struct {
	ID         string
	Night      int
	ActorSeat  int
	Type       string
	Target     *int
	Payload    map[string]any
	Resolved   bool
	RecordedAt time.Time
}

// ExecutionRecord is the end-of-day outcome, one per day
type ExecutionRecord struct {
	Day          int
	NominationID string
	NomineeSeat  *int
	ExecutedSeat *int
	VotesFor     int
	AliveCount   int
	TargetDead   *bool
	RecordedAt   time.Time
}

// LogEntry is an append-only audit trail entry
type LogEntry struct {
	ID      string         `json:"id"`
	At      time.Time      `json:"ts"`
	Kind    string         `json:"kind"`
	Payload map[string]any `json:"payload"`
}
