package models

// Phase represents the current stage of a room's game cycle
type Phase string

const (
	PhaseLobby   Phase = "lobby"
	PhaseNight   Phase = "night"
	PhaseDay     Phase = "day"
	PhaseVote    Phase = "vote"
	PhaseResolve Phase = "resolve"
	PhaseDayEnd  Phase = "day_end"
)

// Valid reports whether p is one of the known phases
func (p Phase) Valid() bool {
	switch p {
	case PhaseLobby, PhaseNight, PhaseDay, PhaseVote, PhaseResolve, PhaseDayEnd:
		return true
	}
	return false
}

// LifeStatus is the raw life state of a player, including the fake-dead illusions
type LifeStatus string

const (
	StatusAlive          LifeStatus = "alive"
	StatusFakeDeadVote   LifeStatus = "fake_dead_vote"
	StatusFakeDeadNoVote LifeStatus = "fake_dead_no_vote"
	StatusDeadVote       LifeStatus = "dead_vote"
	StatusDeadNoVote     LifeStatus = "dead_no_vote"
)

// Valid reports whether s is one of the known life statuses
func (s LifeStatus) Valid() bool {
	switch s {
	case StatusAlive, StatusFakeDeadVote, StatusFakeDeadNoVote, StatusDeadVote, StatusDeadNoVote:
		return true
	}
	return false
}

// Public returns the status other players are allowed to see.
// Fake-dead states are shown as their plain dead counterpart.
func (s LifeStatus) Public() LifeStatus {
	switch s {
	case StatusFakeDeadVote:
		return StatusDeadVote
	case StatusFakeDeadNoVote:
		return StatusDeadNoVote
	}
	return s
}

// IsAlive reports whether the status counts as narratively alive
func (s LifeStatus) IsAlive() bool {
	return s == StatusAlive || s == StatusFakeDeadVote || s == StatusFakeDeadNoVote
}

// GameResult is the overall outcome of a finished game
type GameResult string

const (
	ResultBlue        GameResult = "blue"
	ResultRed         GameResult = "red"
	ResultStoryteller GameResult = "storyteller"
)
