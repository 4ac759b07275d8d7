package models

import "time"

// RoleAttachment is a secondary hidden role fact carried by a primary role
type RoleAttachment struct {
	Slot   string `json:"slot"`
	Index  int    `json:"index"`
	RoleID string `json:"role_id"`
}

// RoleAssignment is a primary role plus its attachments, keyed by seat in a room
type RoleAssignment struct {
	RoleID      string           `json:"role_id"`
	Attachments []RoleAttachment `json:"attachments"`
}

// Clone returns a deep copy of the assignment
func (a RoleAssignment) Clone() RoleAssignment {
	out := RoleAssignment{RoleID: a.RoleID}
	if len(a.Attachments) > 0 {
		out.Attachments = append([]RoleAttachment(nil), a.Attachments...)
	}
	return out
}

// Player represents a participant in a room. The host is a player with seat 0.
type Player struct {
	ID            string
	Name          string
	Seat          int
	LifeStatus    LifeStatus
	GhostVoteUsed bool
	RoleID        string // empty until roles are finalized
	Attachments   []RoleAttachment
	Note          string
	IsHost        bool
	IsBot         bool
	UserID        string
	JoinedAt      time.Time
}

// Seated reports whether the player occupies a numbered seat at the table
func (p *Player) Seated() bool {
	return !p.IsHost && p.Seat > 0
}

// CanVote reports whether the player may currently cast an affirmative vote
func (p *Player) CanVote() bool {
	if p == nil {
		return false
	}
	switch p.LifeStatus {
	case StatusAlive:
		return true
	case StatusFakeDeadVote, StatusDeadVote:
		return !p.GhostVoteUsed
	default:
		return false
	}
}

// SetLifeStatus applies a status and the ghost-vote flag that goes with it
func (p *Player) SetLifeStatus(status LifeStatus) {
	p.LifeStatus = status
	switch status {
	case StatusAlive, StatusFakeDeadVote, StatusDeadVote:
		p.GhostVoteUsed = false
	case StatusFakeDeadNoVote, StatusDeadNoVote:
		p.GhostVoteUsed = true
	}
}
