package models

import (
	"cmp"
	"slices"
	"sync"
	"time"
)

// Room is the aggregate for one live game. All mutation goes through the room lock.
type Room struct {
	ID                 string
	Code               string
	JoinCode           string
	ScriptID           string
	HostPlayerID       string
	Phase              Phase
	Day                int
	Night              int
	Seed               string
	CreatedAt          time.Time
	Players            map[string]*Player // playerID -> Player
	Nominations        []*Nomination
	Votes              []*Vote
	Actions            []*Action
	Logs               []LogEntry
	PendingAssignments map[int]RoleAssignment // seat -> assignment
	VoteSession        *VoteSession
	Executions         []ExecutionRecord
	GameResult         *GameResult
	mu                 sync.RWMutex
}

// NewRoom creates an empty room in the lobby phase
func NewRoom(id, code, joinCode, scriptID string, createdAt time.Time) *Room {
	return &Room{
		ID:                 id,
		Code:               code,
		JoinCode:           joinCode,
		ScriptID:           scriptID,
		Phase:              PhaseLobby,
		CreatedAt:          createdAt,
		Players:            make(map[string]*Player),
		PendingAssignments: make(map[int]RoleAssignment),
	}
}

// Lock acquires the room's write lock
func (r *Room) Lock() {
	r.mu.Lock()
}

// Unlock releases the room's write lock
func (r *Room) Unlock() {
	r.mu.Unlock()
}

// RLock acquires the room's read lock
func (r *Room) RLock() {
	r.mu.RLock()
}

// RUnlock releases the room's read lock
func (r *Room) RUnlock() {
	r.mu.RUnlock()
}

// ListPlayers returns every player ordered by seat, then join time (must be called with lock held)
func (r *Room) ListPlayers() []*Player {
	players := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, p)
	}
	slices.SortFunc(players, func(a, b *Player) int {
		return cmp.Or(
			cmp.Compare(a.Seat, b.Seat),
			a.JoinedAt.Compare(b.JoinedAt),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return players
}

// SeatedPlayers returns non-host players with a seat above zero, in seat order
func (r *Room) SeatedPlayers() []*Player {
	var seated []*Player
	for _, p := range r.ListPlayers() {
		if p.Seated() {
			seated = append(seated, p)
		}
	}
	return seated
}

// PlayerBySeat returns the first seated player holding seat, or nil
func (r *Room) PlayerBySeat(seat int) *Player {
	for _, p := range r.ListPlayers() {
		if p.Seat == seat && p.Seated() {
			return p
		}
	}
	return nil
}

// Nomination looks up a nomination by id
func (r *Room) Nomination(id string) *Nomination {
	for _, n := range r.Nominations {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// NominationsForDay returns the nominations made on the given day
func (r *Room) NominationsForDay(day int) []*Nomination {
	var out []*Nomination
	for _, n := range r.Nominations {
		if n.Day == day {
			out = append(out, n)
		}
	}
	return out
}

// AliveCount counts seated non-host players whose raw status is alive
func (r *Room) AliveCount() int {
	count := 0
	for _, p := range r.SeatedPlayers() {
		if p.LifeStatus == StatusAlive {
			count++
		}
	}
	return count
}
