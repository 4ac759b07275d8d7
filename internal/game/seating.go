package game

import (
	"slices"

	"github.com/aaronzipp/grimoire/internal/models"
)

// CreateRoomInput describes a new room and its host
type CreateRoomInput struct {
	HostName   string
	HostUserID string
	ScriptID   string
	JoinCode   string // optional; generated when empty
}

// NewRoom builds a lobby room whose host is an unseated player
func (e *Engine) NewRoom(in CreateRoomInput) (*models.Room, error) {
	hostName, err := normalizeName(in.HostName)
	if err != nil {
		return nil, err
	}
	s, ok := e.Scripts.Get(in.ScriptID)
	if !ok {
		return nil, notFound(CodeScriptNotFound, "unknown script id %s", in.ScriptID)
	}
	accessCode, err := e.NewToken(AccessCodeBytes)
	if err != nil {
		return nil, err
	}
	joinCode := in.JoinCode
	if joinCode == "" {
		joinCode = GenerateJoinCode()
	}

	now := e.Now()
	room := models.NewRoom(e.NewID(), accessCode, joinCode, s.ID, now)
	host := &models.Player{
		ID:         e.NewID(),
		Name:       hostName,
		Seat:       0,
		LifeStatus: models.StatusAlive,
		IsHost:     true,
		UserID:     in.HostUserID,
		JoinedAt:   now,
	}
	room.Players[host.ID] = host
	room.HostPlayerID = host.ID

	e.appendLog(room, LogRoomCreated, map[string]any{"script_id": s.ID, "host_name": hostName})
	return room, nil
}

// AddPlayer seats a new player after the existing non-host players
func (e *Engine) AddPlayer(room *models.Room, name, userID string) (*models.Player, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	count := 0
	for _, p := range room.Players {
		if !p.IsHost {
			count++
		}
	}
	player := &models.Player{
		ID:         e.NewID(),
		Name:       name,
		Seat:       count + 1,
		LifeStatus: models.StatusAlive,
		UserID:     userID,
		JoinedAt:   e.Now(),
	}
	room.Players[player.ID] = player
	e.appendLog(room, LogPlayerJoined, map[string]any{"seat": player.Seat, "name": name})
	return player, nil
}

// UpdateSeat moves a player to a seat. The host may move anyone at any time;
// a player may only move themself, and only in the lobby. Duplicate seats are
// allowed here and rejected when leaving the lobby.
func (e *Engine) UpdateSeat(room *models.Room, principal models.Principal, playerID string, seat int) (*models.Player, error) {
	if seat < 0 {
		return nil, invalid(CodeInvalidSeat, "seat must not be negative")
	}
	if playerID == "" {
		playerID = principal.PlayerID
	}
	player, ok := room.Players[playerID]
	if !ok {
		return nil, notFound(CodePlayerNotFound, "player %s not found", playerID)
	}
	if !principal.IsHost {
		if principal.PlayerID != playerID {
			return nil, forbidden(CodeNotYourSeat, "only the host can move other players")
		}
		if room.Phase != models.PhaseLobby {
			return nil, invalid(CodeSeatChangeLocked, "seats can only be changed in the lobby")
		}
	}

	player.Seat = seat
	e.appendLog(room, LogSeatChanged, map[string]any{"player": player.Name, "seat": seat})
	return player, nil
}

// EnsureSeatingReady checks that non-host seats are exactly 1..N with no duplicates
func EnsureSeatingReady(room *models.Room) error {
	var seats []int
	for _, p := range room.Players {
		if !p.IsHost {
			seats = append(seats, p.Seat)
		}
	}
	if len(seats) == 0 {
		return invalid(CodeNoPlayers, "at least one player is required to start")
	}
	slices.Sort(seats)
	if len(slices.Compact(slices.Clone(seats))) != len(seats) {
		return invalid(CodeSeatDuplicate, "two players share a seat")
	}
	for i, seat := range seats {
		if seat != i+1 {
			return invalid(CodeSeatNotContiguous, "seats must be numbered 1 to %d without gaps", len(seats))
		}
	}
	return nil
}

// SeatConflicts returns the seats held by more than one seated player
func SeatConflicts(room *models.Room) map[int]bool {
	counts := make(map[int]int)
	for _, p := range room.Players {
		if p.Seated() {
			counts[p.Seat]++
		}
	}
	conflicts := make(map[int]bool)
	for seat, n := range counts {
		if n > 1 {
			conflicts[seat] = true
		}
	}
	return conflicts
}
