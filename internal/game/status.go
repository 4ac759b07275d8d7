package game

import (
	"strings"
	"unicode/utf8"

	"github.com/aaronzipp/grimoire/internal/models"
)

// SetPlayerStatus applies a raw life status and its matching ghost-vote flag
func (e *Engine) SetPlayerStatus(room *models.Room, playerID string, status models.LifeStatus) (*models.Player, error) {
	if !status.Valid() {
		return nil, invalid(CodeInvalidStatus, "unknown life status %q", status)
	}
	player, ok := room.Players[playerID]
	if !ok {
		return nil, notFound(CodePlayerNotFound, "player %s not found", playerID)
	}
	player.SetLifeStatus(status)
	e.appendLog(room, LogStatusChanged, map[string]any{"player": player.Name, "status": string(status)})
	return player, nil
}

// SetPlayerNote replaces the host's private note on a player
func (e *Engine) SetPlayerNote(room *models.Room, playerID, note string) (*models.Player, error) {
	player, ok := room.Players[playerID]
	if !ok {
		return nil, notFound(CodePlayerNotFound, "player %s not found", playerID)
	}
	note = strings.TrimSpace(note)
	if utf8.RuneCountInString(note) > MaxNoteLength {
		return nil, invalid(CodeInvalidNote, "note must be at most %d characters", MaxNoteLength)
	}
	player.Note = note
	e.appendLog(room, LogPlayerNoteUpdated, map[string]any{"player": player.Name, "note": note})
	return player, nil
}

// ResetRoom clears all round state and returns every player to life.
// The room, its players and their seats are kept.
func (e *Engine) ResetRoom(room *models.Room) {
	room.Phase = models.PhaseLobby
	room.Day = 1
	room.Night = 0
	room.Seed = ""
	room.PendingAssignments = make(map[int]models.RoleAssignment)
	room.Nominations = nil
	room.Votes = nil
	room.Actions = nil
	room.GameResult = nil
	room.VoteSession = nil
	room.Executions = nil

	for _, p := range room.Players {
		p.SetLifeStatus(models.StatusAlive)
		p.RoleID = ""
		p.Attachments = nil
	}
	e.appendLog(room, LogGameReset, nil)
}

// ActionInput is a night action entered by the principal
type ActionInput struct {
	Type    string
	Target  *int
	Payload map[string]any
}

// RecordAction stores a night action. It is filed under the current night, or
// night 1 when the room is not in night.
func (e *Engine) RecordAction(room *models.Room, principal models.Principal, in ActionInput) (*models.Action, error) {
	actionType := strings.TrimSpace(in.Type)
	if actionType == "" {
		return nil, invalid(CodeInvalidActionRequest, "action type is required")
	}
	if in.Target != nil && *in.Target < 0 {
		return nil, invalid(CodeInvalidActionRequest, "action target must not be negative")
	}
	night := max(room.Night, 1)
	if room.Phase == models.PhaseNight {
		night = room.Night
	}
	actorSeat := 0
	if !principal.IsHost {
		if p, ok := room.Players[principal.PlayerID]; ok {
			actorSeat = p.Seat
		} else {
			actorSeat = principal.Seat
		}
	}
	payload := in.Payload
	if payload == nil {
		payload = map[string]any{}
	}

	action := &models.Action{
		ID:         e.NewID(),
		Night:      night,
		ActorSeat:  actorSeat,
		Type:       actionType,
		Target:     copyInt(in.Target),
		Payload:    payload,
		RecordedAt: e.Now(),
	}
	room.Actions = append(room.Actions, action)
	e.appendLog(room, LogActionRecorded, map[string]any{
		"night":  night,
		"actor":  actorSeat,
		"type":   actionType,
		"target": derefInt(in.Target),
	})
	return action, nil
}
