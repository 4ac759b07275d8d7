package game

import "github.com/aaronzipp/grimoire/internal/models"

// ChangePhase moves the room to the requested phase and applies the day
// bookkeeping. Only leaving the lobby with invalid seating is rejected.
func (e *Engine) ChangePhase(room *models.Room, to models.Phase) (models.Phase, error) {
	if !to.Valid() {
		return room.Phase, invalid(CodeInvalidPhase, "unknown phase %q", to)
	}
	if room.Phase == to {
		return room.Phase, nil
	}
	if room.Phase == models.PhaseLobby {
		if err := EnsureSeatingReady(room); err != nil {
			return room.Phase, err
		}
	}

	previous := room.Phase
	if to != models.PhaseVote {
		room.VoteSession = nil
	}
	switch to {
	case models.PhaseNight:
		// night N and day N overlap: day steps back on day->night
		switch previous {
		case models.PhaseLobby:
			room.Day = 0
		case models.PhaseDay:
			room.Day--
		}
	case models.PhaseDay:
		if previous == models.PhaseNight {
			room.Day++
		}
	case models.PhaseLobby:
		room.Day = 0
	}
	// Resolving straight out of night zero ends the game and returns to the lobby.
	if previous == models.PhaseNight && room.Day == 0 && to == models.PhaseResolve {
		to = models.PhaseLobby
	}
	room.Phase = to

	e.appendLog(room, LogPhaseChanged, map[string]any{"to": string(to), "day": room.Day, "night": room.Night})
	return room.Phase, nil
}
