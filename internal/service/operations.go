package service

import (
	"context"

	"github.com/aaronzipp/grimoire/internal/game"
	"github.com/aaronzipp/grimoire/internal/history"
	"github.com/aaronzipp/grimoire/internal/models"
	"github.com/aaronzipp/grimoire/internal/snapshot"
)

// UpdateSeat moves a player; an empty playerID moves the caller
func (s *Service) UpdateSeat(p models.Principal, playerID string, seat int) (int, error) {
	if err := requirePlayer(p); err != nil {
		return 0, err
	}
	var result int
	err := s.mutate(p, "update_seat", false, func(room *models.Room) error {
		player, err := s.engine.UpdateSeat(room, p, playerID, seat)
		if err != nil {
			return err
		}
		result = player.Seat
		return nil
	})
	return result, err
}

// AssignRoles generates, stages or finalizes the role assignment
func (s *Service) AssignRoles(p models.Principal, req game.AssignRequest) (map[int]models.RoleAssignment, error) {
	var result map[int]models.RoleAssignment
	err := s.mutate(p, "assign_roles", true, func(room *models.Room) error {
		var err error
		result, err = s.engine.AssignRoles(room, req)
		return err
	})
	return result, err
}

// ChangePhase moves the room to a new phase
func (s *Service) ChangePhase(p models.Principal, to models.Phase) (models.Phase, error) {
	var result models.Phase
	err := s.mutate(p, "change_phase", true, func(room *models.Room) error {
		var err error
		result, err = s.engine.ChangePhase(room, to)
		return err
	})
	return result, err
}

// ResetRoom clears the round and returns to the lobby
func (s *Service) ResetRoom(p models.Principal) error {
	return s.mutate(p, "reset_room", true, func(room *models.Room) error {
		s.engine.ResetRoom(room)
		return nil
	})
}

// SetGameResult sets or clears the result. A non-empty result archives the game.
func (s *Service) SetGameResult(ctx context.Context, p models.Principal, result *models.GameResult) (*models.GameResult, error) {
	var (
		set      *models.GameResult
		export   snapshot.Export
		scriptID string
	)
	err := s.mutate(p, "set_game_result", true, func(room *models.Room) error {
		var err error
		set, err = s.engine.SetGameResult(room, result)
		if err != nil {
			return err
		}
		export = snapshot.BuildExport(room)
		scriptID = room.ScriptID
		return nil
	})
	if err != nil {
		return nil, err
	}
	if set != nil && s.archive != nil {
		if _, err := s.archive.SaveRecord(ctx, p.RoomID, scriptID, string(*set), export); err != nil {
			// the result is already applied; archiving is best effort
			s.log.Error().Err(err).Str("room_id", p.RoomID).Msg("archive game record")
		}
	}
	return set, nil
}

// SetPlayerStatus sets a player's raw life status
func (s *Service) SetPlayerStatus(p models.Principal, playerID string, status models.LifeStatus) (models.LifeStatus, error) {
	var result models.LifeStatus
	err := s.mutate(p, "set_player_status", true, func(room *models.Room) error {
		player, err := s.engine.SetPlayerStatus(room, playerID, status)
		if err != nil {
			return err
		}
		result = player.LifeStatus
		return nil
	})
	return result, err
}

// SetPlayerNote sets the host's note on a player
func (s *Service) SetPlayerNote(p models.Principal, playerID, note string) (string, error) {
	var result string
	err := s.mutate(p, "set_player_note", true, func(room *models.Room) error {
		player, err := s.engine.SetPlayerNote(room, playerID, note)
		if err != nil {
			return err
		}
		result = player.Note
		return nil
	})
	return result, err
}

// Nominate records a nomination and returns its id
func (s *Service) Nominate(p models.Principal, nomineeSeat, nominatorSeat int) (string, error) {
	var id string
	err := s.mutate(p, "nominate", true, func(room *models.Room) error {
		n, err := s.engine.Nominate(room, nomineeSeat, nominatorSeat)
		if err != nil {
			return err
		}
		id = n.ID
		return nil
	})
	return id, err
}

// RevertNomination removes a nomination and its ballots
func (s *Service) RevertNomination(p models.Principal, nominationID string) error {
	return s.mutate(p, "revert_nomination", true, func(room *models.Room) error {
		return s.engine.RevertNomination(room, nominationID)
	})
}

// UpdateNominationTotal overrides a nomination's displayed vote total
func (s *Service) UpdateNominationTotal(p models.Principal, nominationID string, total *int) error {
	return s.mutate(p, "update_nomination_total", true, func(room *models.Room) error {
		_, err := s.engine.UpdateNominationTotal(room, nominationID, total)
		return err
	})
}

// StartVote opens the vote on a nomination
func (s *Service) StartVote(p models.Principal, nominationID string) error {
	return s.mutate(p, "start_vote", true, func(room *models.Room) error {
		_, err := s.engine.StartVote(room, nominationID)
		return err
	})
}

// CastVote records a ballot. Only the host may vote on behalf of another player.
func (s *Service) CastVote(p models.Principal, nominationID, playerID string, value bool) (string, error) {
	if playerID == "" {
		playerID = p.PlayerID
	}
	if playerID == "" {
		return "", game.NewInvalid(game.CodePlayerNotFound, "a voter is required")
	}
	if playerID != p.PlayerID && !p.IsHost {
		return "", game.NewForbidden(game.CodeHostOnly, "only the host can vote for another player")
	}
	var id string
	err := s.mutate(p, "cast_vote", false, func(room *models.Room) error {
		v, err := s.engine.CastVote(room, nominationID, playerID, value)
		if err != nil {
			return err
		}
		id = v.ID
		return nil
	})
	return id, err
}

// RecordAction stores a night action for the caller's seat
func (s *Service) RecordAction(p models.Principal, in game.ActionInput) (string, error) {
	if err := requirePlayer(p); err != nil {
		return "", err
	}
	var id string
	err := s.mutate(p, "record_action", false, func(room *models.Room) error {
		a, err := s.engine.RecordAction(room, p, in)
		if err != nil {
			return err
		}
		id = a.ID
		return nil
	})
	return id, err
}

// RecordExecution stores the current day's execution outcome
func (s *Service) RecordExecution(p models.Principal, nominationID string, executedSeat *int, targetDead *bool) (models.ExecutionRecord, error) {
	var record models.ExecutionRecord
	err := s.mutate(p, "record_execution", true, func(room *models.Room) error {
		var err error
		record, err = s.engine.RecordExecution(room, nominationID, executedSeat, targetDead)
		return err
	})
	return record, err
}

// Snapshot returns the room as seen by the principal
func (s *Service) Snapshot(roomID string, p models.Principal) (snapshot.View, error) {
	p.RoomID = roomID
	var view snapshot.View
	err := s.read(p, false, func(room *models.Room) error {
		sc, err := s.engine.ScriptFor(room)
		if err != nil {
			return err
		}
		view = snapshot.Build(room, sc, p)
		return nil
	})
	return view, err
}

// Export returns the host's full log export
func (s *Service) Export(p models.Principal) (snapshot.Export, error) {
	var export snapshot.Export
	err := s.read(p, true, func(room *models.Room) error {
		export = snapshot.BuildExport(room)
		return nil
	})
	return export, err
}

// History lists archived games, newest first
func (s *Service) History(ctx context.Context, limit int) ([]history.Record, error) {
	if s.archive == nil {
		return []history.Record{}, nil
	}
	return s.archive.LatestRecords(ctx, limit)
}
