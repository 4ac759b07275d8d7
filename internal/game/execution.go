package game

import (
	"github.com/aaronzipp/grimoire/internal/models"
)

// RecordExecution stores the day's execution outcome, replacing any earlier
// record for the same day. nominationID may be empty when nobody was nominated.
func (e *Engine) RecordExecution(room *models.Room, nominationID string, executedSeat *int, targetDead *bool) (models.ExecutionRecord, error) {
	record := models.ExecutionRecord{
		Day:          room.Day,
		NominationID: nominationID,
		ExecutedSeat: copyInt(executedSeat),
		TargetDead:   copyBool(targetDead),
		RecordedAt:   e.Now(),
	}
	if executedSeat != nil && *executedSeat < 0 {
		return models.ExecutionRecord{}, invalid(CodeInvalidSeat, "executed seat must not be negative")
	}
	if nominationID != "" {
		nomination := room.Nomination(nominationID)
		if nomination == nil {
			return models.ExecutionRecord{}, notFound(CodeNominationNotFound, "nomination %s not found", nominationID)
		}
		record.NomineeSeat = copyInt(&nomination.NomineeSeat)
		for _, v := range room.Votes {
			if v.NominationID == nominationID && v.Value {
				record.VotesFor++
			}
		}
	}
	record.AliveCount = room.AliveCount()

	kept := room.Executions[:0]
	for _, rec := range room.Executions {
		if rec.Day != room.Day {
			kept = append(kept, rec)
		}
	}
	room.Executions = append(kept, record)

	e.appendLog(room, LogExecutionRecorded, map[string]any{
		"nomination_id": nominationID,
		"executed":      derefInt(executedSeat),
		"votes_for":     record.VotesFor,
		"alive_count":   record.AliveCount,
		"target_dead":   derefBool(targetDead),
	})
	return record, nil
}

// SetGameResult sets or clears the overall result. The storyteller outcome is
// only accepted when the room's script enables it.
func (e *Engine) SetGameResult(room *models.Room, result *models.GameResult) (*models.GameResult, error) {
	s, err := e.ScriptFor(room)
	if err != nil {
		return nil, err
	}
	if result != nil {
		switch *result {
		case models.ResultBlue, models.ResultRed:
		case models.ResultStoryteller:
			if !s.Rules.StorytellerWinAvailable {
				return nil, invalid(CodeUnsupportedResult, "script %s has no storyteller win", s.ID)
			}
		default:
			return nil, invalid(CodeUnsupportedResult, "unsupported game result %q", *result)
		}
		r := *result
		result = &r
	}
	room.GameResult = result

	var logged any
	if result != nil {
		logged = string(*result)
	}
	e.appendLog(room, LogGameResultSet, map[string]any{"result": logged})
	return result, nil
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyBool(v *bool) *bool {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func derefInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func derefBool(v *bool) any {
	if v == nil {
		return nil
	}
	return *v
}
