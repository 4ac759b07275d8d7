package game

import (
	"slices"

	"github.com/aaronzipp/grimoire/internal/models"
)

// Nominate records a confirmed nomination for the current day and clears any active vote
func (e *Engine) Nominate(room *models.Room, nomineeSeat, nominatorSeat int) (*models.Nomination, error) {
	if len(room.NominationsForDay(room.Day)) >= models.MaxNominationsPerDay {
		return nil, invalid(CodeNominationLimit, "day %d already has %d nominations", room.Day, models.MaxNominationsPerDay)
	}
	if room.PlayerBySeat(nomineeSeat) == nil {
		return nil, notFound(CodePlayerNotFound, "no nominee in seat %d", nomineeSeat)
	}
	if room.PlayerBySeat(nominatorSeat) == nil {
		return nil, notFound(CodePlayerNotFound, "no nominator in seat %d", nominatorSeat)
	}

	nomination := &models.Nomination{
		ID:            e.NewID(),
		Day:           room.Day,
		NomineeSeat:   nomineeSeat,
		NominatorSeat: nominatorSeat,
		CreatedAt:     e.Now(),
		Confirmed:     true,
	}
	room.Nominations = append(room.Nominations, nomination)
	room.VoteSession = nil
	e.appendLog(room, LogNominated, map[string]any{"nominee": nomineeSeat, "by": nominatorSeat})
	return nomination, nil
}

// StartVote opens a fresh vote session on a nomination of the current day.
// Prior ballots on the nomination are discarded and ineligible voters at the
// head of the order are skipped immediately.
func (e *Engine) StartVote(room *models.Room, nominationID string) (*models.VoteSession, error) {
	nomination := room.Nomination(nominationID)
	if nomination == nil {
		return nil, notFound(CodeNominationNotFound, "nomination %s not found", nominationID)
	}
	if nomination.Day != room.Day {
		return nil, invalid(CodeNominationWrongDay, "only nominations of the current day can be voted on")
	}

	session := models.NewVoteSession(nominationID, BuildVoteOrder(room, nomination.NomineeSeat))
	nomination.VoteStarted = true
	nomination.VoteCompleted = false
	room.VoteSession = session
	room.Votes = slices.DeleteFunc(room.Votes, func(v *models.Vote) bool {
		return v.NominationID == nominationID
	})
	e.advanceVoteSession(room, nomination)
	e.appendLog(room, LogVoteStarted, map[string]any{"nomination_id": nominationID})
	return session, nil
}

// CastVote records the expected voter's ballot and then auto-skips any
// ineligible voters that follow.
func (e *Engine) CastVote(room *models.Room, nominationID, playerID string, value bool) (*models.Vote, error) {
	session := room.VoteSession
	if session == nil || session.NominationID != nominationID {
		return nil, invalid(CodeNoActiveVote, "there is no active vote for this nomination")
	}
	nomination := room.Nomination(nominationID)
	if nomination == nil {
		return nil, notFound(CodeNominationNotFound, "nomination %s not found", nominationID)
	}
	if nomination.Day != room.Day {
		return nil, invalid(CodeNominationWrongDay, "only nominations of the current day can be voted on")
	}
	if session.Finished {
		return nil, invalid(CodeVoteFinished, "this vote has already finished")
	}
	if session.CurrentPlayerID() != playerID {
		return nil, invalid(CodeVoteOutOfTurn, "it is not this player's turn to vote")
	}
	player, ok := room.Players[playerID]
	if !ok {
		return nil, notFound(CodePlayerNotFound, "player %s not found", playerID)
	}
	if value && !player.CanVote() {
		return nil, invalid(CodeVoterIneligible, "%s has no vote left", player.Name)
	}

	vote := e.applyVote(room, nomination, session, player, value, false)
	e.advanceVoteSession(room, nomination)
	return vote, nil
}

// RevertNomination removes a nomination, its ballots and any session on it
func (e *Engine) RevertNomination(room *models.Room, nominationID string) error {
	i := slices.IndexFunc(room.Nominations, func(n *models.Nomination) bool { return n.ID == nominationID })
	if i < 0 {
		return notFound(CodeNominationNotFound, "nomination %s not found", nominationID)
	}
	room.Nominations = slices.Delete(room.Nominations, i, i+1)
	room.Votes = slices.DeleteFunc(room.Votes, func(v *models.Vote) bool {
		return v.NominationID == nominationID
	})
	if room.VoteSession != nil && room.VoteSession.NominationID == nominationID {
		room.VoteSession = nil
	}
	e.appendLog(room, LogNominationReverted, map[string]any{"nomination_id": nominationID})
	return nil
}

// UpdateNominationTotal overrides the displayed vote total; nil clears the override
func (e *Engine) UpdateNominationTotal(room *models.Room, nominationID string, total *int) (*models.Nomination, error) {
	nomination := room.Nomination(nominationID)
	if nomination == nil {
		return nil, notFound(CodeNominationNotFound, "nomination %s not found", nominationID)
	}
	if total != nil && *total < 0 {
		return nil, invalid(CodeInvalidTotal, "vote total must not be negative")
	}
	if total != nil {
		v := *total
		total = &v
	}
	nomination.ManualVoteTotal = total
	var logged any
	if total != nil {
		logged = *total
	}
	e.appendLog(room, LogNominationTotalUpdated, map[string]any{"nomination_id": nominationID, "total": logged})
	return nomination, nil
}

// BuildVoteOrder lists seated players by (seat, join time), rotated to start
// at the first seat after the nominee's and wrapping around the table.
func BuildVoteOrder(room *models.Room, nomineeSeat int) []string {
	players := room.SeatedPlayers()
	start := slices.IndexFunc(players, func(p *models.Player) bool { return p.Seat > nomineeSeat })
	if start < 0 {
		start = 0
	}
	order := make([]string, 0, len(players))
	for _, p := range slices.Concat(players[start:], players[:start]) {
		order = append(order, p.ID)
	}
	return order
}

func (e *Engine) applyVote(room *models.Room, nomination *models.Nomination, session *models.VoteSession, player *models.Player, value, auto bool) *models.Vote {
	vote := &models.Vote{
		ID:           e.NewID(),
		Day:          room.Day,
		NominationID: nomination.ID,
		NomineeSeat:  nomination.NomineeSeat,
		VoterSeat:    player.Seat,
		PlayerID:     player.ID,
		Value:        value,
		Auto:         auto,
		CastAt:       e.Now(),
	}
	room.Votes = append(room.Votes, vote)
	session.Votes[player.ID] = value
	session.CurrentIndex++

	if value {
		switch player.LifeStatus {
		case models.StatusDeadVote:
			player.SetLifeStatus(models.StatusDeadNoVote)
		case models.StatusFakeDeadVote:
			player.SetLifeStatus(models.StatusFakeDeadNoVote)
		}
	}
	if session.CurrentIndex >= len(session.Order) {
		session.Finished = true
		nomination.VoteCompleted = true
	}

	e.appendLog(room, LogVoteCast, map[string]any{
		"nominee":       nomination.NomineeSeat,
		"nomination_id": nomination.ID,
		"voter":         player.Seat,
		"value":         value,
		"auto":          auto,
	})
	return vote
}

// advanceVoteSession records automatic no votes for ineligible voters until an
// eligible voter is up or the order is exhausted.
func (e *Engine) advanceVoteSession(room *models.Room, nomination *models.Nomination) {
	session := room.VoteSession
	if session == nil || session.Finished {
		return
	}
	for {
		current := session.CurrentPlayerID()
		if current == "" {
			session.Finished = true
			nomination.VoteCompleted = true
			return
		}
		player, ok := room.Players[current]
		if !ok {
			session.Votes[current] = false
			session.CurrentIndex++
			continue
		}
		if player.CanVote() {
			return
		}
		e.applyVote(room, nomination, session, player, false, true)
		if session.Finished {
			return
		}
	}
}
