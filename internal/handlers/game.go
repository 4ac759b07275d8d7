package handlers

import (
	"net/http"

	"github.com/aaronzipp/grimoire/internal/game"
	"github.com/aaronzipp/grimoire/internal/models"
	"github.com/aaronzipp/grimoire/internal/render"
	"github.com/aaronzipp/grimoire/internal/snapshot"
)

type statusRequest struct {
	Status models.LifeStatus `json:"status"`
}

type noteRequest struct {
	Note string `json:"note"`
}

type actionRequest struct {
	Type    string         `json:"type"`
	Target  *int           `json:"target"`
	Payload map[string]any `json:"payload"`
}

type nominateRequest struct {
	NomineeSeat   int `json:"nominee_seat"`
	NominatorSeat int `json:"nominator_seat"`
}

type totalRequest struct {
	Total *int `json:"total"`
}

type voteRequest struct {
	NominationID string `json:"nomination_id"`
	PlayerID     string `json:"player_id"`
	Value        bool   `json:"value"`
}

type executionRequest struct {
	NominationID string `json:"nomination_id"`
	ExecutedSeat *int   `json:"executed_seat"`
	TargetDead   *bool  `json:"target_dead"`
}

// HandlePlayerStatus sets a player's life status
func (ctx *Context) HandlePlayerStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := ctx.principal(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !decode(w, r, &req) {
		return
	}
	status, err := ctx.Service.SetPlayerStatus(p, r.PathValue("pid"), req.Status)
	if err != nil {
		ctx.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, map[string]models.LifeStatus{"status": status})
}

// HandlePlayerNote sets the host's private note on a player
func (ctx *Context) HandlePlayerNote(w http.ResponseWriter, r *http.Request) {
	p, ok := ctx.principal(w, r)
	if !ok {
		return
	}
	var req noteRequest
	if !decode(w, r, &req) {
		return
	}
	note, err := ctx.Service.SetPlayerNote(p, r.PathValue("pid"), req.Note)
	if err != nil {
		ctx.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, map[string]string{"note": note})
}

// HandleRecordAction stores a night action for the caller
func (ctx *Context) HandleRecordAction(w http.ResponseWriter, r *http.Request) {
	p, ok := ctx.principal(w, r)
	if !ok {
		return
	}
	var req actionRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := ctx.Service.RecordAction(p, game.ActionInput{Type: req.Type, Target: req.Target, Payload: req.Payload})
	if err != nil {
		ctx.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, map[string]string{"action_id": id})
}

// HandleNominate records a nomination for the current day
func (ctx *Context) HandleNominate(w http.ResponseWriter, r *http.Request) {
	p, ok := ctx.principal(w, r)
	if !ok {
		return
	}
	var req nominateRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := ctx.Service.Nominate(p, req.NomineeSeat, req.NominatorSeat)
	if err != nil {
		ctx.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, map[string]string{"nomination_id": id})
}

// HandleStartVote opens voting on a nomination
func (ctx *Context) HandleStartVote(w http.ResponseWriter, r *http.Request) {
	p, ok := ctx.principal(w, r)
	if !ok {
		return
	}
	if err := ctx.Service.StartVote(p, r.PathValue("nid")); err != nil {
		ctx.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRevertNomination removes a nomination and its ballots
func (ctx *Context) HandleRevertNomination(w http.ResponseWriter, r *http.Request) {
	p, ok := ctx.principal(w, r)
	if !ok {
		return
	}
	if err := ctx.Service.RevertNomination(p, r.PathValue("nid")); err != nil {
		ctx.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleNominationTotal overrides or clears a nomination's vote total
func (ctx *Context) HandleNominationTotal(w http.ResponseWriter, r *http.Request) {
	p, ok := ctx.principal(w, r)
	if !ok {
		return
	}
	var req totalRequest
	if !decode(w, r, &req) {
		return
	}
	if err := ctx.Service.UpdateNominationTotal(p, r.PathValue("nid"), req.Total); err != nil {
		ctx.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleCastVote records a ballot for the caller, or for any player when the caller is the host
func (ctx *Context) HandleCastVote(w http.ResponseWriter, r *http.Request) {
	p, ok := ctx.principal(w, r)
	if !ok {
		return
	}
	var req voteRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := ctx.Service.CastVote(p, req.NominationID, req.PlayerID, req.Value)
	if err != nil {
		ctx.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, map[string]string{"vote_id": id})
}

// HandleRecordExecution stores the current day's execution
func (ctx *Context) HandleRecordExecution(w http.ResponseWriter, r *http.Request) {
	p, ok := ctx.principal(w, r)
	if !ok {
		return
	}
	var req executionRequest
	if !decode(w, r, &req) {
		return
	}
	record, err := ctx.Service.RecordExecution(p, req.NominationID, req.ExecutedSeat, req.TargetDead)
	if err != nil {
		ctx.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, snapshot.NewExecutionView(record))
}
