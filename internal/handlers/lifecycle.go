package handlers

import (
	"net/http"

	"github.com/aaronzipp/grimoire/internal/game"
	"github.com/aaronzipp/grimoire/internal/models"
	"github.com/aaronzipp/grimoire/internal/render"
)

type assignRequest struct {
	Seed        string                        `json:"seed"`
	Assignments map[int]models.RoleAssignment `json:"assignments"`
	Finalize    bool                          `json:"finalize"`
}

type phaseRequest struct {
	Phase models.Phase `json:"phase"`
}

type resultRequest struct {
	Result *models.GameResult `json:"result"`
}

// HandleAssignRoles generates, stages or finalizes role assignments
func (ctx *Context) HandleAssignRoles(w http.ResponseWriter, r *http.Request) {
	p, ok := ctx.principal(w, r)
	if !ok {
		return
	}
	var req assignRequest
	if !decode(w, r, &req) {
		return
	}
	assignments, err := ctx.Service.AssignRoles(p, game.AssignRequest{
		Seed:        req.Seed,
		Assignments: req.Assignments,
		Finalize:    req.Finalize,
	})
	if err != nil {
		ctx.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, map[string]any{"assignments": assignments})
}

// HandleChangePhase moves the room to another phase
func (ctx *Context) HandleChangePhase(w http.ResponseWriter, r *http.Request) {
	p, ok := ctx.principal(w, r)
	if !ok {
		return
	}
	var req phaseRequest
	if !decode(w, r, &req) {
		return
	}
	phase, err := ctx.Service.ChangePhase(p, req.Phase)
	if err != nil {
		ctx.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, map[string]models.Phase{"phase": phase})
}

// HandleResetRoom clears the round and returns the room to the lobby
func (ctx *Context) HandleResetRoom(w http.ResponseWriter, r *http.Request) {
	p, ok := ctx.principal(w, r)
	if !ok {
		return
	}
	if err := ctx.Service.ResetRoom(p); err != nil {
		ctx.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetResult sets or clears the game result
func (ctx *Context) HandleSetResult(w http.ResponseWriter, r *http.Request) {
	p, ok := ctx.principal(w, r)
	if !ok {
		return
	}
	var req resultRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := ctx.Service.SetGameResult(r.Context(), p, req.Result)
	if err != nil {
		ctx.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, map[string]*models.GameResult{"result": result})
}
