package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/aaronzipp/grimoire/internal/render"
)

// HandleLogs returns the room's audit log to the host
func (ctx *Context) HandleLogs(w http.ResponseWriter, r *http.Request) {
	p, ok := ctx.principal(w, r)
	if !ok {
		return
	}
	export, err := ctx.Service.Export(p)
	if err != nil {
		ctx.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, map[string]any{"logs": export.Logs})
}

// HandleExport returns the room header and full log as a download
func (ctx *Context) HandleExport(w http.ResponseWriter, r *http.Request) {
	p, ok := ctx.principal(w, r)
	if !ok {
		return
	}
	export, err := ctx.Service.Export(p)
	if err != nil {
		ctx.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "room-"+export.Room.ID+".json"))
	render.JSON(w, http.StatusOK, export)
}

// HandleHistory lists archived games, newest first
func (ctx *Context) HandleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			render.BadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	records, err := ctx.Service.History(r.Context(), limit)
	if err != nil {
		ctx.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, map[string]any{"games": records})
}
