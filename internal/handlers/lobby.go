package handlers

import (
	"net/http"

	"github.com/aaronzipp/grimoire/internal/render"
	"github.com/aaronzipp/grimoire/internal/service"
)

type createRoomRequest struct {
	HostName   string `json:"host_name"`
	HostUserID string `json:"host_user_id"`
	ScriptID   string `json:"script_id"`
}

type joinRequest struct {
	JoinCode string `json:"join_code"`
	Name     string `json:"name"`
	UserID   string `json:"user_id"`
}

type seatRequest struct {
	PlayerID string `json:"player_id"`
	Seat     int    `json:"seat"`
}

// HandleCreateRoom creates a room and makes the caller its host
func (ctx *Context) HandleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if !decode(w, r, &req) {
		return
	}
	info, err := ctx.Service.CreateRoom(service.CreateRoomRequest{
		HostName:   req.HostName,
		HostUserID: req.HostUserID,
		ScriptID:   req.ScriptID,
	})
	if err != nil {
		ctx.fail(w, r, err)
		return
	}
	setSession(w, info.HostPlayerID)
	render.JSON(w, http.StatusCreated, info)
}

// HandleListScripts lists the built-in scripts
func (ctx *Context) HandleListScripts(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, http.StatusOK, map[string]any{"scripts": ctx.Service.ListScripts()})
}

// HandleJoinByCode adds the caller to the room with the given join code
func (ctx *Context) HandleJoinByCode(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := ctx.Service.JoinByCode(req.JoinCode, req.Name, req.UserID)
	if err != nil {
		ctx.fail(w, r, err)
		return
	}
	setSession(w, res.PlayerID)
	render.JSON(w, http.StatusOK, res)
}

// HandleJoinRoom adds the caller to the room in the path after checking the join code
func (ctx *Context) HandleJoinRoom(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := ctx.Service.JoinRoom(r.PathValue("id"), req.JoinCode, req.Name, req.UserID)
	if err != nil {
		ctx.fail(w, r, err)
		return
	}
	setSession(w, res.PlayerID)
	render.JSON(w, http.StatusOK, res)
}

// HandleRoomInfo returns the room's codes to its host
func (ctx *Context) HandleRoomInfo(w http.ResponseWriter, r *http.Request) {
	p, ok := ctx.principal(w, r)
	if !ok {
		return
	}
	info, err := ctx.Service.RoomInfo(p)
	if err != nil {
		ctx.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, info)
}

// HandleUpdateSeat moves the caller, or any player when the caller is the host
func (ctx *Context) HandleUpdateSeat(w http.ResponseWriter, r *http.Request) {
	p, ok := ctx.principal(w, r)
	if !ok {
		return
	}
	var req seatRequest
	if !decode(w, r, &req) {
		return
	}
	seat, err := ctx.Service.UpdateSeat(p, req.PlayerID, req.Seat)
	if err != nil {
		ctx.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, map[string]int{"seat": seat})
}

// HandleState returns the room as the caller is allowed to see it
func (ctx *Context) HandleState(w http.ResponseWriter, r *http.Request) {
	p, ok := ctx.principal(w, r)
	if !ok {
		return
	}
	view, err := ctx.Service.Snapshot(p.RoomID, p)
	if err != nil {
		ctx.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, view)
}

// HandleJoinQR renders the public join link as a PNG QR code for the host
func (ctx *Context) HandleJoinQR(w http.ResponseWriter, r *http.Request) {
	p, ok := ctx.principal(w, r)
	if !ok {
		return
	}
	info, err := ctx.Service.RoomInfo(p)
	if err != nil {
		ctx.fail(w, r, err)
		return
	}
	png, err := render.QRCodePNG(render.JoinURL(ctx.PublicBaseURL, info.JoinCode), render.QRSize)
	if err != nil {
		ctx.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
