package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/aaronzipp/grimoire/internal/render"
)

// sseKeepAlive is how often an idle stream gets a comment line
const sseKeepAlive = 25 * time.Second

// HandleSSE streams the caller's room snapshot as Server-Sent Events
func (ctx *Context) HandleSSE(w http.ResponseWriter, r *http.Request) {
	p, ok := ctx.principal(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		render.JSON(w, http.StatusInternalServerError, render.ErrorBody{Error: render.ErrorDetail{Code: "INTERNAL", Message: "streaming unsupported"}})
		return
	}

	// Set headers for SSE
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable buffering in nginx/proxies
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	client := ctx.Hub.AddClient(p.RoomID, p)
	defer ctx.Hub.RemoveClient(client)
	ctx.Log.Debug().Str("room_id", p.RoomID).Str("player_id", p.PlayerID).Int("clients", ctx.Hub.ClientCount(p.RoomID)).Msg("sse client connected")

	// Initial snapshot
	ctx.Hub.Send(client)

	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()

	reqCtx := r.Context()
	for {
		select {
		case <-reqCtx.Done():
			ctx.Log.Debug().Str("room_id", p.RoomID).Str("player_id", p.PlayerID).Msg("sse client disconnected")
			return
		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case msg := <-client.Messages():
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, msg.Data)
			flusher.Flush()
		}
	}
}
