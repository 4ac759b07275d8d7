package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/aaronzipp/grimoire/internal/service"
	"github.com/aaronzipp/grimoire/internal/sse"
)

// Context holds shared application dependencies
type Context struct {
	Service       *service.Service
	Hub           *sse.Hub
	Log           zerolog.Logger
	PublicBaseURL string
	Upgrader      websocket.Upgrader
}

// New builds the handler context
func New(svc *service.Service, hub *sse.Hub, log zerolog.Logger, publicBaseURL string) *Context {
	return &Context{
		Service:       svc,
		Hub:           hub,
		Log:           log.With().Str("component", "http").Logger(),
		PublicBaseURL: publicBaseURL,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Routes registers every route and wraps them in the standard middleware
func (ctx *Context) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", ctx.HandleHealth)

	// Rooms and seating
	mux.HandleFunc("POST /api/rooms", ctx.HandleCreateRoom)
	mux.HandleFunc("GET /api/rooms/scripts", ctx.HandleListScripts)
	mux.HandleFunc("POST /api/rooms/join", ctx.HandleJoinByCode)
	mux.HandleFunc("GET /api/rooms/{id}", ctx.HandleRoomInfo)
	mux.HandleFunc("POST /api/rooms/{id}/join", ctx.HandleJoinRoom)
	mux.HandleFunc("POST /api/rooms/{id}/seat", ctx.HandleUpdateSeat)
	mux.HandleFunc("GET /api/rooms/{id}/state", ctx.HandleState)
	mux.HandleFunc("GET /api/rooms/{id}/join-qr", ctx.HandleJoinQR)

	// Game lifecycle
	mux.HandleFunc("POST /api/rooms/{id}/assign", ctx.HandleAssignRoles)
	mux.HandleFunc("POST /api/rooms/{id}/phase", ctx.HandleChangePhase)
	mux.HandleFunc("POST /api/rooms/{id}/reset", ctx.HandleResetRoom)
	mux.HandleFunc("POST /api/rooms/{id}/result", ctx.HandleSetResult)
	mux.HandleFunc("POST /api/rooms/{id}/players/{pid}/status", ctx.HandlePlayerStatus)
	mux.HandleFunc("POST /api/rooms/{id}/players/{pid}/note", ctx.HandlePlayerNote)
	mux.HandleFunc("POST /api/rooms/{id}/action", ctx.HandleRecordAction)

	// Nominations and voting
	mux.HandleFunc("POST /api/rooms/{id}/nominate", ctx.HandleNominate)
	mux.HandleFunc("POST /api/rooms/{id}/nominations/{nid}/start", ctx.HandleStartVote)
	mux.HandleFunc("POST /api/rooms/{id}/nominations/{nid}/revert", ctx.HandleRevertNomination)
	mux.HandleFunc("POST /api/rooms/{id}/nominations/{nid}/total", ctx.HandleNominationTotal)
	mux.HandleFunc("POST /api/rooms/{id}/vote", ctx.HandleCastVote)
	mux.HandleFunc("POST /api/rooms/{id}/execution", ctx.HandleRecordExecution)

	// Results and logs
	mux.HandleFunc("GET /api/rooms/{id}/logs", ctx.HandleLogs)
	mux.HandleFunc("POST /api/rooms/{id}/export", ctx.HandleExport)
	mux.HandleFunc("GET /api/history", ctx.HandleHistory)

	// Live updates
	mux.HandleFunc("GET /api/rooms/{id}/events", ctx.HandleSSE)
	mux.HandleFunc("GET /api/rooms/{id}/ws", ctx.HandleWebSocket)

	return Chain(mux, ctx.RecoverPanic(), ctx.RequestID(), ctx.LogRequests())
}

// HandleHealth reports that the process is serving
func (ctx *Context) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
