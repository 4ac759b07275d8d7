package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aaronzipp/grimoire/internal/sse"
)

const (
	wsPongWait   = time.Minute
	wsPingPeriod = wsPongWait * 9 / 10
	wsWriteWait  = 10 * time.Second
)

// wsMessage is the envelope for every frame in both directions
type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

const wsRequestSnapshot = "request_snapshot"

// HandleWebSocket streams the caller's room snapshot over a websocket.
// A {"type":"request_snapshot"} frame from the client triggers an immediate resend.
func (ctx *Context) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	p, ok := ctx.principal(w, r)
	if !ok {
		return
	}
	conn, err := ctx.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied
		ctx.Log.Warn().Err(err).Str("room_id", p.RoomID).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	client := ctx.Hub.AddClient(p.RoomID, p)
	defer ctx.Hub.RemoveClient(client)
	ctx.Log.Debug().Str("room_id", p.RoomID).Str("player_id", p.PlayerID).Msg("websocket client connected")

	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	done := make(chan struct{})
	go ctx.readWebSocket(conn, client, done)

	// Initial snapshot
	ctx.Hub.Send(client)

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			ctx.Log.Debug().Str("room_id", p.RoomID).Str("player_id", p.PlayerID).Msg("websocket client disconnected")
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case msg := <-client.Messages():
			frame, err := json.Marshal(wsMessage{Type: msg.Event, Data: msg.Data})
			if err != nil {
				ctx.Log.Error().Err(err).Msg("encode websocket frame")
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				ctx.Log.Debug().Err(err).Str("room_id", p.RoomID).Msg("websocket write failed")
				return
			}
		}
	}
}

// readWebSocket handles client frames until the connection fails, then closes done
func (ctx *Context) readWebSocket(conn *websocket.Conn, client *sse.Client, done chan<- struct{}) {
	defer close(done)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				ctx.Log.Debug().Err(err).Str("room_id", client.RoomID).Msg("websocket read failed")
			}
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type == wsRequestSnapshot {
			ctx.Hub.Send(client)
		}
	}
}
