package handlers

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronzipp/grimoire/internal/game"
	"github.com/aaronzipp/grimoire/internal/history"
	"github.com/aaronzipp/grimoire/internal/render"
	"github.com/aaronzipp/grimoire/internal/script"
	"github.com/aaronzipp/grimoire/internal/service"
	"github.com/aaronzipp/grimoire/internal/snapshot"
	"github.com/aaronzipp/grimoire/internal/sse"
	"github.com/aaronzipp/grimoire/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	hs, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = hs.Close() })

	hub := sse.NewHub(zerolog.Nop(), time.Second)
	svc := service.New(store.NewRoomStore(), game.NewEngine(script.MustLoadBuiltin()), hub, hs, zerolog.Nop())
	hub.SetSource(svc)

	srv := httptest.NewServer(New(svc, hub, zerolog.Nop(), "http://grimoire.test").Routes())
	t.Cleanup(srv.Close)
	return srv
}

// apiClient is one browser: it keeps its own session cookie
type apiClient struct {
	t        *testing.T
	base     string
	http     *http.Client
	playerID string
}

func newClient(t *testing.T, srv *httptest.Server) *apiClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &apiClient{t: t, base: srv.URL, http: &http.Client{Jar: jar, Timeout: 5 * time.Second}}
}

func (c *apiClient) do(method, path string, body any) (*http.Response, []byte) {
	c.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, data
}

// call sends a request, checks the status and decodes the body into out when given
func (c *apiClient) call(method, path string, body any, want int, out any) {
	c.t.Helper()
	resp, data := c.do(method, path, body)
	require.Equal(c.t, want, resp.StatusCode, "%s %s: %s", method, path, data)
	if out != nil {
		require.NoError(c.t, json.Unmarshal(data, out))
	}
}

func (c *apiClient) errorCode(method, path string, body any, want int) string {
	c.t.Helper()
	resp, data := c.do(method, path, body)
	require.Equal(c.t, want, resp.StatusCode, "%s %s: %s", method, path, data)
	var e render.ErrorBody
	require.NoError(c.t, json.Unmarshal(data, &e))
	return e.Error.Code
}

func (c *apiClient) state(roomID string) snapshot.View {
	c.t.Helper()
	var view snapshot.View
	c.call(http.MethodGet, "/api/rooms/"+roomID+"/state", nil, http.StatusOK, &view)
	return view
}

type table struct {
	srv     *httptest.Server
	host    *apiClient
	info    service.RoomInfo
	players []*apiClient
}

func newTable(t *testing.T, n int) table {
	t.Helper()
	srv := newTestServer(t)
	host := newClient(t, srv)
	var info service.RoomInfo
	host.call(http.MethodPost, "/api/rooms", map[string]string{"host_name": "Host"}, http.StatusCreated, &info)
	host.playerID = info.HostPlayerID

	players := make([]*apiClient, 0, n)
	for i := range n {
		c := newClient(t, srv)
		var res service.JoinResult
		c.call(http.MethodPost, "/api/rooms/join", map[string]string{"join_code": info.JoinCode, "name": fmt.Sprintf("P%d", i+1)}, http.StatusOK, &res)
		require.Equal(t, i+1, res.Seat)
		c.playerID = res.PlayerID
		players = append(players, c)
	}
	return table{srv: srv, host: host, info: info, players: players}
}

func TestCreateAndJoin(t *testing.T) {
	tb := newTable(t, 2)
	roomID := tb.info.RoomID

	assert.Equal(t, script.DefaultScriptID, tb.info.ScriptID)
	assert.NotEmpty(t, tb.info.JoinCode)

	var info service.RoomInfo
	tb.host.call(http.MethodGet, "/api/rooms/"+roomID, nil, http.StatusOK, &info)
	assert.Equal(t, tb.info.JoinCode, info.JoinCode)

	hostView := tb.host.state(roomID)
	assert.Equal(t, "host", hostView.Viewer.Role)
	assert.Equal(t, tb.info.JoinCode, hostView.Room.JoinCode)

	playerView := tb.players[0].state(roomID)
	assert.Equal(t, "player", playerView.Viewer.Role)
	assert.Equal(t, 1, playerView.Viewer.Seat)
	assert.Empty(t, playerView.Room.JoinCode)

	// joining by room id needs the right code
	late := newClient(t, tb.srv)
	code := late.errorCode(http.MethodPost, "/api/rooms/"+roomID+"/join", map[string]string{"join_code": "nope", "name": "Late"}, http.StatusForbidden)
	assert.Equal(t, string(game.CodeInvalidJoinCode), code)
	var res service.JoinResult
	late.call(http.MethodPost, "/api/rooms/"+roomID+"/join", map[string]string{"join_code": tb.info.JoinCode, "name": "Late"}, http.StatusOK, &res)
	assert.Equal(t, 3, res.Seat)
}

func TestListScripts(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t, srv)
	var body struct {
		Scripts []script.Summary `json:"scripts"`
	}
	c.call(http.MethodGet, "/api/rooms/scripts", nil, http.StatusOK, &body)
	assert.Len(t, body.Scripts, 2)
}

func TestErrorResponses(t *testing.T) {
	tb := newTable(t, 5)
	roomID := tb.info.RoomID
	anon := newClient(t, tb.srv)

	tests := []struct {
		name   string
		client *apiClient
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"unknown room", tb.host, http.MethodGet, "/api/rooms/missing/state", nil, http.StatusNotFound, string(game.CodeRoomNotFound)},
		{"unknown join code", anon, http.MethodPost, "/api/rooms/join", map[string]string{"join_code": "zzz", "name": "X"}, http.StatusNotFound, string(game.CodeInvalidJoinCode)},
		{"player changes phase", tb.players[0], http.MethodPost, "/api/rooms/" + roomID + "/phase", map[string]string{"phase": "night"}, http.StatusForbidden, string(game.CodeHostOnly)},
		{"anonymous seat change", anon, http.MethodPost, "/api/rooms/" + roomID + "/seat", map[string]int{"seat": 2}, http.StatusForbidden, string(game.CodeNotInRoom)},
		{"unknown phase", tb.host, http.MethodPost, "/api/rooms/" + roomID + "/phase", map[string]string{"phase": "noon"}, http.StatusBadRequest, string(game.CodeInvalidPhase)},
		{"malformed body", tb.host, http.MethodPost, "/api/rooms/" + roomID + "/phase", "{", http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown field", tb.host, http.MethodPost, "/api/rooms/" + roomID + "/phase", map[string]string{"stage": "day"}, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown nomination", tb.host, http.MethodPost, "/api/rooms/" + roomID + "/nominations/nope/start", nil, http.StatusNotFound, string(game.CodeNominationNotFound)},
		{"player reads logs", tb.players[1], http.MethodGet, "/api/rooms/" + roomID + "/logs", nil, http.StatusForbidden, string(game.CodeHostOnly)},
		{"bad history limit", anon, http.MethodGet, "/api/history?limit=-1", nil, http.StatusBadRequest, "BAD_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.client.errorCode(tt.method, tt.path, tt.body, tt.status))
		})
	}
}

func TestSeatChange(t *testing.T) {
	tb := newTable(t, 3)
	roomID := tb.info.RoomID

	var body map[string]int
	tb.players[0].call(http.MethodPost, "/api/rooms/"+roomID+"/seat", map[string]int{"seat": 7}, http.StatusOK, &body)
	assert.Equal(t, 7, body["seat"])

	tb.host.call(http.MethodPost, "/api/rooms/"+roomID+"/seat", map[string]any{"player_id": tb.players[0].playerID, "seat": 1}, http.StatusOK, &body)
	assert.Equal(t, 1, body["seat"])
}

func TestGameFlow(t *testing.T) {
	tb := newTable(t, 5)
	roomID := tb.info.RoomID
	base := "/api/rooms/" + roomID

	var assigned struct {
		Assignments map[int]json.RawMessage `json:"assignments"`
	}
	tb.host.call(http.MethodPost, base+"/assign", map[string]string{"seed": "http-flow"}, http.StatusOK, &assigned)
	assert.Len(t, assigned.Assignments, 5)
	tb.host.call(http.MethodPost, base+"/assign", map[string]bool{"finalize": true}, http.StatusOK, &assigned)

	tb.host.call(http.MethodPost, base+"/phase", map[string]string{"phase": "night"}, http.StatusOK, nil)
	var action map[string]string
	tb.players[0].call(http.MethodPost, base+"/action", map[string]any{"type": "poison", "target": 2}, http.StatusCreated, &action)
	assert.NotEmpty(t, action["action_id"])

	var phase map[string]string
	tb.host.call(http.MethodPost, base+"/phase", map[string]string{"phase": "day"}, http.StatusOK, &phase)
	assert.Equal(t, "day", phase["phase"])

	var note map[string]string
	tb.host.call(http.MethodPost, base+"/players/"+tb.players[1].playerID+"/note", map[string]string{"note": "  claims chef "}, http.StatusOK, &note)
	assert.Equal(t, "claims chef", note["note"])

	var nom map[string]string
	tb.host.call(http.MethodPost, base+"/nominate", map[string]int{"nominee_seat": 3, "nominator_seat": 1}, http.StatusCreated, &nom)
	nomID := nom["nomination_id"]
	require.NotEmpty(t, nomID)

	tb.host.call(http.MethodPost, base+"/nominations/"+nomID+"/start", nil, http.StatusNoContent, nil)

	// out of turn
	code := tb.players[0].errorCode(http.MethodPost, base+"/vote", map[string]any{"nomination_id": nomID, "value": true}, http.StatusBadRequest)
	assert.Equal(t, string(game.CodeVoteOutOfTurn), code)

	for _, seat := range []int{4, 5, 1, 2, 3} {
		var vote map[string]string
		tb.players[seat-1].call(http.MethodPost, base+"/vote", map[string]any{"nomination_id": nomID, "value": seat%2 == 0}, http.StatusCreated, &vote)
		assert.NotEmpty(t, vote["vote_id"])
	}
	view := tb.players[0].state(roomID)
	require.NotNil(t, view.VoteSession)
	assert.True(t, view.VoteSession.Finished)

	var exec snapshot.ExecutionView
	tb.host.call(http.MethodPost, base+"/execution", map[string]any{"nomination_id": nomID, "executed_seat": 3}, http.StatusOK, &exec)
	assert.Equal(t, 2, exec.VotesFor)
	assert.Equal(t, 5, exec.AliveCount)
	require.NotNil(t, exec.Executed)
	assert.Equal(t, 3, *exec.Executed)

	var status map[string]string
	tb.host.call(http.MethodPost, base+"/players/"+tb.players[2].playerID+"/status", map[string]string{"status": "dead_vote"}, http.StatusOK, &status)
	assert.Equal(t, "dead_vote", status["status"])

	tb.host.call(http.MethodPost, base+"/nominations/"+nomID+"/total", map[string]int{"total": 4}, http.StatusNoContent, nil)

	var result map[string]*string
	tb.host.call(http.MethodPost, base+"/result", map[string]string{"result": "red"}, http.StatusOK, &result)
	require.NotNil(t, result["result"])
	assert.Equal(t, "red", *result["result"])

	var games struct {
		Games []history.Record `json:"games"`
	}
	tb.host.call(http.MethodGet, "/api/history?limit=5", nil, http.StatusOK, &games)
	require.Len(t, games.Games, 1)
	assert.Equal(t, roomID, games.Games[0].RoomID)
	assert.Equal(t, "red", games.Games[0].Result)

	var logs struct {
		Logs []json.RawMessage `json:"logs"`
	}
	tb.host.call(http.MethodGet, base+"/logs", nil, http.StatusOK, &logs)
	assert.NotEmpty(t, logs.Logs)

	resp, data := tb.host.do(http.MethodPost, base+"/export", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "room-"+roomID+".json")
	var export snapshot.Export
	require.NoError(t, json.Unmarshal(data, &export))
	assert.Equal(t, roomID, export.Room.ID)
	assert.Len(t, export.Logs, len(logs.Logs))

	tb.host.call(http.MethodPost, base+"/reset", nil, http.StatusNoContent, nil)
	view = tb.host.state(roomID)
	assert.Equal(t, "lobby", string(view.Room.Phase))
	assert.Equal(t, 1, view.Room.Day)
	assert.Empty(t, view.Nominations)
}

func TestRevertNomination(t *testing.T) {
	tb := newTable(t, 5)
	base := "/api/rooms/" + tb.info.RoomID

	tb.host.call(http.MethodPost, base+"/assign", nil, http.StatusOK, nil)
	tb.host.call(http.MethodPost, base+"/assign", map[string]bool{"finalize": true}, http.StatusOK, nil)
	tb.host.call(http.MethodPost, base+"/phase", map[string]string{"phase": "day"}, http.StatusOK, nil)

	var nom map[string]string
	tb.host.call(http.MethodPost, base+"/nominate", map[string]int{"nominee_seat": 2, "nominator_seat": 5}, http.StatusCreated, &nom)
	require.Len(t, tb.host.state(tb.info.RoomID).Nominations, 1)

	tb.host.call(http.MethodPost, base+"/nominations/"+nom["nomination_id"]+"/revert", nil, http.StatusNoContent, nil)
	assert.Empty(t, tb.host.state(tb.info.RoomID).Nominations)
}

func TestJoinQR(t *testing.T) {
	tb := newTable(t, 1)
	path := "/api/rooms/" + tb.info.RoomID + "/join-qr"

	resp, data := tb.host.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))

	assert.Equal(t, string(game.CodeHostOnly), tb.players[0].errorCode(http.MethodGet, path, nil, http.StatusForbidden))
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, data := newClient(t, srv).do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(data))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

type sseEvent struct {
	name string
	data string
}

// readEvent returns the next event on the stream, skipping comments
func readEvent(t *testing.T, r *bufio.Reader) sseEvent {
	t.Helper()
	ch := make(chan sseEvent, 1)
	errs := make(chan error, 1)
	go func() {
		var ev sseEvent
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				errs <- err
				return
			}
			line = strings.TrimRight(line, "\n")
			switch {
			case line == "":
				if ev.name != "" {
					ch <- ev
					return
				}
			case strings.HasPrefix(line, ":"):
			case strings.HasPrefix(line, "event: "):
				ev.name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				ev.data = strings.TrimPrefix(line, "data: ")
			}
		}
	}()
	select {
	case ev := <-ch:
		return ev
	case err := <-errs:
		t.Fatalf("reading event: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return sseEvent{}
}

func TestSSEStream(t *testing.T) {
	tb := newTable(t, 2)
	roomID := tb.info.RoomID
	player := tb.players[0]

	req, err := http.NewRequest(http.MethodGet, tb.srv.URL+"/api/rooms/"+roomID+"/events", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: player.playerID})
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	reader := bufio.NewReader(resp.Body)

	ev := readEvent(t, reader)
	assert.Equal(t, sse.EventSnapshot, ev.name)
	var view snapshot.View
	require.NoError(t, json.Unmarshal([]byte(ev.data), &view))
	assert.Equal(t, player.playerID, view.Viewer.PlayerID)

	// a host-only change still reaches every listener, redacted
	tb.host.call(http.MethodPost, "/api/rooms/"+roomID+"/players/"+tb.players[1].playerID+"/note", map[string]string{"note": "suspicious"}, http.StatusOK, nil)
	ev = readEvent(t, reader)
	assert.Equal(t, sse.EventSnapshot, ev.name)
	assert.NotContains(t, ev.data, "suspicious")
}
