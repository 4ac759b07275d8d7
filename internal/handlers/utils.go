package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/aaronzipp/grimoire/internal/models"
	"github.com/aaronzipp/grimoire/internal/render"
)

const (
	// SessionCookie carries the caller's player id
	SessionCookie = "player_id"
	maxBodyBytes  = 1 << 20
)

// setSession remembers the player id in the session cookie
func setSession(w http.ResponseWriter, playerID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    playerID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true, // enable when serving over HTTPS
	})
}

// principal resolves the session cookie against the room in the path.
// On failure the error response has already been written.
func (ctx *Context) principal(w http.ResponseWriter, r *http.Request) (models.Principal, bool) {
	roomID := r.PathValue("id")
	var playerID string
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		playerID = cookie.Value
	}
	p, err := ctx.Service.ResolvePrincipal(roomID, playerID)
	if err != nil {
		render.Error(w, err)
		return models.Principal{}, false
	}
	return p, true
}

// decode reads a JSON body into v. An empty body leaves v untouched.
// On failure the error response has already been written.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		render.BadRequest(w, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// fail writes err and logs it when it is not a domain error
func (ctx *Context) fail(w http.ResponseWriter, r *http.Request, err error) {
	if render.StatusOf(err) == http.StatusInternalServerError {
		ctx.Log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	render.Error(w, err)
}
