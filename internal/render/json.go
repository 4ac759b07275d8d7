package render

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aaronzipp/grimoire/internal/game"
)

// ErrorBody is the JSON shape of every error response
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the machine code and a readable message
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JSON writes v with the given status
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes err as a JSON error body. Engine errors map to 404/400/403 by kind.
func Error(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	detail := ErrorDetail{Code: "INTERNAL", Message: "internal error"}
	var gerr *game.Error
	if errors.As(err, &gerr) {
		detail = ErrorDetail{Code: string(gerr.Code), Message: gerr.Message}
	}
	JSON(w, status, ErrorBody{Error: detail})
}

// BadRequest writes a validation error for a malformed request body
func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, ErrorBody{Error: ErrorDetail{Code: "BAD_REQUEST", Message: message}})
}

// StatusOf maps an error to an HTTP status code
func StatusOf(err error) int {
	switch game.KindOf(err) {
	case game.KindNotFound:
		return http.StatusNotFound
	case game.KindValidation:
		return http.StatusBadRequest
	case game.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
