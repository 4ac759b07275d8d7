package game

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error for the transport layer
type Kind string

const (
	KindNotFound   Kind = "NOT_FOUND"
	KindValidation Kind = "VALIDATION"
	KindForbidden  Kind = "FORBIDDEN"
)

// Code is a machine-readable error code
type Code string

const (
	CodeRoomNotFound       Code = "ROOM_NOT_FOUND"
	CodePlayerNotFound     Code = "PLAYER_NOT_FOUND"
	CodeNominationNotFound Code = "NOMINATION_NOT_FOUND"
	CodeScriptNotFound     Code = "SCRIPT_NOT_FOUND"
	CodeInvalidJoinCode    Code = "INVALID_JOIN_CODE"

	CodeInvalidName          Code = "INVALID_NAME"
	CodeInvalidSeat          Code = "INVALID_SEAT"
	CodeSeatChangeLocked     Code = "SEAT_CHANGE_LOCKED"
	CodeNoPlayers            Code = "NO_PLAYERS"
	CodeSeatDuplicate        Code = "SEAT_DUPLICATE"
	CodeSeatNotContiguous    Code = "SEAT_NOT_CONTIGUOUS"
	CodeInvalidPhase         Code = "INVALID_PHASE"
	CodeInvalidStatus        Code = "INVALID_STATUS"
	CodeUnknownRole          Code = "UNKNOWN_ROLE"
	CodeUnknownSlot          Code = "UNKNOWN_ATTACHMENT_SLOT"
	CodeSlotIndexOutOfRange  Code = "ATTACHMENT_INDEX_OUT_OF_RANGE"
	CodeSlotTeamMismatch     Code = "ATTACHMENT_TEAM_MISMATCH"
	CodeSlotDuplicate        Code = "ATTACHMENT_DUPLICATE"
	CodeSlotIncomplete       Code = "ATTACHMENT_INCOMPLETE"
	CodeNotEnoughRoles       Code = "NOT_ENOUGH_ROLES"
	CodeNothingToFinalize    Code = "NOTHING_TO_FINALIZE"
	CodeNominationLimit      Code = "NOMINATION_LIMIT"
	CodeNominationWrongDay   Code = "NOMINATION_WRONG_DAY"
	CodeNoActiveVote         Code = "NO_ACTIVE_VOTE"
	CodeVoteFinished         Code = "VOTE_FINISHED"
	CodeVoteOutOfTurn        Code = "VOTE_OUT_OF_TURN"
	CodeVoterIneligible      Code = "VOTER_INELIGIBLE"
	CodeUnsupportedResult    Code = "UNSUPPORTED_RESULT"
	CodeNotYourSeat          Code = "NOT_YOUR_SEAT"
	CodeInvalidActionRequest Code = "INVALID_ACTION"
	CodeInvalidTotal         Code = "INVALID_VOTE_TOTAL"
	CodeInvalidNote          Code = "INVALID_NOTE"
	CodeHostOnly             Code = "HOST_ONLY"
	CodeNotInRoom            Code = "NOT_IN_ROOM"
)

// Error is the engine's typed error. It carries a human-readable reason.
type Error struct {
	Kind     Kind
	Code     Code
	Message  string
	Metadata map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is matches by code when the target names one, otherwise by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" {
		return e.Code == t.Code
	}
	return t.Kind != "" && e.Kind == t.Kind
}

var (
	// ErrNotFound matches every not-found error
	ErrNotFound = &Error{Kind: KindNotFound}
	// ErrValidation matches every validation error
	ErrValidation = &Error{Kind: KindValidation}
	// ErrForbidden matches every permission error
	ErrForbidden = &Error{Kind: KindForbidden}
)

func notFound(code Code, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: fmt.Sprintf(format, args...)}
}

func invalid(code Code, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

func forbidden(code Code, format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewNotFound builds a not-found error for callers outside the engine (the registry)
func NewNotFound(code Code, format string, args ...any) *Error {
	return notFound(code, format, args...)
}

// NewForbidden builds a permission error for the service layer
func NewForbidden(code Code, format string, args ...any) *Error {
	return forbidden(code, format, args...)
}

// NewInvalid builds a validation error for callers outside the engine
func NewInvalid(code Code, format string, args ...any) *Error {
	return invalid(code, format, args...)
}

// CodeOf returns the code of an engine error in err's chain, or ""
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// KindOf returns the kind of an engine error in err's chain, or ""
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
