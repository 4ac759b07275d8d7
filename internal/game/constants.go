package game

const (
	// JoinCodeLength is the length of generated join codes
	JoinCodeLength = 6

	// JoinCodeChars are the characters used for join codes (excluding ambiguous chars)
	JoinCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	// AccessCodeBytes is the entropy of a room access code (8 URL-safe characters)
	AccessCodeBytes = 6

	// MaxNameLength bounds display names
	MaxNameLength = 64

	// MaxNoteLength bounds host notes on a player
	MaxNoteLength = 512
)

// Log entry kinds
const (
	LogRoomCreated            = "room_created"
	LogPlayerJoined           = "player_joined"
	LogSeatChanged            = "seat_changed"
	LogRolesAssigned          = "roles_assigned"
	LogPhaseChanged           = "phase_changed"
	LogGameReset              = "game_reset"
	LogGameResultSet          = "game_result_set"
	LogStatusChanged          = "status_changed"
	LogPlayerNoteUpdated      = "player_note_updated"
	LogNominated              = "nominated"
	LogVoteStarted            = "vote_started"
	LogNominationReverted     = "nomination_reverted"
	LogNominationTotalUpdated = "nomination_total_updated"
	LogVoteCast               = "vote_cast"
	LogActionRecorded         = "action_recorded"
	LogExecutionRecorded      = "execution_recorded"
)
