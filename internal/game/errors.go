package game

// Error is a recoverable validation error surfaced to the originating
// connection as a targeted `error` event. Room state is never mutated when
// one of these is returned.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrRoomNotFound         = &Error{Code: "room_not_found", Message: "Lobby not found"}
	ErrRoomFull             = &Error{Code: "room_full", Message: "Lobby is full"}
	ErrRoundInProgress      = &Error{Code: "round_in_progress", Message: "The game already started"}
	ErrCapacityInvalid      = &Error{Code: "capacity_invalid", Message: "Lobby capacity must be between 2 and 8"}
	ErrNotHost              = &Error{Code: "not_host", Message: "Only the host can do that"}
	ErrPlayersNotReady      = &Error{Code: "players_not_ready", Message: "Not all players are ready"}
	ErrInsufficientPlayers  = &Error{Code: "insufficient_players", Message: "At least 2 players are needed to start"}
	ErrNoActiveRound        = &Error{Code: "no_active_round", Message: "There is no active round"}
	ErrAlreadyAnswered      = &Error{Code: "already_answered", Message: "You already answered this question"}
	ErrPlayerNotFound       = &Error{Code: "player_not_found", Message: "Player not found"}
	ErrNotInLobby           = &Error{Code: "not_in_lobby", Message: "You are not in a lobby"}
	ErrAlreadyInLobby       = &Error{Code: "already_in_lobby", Message: "Leave your current lobby first"}
	ErrNoQuestionsAvailable = &Error{Code: "no_questions_available", Message: "Could not fetch questions, try again later"}
)
