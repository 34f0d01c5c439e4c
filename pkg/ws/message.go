package ws

import "encoding/json"

// MessageType constants for the WebSocket protocol.
const (
	// Client -> Server
	TypeCreateLobby      = "create_lobby"
	TypeJoinLobby        = "join_lobby"
	TypeLeaveLobby       = "leave_lobby"
	TypeGetLobbies       = "get_lobbies"
	TypeToggleReady      = "toggle_ready"
	TypeStartGame        = "start_game"
	TypeSubmitAnswer     = "submit_answer"
	TypeTimeUp           = "time_up"
	TypeRequestNewRound  = "request_new_round"
	TypeReadyForNewRound = "ready_for_new_round"
	TypeBackToLobby      = "back_to_lobby"
	TypeSendChatMessage  = "send_chat_message"
	TypeGetLobbyUpdate   = "get_lobby_update"

	// Server -> Client
	TypeLobbyCreated       = "lobby_created"
	TypeLobbyJoined        = "lobby_joined"
	TypeLobbyLeft          = "lobby_left"
	TypeLobbyClosed        = "lobby_closed"
	TypeLobbiesList        = "lobbies_list"
	TypeLobbyUpdated       = "lobby_updated"
	TypePlayerJoined       = "player_joined"
	TypePlayerLeft         = "player_left"
	TypePlayerReadyChanged = "player_ready_changed"
	TypeGameStarted        = "game_started"
	TypeNewQuestion        = "new_question"
	TypeAnswerResult       = "answer_result"
	TypePlayerAnswered     = "player_answered"
	TypeRoundEnded         = "round_ended"
	TypeWaitingNewRound    = "waiting_new_round"
	TypeNewRoundStarted    = "new_round_started"
	TypeReturnedToLobby    = "returned_to_lobby"
	TypeChatMessage        = "chat_message"
	TypeError              = "error"
)

// Message wraps all WebSocket payloads with a type tag.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage marshals payload into a typed envelope. Marshal failures are
// impossible for the payload structs below, so they are swallowed.
func NewMessage(msgType string, payload any) Message {
	msg := Message{Type: msgType}
	if payload != nil {
		msg.Payload, _ = json.Marshal(payload)
	}
	return msg
}

// Client messages (incoming).

type CreateLobbyPayload struct {
	PlayerName string `json:"player_name"`
	MaxPlayers int    `json:"max_players"`
}

type JoinLobbyPayload struct {
	LobbyID    string `json:"lobby_id"`
	PlayerName string `json:"player_name"`
}

type SubmitAnswerPayload struct {
	AnswerIndex int `json:"answer_index"`
}

type SendChatPayload struct {
	Message string `json:"message"`
}

// Server messages (outgoing).

type PlayerInfo struct {
	ConnectionID string `json:"socket_id"`
	Name         string `json:"name"`
	IsHost       bool   `json:"is_host"`
	Ready        bool   `json:"ready"`
	Score        int    `json:"score"`
}

type LobbySnapshot struct {
	ID          string       `json:"id"`
	Host        string       `json:"host"`
	Players     []PlayerInfo `json:"players"`
	PlayerCount int          `json:"player_count"`
	MaxPlayers  int          `json:"max_players"`
	Status      string       `json:"status"`
	WinScore    int          `json:"win_score,omitempty"`
	CreatedAt   string       `json:"created_at"`
}

type LobbyPayload struct {
	Lobby   LobbySnapshot `json:"lobby"`
	Message string        `json:"message,omitempty"`
}

type PlayerJoinedPayload struct {
	Lobby       LobbySnapshot `json:"lobby"`
	Player      PlayerInfo    `json:"player"`
	PlayerCount int           `json:"player_count"`
}

type PlayerLeftPayload struct {
	Lobby       LobbySnapshot `json:"lobby"`
	PlayerName  string        `json:"player_name"`
	PlayerCount int           `json:"player_count"`
	Message     string        `json:"message,omitempty"`
}

type LobbyClosedPayload struct {
	Message string `json:"message"`
}

type LobbySummary struct {
	ID          string `json:"id"`
	PlayerCount int    `json:"player_count"`
	MaxPlayers  int    `json:"max_players"`
	Status      string `json:"status"`
	HostName    string `json:"host_name"`
}

type LobbiesListPayload struct {
	Lobbies []LobbySummary `json:"lobbies"`
}

type GameStartedPayload struct {
	Lobby    LobbySnapshot `json:"lobby"`
	WinScore int           `json:"win_score"`
	Message  string        `json:"message,omitempty"`
}

type NewQuestionPayload struct {
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	Difficulty     string   `json:"difficulty"`
	Category       string   `json:"category"`
	QuestionNumber int      `json:"question_number"`
	TimeLimit      int      `json:"time_limit"`
}

type AnswerResultPayload struct {
	IsCorrect     bool   `json:"is_correct"`
	Points        int    `json:"points"`
	TotalScore    int    `json:"total_score"`
	CorrectAnswer int    `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

type PlayerAnsweredPayload struct {
	PlayerName    string `json:"player_name"`
	TotalAnswered int    `json:"total_answered"`
	TotalPlayers  int    `json:"total_players"`
}

type RoundResult struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Rank  int    `json:"rank"`
}

type RoundEndedPayload struct {
	Results []RoundResult `json:"results"`
	Winner  *RoundResult  `json:"winner"`
}

type NewRoundStartedPayload struct {
	Lobby          LobbySnapshot `json:"lobby"`
	TotalQuestions int           `json:"total_questions"`
	Message        string        `json:"message,omitempty"`
}

type ChatMessagePayload struct {
	ConnectionID string `json:"socket_id"`
	PlayerName   string `json:"player_name"`
	Message      string `json:"message"`
	Timestamp    string `json:"timestamp"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
