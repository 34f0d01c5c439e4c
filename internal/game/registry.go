package game

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RoomRegistry owns the set of lobbies and the connection->lobby index.
// It is plain CRUD plus invariant enforcement (host assignment, capacity,
// roster); it carries no lock of its own because every mutation is funneled
// through the engine's single dispatch point.
type RoomRegistry struct {
	rooms     map[string]*Lobby    // keyed by upper-cased room code
	connIndex map[uuid.UUID]string // connection id -> room code
	logger    zerolog.Logger
}

// NewRoomRegistry creates an empty registry.
func NewRoomRegistry(logger zerolog.Logger) *RoomRegistry {
	return &RoomRegistry{
		rooms:     make(map[string]*Lobby),
		connIndex: make(map[uuid.UUID]string),
		logger:    logger.With().Str("component", "room_registry").Logger(),
	}
}

// CreateRoom generates a unique code and initializes a lobby with the
// requestor as sole player and host. A zero capacity falls back to the
// default; anything else outside [2,8] is rejected.
func (r *RoomRegistry) CreateRoom(connID uuid.UUID, displayName string, capacity int) (*Lobby, error) {
	if capacity == 0 {
		capacity = defaultMaxPlayers
	}
	if capacity < MinPlayers || capacity > MaxPlayers {
		return nil, ErrCapacityInvalid
	}

	code := r.generateRoomCode()
	lobby := &Lobby{
		Code: code,
		Host: connID,
		Players: []*Player{{
			ConnectionID: connID,
			Name:         displayName,
			IsHost:       true,
		}},
		MaxPlayers: capacity,
		Status:     StatusWaiting,
		CreatedAt:  time.Now(),
	}

	r.rooms[code] = lobby
	r.connIndex[connID] = code

	r.logger.Info().
		Str("room_code", code).
		Str("host", displayName).
		Msg("lobby created")

	return lobby, nil
}

// JoinRoom adds a player to an existing waiting lobby. Codes match
// case-insensitively.
func (r *RoomRegistry) JoinRoom(code string, connID uuid.UUID, displayName string) (*Lobby, error) {
	lobby, exists := r.rooms[normalizeCode(code)]
	if !exists {
		return nil, ErrRoomNotFound
	}
	if lobby.Status != StatusWaiting {
		return nil, ErrRoundInProgress
	}
	if len(lobby.Players) >= lobby.MaxPlayers {
		return nil, ErrRoomFull
	}

	lobby.Players = append(lobby.Players, &Player{
		ConnectionID: connID,
		Name:         displayName,
	})
	r.connIndex[connID] = lobby.Code

	r.logger.Info().
		Str("room_code", lobby.Code).
		Str("player", displayName).
		Int("player_count", len(lobby.Players)).
		Msg("player joined lobby")

	return lobby, nil
}

// Leave removes the connection from whatever lobby it is in. Idempotent: a
// connection in no lobby is a no-op. The lobby is deleted once its roster is
// empty; otherwise the host role migrates to the first remaining player.
// Returns the lobby, the removed player and whether the lobby was deleted.
func (r *RoomRegistry) Leave(connID uuid.UUID) (*Lobby, *Player, bool) {
	code, ok := r.connIndex[connID]
	if !ok {
		return nil, nil, false
	}
	delete(r.connIndex, connID)

	lobby, exists := r.rooms[code]
	if !exists {
		return nil, nil, false
	}

	removed := lobby.removePlayer(connID)
	if len(lobby.Players) == 0 {
		delete(r.rooms, code)
		r.logger.Info().Str("room_code", code).Msg("lobby deleted, roster empty")
		return lobby, removed, true
	}

	return lobby, removed, false
}

// Lookup resolves a connection to its lobby.
func (r *RoomRegistry) Lookup(connID uuid.UUID) (*Lobby, bool) {
	code, ok := r.connIndex[connID]
	if !ok {
		return nil, false
	}
	lobby, exists := r.rooms[code]
	return lobby, exists
}

// ToggleReady flips the requestor's ready flag.
func (r *RoomRegistry) ToggleReady(connID uuid.UUID) (*Lobby, error) {
	lobby, ok := r.Lookup(connID)
	if !ok {
		return nil, ErrNotInLobby
	}
	player := lobby.player(connID)
	if player == nil {
		return nil, ErrPlayerNotFound
	}
	player.Ready = !player.Ready
	return lobby, nil
}

// ListWaiting returns lobbies that are still accepting players.
func (r *RoomRegistry) ListWaiting() []*Lobby {
	var waiting []*Lobby
	for _, lobby := range r.rooms {
		if lobby.Status == StatusWaiting {
			waiting = append(waiting, lobby)
		}
	}
	return waiting
}

// Delete removes a lobby and every roster index entry pointing at it. Used
// when the engine tears a room down after an invariant violation.
func (r *RoomRegistry) Delete(code string) {
	lobby, exists := r.rooms[normalizeCode(code)]
	if !exists {
		return
	}
	for _, p := range lobby.Players {
		delete(r.connIndex, p.ConnectionID)
	}
	delete(r.rooms, lobby.Code)
}

func (r *RoomRegistry) generateRoomCode() string {
	for {
		code := normalizeCode(uuid.NewString()[:8])
		if _, exists := r.rooms[code]; !exists {
			return code
		}
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
