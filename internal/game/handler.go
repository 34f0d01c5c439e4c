package game

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/12-9-1/Game-on/pkg/ws"
)

// Handler owns the WebSocket side of a player's session: it assigns the
// connection id, runs the read/write pumps and routes inbound messages to
// the engine. Engine errors come back as targeted `error` events; they never
// tear the connection down.
type Handler struct {
	engine *Engine
	hub    *ws.Hub
	logger zerolog.Logger
}

// NewHandler creates a game WebSocket handler.
func NewHandler(engine *Engine, hub *ws.Hub, logger zerolog.Logger) *Handler {
	return &Handler{
		engine: engine,
		hub:    hub,
		logger: logger.With().Str("component", "game_handler").Logger(),
	}
}

// HandleConnection processes a new WebSocket connection until the peer goes
// away, then runs departure cleanup.
func (h *Handler) HandleConnection(conn *websocket.Conn) {
	connID := uuid.New()
	wsConn := ws.NewConnection(conn, h.logger)
	h.hub.RegisterConnection(connID, wsConn)

	h.logger.Info().Str("connection_id", connID.String()).Msg("player connected")

	go wsConn.WritePump()

	wsConn.ReadPump(func(msg ws.Message) error {
		return h.handleMessage(connID, msg)
	})

	h.engine.OnDisconnected(connID)
	h.hub.UnregisterConnection(connID)
	h.logger.Info().Str("connection_id", connID.String()).Msg("player disconnected")
}

// handleMessage routes one inbound message.
func (h *Handler) handleMessage(connID uuid.UUID, msg ws.Message) error {
	switch msg.Type {
	case ws.TypeCreateLobby:
		return h.handleCreateLobby(connID, msg.Payload)
	case ws.TypeJoinLobby:
		return h.handleJoinLobby(connID, msg.Payload)
	case ws.TypeLeaveLobby:
		return h.report(connID, h.engine.LeaveLobby(connID))
	case ws.TypeGetLobbies:
		return h.report(connID, h.engine.ListLobbies(connID))
	case ws.TypeToggleReady:
		return h.report(connID, h.engine.ToggleReady(connID))
	case ws.TypeStartGame:
		return h.report(connID, h.engine.StartGame(connID))
	case ws.TypeSubmitAnswer:
		return h.handleSubmitAnswer(connID, msg.Payload)
	case ws.TypeTimeUp:
		return h.report(connID, h.engine.TimeUp(connID))
	case ws.TypeRequestNewRound:
		return h.report(connID, h.engine.RequestNewRound(connID))
	case ws.TypeReadyForNewRound:
		return h.report(connID, h.engine.ReadyForNewRound(connID))
	case ws.TypeBackToLobby:
		return h.report(connID, h.engine.BackToLobby(connID))
	case ws.TypeSendChatMessage:
		return h.handleSendChat(connID, msg.Payload)
	case ws.TypeGetLobbyUpdate:
		return h.report(connID, h.engine.SendLobbyUpdate(connID))
	default:
		return h.sendError(connID, "unknown_message_type", fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
}

func (h *Handler) handleCreateLobby(connID uuid.UUID, payload json.RawMessage) error {
	var req ws.CreateLobbyPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(connID, "invalid_payload", "Invalid create_lobby payload")
	}
	if req.PlayerName == "" {
		req.PlayerName = "Player"
	}
	return h.report(connID, h.engine.CreateLobby(connID, req.PlayerName, req.MaxPlayers))
}

func (h *Handler) handleJoinLobby(connID uuid.UUID, payload json.RawMessage) error {
	var req ws.JoinLobbyPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(connID, "invalid_payload", "Invalid join_lobby payload")
	}
	if req.PlayerName == "" {
		req.PlayerName = "Player"
	}
	return h.report(connID, h.engine.JoinLobby(connID, req.LobbyID, req.PlayerName))
}

func (h *Handler) handleSubmitAnswer(connID uuid.UUID, payload json.RawMessage) error {
	var req ws.SubmitAnswerPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(connID, "invalid_payload", "Invalid submit_answer payload")
	}
	return h.report(connID, h.engine.SubmitAnswer(connID, req.AnswerIndex))
}

func (h *Handler) handleSendChat(connID uuid.UUID, payload json.RawMessage) error {
	var req ws.SendChatPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(connID, "invalid_payload", "Invalid send_chat_message payload")
	}
	return h.report(connID, h.engine.SendChat(connID, req.Message))
}

// report turns an engine validation error into a targeted error event. Other
// error kinds are returned for the read pump to log.
func (h *Handler) report(connID uuid.UUID, err error) error {
	if err == nil {
		return nil
	}
	var gameErr *Error
	if errors.As(err, &gameErr) {
		return h.sendError(connID, gameErr.Code, gameErr.Message)
	}
	return err
}

func (h *Handler) sendError(connID uuid.UUID, code, message string) error {
	return h.hub.EmitTo(connID, ws.NewMessage(ws.TypeError, ws.ErrorPayload{
		Code:    code,
		Message: message,
	}))
}
