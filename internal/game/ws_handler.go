package game

import (
	"net/http"

	"github.com/12-9-1/Game-on/internal/server"
)

// HandleWebSocket upgrades an HTTP request to a WebSocket session. Players
// are anonymous; identity is the server-assigned connection id, which lives
// exactly as long as the socket.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := server.WSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	h.HandleConnection(conn)
}
