package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/12-9-1/Game-on/internal/config"
	"github.com/12-9-1/Game-on/pkg/ws"
)

// WSUpgrader handles WebSocket upgrades (configure CORS/security as needed).
var WSUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: implement proper origin checking for production
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// RoomLister provides the browsable lobby list for the HTTP surface.
type RoomLister func() []ws.LobbySummary

// NewHTTPServer wires base routes (health, metrics) plus the game endpoints.
// rankingsHandler may be nil when the ranking store is disabled.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, gameWSHandler http.HandlerFunc, listRooms RoomLister, rankingsHandler http.HandlerFunc) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/ws", gameWSHandler)

	mux.HandleFunc("/v1/rooms", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		rooms := listRooms()
		if rooms == nil {
			rooms = []ws.LobbySummary{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{"rooms": rooms}); err != nil {
			logger.Warn().Err(err).Msg("failed to encode room list")
		}
	})

	if rankingsHandler != nil {
		mux.HandleFunc("/v1/rankings", rankingsHandler)
	} else {
		mux.HandleFunc("/v1/rankings", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Ranking store not configured", http.StatusNotImplemented)
		})
	}

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}
}
