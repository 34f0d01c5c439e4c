package ranking

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
)

// HTTPHandler serves the read-only ranking endpoint.
type HTTPHandler struct {
	service *Service
	logger  zerolog.Logger
}

// NewHTTPHandler creates HTTP handlers for ranking endpoints.
func NewHTTPHandler(service *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		service: service,
		logger:  logger.With().Str("component", "ranking_http").Logger(),
	}
}

// HandleTop handles GET /v1/rankings?limit=N.
func (h *HTTPHandler) HandleTop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	entries, err := h.service.Top(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to fetch ranking")
		h.respondError(w, http.StatusInternalServerError, "ranking_unavailable", "Ranking is temporarily unavailable")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"rankings": entries})
}

func (h *HTTPHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *HTTPHandler) respondError(w http.ResponseWriter, status int, code, message string) {
	h.respondJSON(w, status, map[string]any{
		"error":   code,
		"message": message,
	})
}
