package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/wonny/sonar/internal/contracts"
	"github.com/wonny/sonar/internal/store"
)

// SignalHandler handles signal ingestion and archive queries
// ⭐ SSOT: 시그널 API 핸들러는 이 구조체에서만
type SignalHandler struct {
	state *State
	repo  *store.SignalRepository // nil when persistence is disabled
	log   zerolog.Logger
}

// NewSignalHandler creates a new signal handler. repo may be nil.
func NewSignalHandler(state *State, repo *store.SignalRepository, log zerolog.Logger) *SignalHandler {
	return &SignalHandler{
		state: state,
		repo:  repo,
		log:   log.With().Str("component", "api.signals").Logger(),
	}
}

// IngestResponse reports how many signals were archived.
type IngestResponse struct {
	Status   string   `json:"status"`
	Archived int      `json:"archived"`
	IDs      []string `json:"signal_ids"`
}

// Ingest archives a batch of signals
// POST /api/signals
func (h *SignalHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var signals []contracts.Signal
	if err := json.NewDecoder(r.Body).Decode(&signals); err != nil {
		respondError(w, http.StatusBadRequest, "invalid signal payload")
		return
	}
	if len(signals) == 0 {
		respondError(w, http.StatusBadRequest, "empty signal batch")
		return
	}

	added := h.state.AddSignals(signals)

	if h.repo != nil {
		if err := h.repo.SaveBatch(r.Context(), added); err != nil {
			// The archive already holds the batch; persistence failure is
			// logged, not surfaced as an ingest failure.
			h.log.Error().Err(err).Int("count", len(added)).Msg("failed to persist signals")
		}
	}

	ids := make([]string, 0, len(added))
	for _, sig := range added {
		ids = append(ids, sig.SignalID)
	}

	respondJSON(w, http.StatusCreated, IngestResponse{
		Status:   "archived",
		Archived: len(added),
		IDs:      ids,
	})
}

// GetStats returns the archive summary
// GET /api/signals/stats
func (h *SignalHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.state.Stats())
}

// GetTickers returns the distinct tickers seen
// GET /api/signals/tickers
func (h *SignalHandler) GetTickers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tickers": h.state.Tickers(),
	})
}

// Clear empties the server archive
// DELETE /api/signals
func (h *SignalHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.state.Clear()
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
