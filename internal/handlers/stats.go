package handlers

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/stanstork/crewdispatch/internal/repository"
)

// maxStatsDays bounds the coverage window a caller can request.
const maxStatsDays = 90

type StatsHandler struct {
	repo   repository.StatsRepository
	logger zerolog.Logger
}

func NewStatsHandler(repo repository.StatsRepository, logger zerolog.Logger) *StatsHandler {
	return &StatsHandler{
		repo:   repo,
		logger: logger.With().Str("handler", "stats").Logger(),
	}
}

func (h *StatsHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxStatsDays {
			http.Error(w, "days must be between 1 and 90", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	stats, err := h.repo.DispatchStats(r.Context(), days)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load dispatch stats")
		http.Error(w, "Failed to load dispatch stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
