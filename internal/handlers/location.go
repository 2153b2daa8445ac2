package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stanstork/crewdispatch/internal/models"
	"github.com/stanstork/crewdispatch/internal/repository"
)

type LocationHandler struct {
	repo   repository.LocationRepository
	logger zerolog.Logger
}

func NewLocationHandler(repo repository.LocationRepository, logger zerolog.Logger) *LocationHandler {
	return &LocationHandler{
		repo:   repo,
		logger: logger.With().Str("handler", "location").Logger(),
	}
}

func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload models.GeographicLocation
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		http.Error(w, "locationName is required", http.StatusBadRequest)
		return
	}

	loc, err := h.repo.Create(r.Context(), payload)
	if err != nil {
		status := storeErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error().Err(err).Msg("failed to create location")
		}
		http.Error(w, "Failed to create location", status)
		return
	}
	writeJSON(w, http.StatusCreated, loc)
}

func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	locations, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list locations")
		http.Error(w, "Failed to list locations", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, locations)
}
