package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stanstork/crewdispatch/internal/models"
	"github.com/stanstork/crewdispatch/internal/repository"
)

type InstallerHandler struct {
	repo   repository.InstallerRepository
	logger zerolog.Logger
}

func NewInstallerHandler(repo repository.InstallerRepository, logger zerolog.Logger) *InstallerHandler {
	return &InstallerHandler{
		repo:   repo,
		logger: logger.With().Str("handler", "installer").Logger(),
	}
}

func (h *InstallerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FirstName   string  `json:"firstName"`
		LastName    string  `json:"lastName"`
		Trade       string  `json:"trade"`
		Phone       *string `json:"phone"`
		Email       *string `json:"email"`
		IsActive    *bool   `json:"isActive"`
		LocationIDs []int64 `json:"locationIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	trade, err := models.ParseTrade(payload.Trade)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(payload.FirstName) == "" || strings.TrimSpace(payload.LastName) == "" {
		http.Error(w, "firstName and lastName are required", http.StatusBadRequest)
		return
	}

	installer := models.Installer{
		FirstName:   strings.TrimSpace(payload.FirstName),
		LastName:    strings.TrimSpace(payload.LastName),
		Trade:       trade,
		Phone:       payload.Phone,
		Email:       payload.Email,
		IsActive:    payload.IsActive == nil || *payload.IsActive,
		LocationIDs: payload.LocationIDs,
	}
	created, err := h.repo.Create(r.Context(), installer)
	if err != nil {
		h.writeStoreError(w, err, "Failed to create installer")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *InstallerHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter repository.InstallerListFilter
	if raw := r.URL.Query().Get("trade"); raw != "" {
		trade, err := models.ParseTrade(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter.Trade = trade
	}
	if raw := r.URL.Query().Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			http.Error(w, "active must be true or false", http.StatusBadRequest)
			return
		}
		filter.Active = &active
	}

	installers, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list installers")
		http.Error(w, "Failed to list installers", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, installers)
}

func (h *InstallerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "installerID")
	if !ok {
		http.Error(w, "Invalid installer ID", http.StatusBadRequest)
		return
	}
	installer, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, err, "Failed to load installer")
		return
	}
	writeJSON(w, http.StatusOK, installer)
}

func (h *InstallerHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "installerID")
	if !ok {
		http.Error(w, "Invalid installer ID", http.StatusBadRequest)
		return
	}
	var payload struct {
		IsActive *bool `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.IsActive == nil {
		http.Error(w, "isActive is required", http.StatusBadRequest)
		return
	}
	installer, err := h.repo.SetActive(r.Context(), id, *payload.IsActive)
	if err != nil {
		h.writeStoreError(w, err, "Failed to update installer")
		return
	}
	writeJSON(w, http.StatusOK, installer)
}

func (h *InstallerHandler) SetLocations(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "installerID")
	if !ok {
		http.Error(w, "Invalid installer ID", http.StatusBadRequest)
		return
	}
	var payload struct {
		LocationIDs []int64 `json:"locationIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := h.repo.SetLocations(r.Context(), id, payload.LocationIDs); err != nil {
		h.writeStoreError(w, err, "Failed to update installer locations")
		return
	}
	installer, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, err, "Failed to load installer")
		return
	}
	writeJSON(w, http.StatusOK, installer)
}

// Candidates exposes the candidate query the engine uses for one slot.
func (h *InstallerHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	trade, err := models.ParseTrade(q.Get("trade"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	filter := models.CandidateFilter{Trade: trade, IsActive: true}

	locationID, err := queryInt64(r, "locationId")
	if err != nil {
		http.Error(w, "locationId must be an integer", http.StatusBadRequest)
		return
	}
	filter.LocationID = locationID

	if raw := strings.TrimSpace(q.Get("date")); raw != "" {
		date, err := models.ParseDate(raw)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		filter.ExcludeDate = &date
	}

	if raw := strings.TrimSpace(q.Get("exclude")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				http.Error(w, "exclude must be a comma separated list of installer IDs", http.StatusBadRequest)
				return
			}
			filter.ExcludeInstallerIDs = append(filter.ExcludeInstallerIDs, id)
		}
	}

	candidates, err := h.repo.FindCandidates(r.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Str("trade", string(trade)).Msg("failed to find candidates")
		http.Error(w, "Failed to find candidates", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, candidates)
}

func (h *InstallerHandler) writeStoreError(w http.ResponseWriter, err error, msg string) {
	status := storeErrorStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Msg(strings.ToLower(msg))
	}
	http.Error(w, msg, status)
}
