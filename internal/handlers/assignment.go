package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/stanstork/crewdispatch/internal/models"
	"github.com/stanstork/crewdispatch/internal/repository"
	"github.com/stanstork/crewdispatch/internal/temporal"
)

type AssignmentHandler struct {
	jobs        repository.JobRepository
	assignments repository.AssignmentRepository
	engine      Engine
	dispatcher  temporal.Dispatcher
	limit       int
	logger      zerolog.Logger
}

func NewAssignmentHandler(
	jobs repository.JobRepository,
	assignments repository.AssignmentRepository,
	engine Engine,
	dispatcher temporal.Dispatcher,
	defaultLimit int,
	logger zerolog.Logger,
) *AssignmentHandler {
	return &AssignmentHandler{
		jobs:        jobs,
		assignments: assignments,
		engine:      engine,
		dispatcher:  dispatcher,
		limit:       defaultLimit,
		logger:      logger.With().Str("handler", "assignment").Logger(),
	}
}

// Pending lists schedules that have no installer assignments.
func (h *AssignmentHandler) Pending(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.FindJobsNeedingAssignment(r.Context(), queryLimit(r, h.limit))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to find jobs needing assignment")
		http.Error(w, "Failed to find jobs needing assignment", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// Create writes a single manual assignment.
func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload models.NewAssignment
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if payload.ScheduleID <= 0 || payload.InstallerID <= 0 || payload.POID <= 0 {
		http.Error(w, "scheduleId, installerId and poId are required", http.StatusBadRequest)
		return
	}

	assignment, err := h.assignments.Create(r.Context(), payload)
	if err != nil {
		code := storeErrorStatus(err)
		switch code {
		case http.StatusConflict:
			http.Error(w, "Installer is already assigned to this schedule and purchase order", code)
		case http.StatusBadRequest:
			http.Error(w, "Schedule, installer or purchase order does not exist", code)
		default:
			h.logger.Error().Err(err).Int64("schedule_id", payload.ScheduleID).Msg("failed to create assignment")
			http.Error(w, "Failed to create assignment", code)
		}
		return
	}
	writeJSON(w, http.StatusCreated, assignment)
}

func (h *AssignmentHandler) ListBySchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "scheduleID")
	if !ok {
		http.Error(w, "Invalid schedule ID", http.StatusBadRequest)
		return
	}
	assignments, err := h.assignments.ListBySchedule(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Int64("schedule_id", id).Msg("failed to list assignments")
		http.Error(w, "Failed to list assignments", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, assignments)
}

// Run performs an assignment pass. With async=true the pass is queued as a
// workflow and the response only reports whether it was queued.
func (h *AssignmentHandler) Run(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, h.limit)

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		result := h.dispatcher.DispatchBatch(r.Context(), limit)
		status := http.StatusAccepted
		if result.Status != temporal.DispatchQueued {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]interface{}{"dispatch": result})
		return
	}

	report, err := h.engine.AssignInstallers(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("assignment run failed")
		writeRunError(w, "Assignment run failed", err, report)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
