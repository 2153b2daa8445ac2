package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/stanstork/crewdispatch/internal/models"
	"github.com/stanstork/crewdispatch/internal/repository"
)

type ScheduleHandler struct {
	jobs      repository.JobRepository
	schedules repository.ScheduleRepository
	engine    Engine
	limit     int
	logger    zerolog.Logger
}

func NewScheduleHandler(jobs repository.JobRepository, schedules repository.ScheduleRepository, engine Engine, defaultLimit int, logger zerolog.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		jobs:      jobs,
		schedules: schedules,
		engine:    engine,
		limit:     defaultLimit,
		logger:    logger.With().Str("handler", "schedule").Logger(),
	}
}

// Pending lists jobs that have no schedule yet.
func (h *ScheduleHandler) Pending(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.FindJobsNeedingSchedule(r.Context(), queryLimit(r, h.limit))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to find unscheduled jobs")
		http.Error(w, "Failed to find unscheduled jobs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload models.NewSchedule
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if payload.JobID <= 0 || payload.ScheduledDate.IsZero() {
		http.Error(w, "jobId and scheduledDate are required", http.StatusBadRequest)
		return
	}

	schedule, err := h.schedules.Create(r.Context(), payload)
	if err != nil {
		code := storeErrorStatus(err)
		if code == http.StatusInternalServerError {
			h.logger.Error().Err(err).Int64("job_id", payload.JobID).Msg("failed to create schedule")
		}
		http.Error(w, "Failed to create schedule", code)
		return
	}
	writeJSON(w, http.StatusCreated, schedule)
}

// Run schedules every pending job with a start date.
func (h *ScheduleHandler) Run(w http.ResponseWriter, r *http.Request) {
	report, err := h.engine.ScheduleJobs(r.Context(), queryLimit(r, h.limit))
	if err != nil {
		h.logger.Error().Err(err).Msg("scheduling run failed")
		writeRunError(w, "Scheduling run failed", err, report)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ScheduleAndAssign runs a scheduling pass followed by an assignment pass.
func (h *ScheduleHandler) ScheduleAndAssign(w http.ResponseWriter, r *http.Request) {
	report, err := h.engine.ScheduleAndAssign(r.Context(), queryLimit(r, h.limit))
	if err != nil {
		h.logger.Error().Err(err).Msg("schedule and assign failed")
		writeRunError(w, "Failed to schedule jobs and assign installers", err, report)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
