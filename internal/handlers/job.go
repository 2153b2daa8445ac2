package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stanstork/crewdispatch/internal/models"
	"github.com/stanstork/crewdispatch/internal/repository"
	"github.com/stanstork/crewdispatch/internal/temporal"
)

type JobHandler struct {
	repo       repository.JobRepository
	schedules  repository.ScheduleRepository
	dispatcher temporal.Dispatcher
	logger     zerolog.Logger
}

func NewJobHandler(repo repository.JobRepository, schedules repository.ScheduleRepository, dispatcher temporal.Dispatcher, logger zerolog.Logger) *JobHandler {
	return &JobHandler{
		repo:       repo,
		schedules:  schedules,
		dispatcher: dispatcher,
		logger:     logger.With().Str("handler", "job").Logger(),
	}
}

// CreateJob stores the job and hands it to the intake workflow. The
// response does not wait for scheduling or assignment.
func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		JobNumber     string       `json:"jobNumber"`
		StreetAddress string       `json:"streetAddress"`
		City          string       `json:"city"`
		State         string       `json:"state"`
		ZipCode       string       `json:"zipCode"`
		LocationID    *int64       `json:"locationId"`
		Status        string       `json:"status"`
		StartDate     *models.Date `json:"startDate"`
		EndDate       *models.Date `json:"endDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(payload.JobNumber) == "" {
		http.Error(w, "jobNumber is required", http.StatusBadRequest)
		return
	}
	status := models.JobStatus(payload.Status)
	if status != "" && !status.Valid() {
		http.Error(w, "Invalid job status", http.StatusBadRequest)
		return
	}

	job, err := h.repo.Create(r.Context(), models.Job{
		JobNumber:     strings.TrimSpace(payload.JobNumber),
		StreetAddress: payload.StreetAddress,
		City:          payload.City,
		State:         payload.State,
		ZipCode:       payload.ZipCode,
		LocationID:    payload.LocationID,
		Status:        status,
		StartDate:     payload.StartDate,
		EndDate:       payload.EndDate,
	})
	if err != nil {
		code := storeErrorStatus(err)
		if code == http.StatusInternalServerError {
			h.logger.Error().Err(err).Msg("failed to create job")
		}
		http.Error(w, "Failed to create job", code)
		return
	}

	dispatch := h.dispatcher.DispatchJobCreated(r.Context(), job.ID)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"job":      job,
		"dispatch": dispatch,
	})
}

func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	status := models.JobStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		http.Error(w, "Invalid job status", http.StatusBadRequest)
		return
	}
	jobs, err := h.repo.List(r.Context(), status)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list jobs")
		http.Error(w, "Failed to list jobs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "jobID")
	if !ok {
		http.Error(w, "Invalid job ID", http.StatusBadRequest)
		return
	}
	job, err := h.repo.Get(r.Context(), id)
	if err != nil {
		code := storeErrorStatus(err)
		if code == http.StatusInternalServerError {
			h.logger.Error().Err(err).Int64("job_id", id).Msg("failed to load job")
		}
		http.Error(w, "Failed to load job", code)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *JobHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "jobID")
	if !ok {
		http.Error(w, "Invalid job ID", http.StatusBadRequest)
		return
	}
	schedules, err := h.schedules.ListByJob(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Int64("job_id", id).Msg("failed to list schedules")
		http.Error(w, "Failed to list schedules", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, schedules)
}
