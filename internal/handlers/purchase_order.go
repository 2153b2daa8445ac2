package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stanstork/crewdispatch/internal/models"
	"github.com/stanstork/crewdispatch/internal/repository"
)

type PurchaseOrderHandler struct {
	repo   repository.PurchaseOrderRepository
	logger zerolog.Logger
}

func NewPurchaseOrderHandler(repo repository.PurchaseOrderRepository, logger zerolog.Logger) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		repo:   repo,
		logger: logger.With().Str("handler", "purchase_order").Logger(),
	}
}

func (h *PurchaseOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		JobID          int64            `json:"jobId"`
		PONumber       string           `json:"poNumber"`
		TrimLinearFeet *decimal.Decimal `json:"trimLinearFeet"`
		StairRisers    *int             `json:"stairRisers"`
		DoorCount      *int             `json:"doorCount"`
		Status         string           `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if payload.JobID <= 0 || strings.TrimSpace(payload.PONumber) == "" {
		http.Error(w, "jobId and poNumber are required", http.StatusBadRequest)
		return
	}
	status := models.POStatus(payload.Status)
	if status != "" && !status.Valid() {
		http.Error(w, "Invalid purchase order status", http.StatusBadRequest)
		return
	}
	if negative(payload.TrimLinearFeet, payload.StairRisers, payload.DoorCount) {
		http.Error(w, "Quantities must not be negative", http.StatusBadRequest)
		return
	}

	po := models.PurchaseOrder{
		JobID:          payload.JobID,
		PONumber:       strings.TrimSpace(payload.PONumber),
		TrimLinearFeet: payload.TrimLinearFeet,
		StairRisers:    payload.StairRisers,
		DoorCount:      payload.DoorCount,
		Status:         status,
	}
	if !po.HasWork() {
		http.Error(w, "At least one of trimLinearFeet, stairRisers or doorCount must be greater than zero", http.StatusBadRequest)
		return
	}

	created, err := h.repo.Create(r.Context(), po)
	if err != nil {
		code := storeErrorStatus(err)
		if code == http.StatusInternalServerError {
			h.logger.Error().Err(err).Msg("failed to create purchase order")
		}
		http.Error(w, "Failed to create purchase order", code)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *PurchaseOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	jobID, err := queryInt64(r, "jobId")
	if err != nil {
		http.Error(w, "jobId must be an integer", http.StatusBadRequest)
		return
	}
	status := models.POStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		http.Error(w, "Invalid purchase order status", http.StatusBadRequest)
		return
	}

	pos, err := h.repo.List(r.Context(), repository.PurchaseOrderFilter{JobID: jobID, Status: status})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list purchase orders")
		http.Error(w, "Failed to list purchase orders", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, pos)
}

func negative(trim *decimal.Decimal, risers, doors *int) bool {
	return (trim != nil && trim.IsNegative()) ||
		(risers != nil && *risers < 0) ||
		(doors != nil && *doors < 0)
}
