package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stanstork/crewdispatch/internal/models"
	"github.com/stanstork/crewdispatch/internal/notification"
	"github.com/stanstork/crewdispatch/internal/repository"
)

const defaultFeedLimit = 25

// NotificationHandler serves the dispatch event feed: schedules created,
// assignment batches, unfilled positions and aborted runs.
type NotificationHandler struct {
	service notification.Service
	logger  zerolog.Logger
}

func NewNotificationHandler(service notification.Service, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		logger:  logger.With().Str("handler", "notification").Logger(),
	}
}

// List returns the most recent dispatch events, optionally narrowed to one
// event type or to unread events. Filters apply within the limit window.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	event := models.NotificationEvent(strings.TrimSpace(r.URL.Query().Get("event")))
	if event != "" && !event.Valid() {
		http.Error(w, "Unknown event type", http.StatusBadRequest)
		return
	}
	unreadOnly := false
	if raw := r.URL.Query().Get("unread"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			http.Error(w, "unread must be true or false", http.StatusBadRequest)
			return
		}
		unreadOnly = v
	}

	recent, err := h.service.ListRecent(r.Context(), queryLimit(r, defaultFeedLimit))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load dispatch events")
		http.Error(w, "Failed to load dispatch events", http.StatusInternalServerError)
		return
	}

	events := make([]models.Notification, 0, len(recent))
	unread := 0
	for _, n := range recent {
		if event != "" && n.EventType != event {
			continue
		}
		if n.ReadAt == nil {
			unread++
		} else if unreadOnly {
			continue
		}
		events = append(events, n)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": events,
		"unread":        unread,
	})
}

// MarkRead acknowledges one dispatch event.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "notificationID")
	if !ok {
		http.Error(w, "Invalid notification ID", http.StatusBadRequest)
		return
	}

	acked, err := h.service.MarkRead(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, "Notification not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Int64("notification_id", id).Msg("failed to acknowledge dispatch event")
		http.Error(w, "Failed to acknowledge notification", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, acked)
}
