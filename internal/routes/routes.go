package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/stanstork/crewdispatch/internal/handlers"
)

type Handlers struct {
	Locations      *handlers.LocationHandler
	Installers     *handlers.InstallerHandler
	Jobs           *handlers.JobHandler
	PurchaseOrders *handlers.PurchaseOrderHandler
	Schedules      *handlers.ScheduleHandler
	Assignments    *handlers.AssignmentHandler
	Notifications  *handlers.NotificationHandler
	Stats          *handlers.StatsHandler
}

// NewRouter sets up the API routes
func NewRouter(h Handlers) *mux.Router {
	router := mux.NewRouter()

	// Health check route
	router.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)

	router.HandleFunc("/api/locations", h.Locations.Create).Methods(http.MethodPost)
	router.HandleFunc("/api/locations", h.Locations.List).Methods(http.MethodGet)

	// candidates must be registered before the {installerID} pattern
	router.HandleFunc("/api/installers/candidates", h.Installers.Candidates).Methods(http.MethodGet)
	router.HandleFunc("/api/installers", h.Installers.Create).Methods(http.MethodPost)
	router.HandleFunc("/api/installers", h.Installers.List).Methods(http.MethodGet)
	router.HandleFunc("/api/installers/{installerID:[0-9]+}", h.Installers.Get).Methods(http.MethodGet)
	router.HandleFunc("/api/installers/{installerID:[0-9]+}/active", h.Installers.SetActive).Methods(http.MethodPut)
	router.HandleFunc("/api/installers/{installerID:[0-9]+}/locations", h.Installers.SetLocations).Methods(http.MethodPut)

	router.HandleFunc("/api/jobs", h.Jobs.CreateJob).Methods(http.MethodPost)
	router.HandleFunc("/api/jobs", h.Jobs.ListJobs).Methods(http.MethodGet)
	router.HandleFunc("/api/jobs/{jobID:[0-9]+}", h.Jobs.GetJob).Methods(http.MethodGet)
	router.HandleFunc("/api/jobs/{jobID:[0-9]+}/schedules", h.Jobs.ListSchedules).Methods(http.MethodGet)

	router.HandleFunc("/api/purchase-orders", h.PurchaseOrders.Create).Methods(http.MethodPost)
	router.HandleFunc("/api/purchase-orders", h.PurchaseOrders.List).Methods(http.MethodGet)

	router.HandleFunc("/api/schedules/pending", h.Schedules.Pending).Methods(http.MethodGet)
	router.HandleFunc("/api/schedules", h.Schedules.Create).Methods(http.MethodPost)
	router.HandleFunc("/api/schedules/run", h.Schedules.Run).Methods(http.MethodPost)
	router.HandleFunc("/api/schedules/{scheduleID:[0-9]+}/assignments", h.Assignments.ListBySchedule).Methods(http.MethodGet)

	router.HandleFunc("/api/assignments/pending", h.Assignments.Pending).Methods(http.MethodGet)
	router.HandleFunc("/api/assignments", h.Assignments.Create).Methods(http.MethodPost)
	router.HandleFunc("/api/assignments/run", h.Assignments.Run).Methods(http.MethodPost)

	router.HandleFunc("/api/schedule-jobs-assign-installers", h.Schedules.ScheduleAndAssign).Methods(http.MethodPost)

	router.HandleFunc("/api/stats/dispatch", h.Stats.Dispatch).Methods(http.MethodGet)

	router.HandleFunc("/api/notifications", h.Notifications.List).Methods(http.MethodGet)
	router.HandleFunc("/api/notifications/{notificationID:[0-9]+}/read", h.Notifications.MarkRead).Methods(http.MethodPost)

	return router
}
