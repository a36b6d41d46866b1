package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/careops/equiptrack/internal/ai"
	"github.com/careops/equiptrack/internal/buildinfo"
	"github.com/careops/equiptrack/internal/store"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Router wraps the mux router and the injected dependencies
type Router struct {
	*mux.Router
	stores       store.Stores
	chat         ai.Client
	chatFallback bool
	dbHealthy    func() bool
	now          func() time.Time
}

// Option configures the router
type Option func(*Router)

// WithChat attaches the LLM client used by the chatbot endpoints. A nil
// client leaves them responding 503.
func WithChat(client ai.Client, fallback bool) Option {
	return func(r *Router) {
		r.chat = client
		r.chatFallback = fallback
	}
}

// WithHealthCheck sets the database probe reported by /api/health
func WithHealthCheck(probe func() bool) Option {
	return func(r *Router) {
		r.dbHealthy = probe
	}
}

// WithClock overrides the time source (tests)
func WithClock(now func() time.Time) Option {
	return func(r *Router) {
		r.now = now
	}
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(stores store.Stores, opts ...Option) *Router {
	r := &Router{
		Router: mux.NewRouter(),
		stores: stores,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Equipment routes. Fixed paths go before the {id} matcher.
	equipment := api.PathPrefix("/equipment").Subrouter()
	equipment.HandleFunc("", r.listEquipment).Methods("GET")
	equipment.HandleFunc("/stats", r.equipmentStats).Methods("GET")
	equipment.HandleFunc("/search", r.searchEquipment).Methods("GET")
	equipment.HandleFunc("/maintenance-due", r.maintenanceDueEquipment).Methods("GET")
	equipment.HandleFunc("/critical", r.criticalEquipment).Methods("GET")
	equipment.HandleFunc("/labels", r.equipmentLabels).Methods("POST")
	equipment.HandleFunc("/serial/{serialNumber}", r.equipmentBySerial).Methods("GET")
	equipment.HandleFunc("/category/{category}", r.equipmentByCategory).Methods("GET")
	equipment.HandleFunc("/status/{status}", r.equipmentByStatus).Methods("GET")
	equipment.HandleFunc("/department/{department}", r.equipmentByDepartment).Methods("GET")
	equipment.HandleFunc("/{id}", r.getEquipment).Methods("GET")
	equipment.HandleFunc("", r.createEquipment).Methods("POST")
	equipment.HandleFunc("/{id}", r.updateEquipment).Methods("PUT")
	equipment.HandleFunc("/{id}/status", r.updateEquipmentStatus).Methods("PUT")
	equipment.HandleFunc("/{id}", r.deleteEquipment).Methods("DELETE")

	// Maintenance routes
	maintenance := api.PathPrefix("/maintenance").Subrouter()
	maintenance.HandleFunc("", r.listMaintenance).Methods("GET")
	maintenance.HandleFunc("/stats", r.maintenanceStats).Methods("GET")
	maintenance.HandleFunc("/overdue", r.overdueMaintenance).Methods("GET")
	maintenance.HandleFunc("/upcoming", r.upcomingMaintenance).Methods("GET")
	maintenance.HandleFunc("/equipment/{equipmentId}", r.maintenanceByEquipment).Methods("GET")
	maintenance.HandleFunc("/technician/{technicianId}", r.maintenanceByTechnician).Methods("GET")
	maintenance.HandleFunc("/{id}", r.getMaintenance).Methods("GET")
	maintenance.HandleFunc("", r.createMaintenance).Methods("POST")
	maintenance.HandleFunc("/recurring", r.scheduleRecurringMaintenance).Methods("POST")
	maintenance.HandleFunc("/{id}", r.updateMaintenance).Methods("PUT")
	maintenance.HandleFunc("/{id}/complete", r.completeMaintenance).Methods("PUT")
	maintenance.HandleFunc("/{id}", r.deleteMaintenance).Methods("DELETE")

	// Chatbot routes
	chatbot := api.PathPrefix("/chatbot").Subrouter()
	chatbot.HandleFunc("/chat", r.chatWithBot).Methods("POST")
	chatbot.HandleFunc("/suggestions", r.maintenanceSuggestions).Methods("POST")
	chatbot.HandleFunc("/troubleshooting", r.troubleshootingGuide).Methods("POST")
	chatbot.HandleFunc("/schedule-recommendations", r.scheduleRecommendations).Methods("POST")
	chatbot.HandleFunc("/safety-protocols", r.safetyProtocols).Methods("POST")

	return r
}

// healthCheck reports API and database status
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	dbStatus := "Unknown"
	if r.dbHealthy != nil {
		if r.dbHealthy() {
			dbStatus = "Connected"
		} else {
			dbStatus = "Disconnected"
		}
	}
	respondJSON(w, http.StatusOK, response{
		Success: true,
		Message: "Equipment Tracker API is running",
		Data: map[string]string{
			"database":  dbStatus,
			"buildTime": buildinfo.BuildTime,
			"commit":    buildinfo.CommitHash,
			"startedAt": buildinfo.StartTime,
		},
	})
}

// response is the uniform envelope for every JSON reply
type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func respondData(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(w, status, response{Success: true, Data: data})
}

func respondCreated(w http.ResponseWriter, data interface{}, message string) {
	respondJSON(w, http.StatusCreated, response{Success: true, Data: data, Message: message})
}

func respondMessage(w http.ResponseWriter, data interface{}, message string) {
	respondJSON(w, http.StatusOK, response{Success: true, Data: data, Message: message})
}

func respondList(w http.ResponseWriter, data interface{}, count int) {
	respondJSON(w, http.StatusOK, response{Success: true, Data: data, Count: &count})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, response{Success: false, Message: message})
}

func respondInternal(w http.ResponseWriter, message string, err error) {
	respondJSON(w, http.StatusInternalServerError, response{
		Success: false,
		Message: message,
		Error:   err.Error(),
	})
}

func respondValidation(w http.ResponseWriter, errs []string) {
	respondJSON(w, http.StatusBadRequest, response{
		Success: false,
		Message: "Validation error",
		Errors:  errs,
	})
}

// parseID turns a path id into a UUID, answering 400 on malformed input
func parseID(w http.ResponseWriter, req *http.Request, key, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(req)[key])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// storeError maps repository errors onto the HTTP taxonomy
func storeError(w http.ResponseWriter, err error, notFoundMessage, fallbackMessage string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, notFoundMessage)
	case errors.Is(err, store.ErrDuplicateSerial):
		respondError(w, http.StatusBadRequest, "Equipment with this serial number already exists")
	default:
		respondInternal(w, fallbackMessage, err)
	}
}
