package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/careops/equiptrack/internal/lifecycle"
	"github.com/careops/equiptrack/internal/models"
	"github.com/careops/equiptrack/internal/store"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// listMaintenance returns maintenance records matching the query filters
func (r *Router) listMaintenance(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	filter := store.MaintenanceFilter{
		Status:    q.Get("status"),
		Type:      q.Get("type"),
		Priority:  q.Get("priority"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
	records, err := r.stores.Maintenance.List(req.Context(), filter)
	if err != nil {
		respondInternal(w, "Error fetching maintenance records", err)
		return
	}
	respondList(w, records, len(records))
}

// getMaintenance returns a single maintenance record
func (r *Router) getMaintenance(w http.ResponseWriter, req *http.Request) {
	id, ok := parseID(w, req, "id", "maintenance")
	if !ok {
		return
	}
	record, err := r.stores.Maintenance.Get(req.Context(), id)
	if err != nil {
		storeError(w, err, "Maintenance record not found", "Error fetching maintenance record")
		return
	}
	respondData(w, http.StatusOK, record)
}

// createMaintenance schedules a new maintenance event. The referenced
// equipment must exist.
func (r *Router) createMaintenance(w http.ResponseWriter, req *http.Request) {
	var record models.Maintenance
	if err := json.NewDecoder(req.Body).Decode(&record); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if record.Status == "" {
		record.Status = models.StatusScheduled
	}
	if record.Priority == "" {
		record.Priority = models.PriorityMedium
	}
	if record.EstimatedDuration == 0 {
		record.EstimatedDuration = 2
	}
	// completedDate exists iff the record is completed; a record born
	// Completed also rolls its equipment's maintenance dates forward (the
	// store runs that cascade)
	if record.IsCompleted() {
		if record.CompletedDate == nil {
			completed := r.now()
			record.CompletedDate = &completed
		}
	} else {
		record.CompletedDate = nil
	}
	if errs := record.Validate(); len(errs) > 0 {
		respondValidation(w, errs)
		return
	}
	if err := r.stores.Maintenance.Create(req.Context(), &record); err != nil {
		storeError(w, err, "Equipment not found", "Error creating maintenance record")
		return
	}
	respondCreated(w, record, "Maintenance record created successfully")
}

// updateMaintenance applies a partial update. Status changes go through the
// transition rules; completedDate is kept consistent with the status.
func (r *Router) updateMaintenance(w http.ResponseWriter, req *http.Request) {
	id, ok := parseID(w, req, "id", "maintenance")
	if !ok {
		return
	}
	record, err := r.stores.Maintenance.Get(req.Context(), id)
	if err != nil {
		storeError(w, err, "Maintenance record not found", "Error fetching maintenance record")
		return
	}
	previousStatus := record.Status
	if err := json.NewDecoder(req.Body).Decode(record); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	record.ID = id

	if record.Status != previousStatus {
		if err := lifecycle.ValidateTransition(previousStatus, record.Status); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	// completedDate exists iff the record is completed
	if record.IsCompleted() {
		if record.CompletedDate == nil {
			completed := r.now()
			record.CompletedDate = &completed
		}
	} else {
		record.CompletedDate = nil
	}

	if errs := record.Validate(); len(errs) > 0 {
		respondValidation(w, errs)
		return
	}
	if err := r.stores.Maintenance.Update(req.Context(), record); err != nil {
		storeError(w, err, "Maintenance record not found", "Error updating maintenance record")
		return
	}
	respondMessage(w, record, "Maintenance record updated successfully")
}

// completeMaintenance closes out a record and rolls the equipment's
// maintenance dates forward in the same transaction
func (r *Router) completeMaintenance(w http.ResponseWriter, req *http.Request) {
	id, ok := parseID(w, req, "id", "maintenance")
	if !ok {
		return
	}
	var input lifecycle.CompletionInput
	if req.Body != nil {
		if err := json.NewDecoder(req.Body).Decode(&input); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
	}
	record, err := r.stores.Maintenance.Complete(req.Context(), id, input, r.now())
	if err != nil {
		storeError(w, err, "Maintenance record not found", "Error completing maintenance")
		return
	}
	respondMessage(w, record, "Maintenance completed successfully")
}

// deleteMaintenance removes a record and returns the deleted copy
func (r *Router) deleteMaintenance(w http.ResponseWriter, req *http.Request) {
	id, ok := parseID(w, req, "id", "maintenance")
	if !ok {
		return
	}
	record, err := r.stores.Maintenance.Delete(req.Context(), id)
	if err != nil {
		storeError(w, err, "Maintenance record not found", "Error deleting maintenance record")
		return
	}
	respondMessage(w, record, "Maintenance record deleted successfully")
}

func (r *Router) maintenanceByEquipment(w http.ResponseWriter, req *http.Request) {
	raw := mux.Vars(req)["equipmentId"]
	equipmentID, err := uuid.Parse(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid equipment ID")
		return
	}
	records, err := r.stores.Maintenance.ByEquipment(req.Context(), equipmentID)
	if err != nil {
		respondInternal(w, "Error fetching maintenance records", err)
		return
	}
	respondList(w, records, len(records))
}

func (r *Router) maintenanceByTechnician(w http.ResponseWriter, req *http.Request) {
	records, err := r.stores.Maintenance.ByTechnician(req.Context(), mux.Vars(req)["technicianId"])
	if err != nil {
		respondInternal(w, "Error fetching maintenance records", err)
		return
	}
	respondList(w, records, len(records))
}

// overdueMaintenance lists Scheduled records whose date has passed
func (r *Router) overdueMaintenance(w http.ResponseWriter, req *http.Request) {
	records, err := r.stores.Maintenance.Overdue(req.Context(), r.now())
	if err != nil {
		respondInternal(w, "Error fetching overdue maintenance", err)
		return
	}
	respondList(w, records, len(records))
}

// maintenanceView is a record with its countdown to the scheduled date
// attached, as served on the upcoming payload
type maintenanceView struct {
	models.Maintenance
	DaysUntilScheduled int `json:"daysUntilScheduled"`
}

// upcomingMaintenance lists Scheduled records inside the lookahead window
// (?days=N, default 7)
func (r *Router) upcomingMaintenance(w http.ResponseWriter, req *http.Request) {
	days := 7
	if raw := req.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "Invalid days parameter")
			return
		}
		days = parsed
	}
	records, err := r.stores.Maintenance.Upcoming(req.Context(), r.now(), days)
	if err != nil {
		respondInternal(w, "Error fetching upcoming maintenance", err)
		return
	}
	now := r.now()
	out := make([]maintenanceView, len(records))
	for i := range records {
		out[i] = maintenanceView{records[i], records[i].DaysUntilScheduled(now)}
	}
	respondList(w, out, len(out))
}

// maintenanceStats aggregates all records into the status counters
func (r *Router) maintenanceStats(w http.ResponseWriter, req *http.Request) {
	records, err := r.stores.Maintenance.All(req.Context())
	if err != nil {
		respondInternal(w, "Error fetching maintenance stats", err)
		return
	}
	respondData(w, http.StatusOK, lifecycle.ComputeStats(records, r.now()))
}

// scheduleRecurringMaintenance creates the first occurrence of a recurring plan
func (r *Router) scheduleRecurringMaintenance(w http.ResponseWriter, req *http.Request) {
	var body struct {
		EquipmentID string            `json:"equipmentId"`
		Type        string            `json:"type"`
		Description string            `json:"description"`
		Technician  models.Technician `json:"technician"`
		Priority    string            `json:"priority"`
		Interval    int               `json:"interval"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	var missing []string
	if body.EquipmentID == "" {
		missing = append(missing, "equipmentId")
	}
	if body.Type == "" {
		missing = append(missing, "type")
	}
	if body.Description == "" {
		missing = append(missing, "description")
	}
	if body.Technician.Name == "" {
		missing = append(missing, "technician")
	}
	if body.Interval < 1 {
		missing = append(missing, "interval")
	}
	if len(missing) > 0 {
		respondError(w, http.StatusBadRequest, "Missing required fields: "+strings.Join(missing, ", "))
		return
	}

	equipmentID, err := uuid.Parse(body.EquipmentID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid equipment ID")
		return
	}

	record := lifecycle.ScheduleRecurring(lifecycle.RecurringTemplate{
		EquipmentID: equipmentID,
		Type:        body.Type,
		Description: body.Description,
		Technician:  body.Technician,
		Priority:    body.Priority,
	}, body.Interval, r.now())

	if errs := record.Validate(); len(errs) > 0 {
		respondValidation(w, errs)
		return
	}
	if err := r.stores.Maintenance.Create(req.Context(), &record); err != nil {
		storeError(w, err, "Equipment not found", "Error scheduling recurring maintenance")
		return
	}
	respondCreated(w, record, "Recurring maintenance scheduled successfully")
}
