package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/careops/equiptrack/internal/labels"
	"github.com/careops/equiptrack/internal/models"
	"github.com/careops/equiptrack/internal/store"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// equipmentView is an equipment record with its derived schedule and
// warranty fields attached, as served on detail and due-list payloads
type equipmentView struct {
	models.Equipment
	DaysUntilMaintenance  *int `json:"daysUntilMaintenance,omitempty"`
	WarrantyExpired       bool `json:"warrantyExpired"`
	WarrantyDaysRemaining *int `json:"warrantyDaysRemaining,omitempty"`
}

func (r *Router) viewOf(e models.Equipment) equipmentView {
	now := r.now()
	return equipmentView{
		Equipment:             e,
		DaysUntilMaintenance:  e.DaysUntilMaintenance(now),
		WarrantyExpired:       e.IsWarrantyExpired(now),
		WarrantyDaysRemaining: e.WarrantyDaysRemaining(now),
	}
}

func (r *Router) viewsOf(list []models.Equipment) []equipmentView {
	out := make([]equipmentView, len(list))
	for i := range list {
		out[i] = r.viewOf(list[i])
	}
	return out
}

// listEquipment returns equipment matching the query filters
func (r *Router) listEquipment(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	filter := store.EquipmentFilter{
		Category:   q.Get("category"),
		Status:     q.Get("status"),
		Department: q.Get("department"),
		Search:     q.Get("search"),
		SortBy:     q.Get("sortBy"),
		SortOrder:  q.Get("sortOrder"),
	}
	equipment, err := r.stores.Equipment.List(req.Context(), filter)
	if err != nil {
		respondInternal(w, "Error fetching equipment", err)
		return
	}
	respondList(w, equipment, len(equipment))
}

// getEquipment returns a single equipment record
func (r *Router) getEquipment(w http.ResponseWriter, req *http.Request) {
	id, ok := parseID(w, req, "id", "equipment")
	if !ok {
		return
	}
	equipment, err := r.stores.Equipment.Get(req.Context(), id)
	if err != nil {
		storeError(w, err, "Equipment not found", "Error fetching equipment")
		return
	}
	respondData(w, http.StatusOK, r.viewOf(*equipment))
}

// createEquipment registers a new asset. Serial numbers must be unique.
func (r *Router) createEquipment(w http.ResponseWriter, req *http.Request) {
	var equipment models.Equipment
	if err := json.NewDecoder(req.Body).Decode(&equipment); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if equipment.Status == "" {
		equipment.Status = models.EquipmentOperational
	}
	if equipment.Criticality == "" {
		equipment.Criticality = models.CriticalityMedium
	}
	if equipment.MaintenanceInterval == 0 {
		equipment.MaintenanceInterval = 30
	}
	if errs := equipment.Validate(); len(errs) > 0 {
		respondValidation(w, errs)
		return
	}
	if err := r.stores.Equipment.Create(req.Context(), &equipment); err != nil {
		storeError(w, err, "Equipment not found", "Error creating equipment")
		return
	}
	respondCreated(w, equipment, "Equipment created successfully")
}

// updateEquipment applies a partial update; derived dates are recomputed
func (r *Router) updateEquipment(w http.ResponseWriter, req *http.Request) {
	id, ok := parseID(w, req, "id", "equipment")
	if !ok {
		return
	}
	equipment, err := r.stores.Equipment.Get(req.Context(), id)
	if err != nil {
		storeError(w, err, "Equipment not found", "Error fetching equipment")
		return
	}
	if err := json.NewDecoder(req.Body).Decode(equipment); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	equipment.ID = id
	if errs := equipment.Validate(); len(errs) > 0 {
		respondValidation(w, errs)
		return
	}
	if err := r.stores.Equipment.Update(req.Context(), equipment); err != nil {
		storeError(w, err, "Equipment not found", "Error updating equipment")
		return
	}
	respondMessage(w, equipment, "Equipment updated successfully")
}

// updateEquipmentStatus changes only the status field
func (r *Router) updateEquipmentStatus(w http.ResponseWriter, req *http.Request) {
	id, ok := parseID(w, req, "id", "equipment")
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.Status == "" {
		respondError(w, http.StatusBadRequest, "Status is required")
		return
	}
	if !models.ValidEquipmentStatus(body.Status) {
		respondError(w, http.StatusBadRequest,
			"Invalid status. Must be one of: "+strings.Join(models.EquipmentStatuses(), ", "))
		return
	}
	equipment, err := r.stores.Equipment.UpdateStatus(req.Context(), id, body.Status)
	if err != nil {
		storeError(w, err, "Equipment not found", "Error updating equipment status")
		return
	}
	respondMessage(w, equipment, "Equipment status updated successfully")
}

// deleteEquipment removes an asset and returns the deleted record
func (r *Router) deleteEquipment(w http.ResponseWriter, req *http.Request) {
	id, ok := parseID(w, req, "id", "equipment")
	if !ok {
		return
	}
	equipment, err := r.stores.Equipment.Delete(req.Context(), id)
	if err != nil {
		storeError(w, err, "Equipment not found", "Error deleting equipment")
		return
	}
	respondMessage(w, equipment, "Equipment deleted successfully")
}

// equipmentBySerial resolves a scanned QR tag to its equipment record
func (r *Router) equipmentBySerial(w http.ResponseWriter, req *http.Request) {
	equipment, err := r.stores.Equipment.GetBySerial(req.Context(), mux.Vars(req)["serialNumber"])
	if err != nil {
		storeError(w, err, "Equipment not found", "Error fetching equipment")
		return
	}
	respondData(w, http.StatusOK, r.viewOf(*equipment))
}

// searchEquipment runs the free-text search across the descriptive fields
func (r *Router) searchEquipment(w http.ResponseWriter, req *http.Request) {
	query := req.URL.Query().Get("q")
	if query == "" {
		respondError(w, http.StatusBadRequest, "Search query is required")
		return
	}
	equipment, err := r.stores.Equipment.Search(req.Context(), query)
	if err != nil {
		respondInternal(w, "Error searching equipment", err)
		return
	}
	respondList(w, equipment, len(equipment))
}

func (r *Router) equipmentByCategory(w http.ResponseWriter, req *http.Request) {
	equipment, err := r.stores.Equipment.ByCategory(req.Context(), mux.Vars(req)["category"])
	if err != nil {
		respondInternal(w, "Error fetching equipment by category", err)
		return
	}
	respondList(w, equipment, len(equipment))
}

func (r *Router) equipmentByStatus(w http.ResponseWriter, req *http.Request) {
	equipment, err := r.stores.Equipment.ByStatus(req.Context(), mux.Vars(req)["status"])
	if err != nil {
		respondInternal(w, "Error fetching equipment by status", err)
		return
	}
	respondList(w, equipment, len(equipment))
}

func (r *Router) equipmentByDepartment(w http.ResponseWriter, req *http.Request) {
	equipment, err := r.stores.Equipment.ByDepartment(req.Context(), mux.Vars(req)["department"])
	if err != nil {
		respondInternal(w, "Error fetching equipment by department", err)
		return
	}
	respondList(w, equipment, len(equipment))
}

// maintenanceDueEquipment lists non-retired equipment whose next maintenance
// date has been reached
func (r *Router) maintenanceDueEquipment(w http.ResponseWriter, req *http.Request) {
	equipment, err := r.stores.Equipment.MaintenanceDue(req.Context(), r.now())
	if err != nil {
		respondInternal(w, "Error fetching maintenance due equipment", err)
		return
	}
	respondList(w, r.viewsOf(equipment), len(equipment))
}

// criticalEquipment lists active Critical/High criticality assets
func (r *Router) criticalEquipment(w http.ResponseWriter, req *http.Request) {
	equipment, err := r.stores.Equipment.Critical(req.Context())
	if err != nil {
		respondInternal(w, "Error fetching critical equipment", err)
		return
	}
	respondList(w, equipment, len(equipment))
}

// equipmentStats assembles the dashboard summary
func (r *Router) equipmentStats(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	total, err := r.stores.Equipment.Count(ctx)
	if err != nil {
		respondInternal(w, "Error fetching dashboard stats", err)
		return
	}
	categoryBreakdown, err := r.stores.Equipment.CategoryBreakdown(ctx)
	if err != nil {
		respondInternal(w, "Error fetching dashboard stats", err)
		return
	}
	statusBreakdown, err := r.stores.Equipment.StatusBreakdown(ctx)
	if err != nil {
		respondInternal(w, "Error fetching dashboard stats", err)
		return
	}
	departments, err := r.stores.Equipment.Departments(ctx)
	if err != nil {
		respondInternal(w, "Error fetching dashboard stats", err)
		return
	}
	due, err := r.stores.Equipment.MaintenanceDue(ctx, r.now())
	if err != nil {
		respondInternal(w, "Error fetching dashboard stats", err)
		return
	}
	critical, err := r.stores.Equipment.Critical(ctx)
	if err != nil {
		respondInternal(w, "Error fetching dashboard stats", err)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"totalEquipment":          total,
		"totalCategories":         len(categoryBreakdown),
		"totalDepartments":        len(departments),
		"maintenanceDueCount":     len(due),
		"criticalCount":           len(critical),
		"maintenanceDueEquipment": due,
		"criticalEquipment":       critical,
		"statusBreakdown":         statusBreakdown,
		"categoryBreakdown":       categoryBreakdown,
	})
}

// equipmentLabels renders a PDF sheet of QR asset tags. With no ids in the
// body, every registered asset gets a label.
func (r *Router) equipmentLabels(w http.ResponseWriter, req *http.Request) {
	body := struct {
		IDs   []string           `json:"ids"`
		Sheet labels.SheetConfig `json:"sheet"`
	}{Sheet: labels.DefaultSheet()}
	if req.Body != nil {
		// an empty body means "all equipment, default layout"; anything else
		// has to parse
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			respondError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
	}

	var equipment []models.Equipment
	if len(body.IDs) == 0 {
		all, err := r.stores.Equipment.List(req.Context(), store.EquipmentFilter{})
		if err != nil {
			respondInternal(w, "Error fetching equipment", err)
			return
		}
		equipment = all
	} else {
		for _, raw := range body.IDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				respondError(w, http.StatusBadRequest, "Invalid equipment ID")
				return
			}
			e, err := r.stores.Equipment.Get(req.Context(), id)
			if err != nil {
				storeError(w, err, "Equipment not found", "Error fetching equipment")
				return
			}
			equipment = append(equipment, *e)
		}
	}

	if len(equipment) == 0 {
		respondError(w, http.StatusBadRequest, "No equipment to label")
		return
	}

	pdfBytes, err := labels.GenerateSheet(body.Sheet, equipment)
	if err != nil {
		respondInternal(w, "Failed to generate labels", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"asset_tags_%d.pdf\"", len(equipment)))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdfBytes)))
	w.Write(pdfBytes)
}
