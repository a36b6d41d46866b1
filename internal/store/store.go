// Package store is the persistence boundary: repository interfaces over the
// equipment and maintenance records, a GORM/Postgres implementation and an
// in-memory implementation with the same semantics for tests.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/careops/equiptrack/internal/lifecycle"
	"github.com/careops/equiptrack/internal/models"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned for unknown record ids and unknown equipment
	// references.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateSerial is returned when creating equipment whose serial
	// number is already registered. No write happens.
	ErrDuplicateSerial = errors.New("serial number already registered")
)

// EquipmentFilter narrows and orders an equipment listing. Department and
// Search are case-insensitive substring matches; Search spans name, category,
// manufacturer, model, location and serial number.
type EquipmentFilter struct {
	Category   string
	Status     string
	Department string
	Search     string
	SortBy     string
	SortOrder  string
}

// MaintenanceFilter narrows and orders a maintenance listing
type MaintenanceFilter struct {
	Status    string
	Type      string
	Priority  string
	SortBy    string
	SortOrder string
}

// EquipmentStore is the persistence surface for equipment records
type EquipmentStore interface {
	List(ctx context.Context, f EquipmentFilter) ([]models.Equipment, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Equipment, error)
	// GetBySerial looks up equipment by its exact serial number
	GetBySerial(ctx context.Context, serial string) (*models.Equipment, error)
	// Create enforces serial-number uniqueness before inserting and applies
	// the next-maintenance-date invariant.
	Create(ctx context.Context, e *models.Equipment) error
	// Update persists the full record, recomputing the next-maintenance-date
	// invariant from last date and interval.
	Update(ctx context.Context, e *models.Equipment) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Equipment, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.Equipment, error)
	Search(ctx context.Context, query string) ([]models.Equipment, error)
	ByCategory(ctx context.Context, category string) ([]models.Equipment, error)
	ByStatus(ctx context.Context, status string) ([]models.Equipment, error)
	ByDepartment(ctx context.Context, department string) ([]models.Equipment, error)
	// MaintenanceDue returns non-retired equipment whose next maintenance
	// date has been reached.
	MaintenanceDue(ctx context.Context, now time.Time) ([]models.Equipment, error)
	// Critical returns non-retired equipment of Critical or High criticality.
	Critical(ctx context.Context) ([]models.Equipment, error)
	Count(ctx context.Context) (int64, error)
	StatusBreakdown(ctx context.Context) (map[string]int, error)
	CategoryBreakdown(ctx context.Context) (map[string]int, error)
	Departments(ctx context.Context) ([]string, error)
}

// MaintenanceStore is the persistence surface for maintenance records
type MaintenanceStore interface {
	List(ctx context.Context, f MaintenanceFilter) ([]models.Maintenance, error)
	All(ctx context.Context) ([]models.Maintenance, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Maintenance, error)
	// Create fails with ErrNotFound before any write when the referenced
	// equipment does not exist.
	Create(ctx context.Context, m *models.Maintenance) error
	Update(ctx context.Context, m *models.Maintenance) error
	Delete(ctx context.Context, id uuid.UUID) (*models.Maintenance, error)
	ByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]models.Maintenance, error)
	ByTechnician(ctx context.Context, technicianID string) ([]models.Maintenance, error)
	// Overdue returns Scheduled records whose date has passed.
	Overdue(ctx context.Context, now time.Time) ([]models.Maintenance, error)
	// Upcoming returns Scheduled records dated within [now, now+days].
	Upcoming(ctx context.Context, now time.Time, days int) ([]models.Maintenance, error)
	// Complete closes out a record and patches the owning equipment's
	// last/next maintenance dates. Both writes land in one transaction.
	Complete(ctx context.Context, id uuid.UUID, input lifecycle.CompletionInput, now time.Time) (*models.Maintenance, error)
}

// Stores bundles the two repositories for handler wiring
type Stores struct {
	Equipment   EquipmentStore
	Maintenance MaintenanceStore
}

// equipment sort fields exposed on the wire, mapped to columns
var equipmentSortColumns = map[string]string{
	"createdAt":           "created_at",
	"updatedAt":           "updated_at",
	"name":                "name",
	"serialNumber":        "serial_number",
	"category":            "category",
	"status":              "status",
	"department":          "department",
	"criticality":         "criticality",
	"purchaseDate":        "purchase_date",
	"nextMaintenanceDate": "next_maintenance_date",
}

var maintenanceSortColumns = map[string]string{
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
	"scheduledDate": "scheduled_date",
	"completedDate": "completed_date",
	"type":          "type",
	"status":        "status",
	"priority":      "priority",
}

// orderClause resolves a wire-level sort request to "column dir". Unknown
// fields fall back to creation time; the default order is descending.
func orderClause(columns map[string]string, sortBy, sortOrder string) (string, bool) {
	col, ok := columns[sortBy]
	if !ok {
		col = "created_at"
	}
	asc := sortOrder == "asc"
	if asc {
		return col + " asc", true
	}
	return col + " desc", false
}

// applyInvariant recomputes the derived next maintenance date whenever a
// last maintenance date is present.
func applyInvariant(e *models.Equipment) {
	if e.LastMaintenanceDate != nil && e.MaintenanceInterval > 0 {
		next := lifecycle.ProjectNextMaintenance(*e.LastMaintenanceDate, e.MaintenanceInterval)
		e.NextMaintenanceDate = &next
	}
}
