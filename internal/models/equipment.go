package models

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Equipment categories
const (
	CategoryDiagnostic     = "Diagnostic"
	CategoryTherapeutic    = "Therapeutic"
	CategorySurgical       = "Surgical"
	CategoryMonitoring     = "Monitoring"
	CategoryLifeSupport    = "Life Support"
	CategoryImaging        = "Imaging"
	CategoryLaboratory     = "Laboratory"
	CategoryRehabilitation = "Rehabilitation"
	CategoryEmergency      = "Emergency"
	CategoryOther          = "Other"
)

// Equipment statuses
const (
	EquipmentOperational  = "Operational"
	EquipmentMaintenance  = "Maintenance"
	EquipmentOutOfService = "Out of Service"
	EquipmentRepair       = "Repair"
	EquipmentRetired      = "Retired"
)

// Criticality tiers
const (
	CriticalityCritical = "Critical"
	CriticalityHigh     = "High"
	CriticalityMedium   = "Medium"
	CriticalityLow      = "Low"
)

// OverdueGraceDays is the tolerance after the due date before equipment is
// reclassified from "due" to "overdue".
const OverdueGraceDays = 7

// Equipment represents a tracked physical asset
type Equipment struct {
	ID                  uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Name                string            `gorm:"not null" json:"name"`
	SerialNumber        string            `gorm:"unique;not null;index" json:"serialNumber"`
	Category            string            `gorm:"not null;index" json:"category"`
	Status              string            `gorm:"not null;index;default:'Operational'" json:"status"`
	Location            string            `gorm:"not null" json:"location"`
	Department          string            `gorm:"not null;index" json:"department"`
	Manufacturer        string            `gorm:"not null" json:"manufacturer"`
	Model               string            `gorm:"not null" json:"model"`
	PurchaseDate        time.Time         `gorm:"not null" json:"purchaseDate"`
	WarrantyExpiry      *time.Time        `json:"warrantyExpiry,omitempty"`
	LastMaintenanceDate *time.Time        `json:"lastMaintenanceDate,omitempty"`
	NextMaintenanceDate *time.Time        `gorm:"index" json:"nextMaintenanceDate,omitempty"`
	MaintenanceInterval int               `gorm:"not null;default:30" json:"maintenanceInterval"`
	Criticality         string            `gorm:"not null;index;default:'Medium'" json:"criticality"`
	Specifications      datatypes.JSONMap `json:"specifications"`
	Notes               string            `gorm:"type:text" json:"notes"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}

// TableName specifies the table name for Equipment model
func (Equipment) TableName() string {
	return "equipment"
}

// BeforeCreate assigns a generated ID when none is set
func (e *Equipment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// IsMaintenanceDue reports whether maintenance is due at the given instant
func (e *Equipment) IsMaintenanceDue(now time.Time) bool {
	if e.NextMaintenanceDate == nil {
		return false
	}
	return !e.NextMaintenanceDate.After(now)
}

// IsMaintenanceOverdue reports whether the due date has passed the grace window
func (e *Equipment) IsMaintenanceOverdue(now time.Time) bool {
	if e.NextMaintenanceDate == nil {
		return false
	}
	return !e.NextMaintenanceDate.After(now.AddDate(0, 0, -OverdueGraceDays))
}

// DaysUntilMaintenance returns the number of calendar days until the next
// maintenance date, rounded up. Nil when no date is set.
func (e *Equipment) DaysUntilMaintenance(now time.Time) *int {
	if e.NextMaintenanceDate == nil {
		return nil
	}
	days := int(math.Ceil(e.NextMaintenanceDate.Sub(now).Hours() / 24))
	return &days
}

// IsWarrantyExpired reports whether the warranty has lapsed
func (e *Equipment) IsWarrantyExpired(now time.Time) bool {
	if e.WarrantyExpiry == nil {
		return false
	}
	return e.WarrantyExpiry.Before(now)
}

// WarrantyDaysRemaining returns days until warranty expiry, rounded up.
// Nil when no expiry is set.
func (e *Equipment) WarrantyDaysRemaining(now time.Time) *int {
	if e.WarrantyExpiry == nil {
		return nil
	}
	days := int(math.Ceil(e.WarrantyExpiry.Sub(now).Hours() / 24))
	return &days
}

// EquipmentCategories lists the closed category enum
func EquipmentCategories() []string {
	return []string{
		CategoryDiagnostic, CategoryTherapeutic, CategorySurgical,
		CategoryMonitoring, CategoryLifeSupport, CategoryImaging,
		CategoryLaboratory, CategoryRehabilitation, CategoryEmergency,
		CategoryOther,
	}
}

// EquipmentStatuses lists the closed status enum
func EquipmentStatuses() []string {
	return []string{
		EquipmentOperational, EquipmentMaintenance, EquipmentOutOfService,
		EquipmentRepair, EquipmentRetired,
	}
}

// CriticalityLevels lists the closed criticality enum
func CriticalityLevels() []string {
	return []string{
		CriticalityCritical, CriticalityHigh, CriticalityMedium, CriticalityLow,
	}
}

// ValidEquipmentCategory reports whether c is a known category
func ValidEquipmentCategory(c string) bool {
	return contains(EquipmentCategories(), c)
}

// ValidEquipmentStatus reports whether s is a known equipment status
func ValidEquipmentStatus(s string) bool {
	return contains(EquipmentStatuses(), s)
}

// ValidCriticality reports whether c is a known criticality tier
func ValidCriticality(c string) bool {
	return contains(CriticalityLevels(), c)
}

// Validate checks required fields and enum membership for a create/update.
// Returns nil when the record is well formed.
func (e *Equipment) Validate() ValidationErrors {
	var errs ValidationErrors
	if e.Name == "" {
		errs = append(errs, "name is required")
	}
	if e.SerialNumber == "" {
		errs = append(errs, "serialNumber is required")
	}
	if e.Category == "" {
		errs = append(errs, "category is required")
	} else if !ValidEquipmentCategory(e.Category) {
		errs = append(errs, fmt.Sprintf("invalid category %q", e.Category))
	}
	if e.Status != "" && !ValidEquipmentStatus(e.Status) {
		errs = append(errs, fmt.Sprintf("invalid status %q", e.Status))
	}
	if e.Criticality != "" && !ValidCriticality(e.Criticality) {
		errs = append(errs, fmt.Sprintf("invalid criticality %q", e.Criticality))
	}
	if e.Location == "" {
		errs = append(errs, "location is required")
	}
	if e.Department == "" {
		errs = append(errs, "department is required")
	}
	if e.Manufacturer == "" {
		errs = append(errs, "manufacturer is required")
	}
	if e.Model == "" {
		errs = append(errs, "model is required")
	}
	if e.PurchaseDate.IsZero() {
		errs = append(errs, "purchaseDate is required")
	}
	if e.MaintenanceInterval < 1 {
		errs = append(errs, "maintenanceInterval must be at least 1 day")
	}
	return errs
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
