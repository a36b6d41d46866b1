package models

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Maintenance types
const (
	TypePreventive  = "Preventive"
	TypeCorrective  = "Corrective"
	TypeEmergency   = "Emergency"
	TypeInspection  = "Inspection"
	TypeCalibration = "Calibration"
)

// Maintenance statuses. StatusOverdue is part of the declared enum but is
// never persisted by any write path: overdue-ness is computed at query time
// from Scheduled records whose date has passed.
const (
	StatusScheduled  = "Scheduled"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusCancelled  = "Cancelled"
	StatusOverdue    = "Overdue"
)

// Maintenance priorities
const (
	PriorityLow      = "Low"
	PriorityMedium   = "Medium"
	PriorityHigh     = "High"
	PriorityCritical = "Critical"
)

// Technician identifies who performs a maintenance event
type Technician struct {
	Name    string `gorm:"column:technician_name" json:"name"`
	ID      string `gorm:"column:technician_id;index" json:"id"`
	Contact string `gorm:"column:technician_contact" json:"contact"`
}

// Part is a spare part consumed during maintenance
type Part struct {
	Name       string  `json:"name"`
	PartNumber string  `json:"partNumber"`
	Quantity   int     `json:"quantity"`
	Cost       float64 `json:"cost"`
}

// Maintenance represents a scheduled or completed service event against one
// piece of equipment. The equipment reference is weak: equipment lifecycle is
// independent of its maintenance history.
type Maintenance struct {
	ID                uuid.UUID                 `gorm:"type:uuid;primaryKey" json:"id"`
	EquipmentID       uuid.UUID                 `gorm:"type:uuid;not null;index" json:"equipmentId"`
	Type              string                    `gorm:"not null;index" json:"type"`
	Status            string                    `gorm:"not null;index;default:'Scheduled'" json:"status"`
	ScheduledDate     time.Time                 `gorm:"not null;index" json:"scheduledDate"`
	CompletedDate     *time.Time                `json:"completedDate,omitempty"`
	Description       string                    `gorm:"type:text;not null" json:"description"`
	Technician        Technician                `gorm:"embedded" json:"technician"`
	Priority          string                    `gorm:"not null;index;default:'Medium'" json:"priority"`
	EstimatedDuration float64                   `gorm:"not null;default:2" json:"estimatedDuration"`
	ActualDuration    *float64                  `json:"actualDuration,omitempty"`
	Cost              float64                   `gorm:"default:0" json:"cost"`
	PartsUsed         datatypes.JSONSlice[Part] `json:"partsUsed"`
	Findings          string                    `gorm:"type:text" json:"findings"`
	ActionsTaken      string                    `gorm:"type:text" json:"actionsTaken"`
	Recommendations   string                    `gorm:"type:text" json:"recommendations"`
	IsRecurring       bool                      `gorm:"default:false" json:"isRecurring"`
	RecurringInterval *int                      `json:"recurringInterval,omitempty"`
	Notes             string                    `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time                 `json:"createdAt"`
	UpdatedAt         time.Time                 `json:"updatedAt"`

	// Weak reference: equipment can be deleted out from under its history,
	// so no FK constraint is migrated for this association.
	Equipment *Equipment `gorm:"foreignKey:EquipmentID" json:"equipment,omitempty"`
}

// TableName specifies the table name for Maintenance model
func (Maintenance) TableName() string {
	return "maintenance_records"
}

// BeforeCreate assigns a generated ID when none is set
func (m *Maintenance) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// IsCompleted reports whether the record reached the Completed state
func (m *Maintenance) IsCompleted() bool {
	return m.Status == StatusCompleted
}

// DaysUntilScheduled returns calendar days until the scheduled date, rounded up
func (m *Maintenance) DaysUntilScheduled(now time.Time) int {
	return int(math.Ceil(m.ScheduledDate.Sub(now).Hours() / 24))
}

// TotalCost sums the base cost and all parts used
func (m *Maintenance) TotalCost() float64 {
	total := m.Cost
	for _, p := range m.PartsUsed {
		total += p.Cost * float64(p.Quantity)
	}
	return total
}

// MaintenanceTypes lists the closed type enum
func MaintenanceTypes() []string {
	return []string{
		TypePreventive, TypeCorrective, TypeEmergency,
		TypeInspection, TypeCalibration,
	}
}

// MaintenanceStatuses lists the closed status enum, including the
// query-only Overdue label
func MaintenanceStatuses() []string {
	return []string{
		StatusScheduled, StatusInProgress, StatusCompleted,
		StatusCancelled, StatusOverdue,
	}
}

// MaintenancePriorities lists the closed priority enum
func MaintenancePriorities() []string {
	return []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

// ValidMaintenanceType reports whether t is a known maintenance type
func ValidMaintenanceType(t string) bool {
	return contains(MaintenanceTypes(), t)
}

// ValidMaintenanceStatus reports whether s is a known maintenance status
func ValidMaintenanceStatus(s string) bool {
	return contains(MaintenanceStatuses(), s)
}

// ValidMaintenancePriority reports whether p is a known priority
func ValidMaintenancePriority(p string) bool {
	return contains(MaintenancePriorities(), p)
}

// Validate checks required fields and enum membership for a create.
// Returns nil when the record is well formed.
func (m *Maintenance) Validate() ValidationErrors {
	var errs ValidationErrors
	if m.EquipmentID == uuid.Nil {
		errs = append(errs, "equipmentId is required")
	}
	if m.Type == "" {
		errs = append(errs, "type is required")
	} else if !ValidMaintenanceType(m.Type) {
		errs = append(errs, fmt.Sprintf("invalid type %q", m.Type))
	}
	if m.Status != "" && !ValidMaintenanceStatus(m.Status) {
		errs = append(errs, fmt.Sprintf("invalid status %q", m.Status))
	}
	if m.Priority != "" && !ValidMaintenancePriority(m.Priority) {
		errs = append(errs, fmt.Sprintf("invalid priority %q", m.Priority))
	}
	if m.ScheduledDate.IsZero() {
		errs = append(errs, "scheduledDate is required")
	}
	if m.Description == "" {
		errs = append(errs, "description is required")
	}
	if m.Technician.Name == "" {
		errs = append(errs, "technician.name is required")
	}
	if m.Technician.ID == "" {
		errs = append(errs, "technician.id is required")
	}
	if m.Technician.Contact == "" {
		errs = append(errs, "technician.contact is required")
	}
	if m.Cost < 0 {
		errs = append(errs, "cost must not be negative")
	}
	for i, p := range m.PartsUsed {
		if p.Name == "" || p.PartNumber == "" {
			errs = append(errs, fmt.Sprintf("partsUsed[%d] needs name and partNumber", i))
		}
		if p.Quantity < 1 {
			errs = append(errs, fmt.Sprintf("partsUsed[%d].quantity must be at least 1", i))
		}
		if p.Cost < 0 {
			errs = append(errs, fmt.Sprintf("partsUsed[%d].cost must not be negative", i))
		}
	}
	return errs
}
