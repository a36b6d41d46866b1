// Package lifecycle holds the maintenance scheduling core: due/overdue
// predicates, next-date projection, the completion cascade and record
// statistics. Everything here is a pure function over the model types so the
// store and handler layers can share one set of rules.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/careops/equiptrack/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ProjectNextMaintenance returns the next maintenance date for a completed
// service: calendar-day addition in UTC, no DST handling.
func ProjectNextMaintenance(last time.Time, intervalDays int) time.Time {
	return last.UTC().AddDate(0, 0, intervalDays)
}

// IsMaintenanceDue reports whether the equipment's next maintenance date has
// been reached.
func IsMaintenanceDue(e *models.Equipment, now time.Time) bool {
	return e.IsMaintenanceDue(now)
}

// IsMaintenanceOverdue reports whether the due date passed more than the
// grace window ago. Overdue is a strict subset of due.
func IsMaintenanceOverdue(e *models.Equipment, now time.Time) bool {
	return e.IsMaintenanceOverdue(now)
}

// IsRecordOverdue reports whether a maintenance record is overdue: still
// Scheduled with its date in the past. This is a query-time label only;
// models.StatusOverdue is never written to storage.
func IsRecordOverdue(m *models.Maintenance, now time.Time) bool {
	return m.Status == models.StatusScheduled && m.ScheduledDate.Before(now)
}

// CompletionInput carries the execution record captured when a maintenance
// event is closed out.
type CompletionInput struct {
	ActualDuration  *float64      `json:"actualDuration,omitempty"`
	Findings        string        `json:"findings"`
	ActionsTaken    string        `json:"actionsTaken"`
	Recommendations string        `json:"recommendations"`
	PartsUsed       []models.Part `json:"partsUsed,omitempty"`
}

// EquipmentPatch instructs the caller to update the owning equipment after a
// completion. Both writes must land together (the store runs them in one
// transaction).
type EquipmentPatch struct {
	EquipmentID         uuid.UUID
	LastMaintenanceDate time.Time
}

// CompleteMaintenance produces the completed form of a record plus the patch
// for its equipment. It does not touch storage.
func CompleteMaintenance(m models.Maintenance, input CompletionInput, now time.Time) (models.Maintenance, EquipmentPatch) {
	completed := now
	m.Status = models.StatusCompleted
	m.CompletedDate = &completed
	m.ActualDuration = input.ActualDuration
	m.Findings = input.Findings
	m.ActionsTaken = input.ActionsTaken
	m.Recommendations = input.Recommendations
	if input.PartsUsed != nil {
		m.PartsUsed = datatypes.NewJSONSlice(input.PartsUsed)
	}
	return m, EquipmentPatch{
		EquipmentID:         m.EquipmentID,
		LastMaintenanceDate: completed,
	}
}

// RecurringTemplate carries the fields copied onto each generated occurrence
// of a recurring maintenance plan.
type RecurringTemplate struct {
	EquipmentID uuid.UUID
	Type        string
	Description string
	Technician  models.Technician
	Priority    string
}

// ScheduleRecurring builds a new Scheduled record offset intervalDays from
// now, flagged as recurring.
func ScheduleRecurring(tpl RecurringTemplate, intervalDays int, now time.Time) models.Maintenance {
	priority := tpl.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	interval := intervalDays
	return models.Maintenance{
		EquipmentID:       tpl.EquipmentID,
		Type:              tpl.Type,
		Status:            models.StatusScheduled,
		ScheduledDate:     now.UTC().AddDate(0, 0, intervalDays),
		Description:       tpl.Description,
		Technician:        tpl.Technician,
		Priority:          priority,
		IsRecurring:       true,
		RecurringInterval: &interval,
	}
}

// Stats aggregates maintenance records by state
type Stats struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Scheduled      int     `json:"scheduled"`
	InProgress     int     `json:"inProgress"`
	Overdue        int     `json:"overdue"`
	CompletionRate float64 `json:"completionRate"`
}

// ComputeStats counts records by status and derives the completion rate.
// The rate is 0 for an empty input.
func ComputeStats(records []models.Maintenance, now time.Time) Stats {
	var s Stats
	s.Total = len(records)
	for i := range records {
		switch records[i].Status {
		case models.StatusCompleted:
			s.Completed++
		case models.StatusScheduled:
			s.Scheduled++
		case models.StatusInProgress:
			s.InProgress++
		}
		if IsRecordOverdue(&records[i], now) {
			s.Overdue++
		}
	}
	if s.Total > 0 {
		s.CompletionRate = float64(s.Completed) / float64(s.Total) * 100
	}
	return s
}

// CanTransition reports whether a maintenance status change is legal.
// Scheduled and In Progress can move forward or be cancelled; Completed and
// Cancelled are terminal. Overdue is not a reachable state.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	switch from {
	case models.StatusScheduled:
		return to == models.StatusInProgress || to == models.StatusCompleted || to == models.StatusCancelled
	case models.StatusInProgress:
		return to == models.StatusCompleted || to == models.StatusCancelled
	default:
		return false
	}
}

// ValidateTransition returns a descriptive error for an illegal status change
func ValidateTransition(from, to string) error {
	if to == models.StatusOverdue {
		return fmt.Errorf("status %q is computed, not settable", models.StatusOverdue)
	}
	if !models.ValidMaintenanceStatus(to) {
		return fmt.Errorf("unknown status %q", to)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("cannot change status from %q to %q", from, to)
	}
	return nil
}
