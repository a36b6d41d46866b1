package lifecycle

import (
	"testing"
	"time"

	"github.com/careops/equiptrack/internal/models"
	"github.com/google/uuid"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestProjectNextMaintenance(t *testing.T) {
	// 90 calendar days from Jan 15 lands on Apr 14 (not Apr 15)
	got := ProjectNextMaintenance(day("2024-01-15"), 90)
	want := day("2024-04-14")
	if !got.Equal(want) {
		t.Errorf("ProjectNextMaintenance(2024-01-15, 90) = %s, want %s",
			got.Format("2006-01-02"), want.Format("2006-01-02"))
	}

	// Month boundaries roll over
	got = ProjectNextMaintenance(day("2024-01-31"), 30)
	want = day("2024-03-01")
	if !got.Equal(want) {
		t.Errorf("ProjectNextMaintenance(2024-01-31, 30) = %s, want %s",
			got.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestDueAndOverdue(t *testing.T) {
	now := day("2024-03-01")

	cases := []struct {
		name    string
		next    *time.Time
		due     bool
		overdue bool
	}{
		{"no next date", nil, false, false},
		{"future", ptr(day("2024-03-10")), false, false},
		{"due today", ptr(day("2024-03-01")), true, false},
		{"inside grace window", ptr(day("2024-02-26")), true, false},
		{"grace boundary", ptr(day("2024-02-23")), true, true},
		{"well past", ptr(day("2024-01-01")), true, true},
	}

	for _, tc := range cases {
		e := &models.Equipment{NextMaintenanceDate: tc.next}
		if got := IsMaintenanceDue(e, now); got != tc.due {
			t.Errorf("%s: IsMaintenanceDue = %v, want %v", tc.name, got, tc.due)
		}
		if got := IsMaintenanceOverdue(e, now); got != tc.overdue {
			t.Errorf("%s: IsMaintenanceOverdue = %v, want %v", tc.name, got, tc.overdue)
		}
		// overdue must never hold without due
		if IsMaintenanceOverdue(e, now) && !IsMaintenanceDue(e, now) {
			t.Errorf("%s: overdue without due", tc.name)
		}
	}
}

func TestIsRecordOverdue(t *testing.T) {
	now := day("2024-03-01")

	past := models.Maintenance{Status: models.StatusScheduled, ScheduledDate: day("2024-02-01")}
	if !IsRecordOverdue(&past, now) {
		t.Error("scheduled record with past date should be overdue")
	}

	future := models.Maintenance{Status: models.StatusScheduled, ScheduledDate: day("2024-04-01")}
	if IsRecordOverdue(&future, now) {
		t.Error("scheduled record with future date should not be overdue")
	}

	// A finished record is never overdue no matter how old its date is
	done := models.Maintenance{Status: models.StatusCompleted, ScheduledDate: day("2023-01-01")}
	if IsRecordOverdue(&done, now) {
		t.Error("completed record should not be overdue")
	}

	cancelled := models.Maintenance{Status: models.StatusCancelled, ScheduledDate: day("2023-01-01")}
	if IsRecordOverdue(&cancelled, now) {
		t.Error("cancelled record should not be overdue")
	}
}

func TestCompleteMaintenance(t *testing.T) {
	now := day("2024-02-10")
	equipmentID := uuid.New()
	record := models.Maintenance{
		ID:            uuid.New(),
		EquipmentID:   equipmentID,
		Type:          models.TypePreventive,
		Status:        models.StatusScheduled,
		ScheduledDate: day("2024-02-08"),
	}

	duration := 2.5
	completed, patch := CompleteMaintenance(record, CompletionInput{
		ActualDuration:  &duration,
		Findings:        "filter clogged",
		ActionsTaken:    "replaced filter",
		Recommendations: "check monthly",
		PartsUsed:       []models.Part{{Name: "Air Filter", PartNumber: "AF-100", Quantity: 1, Cost: 40}},
	}, now)

	if completed.Status != models.StatusCompleted {
		t.Errorf("status = %q, want %q", completed.Status, models.StatusCompleted)
	}
	if completed.CompletedDate == nil || !completed.CompletedDate.Equal(now) {
		t.Errorf("completedDate = %v, want %s", completed.CompletedDate, now)
	}
	if completed.ActualDuration == nil || *completed.ActualDuration != duration {
		t.Errorf("actualDuration = %v, want %v", completed.ActualDuration, duration)
	}
	if completed.Findings != "filter clogged" || completed.ActionsTaken != "replaced filter" {
		t.Error("execution record fields not carried over")
	}
	if len(completed.PartsUsed) != 1 || completed.PartsUsed[0].PartNumber != "AF-100" {
		t.Errorf("partsUsed = %v", completed.PartsUsed)
	}

	if patch.EquipmentID != equipmentID {
		t.Errorf("patch.EquipmentID = %s, want %s", patch.EquipmentID, equipmentID)
	}
	if !patch.LastMaintenanceDate.Equal(now) {
		t.Errorf("patch.LastMaintenanceDate = %s, want %s", patch.LastMaintenanceDate, now)
	}

	// The input record is untouched
	if record.Status != models.StatusScheduled || record.CompletedDate != nil {
		t.Error("CompleteMaintenance mutated its input")
	}
}

func TestCompleteMaintenanceKeepsExistingParts(t *testing.T) {
	record := models.Maintenance{
		EquipmentID: uuid.New(),
		Status:      models.StatusInProgress,
	}
	record.PartsUsed = append(record.PartsUsed, models.Part{Name: "Fuse", Quantity: 2})

	completed, _ := CompleteMaintenance(record, CompletionInput{}, day("2024-02-10"))
	if len(completed.PartsUsed) != 1 || completed.PartsUsed[0].Name != "Fuse" {
		t.Errorf("nil PartsUsed input should not clear existing parts, got %v", completed.PartsUsed)
	}
}

func TestScheduleRecurring(t *testing.T) {
	now := day("2024-01-01")
	equipmentID := uuid.New()

	record := ScheduleRecurring(RecurringTemplate{
		EquipmentID: equipmentID,
		Type:        models.TypeInspection,
		Description: "quarterly inspection",
		Technician:  models.Technician{Name: "John Smith", ID: "TECH001"},
	}, 30, now)

	if record.Status != models.StatusScheduled {
		t.Errorf("status = %q, want %q", record.Status, models.StatusScheduled)
	}
	if want := day("2024-01-31"); !record.ScheduledDate.Equal(want) {
		t.Errorf("scheduledDate = %s, want %s", record.ScheduledDate.Format("2006-01-02"), want.Format("2006-01-02"))
	}
	if !record.IsRecurring {
		t.Error("record should be flagged recurring")
	}
	if record.RecurringInterval == nil || *record.RecurringInterval != 30 {
		t.Errorf("recurringInterval = %v, want 30", record.RecurringInterval)
	}
	if record.Priority != models.PriorityMedium {
		t.Errorf("empty priority should default to %q, got %q", models.PriorityMedium, record.Priority)
	}
	if record.EquipmentID != equipmentID {
		t.Errorf("equipmentID = %s, want %s", record.EquipmentID, equipmentID)
	}

	// Explicit priority is preserved
	record = ScheduleRecurring(RecurringTemplate{
		EquipmentID: equipmentID,
		Type:        models.TypeInspection,
		Description: "x",
		Priority:    models.PriorityHigh,
	}, 7, now)
	if record.Priority != models.PriorityHigh {
		t.Errorf("priority = %q, want %q", record.Priority, models.PriorityHigh)
	}
}

func TestComputeStats(t *testing.T) {
	now := day("2024-03-01")

	empty := ComputeStats(nil, now)
	if empty.Total != 0 || empty.CompletionRate != 0 {
		t.Errorf("empty stats = %+v, want zeros", empty)
	}

	records := []models.Maintenance{
		{Status: models.StatusCompleted, ScheduledDate: day("2024-01-10")},
		{Status: models.StatusCompleted, ScheduledDate: day("2024-02-10")},
		{Status: models.StatusScheduled, ScheduledDate: day("2024-02-01")}, // overdue
		{Status: models.StatusScheduled, ScheduledDate: day("2024-04-01")},
		{Status: models.StatusInProgress, ScheduledDate: day("2024-02-25")},
		{Status: models.StatusCancelled, ScheduledDate: day("2024-01-01")},
	}

	s := ComputeStats(records, now)
	if s.Total != 6 {
		t.Errorf("total = %d, want 6", s.Total)
	}
	if s.Completed != 2 || s.Scheduled != 2 || s.InProgress != 1 {
		t.Errorf("counts = %+v", s)
	}
	if s.Overdue != 1 {
		t.Errorf("overdue = %d, want 1", s.Overdue)
	}
	if want := float64(2) / float64(6) * 100; s.CompletionRate != want {
		t.Errorf("completionRate = %v, want %v", s.CompletionRate, want)
	}
}

func TestTransitions(t *testing.T) {
	legal := [][2]string{
		{models.StatusScheduled, models.StatusInProgress},
		{models.StatusScheduled, models.StatusCompleted},
		{models.StatusScheduled, models.StatusCancelled},
		{models.StatusInProgress, models.StatusCompleted},
		{models.StatusInProgress, models.StatusCancelled},
		{models.StatusCompleted, models.StatusCompleted},
	}
	for _, tr := range legal {
		if err := ValidateTransition(tr[0], tr[1]); err != nil {
			t.Errorf("ValidateTransition(%q, %q) = %v, want nil", tr[0], tr[1], err)
		}
	}

	illegal := [][2]string{
		{models.StatusCompleted, models.StatusScheduled},
		{models.StatusCompleted, models.StatusInProgress},
		{models.StatusCancelled, models.StatusScheduled},
		{models.StatusInProgress, models.StatusScheduled},
	}
	for _, tr := range illegal {
		if err := ValidateTransition(tr[0], tr[1]); err == nil {
			t.Errorf("ValidateTransition(%q, %q) = nil, want error", tr[0], tr[1])
		}
	}

	if err := ValidateTransition(models.StatusScheduled, models.StatusOverdue); err == nil {
		t.Error("Overdue must not be settable")
	}
	if err := ValidateTransition(models.StatusScheduled, "Paused"); err == nil {
		t.Error("unknown status must be rejected")
	}
}

func ptr(t time.Time) *time.Time { return &t }
