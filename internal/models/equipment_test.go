package models

import (
	"strings"
	"testing"
	"time"
)

func validEquipment() Equipment {
	return Equipment{
		Name:                "Infusion Pump",
		SerialNumber:        "IP-100-2024",
		Category:            CategoryTherapeutic,
		Status:              EquipmentOperational,
		Location:            "Ward 3",
		Department:          "Oncology",
		Manufacturer:        "Baxter",
		Model:               "Spectrum IQ",
		PurchaseDate:        time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
		MaintenanceInterval: 30,
		Criticality:         CriticalityMedium,
	}
}

func TestEquipmentValidate(t *testing.T) {
	e := validEquipment()
	if errs := e.Validate(); len(errs) > 0 {
		t.Fatalf("valid equipment rejected: %v", errs)
	}

	e = validEquipment()
	e.Name = ""
	e.SerialNumber = ""
	errs := e.Validate()
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), errs)
	}

	e = validEquipment()
	e.Category = "Appliance"
	if errs := e.Validate(); len(errs) != 1 || !strings.Contains(errs[0], "invalid category") {
		t.Errorf("unknown category: %v", errs)
	}

	e = validEquipment()
	e.Status = "Broken"
	if errs := e.Validate(); len(errs) != 1 || !strings.Contains(errs[0], "invalid status") {
		t.Errorf("unknown status: %v", errs)
	}

	e = validEquipment()
	e.MaintenanceInterval = 0
	if errs := e.Validate(); len(errs) != 1 {
		t.Errorf("zero interval: %v", errs)
	}
}

func TestValidationErrorsOrNil(t *testing.T) {
	var empty ValidationErrors
	if err := empty.OrNil(); err != nil {
		t.Errorf("empty list should be nil error, got %v", err)
	}
	errs := ValidationErrors{"a is required", "b is required"}
	if err := errs.OrNil(); err == nil || err.Error() != "a is required; b is required" {
		t.Errorf("joined message = %v", err)
	}
}

func TestWarrantyHelpers(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	e := validEquipment()
	if e.IsWarrantyExpired(now) {
		t.Error("no expiry date should not read as expired")
	}
	if e.WarrantyDaysRemaining(now) != nil {
		t.Error("no expiry date should give nil days remaining")
	}

	past := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e.WarrantyExpiry = &past
	if !e.IsWarrantyExpired(now) {
		t.Error("past expiry should read as expired")
	}

	future := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	e.WarrantyExpiry = &future
	if e.IsWarrantyExpired(now) {
		t.Error("future expiry should not read as expired")
	}
	if days := e.WarrantyDaysRemaining(now); days == nil || *days != 10 {
		t.Errorf("days remaining = %v, want 10", days)
	}
}

func TestDaysUntilMaintenance(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	e := validEquipment()
	if e.DaysUntilMaintenance(now) != nil {
		t.Error("no next date should give nil")
	}

	next := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
	e.NextMaintenanceDate = &next
	if days := e.DaysUntilMaintenance(now); days == nil || *days != 5 {
		t.Errorf("days until = %v, want 5", days)
	}

	past := time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC)
	e.NextMaintenanceDate = &past
	if days := e.DaysUntilMaintenance(now); days == nil || *days != -3 {
		t.Errorf("days until = %v, want -3", days)
	}
}
