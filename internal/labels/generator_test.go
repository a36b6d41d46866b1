package labels

import (
	"bytes"
	"testing"
	"time"

	"github.com/careops/equiptrack/internal/models"
)

func sample(serial string) models.Equipment {
	return models.Equipment{
		Name:         "Ventilator",
		SerialNumber: serial,
		Category:     models.CategoryLifeSupport,
		Location:     "ICU Room 1",
		Department:   "ICU",
		Manufacturer: "Medtronic",
		Model:        "PB980",
		PurchaseDate: time.Date(2023, 3, 20, 0, 0, 0, 0, time.UTC),
	}
}

func TestGenerateSheet(t *testing.T) {
	out, err := GenerateSheet(SheetConfig{}, []models.Equipment{
		sample("VENT-001"), sample("VENT-002"), sample("VENT-003"),
	})
	if err != nil {
		t.Fatalf("GenerateSheet: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("empty PDF output")
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("output does not start with PDF header")
	}
}

func TestGenerateSheetEmpty(t *testing.T) {
	if _, err := GenerateSheet(SheetConfig{}, nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestGenerateSheetSpillsToSecondPage(t *testing.T) {
	// A 2x2 grid fits 4 labels per page; 5 labels need a second page
	var equipment []models.Equipment
	for _, s := range []string{"A-1", "A-2", "A-3", "A-4", "A-5"} {
		equipment = append(equipment, sample(s))
	}
	out, err := GenerateSheet(SheetConfig{Cols: 2, Rows: 2}, equipment)
	if err != nil {
		t.Fatalf("GenerateSheet: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("empty PDF output")
	}
}
