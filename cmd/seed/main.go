package main

import (
	"fmt"
	"log"
	"time"

	"github.com/careops/equiptrack/internal/config"
	"github.com/careops/equiptrack/internal/database"
	"github.com/careops/equiptrack/internal/models"
	"gorm.io/datatypes"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		log.Fatalf("❌ Bad date %q: %v", s, err)
	}
	return t
}

func datePtr(s string) *time.Time {
	t := date(s)
	return &t
}

func main() {
	fmt.Println("🌱 EquipTrack Sample Data Seeder")

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("✅ Connected to database")

	// Run migrations first
	fmt.Println("🔨 Running database migrations...")
	if err := db.Migrate(); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	fmt.Println("✅ Migrations complete")

	// Check if data already exists
	var equipmentCount int64
	db.Model(&models.Equipment{}).Count(&equipmentCount)
	if equipmentCount > 0 {
		fmt.Printf("⚠️  Database already has %d equipment records. Clear it first? (y/N): ", equipmentCount)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("❌ Aborted. Database not modified.")
			return
		}

		// Clear existing data
		fmt.Println("🗑️  Clearing existing data...")
		db.Exec("TRUNCATE TABLE maintenance_records CASCADE")
		db.Exec("TRUNCATE TABLE equipment CASCADE")
		fmt.Println("✅ Data cleared")
	}

	fmt.Println("🏥 Creating sample equipment...")

	equipment := []models.Equipment{
		{
			Name:                "MRI Scanner",
			SerialNumber:        "MRI-001-2024",
			Category:            models.CategoryImaging,
			Status:              models.EquipmentOperational,
			Location:            "Radiology Department",
			Department:          "Radiology",
			Manufacturer:        "Siemens",
			Model:               "Magnetom Skyra 3T",
			PurchaseDate:        date("2023-01-15"),
			WarrantyExpiry:      datePtr("2026-01-15"),
			LastMaintenanceDate: datePtr("2024-01-15"),
			MaintenanceInterval: 90,
			Criticality:         models.CriticalityCritical,
			Specifications: datatypes.JSONMap{
				"Field Strength":       "3 Tesla",
				"Patient Weight Limit": "200 kg",
				"Room Requirements":    "Shielded Room",
			},
			Notes: "Primary MRI scanner for diagnostic imaging",
		},
		{
			Name:                "Ventilator",
			SerialNumber:        "VENT-002-2024",
			Category:            models.CategoryLifeSupport,
			Status:              models.EquipmentOperational,
			Location:            "ICU Room 1",
			Department:          "ICU",
			Manufacturer:        "Medtronic",
			Model:               "PB980",
			PurchaseDate:        date("2023-03-20"),
			WarrantyExpiry:      datePtr("2025-03-20"),
			LastMaintenanceDate: datePtr("2024-01-20"),
			MaintenanceInterval: 30,
			Criticality:         models.CriticalityCritical,
			Specifications: datatypes.JSONMap{
				"Modes":          "Volume, Pressure, SIMV",
				"Flow Range":     "2-120 L/min",
				"Pressure Range": "0-120 cmH2O",
			},
			Notes: "Critical life support equipment",
		},
		{
			Name:                "X-Ray Machine",
			SerialNumber:        "XR-003-2024",
			Category:            models.CategoryImaging,
			Status:              models.EquipmentMaintenance,
			Location:            "Emergency Department",
			Department:          "Emergency",
			Manufacturer:        "GE Healthcare",
			Model:               "Definium 8000",
			PurchaseDate:        date("2022-08-10"),
			WarrantyExpiry:      datePtr("2024-08-10"),
			LastMaintenanceDate: datePtr("2024-01-10"),
			MaintenanceInterval: 60,
			Criticality:         models.CriticalityHigh,
			Specifications: datatypes.JSONMap{
				"Power":         "80 kW",
				"Tube Current":  "800 mA",
				"Exposure Time": "0.001-10 s",
			},
			Notes: "Digital radiography system",
		},
		{
			Name:                "Defibrillator",
			SerialNumber:        "DEF-004-2024",
			Category:            models.CategoryEmergency,
			Status:              models.EquipmentOperational,
			Location:            "Emergency Room",
			Department:          "Emergency",
			Manufacturer:        "Philips",
			Model:               "HeartStart MRx",
			PurchaseDate:        date("2023-06-15"),
			WarrantyExpiry:      datePtr("2026-06-15"),
			LastMaintenanceDate: datePtr("2024-01-15"),
			MaintenanceInterval: 30,
			Criticality:         models.CriticalityCritical,
			Specifications: datatypes.JSONMap{
				"Energy Range": "1-360 J",
				"Waveform":     "Biphasic",
				"Battery Life": "8 hours",
			},
			Notes: "Automated external defibrillator",
		},
		{
			Name:                "Ultrasound Machine",
			SerialNumber:        "US-005-2024",
			Category:            models.CategoryDiagnostic,
			Status:              models.EquipmentOperational,
			Location:            "Cardiology Department",
			Department:          "Cardiology",
			Manufacturer:        "Philips",
			Model:               "EPIQ 7",
			PurchaseDate:        date("2023-09-05"),
			WarrantyExpiry:      datePtr("2026-09-05"),
			LastMaintenanceDate: datePtr("2024-01-05"),
			MaintenanceInterval: 45,
			Criticality:         models.CriticalityHigh,
			Specifications: datatypes.JSONMap{
				"Transducers":     "4",
				"Frequency Range": "1-15 MHz",
				"Display":         "21 inch LED",
			},
			Notes: "Advanced cardiac ultrasound system",
		},
	}

	for i := range equipment {
		if e := &equipment[i]; e.LastMaintenanceDate != nil {
			next := e.LastMaintenanceDate.UTC().AddDate(0, 0, e.MaintenanceInterval)
			e.NextMaintenanceDate = &next
		}
		if err := equipment[i].Validate().OrNil(); err != nil {
			log.Fatalf("❌ Invalid equipment %s: %v", equipment[i].SerialNumber, err)
		}
		if err := db.Create(&equipment[i]).Error; err != nil {
			log.Fatalf("❌ Failed to create equipment %s: %v", equipment[i].SerialNumber, err)
		}
		fmt.Printf("  📦 %s (%s)\n", equipment[i].Name, equipment[i].SerialNumber)
	}

	fmt.Println("🔧 Creating sample maintenance records...")

	interval := 30
	actualDuration := 3.0
	completed := date("2024-01-20")
	maintenance := []models.Maintenance{
		{
			EquipmentID:       equipment[0].ID,
			Type:              models.TypePreventive,
			Status:            models.StatusScheduled,
			ScheduledDate:     date("2024-02-15"),
			Description:       "Monthly preventive maintenance check",
			Technician:        models.Technician{Name: "John Smith", ID: "TECH001", Contact: "john.smith@hospital.com"},
			Priority:          models.PriorityMedium,
			EstimatedDuration: 2,
			Cost:              150.00,
			IsRecurring:       true,
			RecurringInterval: &interval,
			Notes:             "Regular maintenance schedule",
		},
		{
			EquipmentID:       equipment[1].ID,
			Type:              models.TypeCorrective,
			Status:            models.StatusCompleted,
			ScheduledDate:     date("2024-01-20"),
			CompletedDate:     &completed,
			Description:       "Fixed calibration issue",
			Technician:        models.Technician{Name: "Sarah Johnson", ID: "TECH002", Contact: "sarah.johnson@hospital.com"},
			Priority:          models.PriorityHigh,
			EstimatedDuration: 4,
			ActualDuration:    &actualDuration,
			Cost:              300.00,
			PartsUsed: datatypes.NewJSONSlice([]models.Part{
				{Name: "Calibration Sensor", PartNumber: "CAL-001", Quantity: 1, Cost: 200.00},
			}),
			Findings:        "Calibration sensor was malfunctioning",
			ActionsTaken:    "Replaced calibration sensor and recalibrated system",
			Recommendations: "Monitor calibration readings for next 30 days",
			Notes:           "Issue resolved successfully",
		},
	}

	for i := range maintenance {
		if err := maintenance[i].Validate().OrNil(); err != nil {
			log.Fatalf("❌ Invalid maintenance record: %v", err)
		}
		if err := db.Create(&maintenance[i]).Error; err != nil {
			log.Fatalf("❌ Failed to create maintenance record: %v", err)
		}
		fmt.Printf("  🔧 %s %s\n", maintenance[i].Type, maintenance[i].Status)
	}

	fmt.Println()
	fmt.Printf("✅ Sample data inserted: %d equipment, %d maintenance records\n",
		len(equipment), len(maintenance))
}
