package store

import (
	"context"
	"errors"
	"time"

	"github.com/careops/equiptrack/internal/lifecycle"
	"github.com/careops/equiptrack/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormEquipmentStore persists equipment in Postgres via GORM
type GormEquipmentStore struct {
	db *gorm.DB
}

// GormMaintenanceStore persists maintenance records in Postgres via GORM
type GormMaintenanceStore struct {
	db *gorm.DB
}

// NewGormStores wires both repositories onto one GORM session
func NewGormStores(db *gorm.DB) Stores {
	return Stores{
		Equipment:   &GormEquipmentStore{db: db},
		Maintenance: &GormMaintenanceStore{db: db},
	}
}

func (s *GormEquipmentStore) List(ctx context.Context, f EquipmentFilter) ([]models.Equipment, error) {
	q := s.db.WithContext(ctx).Model(&models.Equipment{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Department != "" {
		q = q.Where("department ILIKE ?", "%"+f.Department+"%")
	}
	if f.Search != "" {
		q = searchScopeOn(q, f.Search)
	}
	order, _ := orderClause(equipmentSortColumns, f.SortBy, f.SortOrder)
	var equipment []models.Equipment
	if err := q.Order(order).Find(&equipment).Error; err != nil {
		return nil, err
	}
	return equipment, nil
}

func searchScopeOn(db *gorm.DB, query string) *gorm.DB {
	like := "%" + query + "%"
	return db.Where(
		"name ILIKE ? OR category ILIKE ? OR manufacturer ILIKE ? OR model ILIKE ? OR location ILIKE ? OR serial_number ILIKE ?",
		like, like, like, like, like, like,
	)
}

func (s *GormEquipmentStore) Get(ctx context.Context, id uuid.UUID) (*models.Equipment, error) {
	var e models.Equipment
	if err := s.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (s *GormEquipmentStore) GetBySerial(ctx context.Context, serial string) (*models.Equipment, error) {
	var e models.Equipment
	if err := s.db.WithContext(ctx).First(&e, "serial_number = ?", serial).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (s *GormEquipmentStore) Create(ctx context.Context, e *models.Equipment) error {
	if _, err := s.GetBySerial(ctx, e.SerialNumber); err == nil {
		return ErrDuplicateSerial
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	applyInvariant(e)
	return s.db.WithContext(ctx).Create(e).Error
}

func (s *GormEquipmentStore) Update(ctx context.Context, e *models.Equipment) error {
	if existing, err := s.GetBySerial(ctx, e.SerialNumber); err == nil {
		if existing.ID != e.ID {
			return ErrDuplicateSerial
		}
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	applyInvariant(e)
	return s.db.WithContext(ctx).Save(e).Error
}

func (s *GormEquipmentStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Equipment, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Status = status
	if err := s.db.WithContext(ctx).Save(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

func (s *GormEquipmentStore) Delete(ctx context.Context, id uuid.UUID) (*models.Equipment, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Equipment{}, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return e, nil
}

func (s *GormEquipmentStore) Search(ctx context.Context, query string) ([]models.Equipment, error) {
	var equipment []models.Equipment
	err := searchScopeOn(s.db.WithContext(ctx).Model(&models.Equipment{}), query).
		Order("created_at desc").Find(&equipment).Error
	return equipment, err
}

func (s *GormEquipmentStore) ByCategory(ctx context.Context, category string) ([]models.Equipment, error) {
	var equipment []models.Equipment
	err := s.db.WithContext(ctx).
		Where("category ILIKE ?", "%"+category+"%").
		Order("created_at desc").Find(&equipment).Error
	return equipment, err
}

func (s *GormEquipmentStore) ByStatus(ctx context.Context, status string) ([]models.Equipment, error) {
	var equipment []models.Equipment
	err := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at desc").Find(&equipment).Error
	return equipment, err
}

func (s *GormEquipmentStore) ByDepartment(ctx context.Context, department string) ([]models.Equipment, error) {
	var equipment []models.Equipment
	err := s.db.WithContext(ctx).
		Where("department ILIKE ?", "%"+department+"%").
		Order("created_at desc").Find(&equipment).Error
	return equipment, err
}

func (s *GormEquipmentStore) MaintenanceDue(ctx context.Context, now time.Time) ([]models.Equipment, error) {
	var equipment []models.Equipment
	err := s.db.WithContext(ctx).
		Where("next_maintenance_date IS NOT NULL AND next_maintenance_date <= ? AND status <> ?", now, models.EquipmentRetired).
		Order("next_maintenance_date asc").Find(&equipment).Error
	return equipment, err
}

func (s *GormEquipmentStore) Critical(ctx context.Context) ([]models.Equipment, error) {
	var equipment []models.Equipment
	err := s.db.WithContext(ctx).
		Where("criticality IN ? AND status <> ?",
			[]string{models.CriticalityCritical, models.CriticalityHigh}, models.EquipmentRetired).
		Order("created_at desc").Find(&equipment).Error
	return equipment, err
}

func (s *GormEquipmentStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Equipment{}).Count(&count).Error
	return count, err
}

type breakdownRow struct {
	Value string
	Count int
}

func (s *GormEquipmentStore) StatusBreakdown(ctx context.Context) (map[string]int, error) {
	return s.breakdown(ctx, "status")
}

func (s *GormEquipmentStore) CategoryBreakdown(ctx context.Context) (map[string]int, error) {
	return s.breakdown(ctx, "category")
}

func (s *GormEquipmentStore) breakdown(ctx context.Context, column string) (map[string]int, error) {
	var rows []breakdownRow
	err := s.db.WithContext(ctx).Model(&models.Equipment{}).
		Select(column + " as value, count(*) as count").
		Group(column).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Value] = r.Count
	}
	return out, nil
}

func (s *GormEquipmentStore) Departments(ctx context.Context) ([]string, error) {
	var departments []string
	err := s.db.WithContext(ctx).Model(&models.Equipment{}).
		Distinct("department").Pluck("department", &departments).Error
	return departments, err
}

func (s *GormMaintenanceStore) List(ctx context.Context, f MaintenanceFilter) ([]models.Maintenance, error) {
	q := s.db.WithContext(ctx).Model(&models.Maintenance{}).Preload("Equipment")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	order, _ := orderClause(maintenanceSortColumns, f.SortBy, f.SortOrder)
	var records []models.Maintenance
	if err := q.Order(order).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *GormMaintenanceStore) All(ctx context.Context) ([]models.Maintenance, error) {
	var records []models.Maintenance
	err := s.db.WithContext(ctx).Find(&records).Error
	return records, err
}

func (s *GormMaintenanceStore) Get(ctx context.Context, id uuid.UUID) (*models.Maintenance, error) {
	var m models.Maintenance
	err := s.db.WithContext(ctx).Preload("Equipment").First(&m, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Create inserts a record after checking the equipment reference. A record
// created already Completed moves the equipment's maintenance dates forward
// in the same transaction, mirroring Complete.
func (s *GormMaintenanceStore) Create(ctx context.Context, m *models.Maintenance) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e models.Equipment
		if err := tx.First(&e, "id = ?", m.EquipmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		if m.Status == models.StatusCompleted && m.CompletedDate != nil {
			completed := *m.CompletedDate
			e.LastMaintenanceDate = &completed
			applyInvariant(&e)
			return tx.Save(&e).Error
		}
		return nil
	})
}

func (s *GormMaintenanceStore) Update(ctx context.Context, m *models.Maintenance) error {
	return s.db.WithContext(ctx).Save(m).Error
}

func (s *GormMaintenanceStore) Delete(ctx context.Context, id uuid.UUID) (*models.Maintenance, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Maintenance{}, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return m, nil
}

func (s *GormMaintenanceStore) ByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]models.Maintenance, error) {
	var records []models.Maintenance
	err := s.db.WithContext(ctx).Preload("Equipment").
		Where("equipment_id = ?", equipmentID).
		Order("scheduled_date desc").Find(&records).Error
	return records, err
}

func (s *GormMaintenanceStore) ByTechnician(ctx context.Context, technicianID string) ([]models.Maintenance, error) {
	var records []models.Maintenance
	err := s.db.WithContext(ctx).Preload("Equipment").
		Where("technician_id = ?", technicianID).
		Order("created_at desc").Find(&records).Error
	return records, err
}

func (s *GormMaintenanceStore) Overdue(ctx context.Context, now time.Time) ([]models.Maintenance, error) {
	var records []models.Maintenance
	err := s.db.WithContext(ctx).Preload("Equipment").
		Where("status = ? AND scheduled_date < ?", models.StatusScheduled, now).
		Order("scheduled_date asc").Find(&records).Error
	return records, err
}

func (s *GormMaintenanceStore) Upcoming(ctx context.Context, now time.Time, days int) ([]models.Maintenance, error) {
	var records []models.Maintenance
	until := now.AddDate(0, 0, days)
	err := s.db.WithContext(ctx).Preload("Equipment").
		Where("status = ? AND scheduled_date >= ? AND scheduled_date <= ?", models.StatusScheduled, now, until).
		Order("scheduled_date asc").Find(&records).Error
	return records, err
}

// Complete runs the two-document cascade in one transaction: the record is
// marked completed and the owning equipment's maintenance dates move forward.
// A missing equipment row is tolerated (weak reference); a missing record
// aborts with ErrNotFound.
func (s *GormMaintenanceStore) Complete(ctx context.Context, id uuid.UUID, input lifecycle.CompletionInput, now time.Time) (*models.Maintenance, error) {
	var result models.Maintenance
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.Maintenance
		if err := tx.First(&m, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		completed, patch := lifecycle.CompleteMaintenance(m, input, now)
		if err := tx.Save(&completed).Error; err != nil {
			return err
		}

		var e models.Equipment
		err := tx.First(&e, "id = ?", patch.EquipmentID).Error
		if err == nil {
			e.LastMaintenanceDate = &patch.LastMaintenanceDate
			applyInvariant(&e)
			if err := tx.Save(&e).Error; err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		result = completed
		return nil
	})
	if err != nil {
		return nil, err
	}
	// re-read with the equipment attached for the response payload
	return s.Get(ctx, result.ID)
}
