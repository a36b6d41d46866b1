package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/careops/equiptrack/internal/lifecycle"
	"github.com/careops/equiptrack/internal/models"
	"github.com/google/uuid"
)

// MemoryStores is an in-memory implementation of both repositories with the
// same semantics as the Postgres one. It backs the handler and store tests so
// nothing depends on a live database or process-wide state.
type MemoryStores struct {
	mu          sync.RWMutex
	equipment   map[uuid.UUID]models.Equipment
	maintenance map[uuid.UUID]models.Maintenance
	clock       func() time.Time
}

// NewMemoryStores creates empty in-memory repositories
func NewMemoryStores() *MemoryStores {
	return &MemoryStores{
		equipment:   make(map[uuid.UUID]models.Equipment),
		maintenance: make(map[uuid.UUID]models.Maintenance),
		clock:       time.Now,
	}
}

// Stores exposes the bundle the router expects
func (m *MemoryStores) Stores() Stores {
	return Stores{
		Equipment:   (*memoryEquipment)(m),
		Maintenance: (*memoryMaintenance)(m),
	}
}

type memoryEquipment MemoryStores
type memoryMaintenance MemoryStores

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func matchesSearch(e *models.Equipment, query string) bool {
	return containsFold(e.Name, query) ||
		containsFold(e.Category, query) ||
		containsFold(e.Manufacturer, query) ||
		containsFold(e.Model, query) ||
		containsFold(e.Location, query) ||
		containsFold(e.SerialNumber, query)
}

func sortEquipment(list []models.Equipment, sortBy, sortOrder string) {
	asc := sortOrder == "asc"
	less := func(a, b *models.Equipment) bool {
		switch sortBy {
		case "name":
			return a.Name < b.Name
		case "serialNumber":
			return a.SerialNumber < b.SerialNumber
		case "category":
			return a.Category < b.Category
		case "status":
			return a.Status < b.Status
		case "department":
			return a.Department < b.Department
		case "criticality":
			return a.Criticality < b.Criticality
		case "purchaseDate":
			return a.PurchaseDate.Before(b.PurchaseDate)
		case "nextMaintenanceDate":
			at, bt := a.NextMaintenanceDate, b.NextMaintenanceDate
			if at == nil || bt == nil {
				return bt == nil && at != nil
			}
			return at.Before(*bt)
		case "updatedAt":
			return a.UpdatedAt.Before(b.UpdatedAt)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if asc {
			return less(&list[i], &list[j])
		}
		return less(&list[j], &list[i])
	})
}

func sortMaintenance(list []models.Maintenance, sortBy, sortOrder string) {
	asc := sortOrder == "asc"
	less := func(a, b *models.Maintenance) bool {
		switch sortBy {
		case "scheduledDate":
			return a.ScheduledDate.Before(b.ScheduledDate)
		case "type":
			return a.Type < b.Type
		case "status":
			return a.Status < b.Status
		case "priority":
			return a.Priority < b.Priority
		case "updatedAt":
			return a.UpdatedAt.Before(b.UpdatedAt)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if asc {
			return less(&list[i], &list[j])
		}
		return less(&list[j], &list[i])
	})
}

func (s *memoryEquipment) List(ctx context.Context, f EquipmentFilter) ([]models.Equipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Equipment, 0, len(s.equipment))
	for _, e := range s.equipment {
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		if f.Department != "" && !containsFold(e.Department, f.Department) {
			continue
		}
		if f.Search != "" && !matchesSearch(&e, f.Search) {
			continue
		}
		out = append(out, e)
	}
	sortEquipment(out, f.SortBy, f.SortOrder)
	return out, nil
}

func (s *memoryEquipment) Get(ctx context.Context, id uuid.UUID) (*models.Equipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.equipment[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (s *memoryEquipment) GetBySerial(ctx context.Context, serial string) (*models.Equipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.equipment {
		if e.SerialNumber == serial {
			return &e, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memoryEquipment) Create(ctx context.Context, e *models.Equipment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.equipment {
		if existing.SerialNumber == e.SerialNumber {
			return ErrDuplicateSerial
		}
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := s.clock()
	e.CreatedAt = now
	e.UpdatedAt = now
	applyInvariant(e)
	s.equipment[e.ID] = *e
	return nil
}

func (s *memoryEquipment) Update(ctx context.Context, e *models.Equipment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.equipment[e.ID]; !ok {
		return ErrNotFound
	}
	for id, existing := range s.equipment {
		if id != e.ID && existing.SerialNumber == e.SerialNumber {
			return ErrDuplicateSerial
		}
	}
	applyInvariant(e)
	e.UpdatedAt = s.clock()
	s.equipment[e.ID] = *e
	return nil
}

func (s *memoryEquipment) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.equipment[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.Status = status
	e.UpdatedAt = s.clock()
	s.equipment[id] = e
	return &e, nil
}

func (s *memoryEquipment) Delete(ctx context.Context, id uuid.UUID) (*models.Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.equipment[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.equipment, id)
	return &e, nil
}

func (s *memoryEquipment) Search(ctx context.Context, query string) ([]models.Equipment, error) {
	return s.List(ctx, EquipmentFilter{Search: query})
}

func (s *memoryEquipment) ByCategory(ctx context.Context, category string) ([]models.Equipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Equipment
	for _, e := range s.equipment {
		if containsFold(e.Category, category) {
			out = append(out, e)
		}
	}
	sortEquipment(out, "", "")
	return out, nil
}

func (s *memoryEquipment) ByStatus(ctx context.Context, status string) ([]models.Equipment, error) {
	return s.List(ctx, EquipmentFilter{Status: status})
}

func (s *memoryEquipment) ByDepartment(ctx context.Context, department string) ([]models.Equipment, error) {
	return s.List(ctx, EquipmentFilter{Department: department})
}

func (s *memoryEquipment) MaintenanceDue(ctx context.Context, now time.Time) ([]models.Equipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Equipment
	for _, e := range s.equipment {
		if e.Status == models.EquipmentRetired {
			continue
		}
		if e.IsMaintenanceDue(now) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NextMaintenanceDate.Before(*out[j].NextMaintenanceDate)
	})
	return out, nil
}

func (s *memoryEquipment) Critical(ctx context.Context) ([]models.Equipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Equipment
	for _, e := range s.equipment {
		if e.Status == models.EquipmentRetired {
			continue
		}
		if e.Criticality == models.CriticalityCritical || e.Criticality == models.CriticalityHigh {
			out = append(out, e)
		}
	}
	sortEquipment(out, "", "")
	return out, nil
}

func (s *memoryEquipment) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.equipment)), nil
}

func (s *memoryEquipment) StatusBreakdown(ctx context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int)
	for _, e := range s.equipment {
		out[e.Status]++
	}
	return out, nil
}

func (s *memoryEquipment) CategoryBreakdown(ctx context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int)
	for _, e := range s.equipment {
		out[e.Category]++
	}
	return out, nil
}

func (s *memoryEquipment) Departments(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, e := range s.equipment {
		if !seen[e.Department] {
			seen[e.Department] = true
			out = append(out, e.Department)
		}
	}
	sort.Strings(out)
	return out, nil
}

// attachEquipment mirrors the Preload the Postgres store does on reads
func (s *memoryMaintenance) attachEquipment(m models.Maintenance) models.Maintenance {
	if e, ok := s.equipment[m.EquipmentID]; ok {
		attached := e
		m.Equipment = &attached
	}
	return m
}

func (s *memoryMaintenance) List(ctx context.Context, f MaintenanceFilter) ([]models.Maintenance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Maintenance, 0, len(s.maintenance))
	for _, m := range s.maintenance {
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if f.Priority != "" && m.Priority != f.Priority {
			continue
		}
		out = append(out, s.attachEquipment(m))
	}
	sortMaintenance(out, f.SortBy, f.SortOrder)
	return out, nil
}

func (s *memoryMaintenance) All(ctx context.Context) ([]models.Maintenance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Maintenance, 0, len(s.maintenance))
	for _, m := range s.maintenance {
		out = append(out, m)
	}
	return out, nil
}

func (s *memoryMaintenance) Get(ctx context.Context, id uuid.UUID) (*models.Maintenance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.maintenance[id]
	if !ok {
		return nil, ErrNotFound
	}
	m = s.attachEquipment(m)
	return &m, nil
}

func (s *memoryMaintenance) Create(ctx context.Context, m *models.Maintenance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.equipment[m.EquipmentID]; !ok {
		return ErrNotFound
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	now := s.clock()
	m.CreatedAt = now
	m.UpdatedAt = now
	s.maintenance[m.ID] = *m
	// a record born Completed moves the equipment dates forward, same as Complete
	if m.Status == models.StatusCompleted && m.CompletedDate != nil {
		e := s.equipment[m.EquipmentID]
		completed := *m.CompletedDate
		e.LastMaintenanceDate = &completed
		applyInvariant(&e)
		e.UpdatedAt = now
		s.equipment[m.EquipmentID] = e
	}
	return nil
}

func (s *memoryMaintenance) Update(ctx context.Context, m *models.Maintenance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.maintenance[m.ID]; !ok {
		return ErrNotFound
	}
	m.UpdatedAt = s.clock()
	stored := *m
	stored.Equipment = nil
	s.maintenance[m.ID] = stored
	return nil
}

func (s *memoryMaintenance) Delete(ctx context.Context, id uuid.UUID) (*models.Maintenance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.maintenance[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.maintenance, id)
	return &m, nil
}

func (s *memoryMaintenance) ByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]models.Maintenance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Maintenance
	for _, m := range s.maintenance {
		if m.EquipmentID == equipmentID {
			out = append(out, s.attachEquipment(m))
		}
	}
	sortMaintenance(out, "scheduledDate", "desc")
	return out, nil
}

func (s *memoryMaintenance) ByTechnician(ctx context.Context, technicianID string) ([]models.Maintenance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Maintenance
	for _, m := range s.maintenance {
		if m.Technician.ID == technicianID {
			out = append(out, s.attachEquipment(m))
		}
	}
	sortMaintenance(out, "", "")
	return out, nil
}

func (s *memoryMaintenance) Overdue(ctx context.Context, now time.Time) ([]models.Maintenance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Maintenance
	for _, m := range s.maintenance {
		if lifecycle.IsRecordOverdue(&m, now) {
			out = append(out, s.attachEquipment(m))
		}
	}
	sortMaintenance(out, "scheduledDate", "asc")
	return out, nil
}

func (s *memoryMaintenance) Upcoming(ctx context.Context, now time.Time, days int) ([]models.Maintenance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	until := now.AddDate(0, 0, days)
	var out []models.Maintenance
	for _, m := range s.maintenance {
		if m.Status != models.StatusScheduled {
			continue
		}
		if m.ScheduledDate.Before(now) || m.ScheduledDate.After(until) {
			continue
		}
		out = append(out, s.attachEquipment(m))
	}
	sortMaintenance(out, "scheduledDate", "asc")
	return out, nil
}

func (s *memoryMaintenance) Complete(ctx context.Context, id uuid.UUID, input lifecycle.CompletionInput, now time.Time) (*models.Maintenance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.maintenance[id]
	if !ok {
		return nil, ErrNotFound
	}

	completed, patch := lifecycle.CompleteMaintenance(m, input, now)
	completed.UpdatedAt = s.clock()
	s.maintenance[id] = completed

	if e, ok := s.equipment[patch.EquipmentID]; ok {
		e.LastMaintenanceDate = &patch.LastMaintenanceDate
		applyInvariant(&e)
		e.UpdatedAt = s.clock()
		s.equipment[patch.EquipmentID] = e
	}

	result := s.attachEquipment(completed)
	return &result, nil
}
