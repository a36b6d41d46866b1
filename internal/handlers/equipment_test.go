package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/careops/equiptrack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEquipment(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/equipment", map[string]interface{}{
		"name":         "MRI Scanner",
		"serialNumber": "MRI-001-2024",
		"category":     "Imaging",
		"location":     "Radiology Department",
		"department":   "Radiology",
		"manufacturer": "Siemens",
		"model":        "Magnetom Skyra 3T",
		"purchaseDate": "2023-01-15T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	env := decodeEnvelope(t, rec)
	assert.Equal(t, true, env["success"])
	assert.Equal(t, "Equipment created successfully", env["message"])

	data := env["data"].(map[string]interface{})
	assert.NotEmpty(t, data["id"])
	// Omitted fields pick up their defaults
	assert.Equal(t, "Operational", data["status"])
	assert.Equal(t, "Medium", data["criticality"])
	assert.Equal(t, float64(30), data["maintenanceInterval"])
}

func TestCreateEquipmentValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/equipment", map[string]interface{}{
		"name":     "MRI Scanner",
		"category": "Appliance",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.Equal(t, false, env["success"])
	assert.Equal(t, "Validation error", env["message"])
	assert.NotEmpty(t, env["errors"])
}

func TestCreateEquipmentDuplicateSerial(t *testing.T) {
	router, stores := newTestRouter(t)
	createTestEquipment(t, stores, "VENT-002-2024")

	rec := doJSON(t, router, http.MethodPost, "/api/equipment", map[string]interface{}{
		"name":         "Ventilator",
		"serialNumber": "VENT-002-2024",
		"category":     "Life Support",
		"location":     "ICU Room 2",
		"department":   "ICU",
		"manufacturer": "Medtronic",
		"model":        "PB980",
		"purchaseDate": "2023-03-20T00:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Equipment with this serial number already exists", env["message"])
}

func TestListEquipmentEnvelope(t *testing.T) {
	router, stores := newTestRouter(t)
	createTestEquipment(t, stores, "VENT-001")
	createTestEquipment(t, stores, "VENT-002")

	rec := doJSON(t, router, http.MethodGet, "/api/equipment", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.Equal(t, true, env["success"])
	assert.Equal(t, float64(2), env["count"])
	assert.Len(t, env["data"], 2)
}

func TestListEquipmentFilter(t *testing.T) {
	router, stores := newTestRouter(t)
	createTestEquipment(t, stores, "VENT-001")

	mri := createTestEquipment(t, stores, "MRI-001")
	mri.Category = models.CategoryImaging
	require.NoError(t, stores.Equipment.Update(context.Background(), mri))

	rec := doJSON(t, router, http.MethodGet, "/api/equipment?category=Imaging", nil)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, float64(1), env["count"])
}

func TestSearchEquipmentRequiresQuery(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/equipment/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Search query is required", env["message"])

	rec = doJSON(t, router, http.MethodGet, "/api/equipment/search?q=ventilator", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateEquipmentStatus(t *testing.T) {
	router, stores := newTestRouter(t)
	e := createTestEquipment(t, stores, "VENT-001")

	rec := doJSON(t, router, http.MethodPut, "/api/equipment/"+e.ID.String()+"/status",
		map[string]string{"status": "Maintenance"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	env := decodeEnvelope(t, rec)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, "Maintenance", data["status"])
}

func TestUpdateEquipmentStatusRejectsUnknown(t *testing.T) {
	router, stores := newTestRouter(t)
	e := createTestEquipment(t, stores, "VENT-001")

	rec := doJSON(t, router, http.MethodPut, "/api/equipment/"+e.ID.String()+"/status",
		map[string]string{"status": "Broken"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.Contains(t, env["message"], "Invalid status. Must be one of:")

	rec = doJSON(t, router, http.MethodPut, "/api/equipment/"+e.ID.String()+"/status",
		map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env = decodeEnvelope(t, rec)
	assert.Equal(t, "Status is required", env["message"])
}

func TestUpdateEquipmentDuplicateSerial(t *testing.T) {
	router, stores := newTestRouter(t)
	createTestEquipment(t, stores, "VENT-001")
	e := createTestEquipment(t, stores, "VENT-002")

	rec := doJSON(t, router, http.MethodPut, "/api/equipment/"+e.ID.String(),
		map[string]string{"serialNumber": "VENT-001"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Equipment with this serial number already exists", env["message"])

	// keeping its own serial is not a collision
	rec = doJSON(t, router, http.MethodPut, "/api/equipment/"+e.ID.String(),
		map[string]string{"serialNumber": "VENT-002", "location": "ICU Room 2"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestDeleteEquipmentReturnsRecord(t *testing.T) {
	router, stores := newTestRouter(t)
	e := createTestEquipment(t, stores, "VENT-001")

	rec := doJSON(t, router, http.MethodDelete, "/api/equipment/"+e.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Equipment deleted successfully", env["message"])
	data := env["data"].(map[string]interface{})
	assert.Equal(t, "VENT-001", data["serialNumber"])

	rec = doJSON(t, router, http.MethodDelete, "/api/equipment/"+e.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEquipmentStats(t *testing.T) {
	router, stores := newTestRouter(t)

	e := createTestEquipment(t, stores, "VENT-001")
	last := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e.LastMaintenanceDate = &last
	require.NoError(t, stores.Equipment.Update(context.Background(), e))
	createTestEquipment(t, stores, "VENT-002")

	rec := doJSON(t, router, http.MethodGet, "/api/equipment/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["totalEquipment"])
	assert.Equal(t, float64(1), data["totalCategories"])
	assert.Equal(t, float64(1), data["totalDepartments"])
	// VENT-001's derived next date (Jan 31) is behind the test clock
	assert.Equal(t, float64(1), data["maintenanceDueCount"])
	assert.Equal(t, float64(2), data["criticalCount"])
	assert.Contains(t, data, "statusBreakdown")
	assert.Contains(t, data, "categoryBreakdown")
}

func TestMaintenanceDueEndpoint(t *testing.T) {
	router, stores := newTestRouter(t)

	e := createTestEquipment(t, stores, "VENT-001")
	last := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e.LastMaintenanceDate = &last
	require.NoError(t, stores.Equipment.Update(context.Background(), e))
	createTestEquipment(t, stores, "VENT-002") // no dates, never due

	rec := doJSON(t, router, http.MethodGet, "/api/equipment/maintenance-due", nil)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, float64(1), env["count"])
}

func TestEquipmentLabelsPDF(t *testing.T) {
	router, stores := newTestRouter(t)
	createTestEquipment(t, stores, "VENT-001")

	rec := doJSON(t, router, http.MethodPost, "/api/equipment/labels", map[string]interface{}{})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, rec.Body.Len() > 0)
}

func TestEquipmentBySerial(t *testing.T) {
	router, stores := newTestRouter(t)
	createTestEquipment(t, stores, "VENT-001")

	rec := doJSON(t, router, http.MethodGet, "/api/equipment/serial/VENT-001", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "VENT-001", data["serialNumber"])

	rec = doJSON(t, router, http.MethodGet, "/api/equipment/serial/NOPE-999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEquipmentLabelsEmpty(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/equipment/labels", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "No equipment to label", env["message"])
}

func TestEquipmentLabelsMalformedBody(t *testing.T) {
	router, stores := newTestRouter(t)
	createTestEquipment(t, stores, "VENT-001")

	req := httptest.NewRequest(http.MethodPost, "/api/equipment/labels", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Invalid request payload", env["message"])
}

func TestGetEquipmentDerivedFields(t *testing.T) {
	router, stores := newTestRouter(t)
	e := createTestEquipment(t, stores, "VENT-001")
	last := testNow.AddDate(0, 0, -10)
	expiry := testNow.AddDate(0, 0, -1)
	e.LastMaintenanceDate = &last
	e.WarrantyExpiry = &expiry
	require.NoError(t, stores.Equipment.Update(context.Background(), e))

	rec := doJSON(t, router, http.MethodGet, "/api/equipment/"+e.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	// the 30-day interval puts the next date 20 days past the test clock
	assert.Equal(t, float64(20), data["daysUntilMaintenance"])
	assert.Equal(t, true, data["warrantyExpired"])
	assert.Equal(t, float64(-1), data["warrantyDaysRemaining"])
}
