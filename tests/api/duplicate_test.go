package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	equipmentApi "propshop.GO/api/equipment"
	equipmentEntity "propshop.GO/model/entity/equipment"
)

func equipmentTestServer(t *testing.T, db *gorm.DB) *echo.Echo {
	t.Helper()
	e := echo.New()
	apiGroup := e.Group("/api")
	apiGroup.Use(middleware.BasicAuth(func(user, pass string, c echo.Context) (bool, error) {
		return user == testUser && pass == testPass, nil
	}))
	equipmentApi.RegisterEquipmentRoutes(apiGroup, db)
	return e
}

func seedEquipment(t *testing.T, db *gorm.DB, serial string, qty int) *equipmentEntity.EquipmentItem {
	t.Helper()
	item := equipmentEntity.EquipmentItem{Brand: "Robe", Model: "Pointe", SerialNumber: serial, TotalQuantity: qty}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed equipment: %v", err)
	}
	return &item
}

func TestDuplicateAPI_BatchDuplicate(t *testing.T) {
	db := apiTestDB(t)
	src := seedEquipment(t, db, "DUP-API-1", 2)
	e := equipmentTestServer(t, db)

	rec := doJSON(e, http.MethodPost, "/api/equipment/batch-duplicate", map[string]interface{}{
		"equipment_ids": []uint{src.ItemID},
		"copy_count":    2,
		"id_pattern":    "DUP-API-COPY-{n}",
	}, basicAuth(testUser, testPass))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		JobID    string                   `json:"job_id"`
		Created  []map[string]interface{} `json:"created"`
		Failures []map[string]interface{} `json:"failures"`
		Progress int                      `json:"progress"`
	}
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.JobID == "" {
		t.Error("missing job_id")
	}
	if len(resp.Created) != 2 {
		t.Errorf("created = %d, want 2", len(resp.Created))
	}
	if len(resp.Failures) != 0 {
		t.Errorf("failures = %+v, want none", resp.Failures)
	}
	if resp.Progress != 100 {
		t.Errorf("progress = %d, want 100", resp.Progress)
	}
	if rec.Header().Get("X-Request-Duration-ms") == "" {
		t.Error("missing X-Request-Duration-ms header")
	}

	// progress stays pollable after the job finishes
	rec = doJSON(e, http.MethodGet, fmt.Sprintf("/api/equipment/batch-duplicate/%s/progress", resp.JobID), nil, basicAuth(testUser, testPass))
	if rec.Code != http.StatusOK {
		t.Fatalf("progress status = %d", rec.Code)
	}
	var prog map[string]interface{}
	json.NewDecoder(rec.Body).Decode(&prog)
	if prog["progress"] != float64(100) {
		t.Errorf("progress = %v, want 100", prog["progress"])
	}
}

func TestDuplicateAPI_InvalidPattern_Returns400(t *testing.T) {
	db := apiTestDB(t)
	src := seedEquipment(t, db, "DUP-API-2", 1)
	e := equipmentTestServer(t, db)

	rec := doJSON(e, http.MethodPost, "/api/equipment/batch-duplicate", map[string]interface{}{
		"equipment_ids": []uint{src.ItemID},
		"copy_count":    2,
		"id_pattern":    "no-placeholder",
	}, basicAuth(testUser, testPass))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400, body: %s", rec.Code, rec.Body.String())
	}
}

func TestDuplicateAPI_InvalidCount_Returns400(t *testing.T) {
	db := apiTestDB(t)
	src := seedEquipment(t, db, "DUP-API-3", 1)
	e := equipmentTestServer(t, db)

	rec := doJSON(e, http.MethodPost, "/api/equipment/batch-duplicate", map[string]interface{}{
		"equipment_ids": []uint{src.ItemID},
		"copy_count":    51,
		"id_pattern":    "X-{n}",
	}, basicAuth(testUser, testPass))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDuplicateAPI_UnknownSources_Returns404(t *testing.T) {
	db := apiTestDB(t)
	e := equipmentTestServer(t, db)

	rec := doJSON(e, http.MethodPost, "/api/equipment/batch-duplicate", map[string]interface{}{
		"equipment_ids": []uint{9999},
		"copy_count":    1,
		"id_pattern":    "X-{n}",
	}, basicAuth(testUser, testPass))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestDuplicateAPI_MissingIDs_Returns400(t *testing.T) {
	db := apiTestDB(t)
	e := equipmentTestServer(t, db)

	rec := doJSON(e, http.MethodPost, "/api/equipment/batch-duplicate", map[string]interface{}{
		"copy_count": 1,
		"id_pattern": "X-{n}",
	}, basicAuth(testUser, testPass))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDuplicateAPI_UnknownJobProgress_Returns404(t *testing.T) {
	db := apiTestDB(t)
	e := equipmentTestServer(t, db)

	rec := doJSON(e, http.MethodGet, "/api/equipment/batch-duplicate/dup-nope/progress", nil, basicAuth(testUser, testPass))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestAvailabilityAPI_BatchRead(t *testing.T) {
	db := apiTestDB(t)
	a := seedEquipment(t, db, "AV-API-1", 7)
	b := seedEquipment(t, db, "AV-API-2", 3)
	e := equipmentTestServer(t, db)

	path := fmt.Sprintf("/api/equipment/availability?ids=%d,%d", a.ItemID, b.ItemID)
	rec := doJSON(e, http.MethodGet, path, nil, basicAuth(testUser, testPass))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Availability []struct {
			EquipmentID uint `json:"equipment_id"`
			Available   int  `json:"available"`
		} `json:"availability"`
	}
	json.NewDecoder(rec.Body).Decode(&resp)
	if len(resp.Availability) != 2 {
		t.Fatalf("rows = %d, want 2", len(resp.Availability))
	}
	if resp.Availability[0].Available != 7 || resp.Availability[1].Available != 3 {
		t.Errorf("availability = %+v, want 7 and 3", resp.Availability)
	}

	rec = doJSON(e, http.MethodGet, "/api/equipment/availability", nil, basicAuth(testUser, testPass))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing ids status = %d, want 400", rec.Code)
	}
}
