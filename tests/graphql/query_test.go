package graphqltest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"propshop.GO/graphqlserver"
	allocationEntity "propshop.GO/model/entity/allocation"
	equipmentEntity "propshop.GO/model/entity/equipment"
	productionEntity "propshop.GO/model/entity/production"
)

func gqlTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("gql_test_%s_%d.db", t.Name(), time.Now().UnixNano()))
	t.Cleanup(func() { os.Remove(tmpFile) })
	db, err := gorm.Open(sqlite.Open(tmpFile), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	if err := db.AutoMigrate(
		&equipmentEntity.EquipmentItem{},
		&productionEntity.Production{},
		&allocationEntity.Reservation{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func runQuery(t *testing.T, db *gorm.DB, query string) (map[string]interface{}, []struct{ Message string }) {
	t.Helper()
	e := echo.New()
	graphqlserver.RegisterGraphQLRoutes(e, db)

	body, _ := json.Marshal(map[string]interface{}{"query": query})
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data   map[string]interface{}
		Errors []struct{ Message string }
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.Data, resp.Errors
}

func TestSchemaParses(t *testing.T) {
	db := gqlTestDB(t)
	if _, err := graphqlserver.NewSchema(db); err != nil {
		t.Fatalf("schema parse: %v", err)
	}
}

func TestQuery_Equipment(t *testing.T) {
	db := gqlTestDB(t)
	item := equipmentEntity.EquipmentItem{Brand: "Meyer", Model: "UPA-1P", SerialNumber: "GQL-EQ-1", TotalQuantity: 6}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	query := fmt.Sprintf(`{ equipment(id: "%d") { id brand model serialNumber totalQuantity } }`, item.ItemID)
	data, errs := runQuery(t, db, query)
	if len(errs) > 0 {
		t.Fatalf("errors: %v", errs)
	}

	eq, ok := data["equipment"].(map[string]interface{})
	if !ok {
		t.Fatalf("data.equipment missing: %v", data)
	}
	if eq["serialNumber"] != "GQL-EQ-1" {
		t.Errorf("serialNumber = %v, want GQL-EQ-1", eq["serialNumber"])
	}
	if int(eq["totalQuantity"].(float64)) != 6 {
		t.Errorf("totalQuantity = %v, want 6", eq["totalQuantity"])
	}
}

func TestQuery_EquipmentMissing_IsNull(t *testing.T) {
	db := gqlTestDB(t)
	data, errs := runQuery(t, db, `{ equipment(id: "9999") { id brand } }`)
	if len(errs) > 0 {
		t.Fatalf("errors: %v", errs)
	}
	if data["equipment"] != nil {
		t.Errorf("equipment = %v, want null", data["equipment"])
	}
}

func TestQuery_Availability(t *testing.T) {
	db := gqlTestDB(t)
	item := equipmentEntity.EquipmentItem{Brand: "d&b", Model: "V8", SerialNumber: "GQL-AV-1", TotalQuantity: 8}
	db.Create(&item)
	p := productionEntity.Production{Name: "GQL Show"}
	db.Create(&p)
	db.Create(&allocationEntity.Reservation{
		EquipmentID:       item.ItemID,
		ProductionID:      p.ProductionID,
		QuantityNeeded:    3,
		QuantityAllocated: 3,
		Status:            allocationEntity.StatusCheckedOut,
	})

	query := fmt.Sprintf(`{ availability(equipmentId: "%d") { total committed available } }`, item.ItemID)
	data, errs := runQuery(t, db, query)
	if len(errs) > 0 {
		t.Fatalf("errors: %v", errs)
	}
	av := data["availability"].(map[string]interface{})
	if int(av["total"].(float64)) != 8 {
		t.Errorf("total = %v, want 8", av["total"])
	}
	if int(av["committed"].(float64)) != 3 {
		t.Errorf("committed = %v, want 3", av["committed"])
	}
	if int(av["available"].(float64)) != 5 {
		t.Errorf("available = %v, want 5", av["available"])
	}
}

func TestQuery_Reservations(t *testing.T) {
	db := gqlTestDB(t)
	item := equipmentEntity.EquipmentItem{Brand: "Clear-Com", Model: "FreeSpeak II", SerialNumber: "GQL-RS-1", TotalQuantity: 4}
	db.Create(&item)
	p := productionEntity.Production{Name: "Comms Show"}
	db.Create(&p)
	for i := 0; i < 2; i++ {
		db.Create(&allocationEntity.Reservation{
			EquipmentID:    item.ItemID,
			ProductionID:   p.ProductionID,
			QuantityNeeded: 1,
			Status:         allocationEntity.StatusRequested,
		})
	}

	query := fmt.Sprintf(`{ reservations(productionId: "%d") { id status quantityNeeded } }`, p.ProductionID)
	data, errs := runQuery(t, db, query)
	if len(errs) > 0 {
		t.Fatalf("errors: %v", errs)
	}
	list := data["reservations"].([]interface{})
	if len(list) != 2 {
		t.Fatalf("reservations = %d, want 2", len(list))
	}
	if list[0].(map[string]interface{})["status"] != "requested" {
		t.Errorf("status = %v, want requested", list[0].(map[string]interface{})["status"])
	}
}

func TestQuery_Extension(t *testing.T) {
	db := gqlTestDB(t)
	data, errs := runQuery(t, db, `{ extension(name: "echoback", args: "{\"x\":1}") }`)
	if len(errs) == 0 {
		// nothing registered under this name; an error is expected
		t.Fatalf("expected resolver-not-found error, got data: %v", data)
	}
}
