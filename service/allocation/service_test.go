package allocation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	allocationEntity "propshop.GO/model/entity/allocation"
	equipmentEntity "propshop.GO/model/entity/equipment"
	productionEntity "propshop.GO/model/entity/production"
)

func openServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("alloc_svc_test_%s_%d.db", t.Name(), time.Now().UnixNano()))
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

func seedItemAndProduction(t *testing.T, db *gorm.DB, serial string, qty int) (*equipmentEntity.EquipmentItem, *productionEntity.Production) {
	t.Helper()
	item := equipmentEntity.EquipmentItem{
		Brand:         "Shure",
		Model:         "SM58",
		SerialNumber:  serial,
		TotalQuantity: qty,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	p := productionEntity.Production{Name: "Service Test Production"}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed production: %v", err)
	}
	return &item, &p
}

// A status change that commits while Remove is parked on the per-item lock is
// seen by the re-read inside the critical section: the delete is refused and
// the checked-out row survives.
func TestRemove_ReseesStatusChangeUnderLock(t *testing.T) {
	db := openServiceDB(t)
	item, prod := seedItemAndProduction(t, db, "RM-RACE-1", 5)
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	resv, err := svc.Create(context.Background(), CreateInput{
		EquipmentID:    item.ItemID,
		ProductionID:   prod.ProductionID,
		QuantityNeeded: 2,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Hold the item's lock so Remove passes its initial read and parks.
	unlock := svc.locks.lock(item.ItemID)
	done := make(chan error, 1)
	go func() {
		done <- svc.Remove(context.Background(), resv.ReservationID)
	}()
	time.Sleep(50 * time.Millisecond)

	// Hand the equipment out while Remove waits.
	if err := db.Exec(
		"UPDATE allocation_reservation SET status = ?, quantity_allocated = 2 WHERE reservation_id = ?",
		string(allocationEntity.StatusCheckedOut), resv.ReservationID,
	).Error; err != nil {
		t.Fatalf("flip status: %v", err)
	}
	unlock()

	if err := <-done; !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	var count int64
	if err := db.Model(&allocationEntity.Reservation{}).
		Where("reservation_id = ?", resv.ReservationID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("checked-out reservation was deleted, count = %d", count)
	}
}

func TestRemove_DeletesRequestedReservation(t *testing.T) {
	db := openServiceDB(t)
	item, prod := seedItemAndProduction(t, db, "RM-OK-1", 5)
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	resv, err := svc.Create(context.Background(), CreateInput{
		EquipmentID:    item.ItemID,
		ProductionID:   prod.ProductionID,
		QuantityNeeded: 1,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Remove(context.Background(), resv.ReservationID); err != nil {
		t.Fatalf("remove requested reservation: %v", err)
	}
	var count int64
	if err := db.Model(&allocationEntity.Reservation{}).
		Where("reservation_id = ?", resv.ReservationID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("reservation still present after remove, count = %d", count)
	}
}

// A dry-run with quantity above need predicts the committed outcome: the save
// path clamps allocation to need before validating, so the dry-run clamps too.
func TestValidate_ClampsProposedQuantityToNeed(t *testing.T) {
	db := openServiceDB(t)
	item, prod := seedItemAndProduction(t, db, "VAL-CLAMP-1", 4)
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	// Another production already holds 2 of 4 units.
	other := allocationEntity.Reservation{
		EquipmentID:       item.ItemID,
		ProductionID:      prod.ProductionID,
		QuantityNeeded:    2,
		QuantityAllocated: 2,
		Status:            allocationEntity.StatusAllocated,
	}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed holder: %v", err)
	}
	resv, err := svc.Create(context.Background(), CreateInput{
		EquipmentID:    item.ItemID,
		ProductionID:   prod.ProductionID,
		QuantityNeeded: 2,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Raw 6 exceeds the 2 units available, but a commit would clamp it to the
	// need of 2, which fits. The dry-run must agree with the commit.
	q := 6
	report, err := svc.Validate(context.Background(), resv.ReservationID, allocationEntity.StatusAllocated, &q)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !report.Valid {
		t.Fatalf("expected valid report after clamping, got conflicts %+v", report.Conflicts)
	}

	_, saved, err := svc.UpdateQuantity(context.Background(), resv.ReservationID, 2, 6)
	if err != nil {
		t.Fatalf("update rejected what the dry-run accepted: %v", err)
	}
	if !saved.Valid {
		t.Errorf("commit report invalid: %+v", saved.Conflicts)
	}
}
