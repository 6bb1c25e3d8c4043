package allocation

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"propshop.GO/config"
	"propshop.GO/core/cache"
	allocationRepo "propshop.GO/model/repository/allocation"
)

// Ledger computes how many units of an item are currently uncommitted:
// total_quantity minus the allocations held by reservations in an active
// status. The authoritative read always runs on the caller's transaction
// handle so check and write share one atomic scope.
type Ledger struct {
	reservations *allocationRepo.ReservationRepository
}

func NewLedger(reservations *allocationRepo.ReservationRepository) *Ledger {
	return &Ledger{reservations: reservations}
}

// Available returns the uncommitted quantity for an item, excluding one
// reservation from the active sum (pass 0 to exclude nothing).
func (l *Ledger) Available(tx *gorm.DB, equipmentID, excludeReservationID uint) (int, error) {
	var total int
	err := tx.Raw(`SELECT total_quantity FROM equipment_item WHERE item_id = ?`, equipmentID).Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("ledger: read total quantity for item %d: %w", equipmentID, err)
	}
	committed, err := l.reservations.SumAllocated(tx, equipmentID, excludeReservationID)
	if err != nil {
		return 0, fmt.Errorf("ledger: sum allocations for item %d: %w", equipmentID, err)
	}
	return total - committed, nil
}

// --- Cached read-side view ---
//
// Mutations call Invalidate; readers get read-after-write consistency within
// the process via the tag index, plus a Redis mirror when configured.

func availabilityCacheTag(equipmentID uint) string {
	return fmt.Sprintf("equipment:%d", equipmentID)
}

func availabilityRedisKey(equipmentID uint) string {
	return fmt.Sprintf("availability:%d", equipmentID)
}

// AvailableCached returns the availability view for an item, serving from the
// in-process cache when warm and recomputing from db otherwise.
func (l *Ledger) AvailableCached(db *gorm.DB, equipmentID uint) (int, error) {
	c := cache.GetInstance()
	if v, ok := c.GetN("availability", equipmentID); ok {
		if n, isInt := v.(int); isInt {
			return n, nil
		}
	}
	n, err := l.Available(db, equipmentID, 0)
	if err != nil {
		return 0, err
	}
	c.SetN([]interface{}{"availability", equipmentID}, n, 300, []string{availabilityCacheTag(equipmentID)})
	if config.RedisClient != nil {
		if err := config.RedisClient.Set(config.RedisCtx(), availabilityRedisKey(equipmentID), n, 0).Err(); err != nil {
			log.Printf("ledger: redis set availability:%d failed: %v", equipmentID, err)
		}
	}
	return n, nil
}

// Invalidate drops every cached availability view for an item. Called after
// each successful mutation that touches the item's allocations or stock.
func (l *Ledger) Invalidate(equipmentID uint) {
	cache.GetInstance().DeleteByTag(availabilityCacheTag(equipmentID))
	if config.RedisClient != nil {
		if err := config.RedisClient.Del(config.RedisCtx(), availabilityRedisKey(equipmentID)).Err(); err != nil {
			log.Printf("ledger: redis del availability:%d failed: %v", equipmentID, err)
		}
	}
}
