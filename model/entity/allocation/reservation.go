package allocation

import (
	"time"
)

// Reservation represents the allocation_reservation table: a commitment of
// some quantity of one equipment item to one production.
// Invariants held after every committed mutation:
//   - 0 <= QuantityAllocated <= QuantityNeeded
//   - per equipment item, the sum of QuantityAllocated over reservations in
//     an active status never exceeds the item's TotalQuantity
type Reservation struct {
	ReservationID     uint      `gorm:"column:reservation_id;primaryKey;autoIncrement" json:"id"`
	EquipmentID       uint      `gorm:"column:equipment_id;index;not null" json:"equipment_id"`
	ProductionID      uint      `gorm:"column:production_id;index;not null" json:"production_id"`
	QuantityNeeded    int       `gorm:"column:quantity_needed;not null" json:"quantity_needed"`
	QuantityAllocated int       `gorm:"column:quantity_allocated;not null;default:0" json:"quantity_allocated"`
	Status            Status    `gorm:"column:status;type:varchar(16);not null;default:'requested'" json:"status"`
	Notes             string    `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CreatedAt         time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Reservation) TableName() string {
	return "allocation_reservation"
}

// Removable reports whether the reservation may be deleted. A checked-out or
// in-use reservation maps to a physical hand-out and cannot be silently removed.
func (r *Reservation) Removable() bool {
	return r.Status == StatusRequested || r.Status == StatusReturned
}
