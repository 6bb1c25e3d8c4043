package allocation

import (
	"gorm.io/gorm"

	allocationEntity "propshop.GO/model/entity/allocation"
)

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Create(resv *allocationEntity.Reservation) error {
	return r.db.Create(resv).Error
}

func (r *ReservationRepository) FindByID(id uint) (*allocationEntity.Reservation, error) {
	var resv allocationEntity.Reservation
	if err := r.db.First(&resv, id).Error; err != nil {
		return nil, err
	}
	return &resv, nil
}

// FindByIDTx loads a reservation through the given transaction handle.
func (r *ReservationRepository) FindByIDTx(tx *gorm.DB, id uint) (*allocationEntity.Reservation, error) {
	var resv allocationEntity.Reservation
	if err := tx.First(&resv, id).Error; err != nil {
		return nil, err
	}
	return &resv, nil
}

func (r *ReservationRepository) Save(tx *gorm.DB, resv *allocationEntity.Reservation) error {
	return tx.Save(resv).Error
}

func (r *ReservationRepository) Delete(tx *gorm.DB, resv *allocationEntity.Reservation) error {
	return tx.Delete(resv).Error
}

// ListByProduction returns all reservations attached to a production.
func (r *ReservationRepository) ListByProduction(productionID uint) ([]allocationEntity.Reservation, error) {
	var out []allocationEntity.Reservation
	err := r.db.Where("production_id = ?", productionID).Order("reservation_id").Find(&out).Error
	return out, err
}

// ListActiveByEquipment returns reservations in an active status for an item.
func (r *ReservationRepository) ListActiveByEquipment(equipmentID uint) ([]allocationEntity.Reservation, error) {
	var out []allocationEntity.Reservation
	err := r.db.
		Where("equipment_id = ? AND status IN ?", equipmentID, activeStatusStrings()).
		Order("reservation_id").
		Find(&out).Error
	return out, err
}

// SumAllocated sums quantity_allocated over active reservations for an item,
// excluding one reservation. Must run on the same handle as the dependent
// write (tx) so the read and the write share one atomic scope.
func (r *ReservationRepository) SumAllocated(tx *gorm.DB, equipmentID, excludeReservationID uint) (int, error) {
	const query = `
		SELECT COALESCE(SUM(quantity_allocated), 0)
		FROM allocation_reservation
		WHERE equipment_id = ? AND reservation_id <> ? AND status IN ?`
	var total int
	err := tx.Raw(query, equipmentID, excludeReservationID, activeStatusStrings()).Scan(&total).Error
	return total, err
}

func activeStatusStrings() []string {
	out := make([]string, len(allocationEntity.ActiveStatuses))
	for i, s := range allocationEntity.ActiveStatuses {
		out[i] = string(s)
	}
	return out
}
