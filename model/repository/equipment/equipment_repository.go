package equipment

import (
	"database/sql"

	"gorm.io/gorm"

	equipmentEntity "propshop.GO/model/entity/equipment"
)

type EquipmentRepository struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

func NewEquipmentRepository(db *gorm.DB) (*EquipmentRepository, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &EquipmentRepository{db: db, sqlDB: sqlDB}, nil
}

// GetItem returns the full entity by primary key.
func (r *EquipmentRepository) GetItem(id uint) (*equipmentEntity.EquipmentItem, error) {
	var item equipmentEntity.EquipmentItem
	if err := r.db.First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// GetBySerial returns the entity with the given serial number.
func (r *EquipmentRepository) GetBySerial(serial string) (*equipmentEntity.EquipmentItem, error) {
	var item equipmentEntity.EquipmentItem
	if err := r.db.Where("serial_number = ?", serial).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// GetByIDs returns items for the given ids, preserving input order.
func (r *EquipmentRepository) GetByIDs(ids []uint) ([]equipmentEntity.EquipmentItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []equipmentEntity.EquipmentItem
	if err := r.db.Where("item_id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]equipmentEntity.EquipmentItem, len(items))
	for _, it := range items {
		byID[it.ItemID] = it
	}
	ordered := make([]equipmentEntity.EquipmentItem, 0, len(items))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			ordered = append(ordered, it)
		}
	}
	return ordered, nil
}

// ItemExists reports whether an item with the id exists.
// Uses raw SQL for minimal overhead.
func (r *EquipmentRepository) ItemExists(id uint) bool {
	const query = `SELECT 1 FROM equipment_item WHERE item_id = ? LIMIT 1`
	var one int
	if err := r.sqlDB.QueryRow(query, id).Scan(&one); err != nil {
		return false
	}
	return one == 1
}

// TotalQuantity returns the stock quantity for an item.
func (r *EquipmentRepository) TotalQuantity(id uint) (int, bool) {
	const query = `SELECT total_quantity FROM equipment_item WHERE item_id = ? LIMIT 1`
	var qty sql.NullInt64
	if err := r.sqlDB.QueryRow(query, id).Scan(&qty); err != nil || !qty.Valid {
		return 0, false
	}
	return int(qty.Int64), true
}

// CreateItem inserts a new catalog record. The unique serial index rejects
// duplicate identifiers; the raw error is returned for the caller to surface.
func (r *EquipmentRepository) CreateItem(item *equipmentEntity.EquipmentItem) error {
	return r.db.Create(item).Error
}

// CreateItemTx inserts using the given handle (per-copy timeout contexts).
func (r *EquipmentRepository) CreateItemTx(tx *gorm.DB, item *equipmentEntity.EquipmentItem) error {
	return tx.Create(item).Error
}

// Count returns the number of catalog records.
func (r *EquipmentRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&equipmentEntity.EquipmentItem{}).Count(&n).Error
	return n, err
}
