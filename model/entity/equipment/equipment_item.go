package equipment

import (
	"time"

	"gorm.io/datatypes"
)

// EquipmentItem represents the equipment_item table (catalog of physical stock).
// SerialNumber is unique catalog-wide; duplication jobs rely on the index to
// reject identifier collisions.
type EquipmentItem struct {
	ItemID        uint           `gorm:"column:item_id;primaryKey;autoIncrement" json:"id" mapstructure:"-"`
	Brand         string         `gorm:"column:brand;type:varchar(128);not null" json:"brand" mapstructure:"brand"`
	Model         string         `gorm:"column:model;type:varchar(128);not null" json:"model" mapstructure:"model"`
	SerialNumber  string         `gorm:"column:serial_number;type:varchar(64);not null;uniqueIndex:idx_equipment_serial_unq" json:"serial_number" mapstructure:"-"`
	TotalQuantity int            `gorm:"column:total_quantity;not null;default:0" json:"total_quantity" mapstructure:"total_quantity"`
	ImagePath     string         `gorm:"column:image_path;type:varchar(255)" json:"image_path,omitempty" mapstructure:"image_path"`
	Attributes    datatypes.JSON `gorm:"column:attributes" json:"attributes,omitempty" mapstructure:"attributes"`
	CreatedAt     time.Time      `gorm:"column:created_at" json:"created_at" mapstructure:"-"`
	UpdatedAt     time.Time      `gorm:"column:updated_at" json:"updated_at" mapstructure:"-"`
}

func (EquipmentItem) TableName() string {
	return "equipment_item"
}
