package production

import (
	"time"
)

// Production represents the production_show table. The allocation core only
// checks existence; all other fields belong to the host application.
type Production struct {
	ProductionID uint       `gorm:"column:production_id;primaryKey;autoIncrement" json:"id"`
	Name         string     `gorm:"column:name;type:varchar(255);not null" json:"name"`
	StartsOn     *time.Time `gorm:"column:starts_on" json:"starts_on,omitempty"`
	EndsOn       *time.Time `gorm:"column:ends_on" json:"ends_on,omitempty"`
	Notes        string     `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Production) TableName() string {
	return "production_show"
}
