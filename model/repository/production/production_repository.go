package production

import (
	"database/sql"

	"gorm.io/gorm"

	productionEntity "propshop.GO/model/entity/production"
)

type ProductionRepository struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

func NewProductionRepository(db *gorm.DB) (*ProductionRepository, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &ProductionRepository{db: db, sqlDB: sqlDB}, nil
}

// ProductionExists reports whether a production with the id exists.
// Uses raw SQL for minimal overhead.
func (r *ProductionRepository) ProductionExists(id uint) bool {
	const query = `SELECT 1 FROM production_show WHERE production_id = ? LIMIT 1`
	var one int
	if err := r.sqlDB.QueryRow(query, id).Scan(&one); err != nil {
		return false
	}
	return one == 1
}

// GetProduction returns the full entity by primary key.
func (r *ProductionRepository) GetProduction(id uint) (*productionEntity.Production, error) {
	var p productionEntity.Production
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
