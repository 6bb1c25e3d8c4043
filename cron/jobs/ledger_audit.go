package jobs

import (
	"fmt"
	"log"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openDB builds its own connection from env: this package is referenced from
// config (job table), so it cannot import config back.
func openDB() (*gorm.DB, error) {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		user := os.Getenv("MYSQL_USER")
		pass := os.Getenv("MYSQL_PASS")
		host := os.Getenv("MYSQL_HOST")
		port := os.Getenv("MYSQL_PORT")
		db := os.Getenv("MYSQL_DB")
		if port == "" {
			port = "3306"
		}
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=Local", user, pass, host, port, db)
	}
	return gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
}

type auditRow struct {
	ItemID        uint `gorm:"column:item_id"`
	TotalQuantity int  `gorm:"column:total_quantity"`
	Committed     int  `gorm:"column:committed"`
}

// LedgerAudit scans every equipment item for active allocations exceeding
// total stock. A hit means the ledger invariant was breached outside the
// allocation service (manual SQL, bad import) and needs operator attention.
func LedgerAudit(args ...string) {
	db, err := openDB()
	if err != nil {
		log.Printf("ledger audit: db connect failed: %v", err)
		return
	}

	const query = `
		SELECT e.item_id, e.total_quantity, COALESCE(SUM(r.quantity_allocated), 0) AS committed
		FROM equipment_item e
		JOIN allocation_reservation r
			ON r.equipment_id = e.item_id
			AND r.status IN ('allocated', 'checked-out', 'in-use')
		GROUP BY e.item_id, e.total_quantity
		HAVING committed > e.total_quantity`

	var rows []auditRow
	if err := db.Raw(query).Scan(&rows).Error; err != nil {
		log.Printf("ledger audit: query failed: %v", err)
		return
	}

	if len(rows) == 0 {
		log.Println("ledger audit: all equipment within stock limits")
		return
	}
	for _, r := range rows {
		log.Printf("ledger audit: OVER-COMMITTED item %d: committed=%d total=%d",
			r.ItemID, r.Committed, r.TotalQuantity)
	}
}
