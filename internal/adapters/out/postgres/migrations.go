package postgres

import (
	"fulfillment/internal/adapters/out/postgres/orderrepo"

	"gorm.io/gorm"
)

// MigrateSchema creates or updates the tables backing the order aggregate.
// Called once at startup before the server accepts traffic.
func MigrateSchema(db *gorm.DB) error {
	return db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&orderrepo.ItemDTO{},
		&orderrepo.StatusHistoryDTO{},
		&orderrepo.PriorityHistoryDTO{},
	)
}
