package database

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"shopapi/internal/models"
)

// Migrate creates or updates the tables, unique indexes and foreign keys
// the store relies on. Parents migrate before children so that the has-many
// relations they declare are known when the child tables are created.
func Migrate(db *gorm.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tables := []struct {
		name  string
		model interface{}
	}{
		{"Customers", &models.Customer{}},
		{"Customer_Accounts", &models.CustomerAccount{}},
		{"Products", &models.Product{}},
		{"Orders", &models.Order{}},
		{"Order_Product", &models.OrderProduct{}},
	}

	for _, table := range tables {
		log.WithField("table", table.name).Debug("migrating table")
		if err := db.WithContext(ctx).AutoMigrate(table.model); err != nil {
			log.WithError(err).WithField("table", table.name).Error("migration failed")
			return fmt.Errorf("database: migrate %s: %w", table.name, err)
		}
	}
	log.WithField("tables", len(tables)).Info("database schema up to date")
	return nil
}
