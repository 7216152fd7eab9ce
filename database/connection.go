// Package database provides connection management and persistence for
// ticks, synthetic orders and day results, on GORM over PostgreSQL.
//
// All data models (TickRecord, SyntheticOrderRecord, DayResultRecord) are
// defined in the models_pkg package to avoid circular import dependencies
// between database and the core pipeline package.
package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	models "capflow/database/models_pkg"
)

// Database holds the GORM connection.
type Database struct {
	db *gorm.DB
}

// DB returns the underlying GORM handle for advanced operations.
func (d *Database) DB() *gorm.DB {
	return d.db
}

// Connect opens a PostgreSQL connection and auto-migrates the schema.
func Connect(host string, port int, dbname, user, password string) (*Database, error) {
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		host, port, dbname, user, password)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	d := &Database{db: db}
	if err := d.migrate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Database) migrate() error {
	return d.db.AutoMigrate(
		&models.TickRecord{},
		&models.SyntheticOrderRecord{},
		&models.DayResultRecord{},
		&models.CostMAPoint{},
	)
}

// Close closes the underlying connection pool.
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Type aliases so callers outside this package can refer to the persisted
// shapes without importing models_pkg directly.
type TickRecord = models.TickRecord
type SyntheticOrderRecord = models.SyntheticOrderRecord
type DayResultRecord = models.DayResultRecord
type CostMAPoint = models.CostMAPoint
