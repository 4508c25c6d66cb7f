package database

import (
	"fmt"
	"time"

	"storefront-service/internal/config"
	"storefront-service/internal/domain"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Open connects to the relational store selected by DB_DRIVER and migrates the schema.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverMySQL:
		dialector = mysql.Open(cfg.MySQLDSN())
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DBDSN)
	default:
		return nil, fmt.Errorf("database: unsupported driver %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: false,
		},
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	if cfg.DBAutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Category{},
		&domain.Subcategory{},
		&domain.Product{},
		&domain.ProductImage{},
		&domain.ProductVariant{},
		&domain.Order{},
		&domain.OrderItem{},
	)
}
