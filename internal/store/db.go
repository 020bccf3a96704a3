package store

import (
	"fmt"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"trading-dashboard/internal/models"
)

// OpenDB connects to Postgres using the DSN from the configured env var
// and migrates the dashboard schema.
func OpenDB(cfg *Config) (*gorm.DB, error) {
	dsn := os.Getenv(cfg.Database.DSNEnv)
	if dsn == "" {
		return nil, fmt.Errorf("database DSN env %s is not set", cfg.Database.DSNEnv)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}
	if cfg.Database.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&models.Position{},
		&models.StatusRecord{},
		&models.DailySummary{},
		&models.WeeklySummary{},
		&models.MonthlySummary{},
		&models.ContainerStatus{},
		&models.TradingStats{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return db, nil
}
