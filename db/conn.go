// Package db opens the metadata store. SQLite is used for single node
// deployments, Postgres for a hosted relational store.
package db

import (
	"bitwise74/drive-api/config"
	"bitwise74/drive-api/internal/model"
	"bitwise74/drive-api/pkg/util"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func New(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.URL)
	case "sqlite":
		// If running in a docker container don't allow the sqlite file to be created.
		// The host should instead mount it using volumes
		if util.IsRunningInDocker() && cfg.URL != ":memory:" {
			if _, err := os.Stat(cfg.URL); errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to /app/%s", cfg.URL)
			}
		}

		dialector = sqlite.Open(cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	stdLog, err := zap.NewStdLogAt(zap.L().Named("gorm"), zap.WarnLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create database logger, %w", err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(stdLog, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database, %w", cfg.Driver, err)
	}

	if cfg.Driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB from gorm, %w", err)
		}

		// SQLite allows one writer at a time and every connection to
		// :memory: is a separate database
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(model.User{}, model.Stats{}, model.Folder{}, model.File{})
	if err != nil {
		return fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return nil
}
