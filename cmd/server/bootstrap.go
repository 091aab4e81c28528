package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/meetgrid/meetgrid/internal/app"
	"github.com/meetgrid/meetgrid/internal/app/maintenance"
	"github.com/meetgrid/meetgrid/internal/database"
	"github.com/meetgrid/meetgrid/internal/services"
	"github.com/meetgrid/meetgrid/pkg/logger"
)

func loadApplicationConfig(path string) (*app.Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return app.LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return app.LoadConfig(path)
			}
			return app.LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}

func configureGinMode(cfg *app.Config) {
	if !cfg.Server.Development {
		gin.SetMode(gin.ReleaseMode)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := convertDatabaseConfig(cfg)
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))))

	return db, nil
}

func convertDatabaseConfig(cfg *app.Config) database.Config {
	return database.Config{
		Driver:   strings.ToLower(strings.TrimSpace(cfg.Database.Driver)),
		Path:     strings.TrimSpace(cfg.Database.Path),
		DSN:      strings.TrimSpace(cfg.Database.DSN),
		Host:     strings.TrimSpace(cfg.Database.Host),
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Name:     cfg.Database.Name,
		Options:  cfg.Database.Options,
	}
}

func newCleaner(db *gorm.DB, cfg *app.Config) (*maintenance.Cleaner, error) {
	audit, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}

	opts := []maintenance.Option{
		maintenance.WithCompleteSchedule(cfg.Maintenance.CompleteEventsCron),
		maintenance.WithPurgeSchedule(cfg.Maintenance.PurgeCron),
		maintenance.WithPurgeRetention(cfg.Maintenance.PurgeRetention),
	}
	return maintenance.NewCleaner(db, audit, opts...)
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
