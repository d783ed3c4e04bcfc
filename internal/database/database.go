package database

import (
	"fmt"
	"time"

	"github.com/teamline/teamline/internal/config"
	"github.com/teamline/teamline/pkg/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const openRetries = 5

// NewDatabase opens the postgres database, retrying briefly so the server
// survives a database that is still coming up.
func NewDatabase(cfg *config.DBConfig, lg *zap.Logger) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	level := gormlogger.Warn
	switch cfg.LogLevel {
	case "debug", "info":
		level = gormlogger.Info
	case "error":
		level = gormlogger.Error
	}

	for i := 0; i <= openRetries; i++ {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.DataSource,
			PreferSimpleProtocol: !cfg.PrepareStmt,
		}), &gorm.Config{
			Logger: newGormLogger(lg, level),
			NamingStrategy: schema.NamingStrategy{
				TablePrefix: "teamline.",
			},
			NowFunc: func() time.Time {
				return time.Now().UTC()
			},
		})
		if err == nil {
			break
		}
		lg.Sugar().Warnf("failed to open database: %v", err)
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.Pool.Enable {
		rawDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		rawDB.SetMaxOpenConns(cfg.Pool.MaxOpenConnections)
		rawDB.SetMaxIdleConns(cfg.Pool.MaxIdleConnections)
		rawDB.SetConnMaxLifetime(cfg.Pool.MaxLifetime)
	}

	return db, nil
}

// Migrate creates or updates the schema for every model the server owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Upload{},
		&models.Post{},
		&models.ScheduledPost{},
		&models.Preference{},
	)
}
