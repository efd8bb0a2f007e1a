// Package postgres implements the storage.Backend interface on PostgreSQL.
// Writes go through the embedded GORM backend's queues; this package only
// owns the connection.
package postgres

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/strikerbot/planner/internal/database"
	gormstorage "github.com/strikerbot/planner/internal/storage/gorm"
	"gorm.io/gorm"
)

// Dependencies holds all dependencies for the PostgreSQL storage backend.
type Dependencies struct {
	// DB is optional; when nil Init connects using the db.* config keys.
	DB            *gorm.DB
	Logger        *slog.Logger
	FlushInterval time.Duration
}

// Backend implements storage.Backend using GORM/PostgreSQL with queue-based batch writes.
type Backend struct {
	*gormstorage.Backend
	deps Dependencies
}

// New creates a new PostgreSQL storage backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{
			DB:            deps.DB,
			Logger:        deps.Logger,
			FlushInterval: deps.FlushInterval,
		}),
		deps: deps,
	}
}

// Init connects if no DB was injected, then migrates and starts the writer.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		db, err := database.GetPostgresDBStandalone()
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to access sql interface: %w", err)
		}
		if err = sqlDB.Ping(); err != nil {
			return fmt.Errorf("failed to validate connection: %w", err)
		}
		sqlDB.SetMaxOpenConns(10)
		b.deps.DB = db
		b.SetDB(db)
		b.deps.Logger.Info("Connected to postgres", "database", db.Migrator().CurrentDatabase())
	}

	return b.Backend.Init()
}
