// Package sqlitestorage keeps the drawing gallery in a SQLite database file
// through GORM. An empty path selects a shared in-memory database.
package sqlitestorage

import (
	"context"
	"errors"
	"fmt"

	"github.com/esimov/doodle/internal/model"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const memoryDSN = "file::memory:?cache=shared"

// Config holds configuration for the SQLite storage backend.
type Config struct {
	Path string
}

// Backend stores drawings in SQLite.
type Backend struct {
	db  *gorm.DB
	cfg Config
	log zerolog.Logger
}

// New opens the database. The schema is created by Init.
func New(cfg Config, log zerolog.Logger) (*Backend, error) {
	dsn := cfg.Path
	if dsn == "" {
		dsn = memoryDSN
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite DB %q: %w", dsn, err)
	}

	return &Backend{db: db, cfg: cfg, log: log}, nil
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if err := b.db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	b.log.Debug().Str("path", b.cfg.Path).Msg("drawing archive ready")
	return nil
}

// Close closes the underlying database connection.
func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Close()
}

// Save inserts the drawing, or updates it when the ID already exists.
func (b *Backend) Save(ctx context.Context, d *model.Drawing) error {
	if err := b.db.WithContext(ctx).Save(d).Error; err != nil {
		return fmt.Errorf("failed to save drawing %s: %w", d.ID, err)
	}
	return nil
}

// Get loads the drawing with the given ID.
func (b *Backend) Get(ctx context.Context, id string) (*model.Drawing, error) {
	var d model.Drawing
	err := b.db.WithContext(ctx).First(&d, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load drawing %s: %w", id, err)
	}
	return &d, nil
}

// List returns the drawings newest first, without their payload.
func (b *Backend) List(ctx context.Context) ([]model.Drawing, error) {
	var out []model.Drawing
	err := b.db.WithContext(ctx).
		Omit("data").
		Order("created_at desc").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list drawings: %w", err)
	}
	return out, nil
}

// Delete removes the drawing with the given ID.
func (b *Backend) Delete(ctx context.Context, id string) error {
	res := b.db.WithContext(ctx).Delete(&model.Drawing{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete drawing %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
