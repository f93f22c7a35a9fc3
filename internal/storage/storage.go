// internal/storage/storage.go
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/esimov/doodle/internal/config"
	"github.com/esimov/doodle/internal/model"
	"github.com/esimov/doodle/internal/storage/memory"
	sqlitestorage "github.com/esimov/doodle/internal/storage/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Gallery
	Save(ctx context.Context, d *model.Drawing) error
	Get(ctx context.Context, id string) (*model.Drawing, error)
	List(ctx context.Context) ([]model.Drawing, error)
	Delete(ctx context.Context, id string) error
}

// NewBackend creates a storage backend based on configuration. A disabled
// archive is backed by memory so the session can still list its own saves.
func NewBackend(cfg config.StorageConfig, log zerolog.Logger) (Backend, error) {
	var (
		b   Backend
		err error
	)
	if cfg.Enabled {
		b, err = sqlitestorage.New(sqlitestorage.Config{Path: cfg.Path}, log)
		if err != nil {
			return nil, err
		}
	} else {
		b = memory.New()
	}

	if err := b.Init(); err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}
	return b, nil
}

// Archive records saved drawings into a Backend.
type Archive struct {
	backend Backend
	now     func() time.Time
}

// NewArchive wraps the backend.
func NewArchive(b Backend) *Archive {
	return &Archive{
		backend: b,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Archive stores the encoded drawing and returns its new ID.
func (a *Archive) Archive(ctx context.Context, name, mime string, width, height int, data []byte) (string, error) {
	d := &model.Drawing{
		ID:        uuid.NewString(),
		Name:      name,
		Mime:      mime,
		Width:     width,
		Height:    height,
		Data:      data,
		CreatedAt: a.now(),
	}
	if err := a.backend.Save(ctx, d); err != nil {
		return "", err
	}
	return d.ID, nil
}
