// internal/storage/memory/memory.go
package memory

import (
	"bytes"
	"context"
	"slices"
	"sync"

	"github.com/esimov/doodle/internal/model"
)

// Backend keeps saved drawings in memory. The content is lost on Close.
type Backend struct {
	drawings map[string]*model.Drawing
	mu       sync.RWMutex
}

// New creates a new memory backend
func New() *Backend {
	return &Backend{
		drawings: make(map[string]*model.Drawing),
	}
}

// Init is a no-op for the memory backend.
func (b *Backend) Init() error { return nil }

// Close drops every stored drawing.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	clear(b.drawings)
	return nil
}

// Save stores a copy of the drawing, replacing any drawing with the same ID.
func (b *Backend) Save(ctx context.Context, d *model.Drawing) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.drawings[d.ID] = clone(d)
	return nil
}

// Get returns a copy of the drawing with the given ID.
func (b *Backend) Get(ctx context.Context, id string) (*model.Drawing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	d, ok := b.drawings[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return clone(d), nil
}

// List returns the drawings newest first, without their payload.
func (b *Backend) List(ctx context.Context) ([]model.Drawing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]model.Drawing, 0, len(b.drawings))
	for _, d := range b.drawings {
		meta := *d
		meta.Data = nil
		out = append(out, meta)
	}
	slices.SortFunc(out, func(x, y model.Drawing) int {
		return y.CreatedAt.Compare(x.CreatedAt)
	})
	return out, nil
}

// Delete removes the drawing with the given ID.
func (b *Backend) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.drawings[id]; !ok {
		return model.ErrNotFound
	}
	delete(b.drawings, id)
	return nil
}

func clone(d *model.Drawing) *model.Drawing {
	c := *d
	c.Data = bytes.Clone(d.Data)
	return &c
}
