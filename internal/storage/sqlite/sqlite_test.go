package sqlitestorage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/esimov/doodle/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) *Backend {
	t.Helper()

	b, err := New(Config{Path: filepath.Join(t.TempDir(), "doodle.db")}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, b.Init())
	t.Cleanup(func() { b.Close() })
	return b
}

func TestSaveGet(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)

	d := &model.Drawing{
		ID:        "7f0c1d8e-0000-4000-8000-000000000001",
		Name:      "drawing.png",
		Mime:      "image/png",
		Width:     800,
		Height:    600,
		Data:      []byte{0x89, 'P', 'N', 'G'},
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, b.Save(ctx, d))

	got, err := b.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.Name, got.Name)
	assert.Equal(t, d.Mime, got.Mime)
	assert.Equal(t, 800, got.Width)
	assert.Equal(t, 600, got.Height)
	assert.Equal(t, d.Data, got.Data)
	assert.True(t, d.CreatedAt.Equal(got.CreatedAt))
}

func TestSaveUpdatesExisting(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)

	d := &model.Drawing{ID: "a", Name: "drawing.png", Data: []byte{1}, CreatedAt: time.Now().UTC()}
	require.NoError(t, b.Save(ctx, d))

	d.Name = "drawing.jpeg"
	require.NoError(t, b.Save(ctx, d))

	list, err := b.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "drawing.jpeg", list[0].Name)
}

func TestGetMissing(t *testing.T) {
	_, err := newBackend(t).Get(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second", "third"} {
		require.NoError(t, b.Save(ctx, &model.Drawing{
			ID:        id,
			Data:      []byte{byte(i)},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	list, err := b.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].ID)
	assert.Equal(t, "first", list[2].ID)
	assert.Empty(t, list[0].Data)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)

	require.NoError(t, b.Save(ctx, &model.Drawing{ID: "a", CreatedAt: time.Now().UTC()}))
	require.NoError(t, b.Delete(ctx, "a"))
	assert.ErrorIs(t, b.Delete(ctx, "a"), model.ErrNotFound)
}

func TestReopenKeepsDrawings(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "gallery.db")

	b, err := New(Config{Path: path}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, b.Init())
	require.NoError(t, b.Save(ctx, &model.Drawing{ID: "kept", Data: []byte{42}, CreatedAt: time.Now().UTC()}))
	require.NoError(t, b.Close())

	b, err = New(Config{Path: path}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, b.Init())
	defer b.Close()

	got, err := b.Get(ctx, "kept")
	require.NoError(t, err)
	assert.Equal(t, []byte{42}, got.Data)
}
