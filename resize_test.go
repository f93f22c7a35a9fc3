package doodle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout_CanvasSize(t *testing.T) {
	testCases := []struct {
		name         string
		layout       Layout
		cw, vh       int
		wantW, wantH int
	}{
		{"default", DefaultLayout(), 1000, 1000, 900, 600},
		{"floored", DefaultLayout(), 333, 333, 299, 199},
		{"minimum", DefaultLayout(), 1, 1, 1, 1},
		{"zero viewport", DefaultLayout(), 0, 0, 1, 1},
		{"custom", Layout{WidthRatio: 0.5, HeightRatio: 1}, 640, 480, 320, 480},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w, h := tc.layout.CanvasSize(tc.cw, tc.vh)
			assert.Equal(t, tc.wantW, w)
			assert.Equal(t, tc.wantH, h)
		})
	}
}

func TestResize_ShouldRedrawLastState(t *testing.T) {
	ctx := context.Background()
	s := newTestSurface(t)
	h := NewHistory(s)
	r := NewResizeCoordinator(s, h)

	stroke(t, s, h, 0)
	want := stroke(t, s, h, 1)

	require.NoError(t, r.Resize(ctx, 80, 70))
	assert.Equal(t, 80, s.Width())
	assert.Equal(t, 70, s.Height())

	img := s.Image()
	for y := range 50 {
		for x := range 50 {
			require.Equal(t, want.NRGBAAt(x, y), img.NRGBAAt(x, y), "pixel %d,%d", x, y)
		}
	}
	assert.Equal(t, uint8(0), img.NRGBAAt(60, 6).A)

	// the history itself is untouched
	assert.Equal(t, 2, h.Len())
}

func TestResize_ShrinkShouldCrop(t *testing.T) {
	ctx := context.Background()
	s := newTestSurface(t)
	h := NewHistory(s)
	r := NewResizeCoordinator(s, h)

	want := stroke(t, s, h, 0)

	require.NoError(t, r.Resize(ctx, 20, 20))
	img := s.Image()
	assert.Equal(t, want.NRGBAAt(10, 2), img.NRGBAAt(10, 2))
	assert.Equal(t, 20, img.Bounds().Dx())
}

func TestResize_EmptyHistoryShouldStayBlank(t *testing.T) {
	s := newTestSurface(t)
	h := NewHistory(s)
	r := NewResizeCoordinator(s, h)

	// uncommitted pixels are lost on resize
	require.NoError(t, s.DrawSegment(Pt(5, 5), Pt(45, 5), redBrush()))

	require.NoError(t, r.Resize(context.Background(), 30, 30))
	assert.True(t, isBlank(s.Image()))
	assert.Equal(t, 30, s.Width())
}

func TestResize_AfterUndoShouldShowUndoneState(t *testing.T) {
	ctx := context.Background()
	s := newTestSurface(t)
	h := NewHistory(s)
	r := NewResizeCoordinator(s, h)

	a := stroke(t, s, h, 0)
	stroke(t, s, h, 1)
	require.NoError(t, h.Undo(ctx))

	require.NoError(t, r.Resize(ctx, 50, 50))
	assert.Equal(t, a.Pix, s.Image().Pix)
}

func TestResize_InvalidSize(t *testing.T) {
	s := newTestSurface(t)
	r := NewResizeCoordinator(s, NewHistory(s))

	assert.ErrorIs(t, r.Resize(context.Background(), 0, 10), ErrInvalidSize)
	assert.Equal(t, 50, s.Width())
}
