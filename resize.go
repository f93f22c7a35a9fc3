package doodle

import (
	"context"
	"math"
)

// Default layout ratios: the canvas takes 90% of its container width and
// 60% of the viewport height.
const (
	DefaultWidthRatio  = 0.9
	DefaultHeightRatio = 0.6
)

// Layout computes the canvas size from the viewport.
type Layout struct {
	WidthRatio  float64
	HeightRatio float64
}

// DefaultLayout returns the layout policy with the default ratios.
func DefaultLayout() Layout {
	return Layout{
		WidthRatio:  DefaultWidthRatio,
		HeightRatio: DefaultHeightRatio,
	}
}

// CanvasSize returns the canvas dimensions for the given container width and
// viewport height. Each dimension is at least one pixel.
func (l Layout) CanvasSize(containerWidth, viewportHeight int) (int, int) {
	w := int(math.Floor(float64(containerWidth) * l.WidthRatio))
	h := int(math.Floor(float64(viewportHeight) * l.HeightRatio))
	return max(w, 1), max(h, 1)
}

// ResizeCoordinator resizes the surface and redraws the history on top of it.
type ResizeCoordinator struct {
	surface *Surface
	history *History
}

// NewResizeCoordinator binds the coordinator to a surface and its history.
func NewResizeCoordinator(s *Surface, h *History) *ResizeCoordinator {
	return &ResizeCoordinator{surface: s, history: h}
}

// Resize changes the surface dimensions and redraws the latest history state.
// Resizing wipes the surface, and every restore replaces the whole buffer, so
// the most recent snapshot is the only one that ends up visible. Only that
// one is restored. With an empty history the canvas stays blank.
func (r *ResizeCoordinator) Resize(ctx context.Context, width, height int) error {
	states := r.history.States()

	if err := r.surface.Resize(width, height); err != nil {
		return err
	}
	if len(states) == 0 {
		return nil
	}
	return r.history.Restore(ctx, states[len(states)-1])
}
