package doodle

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// DefaultHistoryLimit is the number of committed states kept for undo.
const DefaultHistoryLimit = 10

// RedoPolicy decides what happens to the redo stack when a new state is captured.
type RedoPolicy int

const (
	// RedoDiscard clears the redo stack on every capture.
	RedoDiscard RedoPolicy = iota
	// RedoKeep leaves the redo stack untouched by captures. A redo after a new
	// stroke then brings back a state from the abandoned branch.
	RedoKeep
)

// History is a bounded undo stack paired with a redo stack of canvas snapshots.
type History struct {
	surface *Surface
	undo    []*Snapshot
	redo    []*Snapshot
	limit   int
	policy  RedoPolicy
	log     zerolog.Logger
}

// HistoryOption configures a History.
type HistoryOption func(*History)

// WithLimit sets the maximum number of undo states. Values below 1 are ignored.
func WithLimit(n int) HistoryOption {
	return func(h *History) {
		if n > 0 {
			h.limit = n
		}
	}
}

// WithRedoPolicy sets the redo invalidation policy.
func WithRedoPolicy(p RedoPolicy) HistoryOption {
	return func(h *History) {
		h.policy = p
	}
}

// WithHistoryLogger attaches a logger to the history.
func WithHistoryLogger(l zerolog.Logger) HistoryOption {
	return func(h *History) {
		h.log = l
	}
}

// NewHistory creates an empty history bound to the surface.
func NewHistory(s *Surface, opts ...HistoryOption) *History {
	h := &History{
		surface: s,
		limit:   DefaultHistoryLimit,
		policy:  RedoDiscard,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Capture pushes the current surface content onto the undo stack,
// evicting the oldest state once the limit is exceeded.
func (h *History) Capture() error {
	snap, err := h.surface.Snapshot()
	if err != nil {
		return err
	}

	h.undo = append(h.undo, snap)
	if len(h.undo) > h.limit {
		evicted := h.undo[0]
		h.undo[0] = nil
		h.undo = h.undo[1:]
		h.log.Debug().Str("snapshot", evicted.ID().String()).Msg("history limit reached, oldest state evicted")
	}

	if h.policy == RedoDiscard && len(h.redo) > 0 {
		h.log.Debug().Int("states", len(h.redo)).Msg("redo stack discarded")
		h.redo = nil
	}
	return nil
}

// Undo moves the most recent state onto the redo stack and restores the one
// before it. When no earlier state exists the surface is cleared.
// Undo on an empty history is a no-op. The stacks are left as they were if
// the restore fails.
func (h *History) Undo(ctx context.Context) error {
	n := len(h.undo)
	if n == 0 {
		return nil
	}

	if n > 1 {
		if err := h.Restore(ctx, h.undo[n-2]); err != nil {
			return err
		}
	} else {
		if err := ctx.Err(); err != nil {
			return err
		}
		h.surface.Clear()
	}

	top := h.undo[n-1]
	h.undo[n-1] = nil
	h.undo = h.undo[:n-1]
	h.redo = append(h.redo, top)
	return nil
}

// Redo pushes the most recently undone state back onto the undo stack and
// restores it. Redo on an empty redo stack is a no-op.
func (h *History) Redo(ctx context.Context) error {
	n := len(h.redo)
	if n == 0 {
		return nil
	}

	snap := h.redo[n-1]
	if err := h.Restore(ctx, snap); err != nil {
		return err
	}

	h.redo[n-1] = nil
	h.redo = h.redo[:n-1]
	h.undo = append(h.undo, snap)
	return nil
}

// Reset clears the surface and empties both stacks.
func (h *History) Reset() {
	h.surface.Clear()
	h.undo = nil
	h.redo = nil
}

// Restore replaces the surface content with the snapshot. The surface is
// left untouched if ctx is done or the snapshot cannot be decoded.
func (h *History) Restore(ctx context.Context, snap *Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	img, err := snap.Decode()
	if err != nil {
		h.log.Error().Err(err).Str("snapshot", snap.ID().String()).Msg("restore failed")
		return fmt.Errorf("restore snapshot %s: %w", snap.ID(), err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	h.surface.replace(img)
	return nil
}

// Top returns the most recent undo state or nil if there is none.
func (h *History) Top() *Snapshot {
	if len(h.undo) == 0 {
		return nil
	}
	return h.undo[len(h.undo)-1]
}

// Len returns the number of undo states.
func (h *History) Len() int { return len(h.undo) }

// RedoLen returns the number of redo states.
func (h *History) RedoLen() int { return len(h.redo) }

// Limit returns the maximum number of undo states.
func (h *History) Limit() int { return h.limit }

// States returns a shallow copy of the undo stack, oldest first.
func (h *History) States() []*Snapshot {
	return append([]*Snapshot(nil), h.undo...)
}
