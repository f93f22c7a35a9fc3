package doodle

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/esimov/doodle/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultFilename is the name used when saving the drawing.
const DefaultFilename = "drawing.png"

// Archiver stores a copy of every saved drawing.
type Archiver interface {
	Archive(ctx context.Context, name, mime string, width, height int, data []byte) (string, error)
}

// Session owns the whole drawing state: the surface, the brush, the history
// and the stroke in progress. Every handler works on the same session, which
// is not safe for concurrent use; Run serializes the events feeding it.
type Session struct {
	id      uuid.UUID
	brush   Brush
	surface *Surface
	history *History
	stroke  *StrokeEngine
	resizer *ResizeCoordinator
	layout  Layout
	archive Archiver
	log     zerolog.Logger

	width, height int
	histOpts      []HistoryOption
}

// Option configures a Session.
type Option func(*Session)

// WithSize sets the initial canvas size.
func WithSize(width, height int) Option {
	return func(s *Session) {
		s.width, s.height = width, height
	}
}

// WithBrush sets the initial brush.
func WithBrush(b Brush) Option {
	return func(s *Session) {
		s.brush = b
	}
}

// WithHistory sets the undo limit and the redo policy.
func WithHistory(limit int, policy RedoPolicy) Option {
	return func(s *Session) {
		s.histOpts = append(s.histOpts, WithLimit(limit), WithRedoPolicy(policy))
	}
}

// WithLayout sets the viewport layout policy.
func WithLayout(l Layout) Option {
	return func(s *Session) {
		s.layout = l
	}
}

// WithLogger sets the session logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// WithArchive stores a copy of each saved drawing in the archive.
func WithArchive(a Archiver) Option {
	return func(s *Session) {
		s.archive = a
	}
}

// NewSession creates a session with a blank canvas of 800x600 pixels unless
// configured otherwise.
func NewSession(opts ...Option) (*Session, error) {
	s := &Session{
		id:     uuid.New(),
		brush:  DefaultBrush(),
		layout: DefaultLayout(),
		log:    zerolog.Nop(),
		width:  800,
		height: 600,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.brush.Validate(); err != nil {
		return nil, err
	}

	surface, err := NewSurface(s.width, s.height)
	if err != nil {
		return nil, err
	}
	s.log = s.log.With().Str("session", s.id.String()).Logger()

	s.surface = surface
	s.history = NewHistory(surface, append(s.histOpts, WithHistoryLogger(s.log))...)
	s.stroke = NewStrokeEngine(surface, s.Brush, s.history.Capture)
	s.resizer = NewResizeCoordinator(surface, s.history)

	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Surface returns the canvas.
func (s *Session) Surface() *Surface { return s.surface }

// History returns the undo/redo history.
func (s *Session) History() *History { return s.history }

// Stroke returns the stroke engine.
func (s *Session) Stroke() *StrokeEngine { return s.stroke }

// Cursor returns the pointer indicator for the canvas.
func (s *Session) Cursor() Cursor { return s.stroke.Cursor() }

// Brush returns the current brush settings.
func (s *Session) Brush() Brush { return s.brush }

// SetColor changes the brush color. The color is a hex string like #ff0000.
func (s *Session) SetColor(hex string) error {
	b := s.brush
	b.Color = hex
	return s.setBrush(b)
}

// SetSize changes the brush size.
func (s *Session) SetSize(size int) error {
	b := s.brush
	b.Size = size
	return s.setBrush(b)
}

// SetCap changes the brush cap shape.
func (s *Session) SetCap(name string) error {
	c, err := ParseLineCap(name)
	if err != nil {
		return err
	}
	b := s.brush
	b.Cap = c
	return s.setBrush(b)
}

// SetSoftness changes the blur radius of the brush edges.
func (s *Session) SetSoftness(radius int) error {
	b := s.brush
	b.Softness = radius
	return s.setBrush(b)
}

// ToggleEraser flips the eraser mode and returns the new state.
func (s *Session) ToggleEraser() bool {
	s.brush.Erasing = !s.brush.Erasing
	s.log.Debug().Bool("erasing", s.brush.Erasing).Msg("eraser toggled")
	return s.brush.Erasing
}

func (s *Session) setBrush(b Brush) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.brush = b
	return nil
}

// PointerDown starts a stroke.
func (s *Session) PointerDown(x, y float64) {
	s.stroke.PointerDown(Pt(x, y))
}

// PointerMove extends the active stroke.
func (s *Session) PointerMove(x, y float64) error {
	return s.stroke.PointerMove(Pt(x, y))
}

// PointerUp ends the active stroke and commits it to the history.
func (s *Session) PointerUp() error {
	return s.stroke.PointerUp()
}

// PointerLeave ends the active stroke and commits it to the history.
func (s *Session) PointerLeave() error {
	return s.stroke.PointerLeave()
}

// Undo reverts the last committed stroke.
func (s *Session) Undo(ctx context.Context) error {
	return s.history.Undo(ctx)
}

// Redo reapplies the last undone stroke.
func (s *Session) Redo(ctx context.Context) error {
	return s.history.Redo(ctx)
}

// Clear blanks the canvas and forgets the whole history.
func (s *Session) Clear() {
	s.history.Reset()
	s.log.Debug().Msg("canvas cleared")
}

// Resize fits the canvas into the viewport according to the layout policy.
func (s *Session) Resize(ctx context.Context, containerWidth, viewportHeight int) error {
	w, h := s.layout.CanvasSize(containerWidth, viewportHeight)
	return s.ResizeCanvas(ctx, w, h)
}

// ResizeCanvas sets the canvas dimensions and redraws the latest state.
func (s *Session) ResizeCanvas(ctx context.Context, width, height int) error {
	if err := s.resizer.Resize(ctx, width, height); err != nil {
		return err
	}
	s.log.Debug().Int("width", width).Int("height", height).Msg("canvas resized")
	return nil
}

// Drop imports an image file, scaled to the full canvas. Files that are not
// images are rejected with ErrNotImage and leave the canvas untouched.
func (s *Session) Drop(ctx context.Context, name string, r io.ReadSeeker) error {
	mime, err := utils.DetectContentType(r)
	if err != nil {
		return fmt.Errorf("could not read dropped file %s: %w", name, err)
	}
	if !utils.IsImage(mime) {
		s.log.Warn().Str("file", name).Str("type", mime).Msg("dropped file is not an image")
		return fmt.Errorf("%w: %s is %s", ErrNotImage, name, mime)
	}

	img, err := decodeImage(r)
	if err != nil {
		s.log.Error().Err(err).Str("file", name).Msg("could not decode dropped image")
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.surface.DrawImage(img, 0, 0, s.surface.Width(), s.surface.Height())
	s.log.Debug().Str("file", name).Msg("image dropped")
	return nil
}

// Save exports the canvas in the given format and archives a copy when an
// archive is configured.
func (s *Session) Save(ctx context.Context, w io.Writer, format Format) error {
	var buf bytes.Buffer
	if err := s.surface.Export(&buf, format); err != nil {
		return err
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return err
	}

	if s.archive != nil {
		id, err := s.archive.Archive(ctx, "drawing."+string(format), format.MimeType(),
			s.surface.Width(), s.surface.Height(), buf.Bytes())
		if err != nil {
			return fmt.Errorf("could not archive the drawing: %w", err)
		}
		s.log.Info().Str("drawing", id).Msg("drawing archived")
	}
	return nil
}
