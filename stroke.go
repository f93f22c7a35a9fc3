package doodle

// StrokeState is the state of the stroke engine.
type StrokeState int

const (
	Idle StrokeState = iota
	Drawing
)

func (s StrokeState) String() string {
	if s == Drawing {
		return "drawing"
	}
	return "idle"
}

// Cursor is the pointer indicator shown over the canvas.
type Cursor string

const (
	CursorCrosshair Cursor = "crosshair"
	CursorEraser    Cursor = "eraser"
)

// StrokeEngine turns pointer input into rasterized strokes.
// A stroke begins on pointer down, grows with every pointer move and ends on
// pointer up or leave, at which point the commit hook is called once.
type StrokeEngine struct {
	surface  *Surface
	brush    func() Brush
	commit   func() error
	state    StrokeState
	last     Point
	segments int
	cursor   Cursor
}

// NewStrokeEngine creates an idle engine. brush is read on every pointer move,
// so brush changes made in the middle of a stroke apply to the next segment.
// commit is called each time a stroke ends.
func NewStrokeEngine(s *Surface, brush func() Brush, commit func() error) *StrokeEngine {
	return &StrokeEngine{
		surface: s,
		brush:   brush,
		commit:  commit,
		cursor:  CursorCrosshair,
	}
}

// PointerDown starts a stroke at p. Nothing is drawn until the pointer moves.
func (e *StrokeEngine) PointerDown(p Point) {
	e.state = Drawing
	e.last = p
	e.segments = 0
}

// PointerMove extends the active stroke to p. Moves without a preceding
// pointer down are ignored.
func (e *StrokeEngine) PointerMove(p Point) error {
	if e.state != Drawing {
		return nil
	}

	b := e.brush()
	if b.Erasing {
		e.cursor = CursorEraser
	} else {
		e.cursor = CursorCrosshair
	}

	if err := e.surface.DrawSegment(e.last, p, b); err != nil {
		return err
	}
	e.last = p
	e.segments++
	return nil
}

// PointerUp ends the active stroke.
func (e *StrokeEngine) PointerUp() error {
	return e.end()
}

// PointerLeave ends the active stroke when the pointer exits the canvas.
func (e *StrokeEngine) PointerLeave() error {
	return e.end()
}

// end commits the stroke. Spurious up or leave events while idle are ignored.
// The commit happens even if the pointer never moved.
func (e *StrokeEngine) end() error {
	if e.state != Drawing {
		return nil
	}
	e.state = Idle
	e.segments = 0

	if e.commit == nil {
		return nil
	}
	return e.commit()
}

// State returns the current engine state.
func (e *StrokeEngine) State() StrokeState { return e.state }

// Segments returns the number of segments drawn by the active stroke.
func (e *StrokeEngine) Segments() int { return e.segments }

// Cursor returns the pointer indicator matching the last brush used.
func (e *StrokeEngine) Cursor() Cursor { return e.cursor }
