package doodle

import (
	"context"
	"image"
	"image/color"

	"gioui.org/app"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

var defaultBkgColor = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// shortcuts lists the key combinations handled by the window.
const shortcuts = key.Set("Short-Z|Short-Y|E|C|S|" + key.NameEscape)

// Gui is the interactive window. It forwards pointer and key input to the
// session and paints the canvas on every frame.
type Gui struct {
	cfg struct {
		window struct {
			w, h  int
			title string
		}
		background color.NRGBA
	}
	session *Session
	output  string

	size    image.Point
	focused bool
	keys    struct{}
	ops     op.Ops
}

// NewGUI creates the window state for the session. Drawings saved with the
// S key are written to output.
func NewGUI(s *Session, output string) *Gui {
	g := &Gui{session: s, output: output}

	g.cfg.window.w = s.Surface().Width()
	g.cfg.window.h = s.Surface().Height()
	g.cfg.window.title = "Doodle"
	g.cfg.background = defaultBkgColor

	return g
}

// Run opens the window and processes its events until the window is closed.
func (g *Gui) Run(ctx context.Context) error {
	w := app.NewWindow(app.Title(g.cfg.window.title), app.Size(
		unit.Dp(float32(g.cfg.window.w)),
		unit.Dp(float32(g.cfg.window.h)),
	))

	for {
		select {
		case <-ctx.Done():
			w.Close()
			return ctx.Err()
		case e := <-w.Events():
			switch e := e.(type) {
			case system.FrameEvent:
				g.frame(ctx, w, e)
			case key.Event:
				if e.Name == key.NameEscape {
					w.Close()
				}
			case system.DestroyEvent:
				return e.Err
			}
		}
	}
}

// frame handles the queued input, then lays out and paints the canvas.
func (g *Gui) frame(ctx context.Context, w *app.Window, e system.FrameEvent) {
	gtx := layout.NewContext(&g.ops, e)

	if e.Size != g.size {
		g.size = e.Size
		if err := g.session.Resize(ctx, e.Size.X, e.Size.Y); err != nil {
			g.session.log.Error().Err(err).Msg("window resize failed")
		}
	}

	if g.handlePointer(ctx, gtx) || g.handleKeys(ctx, w, gtx) {
		w.Invalidate()
	}

	paint.Fill(gtx.Ops, g.cfg.background)
	g.layout(gtx)

	e.Frame(gtx.Ops)
}

// layout paints the surface and registers the input handlers over it.
func (g *Gui) layout(gtx C) D {
	surface := g.session.Surface()
	size := image.Pt(surface.Width(), surface.Height())

	area := clip.Rect{Max: size}.Push(gtx.Ops)
	paint.NewImageOp(surface.Image()).Add(gtx.Ops)
	paint.PaintOp{}.Add(gtx.Ops)

	pointer.InputOp{
		Tag:   g,
		Types: pointer.Press | pointer.Drag | pointer.Release | pointer.Leave | pointer.Cancel,
	}.Add(gtx.Ops)
	pointer.CursorNameOp{Name: cursorName(g.session.Cursor())}.Add(gtx.Ops)
	area.Pop()

	key.InputOp{Tag: &g.keys, Keys: shortcuts}.Add(gtx.Ops)
	if !g.focused {
		key.FocusOp{Tag: &g.keys}.Add(gtx.Ops)
		g.focused = true
	}

	return D{Size: size}
}

// handlePointer feeds the pointer events into the stroke engine.
// It reports whether the canvas needs to be repainted.
func (g *Gui) handlePointer(ctx context.Context, gtx C) bool {
	var dirty bool

	for _, ev := range gtx.Events(g) {
		e, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		x, y := float64(e.Position.X), float64(e.Position.Y)

		var err error
		switch e.Type {
		case pointer.Press:
			err = g.session.Dispatch(ctx, Event{Type: EventDown, X: x, Y: y})
		case pointer.Drag:
			err = g.session.Dispatch(ctx, Event{Type: EventMove, X: x, Y: y})
		case pointer.Release, pointer.Cancel:
			err = g.session.Dispatch(ctx, Event{Type: EventUp})
		case pointer.Leave:
			err = g.session.Dispatch(ctx, Event{Type: EventLeave})
		}
		if err != nil {
			g.session.log.Error().Err(err).Msg("pointer event failed")
		}
		dirty = true
	}
	return dirty
}

// handleKeys maps the keyboard shortcuts to the toolbar actions.
func (g *Gui) handleKeys(ctx context.Context, w *app.Window, gtx C) bool {
	var dirty bool

	for _, ev := range gtx.Events(&g.keys) {
		e, ok := ev.(key.Event)
		if !ok || e.State != key.Press {
			continue
		}

		var cmd Event
		switch e.Name {
		case "Z":
			cmd = Event{Type: EventUndo}
		case "Y":
			cmd = Event{Type: EventRedo}
		case "E":
			cmd = Event{Type: EventEraser}
		case "C":
			cmd = Event{Type: EventClear}
		case "S":
			cmd = Event{Type: EventSave, Path: g.output}
		case key.NameEscape:
			w.Close()
			continue
		default:
			continue
		}

		if err := g.session.Dispatch(ctx, cmd); err != nil {
			g.session.log.Error().Err(err).Str("event", string(cmd.Type)).Msg("shortcut failed")
		}
		dirty = true
	}
	return dirty
}

func cursorName(c Cursor) pointer.CursorName {
	if c == CursorEraser {
		return pointer.CursorPointer
	}
	return pointer.CursorCrossHair
}
