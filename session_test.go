package doodle

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type archived struct {
	name, mime    string
	width, height int
	data          []byte
}

type fakeArchive struct {
	saved []archived
	err   error
}

func (f *fakeArchive) Archive(_ context.Context, name, mime string, width, height int, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.saved = append(f.saved, archived{name, mime, width, height, data})
	return "drawing-1", nil
}

func newTestSession(t *testing.T, opts ...Option) *Session {
	t.Helper()

	s, err := NewSession(append([]Option{WithSize(50, 50)}, opts...)...)
	require.NoError(t, err)
	return s
}

func drag(t *testing.T, s *Session, x0, y0, x1, y1 float64) {
	t.Helper()

	s.PointerDown(x0, y0)
	require.NoError(t, s.PointerMove(x1, y1))
	require.NoError(t, s.PointerUp())
}

func TestSession_Defaults(t *testing.T) {
	s, err := NewSession()
	require.NoError(t, err)

	assert.Equal(t, 800, s.Surface().Width())
	assert.Equal(t, 600, s.Surface().Height())
	assert.Equal(t, DefaultBrush(), s.Brush())
	assert.Equal(t, DefaultHistoryLimit, s.History().Limit())
	assert.Equal(t, Idle, s.Stroke().State())
	assert.Equal(t, CursorCrosshair, s.Cursor())
	assert.NotEqual(t, s.ID(), newTestSession(t).ID())
}

func TestSession_InvalidOptions(t *testing.T) {
	_, err := NewSession(WithSize(0, 10))
	assert.ErrorIs(t, err, ErrInvalidSize)

	b := DefaultBrush()
	b.Color = "#zzz"
	_, err = NewSession(WithBrush(b))
	assert.ErrorIs(t, err, ErrInvalidBrush)
}

func TestSession_BrushSetters(t *testing.T) {
	assert := assert.New(t)
	s := newTestSession(t)

	assert.NoError(s.SetColor("#00ff00"))
	assert.NoError(s.SetSize(12))
	assert.NoError(s.SetCap("square"))
	assert.NoError(s.SetSoftness(3))

	want := Brush{Color: "#00ff00", Size: 12, Cap: CapSquare, Softness: 3}
	assert.Equal(want, s.Brush())

	assert.ErrorIs(s.SetColor("green"), ErrInvalidBrush)
	assert.ErrorIs(s.SetSize(0), ErrInvalidBrush)
	assert.ErrorIs(s.SetCap("arrow"), ErrInvalidBrush)
	assert.ErrorIs(s.SetSoftness(-1), ErrInvalidBrush)
	assert.ErrorIs(s.SetSoftness(MaxSoftness+1), ErrInvalidBrush)
	assert.ErrorIs(s.SetSoftness(1<<30), ErrInvalidBrush)
	assert.Equal(want, s.Brush())

	assert.True(s.ToggleEraser())
	assert.True(s.Brush().Erasing)
	assert.False(s.ToggleEraser())
}

func TestSession_MaxSoftnessStroke(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.SetSize(1000))
	require.NoError(t, s.SetSoftness(MaxSoftness))

	drag(t, s, 10, 10, 20, 10)
	assert.Equal(t, 1, s.History().Len())
	assert.Greater(t, s.Surface().Image().NRGBAAt(25, 25).A, uint8(0))
}

func TestSession_StrokeUndoRedo(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t)
	require.NoError(t, s.SetColor("#ff0000"))

	drag(t, s, 5, 10, 45, 10)
	drawn := s.Surface().Image()
	assert.Equal(t, red, drawn.NRGBAAt(25, 10))
	assert.Equal(t, 1, s.History().Len())

	require.NoError(t, s.Undo(ctx))
	assert.True(t, isBlank(s.Surface().Image()))

	require.NoError(t, s.Redo(ctx))
	assert.Equal(t, drawn.Pix, s.Surface().Image().Pix)
}

func TestSession_EraserShouldClearAlpha(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.SetColor("#ff0000"))
	drag(t, s, 5, 10, 45, 10)

	s.ToggleEraser()
	require.NoError(t, s.SetSize(9))
	drag(t, s, 5, 10, 45, 10)

	assert.Equal(t, CursorEraser, s.Cursor())
	img := s.Surface().Image()
	for x := 5; x < 45; x++ {
		assert.Equal(t, uint8(0), img.NRGBAAt(x, 10).A)
	}
	assert.Equal(t, 2, s.History().Len())
}

func TestSession_Clear(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t)

	drag(t, s, 5, 10, 45, 10)
	drag(t, s, 5, 20, 45, 20)
	require.NoError(t, s.Undo(ctx))

	s.Clear()
	assert.True(t, isBlank(s.Surface().Image()))
	assert.Equal(t, 0, s.History().Len())
	assert.Equal(t, 0, s.History().RedoLen())

	require.NoError(t, s.Undo(ctx))
	require.NoError(t, s.Redo(ctx))
	assert.True(t, isBlank(s.Surface().Image()))
}

func TestSession_WithHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, WithHistory(2, RedoKeep))
	assert.Equal(t, 2, s.History().Limit())

	drag(t, s, 5, 10, 45, 10)
	drag(t, s, 5, 20, 45, 20)
	drag(t, s, 5, 30, 45, 30)
	assert.Equal(t, 2, s.History().Len())

	require.NoError(t, s.Undo(ctx))
	drag(t, s, 5, 40, 45, 40)
	assert.Equal(t, 1, s.History().RedoLen())
}

func TestSession_Resize(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t)
	require.NoError(t, s.SetColor("#ff0000"))
	drag(t, s, 5, 10, 45, 10)

	require.NoError(t, s.Resize(ctx, 100, 100))
	assert.Equal(t, 90, s.Surface().Width())
	assert.Equal(t, 60, s.Surface().Height())
	assert.Equal(t, red, s.Surface().Image().NRGBAAt(25, 10))

	require.NoError(t, s.ResizeCanvas(ctx, 30, 30))
	assert.Equal(t, 30, s.Surface().Width())
	assert.Equal(t, red, s.Surface().Image().NRGBAAt(25, 10))

	s2 := newTestSession(t, WithLayout(Layout{WidthRatio: 1, HeightRatio: 1}))
	require.NoError(t, s2.Resize(ctx, 64, 32))
	assert.Equal(t, 64, s2.Surface().Width())
	assert.Equal(t, 32, s2.Surface().Height())
}

func TestSession_DropNonImage(t *testing.T) {
	var logs bytes.Buffer
	s := newTestSession(t, WithLogger(zerolog.New(&logs)))
	drag(t, s, 5, 10, 45, 10)
	before := s.Surface().Image()

	err := s.Drop(context.Background(), "notes.txt", strings.NewReader("remember the milk"))
	assert.ErrorIs(t, err, ErrNotImage)
	assert.Equal(t, before.Pix, s.Surface().Image().Pix)
	assert.Equal(t, 1, s.History().Len())
	assert.Contains(t, logs.String(), `"level":"warn"`)
	assert.Contains(t, logs.String(), "notes.txt")
}

func TestSession_DropImage(t *testing.T) {
	s := newTestSession(t)

	err := s.Drop(context.Background(), "green.png", bytes.NewReader(uniformPNG(t, 5, 5, green)))
	require.NoError(t, err)

	img := s.Surface().Image()
	for _, p := range [][2]int{{0, 0}, {25, 25}, {49, 49}} {
		c := img.NRGBAAt(p[0], p[1])
		assert.InDelta(t, 255, int(c.G), 1)
		assert.InDelta(t, 255, int(c.A), 1)
	}
	// drops are not committed to the history
	assert.Equal(t, 0, s.History().Len())
}

func TestSession_DropCorruptImage(t *testing.T) {
	s := newTestSession(t)

	data := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	err := s.Drop(context.Background(), "broken.png", bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrDecode)
	assert.True(t, isBlank(s.Surface().Image()))
}

func TestSession_Save(t *testing.T) {
	ctx := context.Background()
	arch := &fakeArchive{}
	s := newTestSession(t, WithArchive(arch))
	drag(t, s, 5, 10, 45, 10)

	var buf bytes.Buffer
	require.NoError(t, s.Save(ctx, &buf, FormatPNG))

	img, err := png.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, s.Surface().Bounds(), img.Bounds())

	require.Len(t, arch.saved, 1)
	assert.Equal(t, "drawing.png", arch.saved[0].name)
	assert.Equal(t, "image/png", arch.saved[0].mime)
	assert.Equal(t, 50, arch.saved[0].width)
	assert.Equal(t, buf.Bytes(), arch.saved[0].data)

	require.NoError(t, s.Save(ctx, &buf, FormatJPEG))
	assert.Equal(t, "drawing.jpeg", arch.saved[1].name)
}

func TestSession_SaveArchiveFailure(t *testing.T) {
	s := newTestSession(t, WithArchive(&fakeArchive{err: errors.New("disk full")}))

	var buf bytes.Buffer
	err := s.Save(context.Background(), &buf, FormatPNG)
	assert.ErrorContains(t, err, "disk full")
	// the export itself was written
	assert.NotZero(t, buf.Len())
}

func TestSession_DispatchFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := newTestSession(t)

	src := filepath.Join(dir, "green.png")
	require.NoError(t, os.WriteFile(src, uniformPNG(t, 5, 5, green), 0644))
	require.NoError(t, s.Dispatch(ctx, Event{Type: EventDrop, Path: src}))
	assert.InDelta(t, 255, int(s.Surface().Image().NRGBAAt(25, 25).G), 1)

	assert.Error(t, s.Dispatch(ctx, Event{Type: EventDrop, Path: filepath.Join(dir, "missing.png")}))

	out := filepath.Join(dir, "out.bmp")
	require.NoError(t, s.Dispatch(ctx, Event{Type: EventSave, Path: out}))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("BM")))

	err = s.Dispatch(ctx, Event{Type: EventSave, Path: filepath.Join(dir, "out.svg")})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSession_DispatchUnknown(t *testing.T) {
	s := newTestSession(t)
	assert.Error(t, s.Dispatch(context.Background(), Event{Type: "wave"}))
}

func TestSession_RunShouldContinueOnErrors(t *testing.T) {
	var logs bytes.Buffer
	s := newTestSession(t, WithLogger(zerolog.New(&logs)))

	events := make(chan Event, 8)
	events <- Event{Type: EventColor, Value: "not-a-color"}
	events <- Event{Type: EventColor, Value: "#0000ff"}
	events <- Event{Type: EventDown, X: 5, Y: 10}
	events <- Event{Type: EventMove, X: 45, Y: 10}
	events <- Event{Type: EventUp}
	events <- Event{Type: EventUndo}
	events <- Event{Type: EventRedo}
	close(events)

	require.NoError(t, s.Run(context.Background(), events))

	assert.Equal(t, "#0000ff", s.Brush().Color)
	assert.Equal(t, blue, s.Surface().Image().NRGBAAt(25, 10))
	assert.Equal(t, 1, s.History().Len())
	assert.Contains(t, logs.String(), "event failed")
}

func TestSession_RunShouldStopOnCancel(t *testing.T) {
	s := newTestSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Run(ctx, make(chan Event))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadScript(t *testing.T) {
	script := `
# a short red line
{"type":"color","value":"#ff0000"}
{"type":"size","size":7}

{"type":"down","x":5,"y":10}
{"type":"move","x":45,"y":10}
{"type":"up"}
{"type":"resize","width":80,"height":60}
`
	events, err := ReadScript(strings.NewReader(script))
	require.NoError(t, err)
	require.Len(t, events, 6)

	assert.Equal(t, Event{Type: EventColor, Value: "#ff0000"}, events[0])
	assert.Equal(t, Event{Type: EventSize, Size: 7}, events[1])
	assert.Equal(t, Event{Type: EventMove, X: 45, Y: 10}, events[3])
	assert.Equal(t, Event{Type: EventResize, Width: 80, Height: 60}, events[5])

	s := newTestSession(t)
	for _, ev := range events {
		require.NoError(t, s.Dispatch(context.Background(), ev))
	}
	assert.Equal(t, 80, s.Surface().Width())
	assert.Equal(t, red, s.Surface().Image().NRGBAAt(25, 10))
}

func TestReadScript_Errors(t *testing.T) {
	_, err := ReadScript(strings.NewReader("{\"type\":\"up\"}\n{broken"))
	assert.ErrorContains(t, err, "script line 2")

	_, err = ReadScript(strings.NewReader(`{"x":1}`))
	assert.ErrorContains(t, err, "missing event type")
}
