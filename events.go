package doodle

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/esimov/doodle/utils"
)

// EventType identifies an input event fed into the session.
type EventType string

const (
	EventDown     EventType = "down"
	EventMove     EventType = "move"
	EventUp       EventType = "up"
	EventLeave    EventType = "leave"
	EventColor    EventType = "color"
	EventSize     EventType = "size"
	EventCap      EventType = "cap"
	EventSoftness EventType = "softness"
	EventEraser   EventType = "eraser"
	EventUndo     EventType = "undo"
	EventRedo     EventType = "redo"
	EventClear    EventType = "clear"
	EventResize   EventType = "resize"
	EventViewport EventType = "viewport"
	EventDrop     EventType = "drop"
	EventSave     EventType = "save"
)

// Event is a single user interaction: a pointer event, a widget change or a
// button press. Only the fields relevant to the type are set.
type Event struct {
	Type   EventType `json:"type"`
	X      float64   `json:"x,omitempty"`
	Y      float64   `json:"y,omitempty"`
	Value  string    `json:"value,omitempty"`
	Size   int       `json:"size,omitempty"`
	Width  int       `json:"width,omitempty"`
	Height int       `json:"height,omitempty"`
	Path   string    `json:"path,omitempty"`
}

// Dispatch applies one event to the session.
func (s *Session) Dispatch(ctx context.Context, ev Event) error {
	switch ev.Type {
	case EventDown:
		s.PointerDown(ev.X, ev.Y)
	case EventMove:
		return s.PointerMove(ev.X, ev.Y)
	case EventUp:
		return s.PointerUp()
	case EventLeave:
		return s.PointerLeave()
	case EventColor:
		return s.SetColor(ev.Value)
	case EventSize:
		return s.SetSize(ev.Size)
	case EventCap:
		return s.SetCap(ev.Value)
	case EventSoftness:
		return s.SetSoftness(ev.Size)
	case EventEraser:
		s.ToggleEraser()
	case EventUndo:
		return s.Undo(ctx)
	case EventRedo:
		return s.Redo(ctx)
	case EventClear:
		s.Clear()
	case EventResize:
		return s.ResizeCanvas(ctx, ev.Width, ev.Height)
	case EventViewport:
		return s.Resize(ctx, ev.Width, ev.Height)
	case EventDrop:
		return s.dropPath(ctx, ev.Path)
	case EventSave:
		return s.savePath(ctx, ev.Path)
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	return nil
}

// Run is the session event loop. Events are applied strictly one after the
// other, so an image decode requested by one event always completes before
// the next event touches the canvas. Errors are logged and do not stop the
// loop. Run returns when the channel is closed or ctx is done.
func (s *Session) Run(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := s.Dispatch(ctx, ev); err != nil {
				s.log.Error().Err(err).Str("event", string(ev.Type)).Msg("event failed")
			}
		}
	}
}

// dropPath imports a local image file or an image URL.
func (s *Session) dropPath(ctx context.Context, path string) error {
	if utils.IsValidUrl(path) {
		f, err := utils.DownloadImage(path)
		if err != nil {
			return err
		}
		defer os.Remove(f.Name())
		defer f.Close()
		return s.Drop(ctx, path, f)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("unable to open the dropped file: %w", err)
	}
	defer f.Close()
	return s.Drop(ctx, path, f)
}

// savePath writes the drawing to a file. The format follows the extension.
func (s *Session) savePath(ctx context.Context, path string) error {
	if path == "" {
		path = DefaultFilename
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create the destination file: %w", err)
	}
	if err := s.Save(ctx, f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadScript parses a recorded interaction script: one JSON encoded event
// per line. Blank lines and lines starting with # are skipped.
func ReadScript(r io.Reader) ([]Event, error) {
	var events []Event

	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var ev Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			return nil, fmt.Errorf("script line %d: %w", n, err)
		}
		if ev.Type == "" {
			return nil, fmt.Errorf("script line %d: missing event type", n)
		}
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
