package doodle

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/esimov/doodle/utils"
)

// LineCap is the shape used at the end points of a stroke segment.
type LineCap string

const (
	CapRound  LineCap = "round"
	CapSquare LineCap = "square"
	CapButt   LineCap = "butt"
)

// Default brush settings.
const (
	DefaultColor = "#000000"
	DefaultSize  = 5
	DefaultCap   = CapRound
)

// MaxSoftness is the largest blur radius a brush accepts.
const MaxSoftness = 100

// ParseLineCap converts a cap name into a LineCap.
func ParseLineCap(name string) (LineCap, error) {
	switch c := LineCap(strings.ToLower(strings.TrimSpace(name))); c {
	case CapRound, CapSquare, CapButt:
		return c, nil
	}
	return "", fmt.Errorf("%w: unknown line cap %q", ErrInvalidBrush, name)
}

// Brush holds the settings used for rendering strokes.
// The zero value is not usable, start from DefaultBrush.
type Brush struct {
	Color    string
	Size     int
	Cap      LineCap
	Erasing  bool
	Softness int // blur radius applied to the stroke edges, 0 means hard edges
}

// DefaultBrush returns a 5px round black brush.
func DefaultBrush() Brush {
	return Brush{
		Color: DefaultColor,
		Size:  DefaultSize,
		Cap:   DefaultCap,
	}
}

// Validate checks that every brush setting is usable.
func (b Brush) Validate() error {
	if b.Size <= 0 {
		return fmt.Errorf("%w: size %d", ErrInvalidBrush, b.Size)
	}
	if b.Softness < 0 || b.Softness > MaxSoftness {
		return fmt.Errorf("%w: softness %d", ErrInvalidBrush, b.Softness)
	}
	if _, err := ParseLineCap(string(b.Cap)); err != nil {
		return err
	}
	if _, err := b.NRGBA(); err != nil {
		return err
	}
	return nil
}

// NRGBA returns the brush color.
func (b Brush) NRGBA() (color.NRGBA, error) {
	c, err := utils.HexToRGBA(b.Color)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %v", ErrInvalidBrush, err)
	}
	return c, nil
}
