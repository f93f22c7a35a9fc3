package doodle

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/esimov/doodle/imop"
)

// Surface is the raster canvas. It owns the pixel buffer and exposes the
// drawing primitives used by the stroke engine and the history.
type Surface struct {
	img *image.NRGBA
	op  *imop.Composite
}

// NewSurface creates a blank, fully transparent surface.
func NewSurface(width, height int) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return &Surface{
		img: image.NewNRGBA(image.Rect(0, 0, width, height)),
		op:  imop.InitOp(),
	}, nil
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.img.Bounds().Dx() }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.img.Bounds().Dy() }

// Bounds returns the pixel rectangle of the surface.
func (s *Surface) Bounds() image.Rectangle { return s.img.Bounds() }

// Resize sets the new dimensions. Like a browser canvas, resizing resets the
// raster buffer, so the existing pixels are lost even when the size is unchanged.
func (s *Surface) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	s.img = image.NewNRGBA(image.Rect(0, 0, width, height))
	return nil
}

// Clear fills the entire buffer with fully transparent pixels.
func (s *Surface) Clear() {
	clear(s.img.Pix)
}

// DrawSegment renders a line segment with the provided brush settings.
// When the brush is erasing, the covered pixels lose their alpha instead of
// receiving paint (destination-out), otherwise the paint is composited over
// the existing content (source-over).
func (s *Surface) DrawSegment(from, to Point, b Brush) error {
	if err := b.Validate(); err != nil {
		return err
	}
	col, _ := b.NRGBA()

	mask := strokeMask(from, to, b, s.img.Bounds())
	if mask == nil {
		return nil
	}

	if b.Erasing {
		s.op.Set(imop.DstOut)
	} else {
		s.op.Set(imop.SrcOver)
	}
	s.op.DrawMask(s.img, mask, col)

	return nil
}

// DrawImage blits an external bitmap into the buffer, scaled to (w, h) and
// composited over the existing content.
func (s *Surface) DrawImage(img image.Image, x, y, w, h int) {
	if img == nil || w <= 0 || h <= 0 {
		return
	}

	var src *image.NRGBA
	if b := img.Bounds(); b.Dx() == w && b.Dy() == h {
		src = toNRGBA(img)
	} else {
		src = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	s.op.Set(imop.SrcOver)
	s.op.Draw(s.img, src, image.Pt(x, y))
}

// replace clears the buffer and copies img at the origin, unscaled.
// Pixels are copied verbatim, which keeps restores lossless.
func (s *Surface) replace(img image.Image) {
	s.Clear()

	src := toNRGBA(img)
	rect := src.Bounds().Intersect(s.img.Bounds())
	rowLen := rect.Dx() * 4

	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		si := src.PixOffset(rect.Min.X, y)
		di := s.img.PixOffset(rect.Min.X, y)
		copy(s.img.Pix[di:di+rowLen], src.Pix[si:si+rowLen])
	}
}

// Export serializes the current buffer into the provided format.
func (s *Surface) Export(w io.Writer, format Format) error {
	return encodeImage(w, s.img, format)
}

// Snapshot captures the current buffer as a PNG encoded snapshot.
func (s *Surface) Snapshot() (*Snapshot, error) {
	var buf bytes.Buffer
	if err := s.Export(&buf, FormatPNG); err != nil {
		return nil, fmt.Errorf("could not capture the canvas: %w", err)
	}
	return NewSnapshot(buf.Bytes(), FormatPNG, s.Width(), s.Height()), nil
}

// Image returns a copy of the pixel buffer.
func (s *Surface) Image() *image.NRGBA {
	dst := image.NewNRGBA(s.img.Bounds())
	copy(dst.Pix, s.img.Pix)
	return dst
}
