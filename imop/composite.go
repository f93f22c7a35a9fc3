// Package imop implements the Porter-Duff composition operations used for
// mixing brush paint with the canvas backdrop.
//
// The image/draw core package implements only the source-over-destination and
// source operators. Erasing needs destination-out (paint removes alpha instead
// of adding color), so the full operator set lives here.
package imop

import (
	"image"
	"image/color"

	"github.com/esimov/doodle/utils"
)

const (
	Clear   = "clear"
	Copy    = "copy"
	Dst     = "dst"
	SrcOver = "src_over"
	DstOver = "dst_over"
	SrcIn   = "src_in"
	DstIn   = "dst_in"
	SrcOut  = "src_out"
	DstOut  = "dst_out"
	SrcAtop = "src_atop"
	DstAtop = "dst_atop"
	Xor     = "xor"
)

// Composite holds the currently active composition operation.
type Composite struct {
	current string
	ops     []string
}

// pixel is a color with normalized, non-premultiplied components.
type pixel struct {
	r, g, b, a float64
}

// InitOp returns a Composite with SrcOver as the active operation.
func InitOp() *Composite {
	return &Composite{
		current: SrcOver,
		ops: []string{
			Clear,
			Copy,
			Dst,
			SrcOver,
			DstOver,
			SrcIn,
			DstIn,
			SrcOut,
			DstOut,
			SrcAtop,
			DstAtop,
			Xor,
		},
	}
}

// Set activates one of the supported composition operations.
// It reports false and keeps the current operation if cop is unknown.
func (op *Composite) Set(cop string) bool {
	if !utils.Contains(op.ops, cop) {
		return false
	}
	op.current = cop
	return true
}

// Get returns the currently active composition operation.
func (op *Composite) Get() string {
	return op.current
}

// DrawMask composites a uniform color onto dst, weighted by the coverage mask.
// Only the pixels inside the mask bounds are touched.
func (op *Composite) DrawMask(dst *image.NRGBA, mask *image.Alpha, col color.NRGBA) {
	rect := mask.Bounds().Intersect(dst.Bounds())
	src := toPixel(col)

	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			cov := float64(mask.Pix[mask.PixOffset(x, y)]) / 255

			i := dst.PixOffset(x, y)
			px := dst.Pix[i : i+4 : i+4]
			s := src
			s.a *= cov

			res := op.apply(s, toPixel(color.NRGBA{R: px[0], G: px[1], B: px[2], A: px[3]}))
			c := res.nrgba()
			px[0], px[1], px[2], px[3] = c.R, c.G, c.B, c.A
		}
	}
}

// Draw composites src onto dst with the src origin placed at pt.
func (op *Composite) Draw(dst, src *image.NRGBA, pt image.Point) {
	sb := src.Bounds()
	rect := sb.Sub(sb.Min).Add(pt).Intersect(dst.Bounds())

	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			s := src.NRGBAAt(x-pt.X+sb.Min.X, y-pt.Y+sb.Min.Y)
			b := dst.NRGBAAt(x, y)
			dst.SetNRGBA(x, y, op.apply(toPixel(s), toPixel(b)).nrgba())
		}
	}
}

// apply runs the alpha composition formula for the active operation:
//
//	co = as*Cs*Fa + ab*Cb*Fb
//	ao = as*Fa + ab*Fb
func (op *Composite) apply(s, b pixel) pixel {
	var fa, fb float64

	switch op.current {
	case Clear:
		fa, fb = 0, 0
	case Copy:
		fa, fb = 1, 0
	case Dst:
		fa, fb = 0, 1
	case SrcOver:
		fa, fb = 1, 1-s.a
	case DstOver:
		fa, fb = 1-b.a, 1
	case SrcIn:
		fa, fb = b.a, 0
	case DstIn:
		fa, fb = 0, s.a
	case SrcOut:
		fa, fb = 1-b.a, 0
	case DstOut:
		fa, fb = 0, 1-s.a
	case SrcAtop:
		fa, fb = b.a, 1-s.a
	case DstAtop:
		fa, fb = 1-b.a, s.a
	case Xor:
		fa, fb = 1-b.a, 1-s.a
	}

	ao := s.a*fa + b.a*fb
	if ao <= 0 {
		return pixel{}
	}

	return pixel{
		r: (s.a*s.r*fa + b.a*b.r*fb) / ao,
		g: (s.a*s.g*fa + b.a*b.g*fb) / ao,
		b: (s.a*s.b*fa + b.a*b.b*fb) / ao,
		a: ao,
	}
}

func toPixel(c color.NRGBA) pixel {
	return pixel{
		r: float64(c.R) / 255,
		g: float64(c.G) / 255,
		b: float64(c.B) / 255,
		a: float64(c.A) / 255,
	}
}

func (p pixel) nrgba() color.NRGBA {
	return color.NRGBA{
		R: quantize(p.r),
		G: quantize(p.g),
		B: quantize(p.b),
		A: quantize(p.a),
	}
}

func quantize(v float64) uint8 {
	return uint8(utils.Clamp(v*255+0.5, 0, 255))
}
