package doodle

import (
	"image"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/vector"
)

// arcSteps is the number of line segments used to approximate a half circle.
const arcSteps = 16

// Point is a canvas relative coordinate.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) add(q Point) Point   { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) sub(q Point) Point   { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) mul(k float64) Point { return Point{p.X * k, p.Y * k} }
func (p Point) length() float64     { return math.Hypot(p.X, p.Y) }
func (p Point) rotate(a float64) Point {
	sin, cos := math.Sincos(a)
	return Point{p.X*cos - p.Y*sin, p.X*sin + p.Y*cos}
}

// segmentOutline returns the convex polygon covered by a segment of the given
// width. The caps extend the body of the segment the same way the HTML canvas
// lineCap property does.
func segmentOutline(from, to Point, width float64, lineCap LineCap) []Point {
	half := width / 2
	dir := to.sub(from)
	l := dir.length()

	if l == 0 {
		switch lineCap {
		case CapRound:
			return circle(from, half)
		case CapSquare:
			dir = Pt(1, 0)
			l = 1
		default:
			return nil
		}
	}

	u := dir.mul(1 / l)
	n := Pt(-u.Y, u.X).mul(half)

	switch lineCap {
	case CapSquare:
		from = from.sub(u.mul(half))
		to = to.add(u.mul(half))
		fallthrough
	case CapButt:
		return []Point{from.add(n), to.add(n), to.sub(n), from.sub(n)}
	}

	// Round caps: walk along one side, around the end point, back along the
	// other side and around the start point.
	poly := make([]Point, 0, 2*arcSteps+2)
	for i := 0; i <= arcSteps; i++ {
		poly = append(poly, to.add(n.rotate(-math.Pi*float64(i)/arcSteps)))
	}
	for i := 0; i <= arcSteps; i++ {
		poly = append(poly, from.sub(n.rotate(-math.Pi*float64(i)/arcSteps)))
	}
	return poly
}

func circle(c Point, r float64) []Point {
	poly := make([]Point, 0, 2*arcSteps)
	for i := 0; i < 2*arcSteps; i++ {
		a := math.Pi * float64(i) / arcSteps
		poly = append(poly, c.add(Pt(r*math.Cos(a), r*math.Sin(a))))
	}
	return poly
}

// strokeMask rasterizes a brush segment into an anti-aliased coverage mask.
// The mask is clipped to clip and nil is returned when nothing is covered.
func strokeMask(from, to Point, b Brush, clip image.Rectangle) *image.Alpha {
	poly := segmentOutline(from, to, float64(b.Size), b.Cap)
	if len(poly) < 3 {
		return nil
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range poly {
		minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
		maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
	}

	pad := 1 + 2*b.Softness
	rect := image.Rect(
		int(math.Floor(minX))-pad, int(math.Floor(minY))-pad,
		int(math.Ceil(maxX))+pad, int(math.Ceil(maxY))+pad,
	)
	if rect.Intersect(clip).Empty() {
		return nil
	}
	// The softness blur needs the neighbourhood outside clip to fade evenly.
	if b.Softness > 0 {
		rect = rect.Intersect(clip.Inset(-pad))
	} else {
		rect = rect.Intersect(clip)
	}

	z := vector.NewRasterizer(rect.Dx(), rect.Dy())
	z.DrawOp = draw.Src

	ox, oy := float64(rect.Min.X), float64(rect.Min.Y)
	z.MoveTo(float32(poly[0].X-ox), float32(poly[0].Y-oy))
	for _, p := range poly[1:] {
		z.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	z.ClosePath()

	mask := image.NewAlpha(rect)
	z.Draw(mask, rect, image.Opaque, image.Point{})

	if b.Softness > 0 {
		mask = soften(mask, b.Softness).SubImage(clip).(*image.Alpha)
	}
	return mask
}

// soften blurs the mask edges with a gaussian of the given radius.
func soften(mask *image.Alpha, radius int) *image.Alpha {
	blurred := imaging.Blur(mask, float64(radius)/2)

	res := image.NewAlpha(mask.Bounds())
	for i := range res.Pix {
		res.Pix[i] = blurred.Pix[i*4+3]
	}
	return res
}
