package doodle

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Format is an encoding supported by the export operation.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatBMP  Format = "bmp"
	FormatPDF  Format = "pdf"
)

// ParseFormat converts a format name (or a file extension) into a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "", "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "bmp":
		return FormatBMP, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// FormatFromPath derives the export format from the file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// MimeType returns the MIME type of the encoded output.
func (f Format) MimeType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatBMP:
		return "image/bmp"
	case FormatPDF:
		return "application/pdf"
	}
	return "image/png"
}

// decodeImage decodes any of the registered image formats.
func decodeImage(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}

// toNRGBA converts any image type to *image.NRGBA with min-point at (0, 0).
func toNRGBA(img image.Image) *image.NRGBA {
	if dst, ok := img.(*image.NRGBA); ok && dst.Bounds().Min == (image.Point{}) {
		return dst
	}
	return imaging.Clone(img)
}

// encodeImage encodes an image to a destination of type io.Writer.
func encodeImage(w io.Writer, img *image.NRGBA, format Format) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatPDF:
		return encodePDF(w, img)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// encodePDF writes a single page document sized to the canvas with the
// drawing embedded as a PNG image, so the transparency is preserved.
func encodePDF(w io.Writer, img *image.NRGBA) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}

	width, height := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("drawing", opts, &buf)
	pdf.ImageOptions("drawing", 0, 0, width, height, false, opts, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("could not render pdf: %w", err)
	}
	return pdf.Output(w)
}
