package doodle

import "errors"

var (
	// ErrInvalidSize is returned when a canvas dimension is not positive.
	ErrInvalidSize = errors.New("canvas dimensions should be positive")
	// ErrInvalidBrush is returned when a brush setting is out of range.
	ErrInvalidBrush = errors.New("invalid brush setting")
	// ErrNotImage is returned when a dropped file is not an image.
	ErrNotImage = errors.New("please drop an image file")
	// ErrDecode is returned when a snapshot or an imported image cannot be decoded.
	ErrDecode = errors.New("could not decode image")
	// ErrUnsupportedFormat is returned for unknown export formats.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)
