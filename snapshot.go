package doodle

import (
	"bytes"
	"encoding/base64"
	"image"
	"time"

	"github.com/google/uuid"
)

// Snapshot is an immutable encoded image of the canvas at one instant.
// The payload is never exposed directly, so a snapshot cannot be altered
// once it has been pushed into the history.
type Snapshot struct {
	id      uuid.UUID
	format  Format
	data    []byte
	width   int
	height  int
	created time.Time
}

// NewSnapshot wraps an encoded image. The data is copied.
func NewSnapshot(data []byte, format Format, width, height int) *Snapshot {
	return &Snapshot{
		id:      uuid.New(),
		format:  format,
		data:    bytes.Clone(data),
		width:   width,
		height:  height,
		created: time.Now(),
	}
}

// ID returns the unique identifier of the snapshot.
func (s *Snapshot) ID() uuid.UUID { return s.id }

// Format returns the encoding of the payload.
func (s *Snapshot) Format() Format { return s.format }

// Size returns the dimensions of the canvas when the snapshot was taken.
func (s *Snapshot) Size() (int, int) { return s.width, s.height }

// CreatedAt returns the capture time.
func (s *Snapshot) CreatedAt() time.Time { return s.created }

// Len returns the size of the encoded payload in bytes.
func (s *Snapshot) Len() int { return len(s.data) }

// Bytes returns a copy of the encoded payload.
func (s *Snapshot) Bytes() []byte {
	return bytes.Clone(s.data)
}

// DataURI renders the snapshot as a data URI, the same representation a
// browser canvas produces with toDataURL.
func (s *Snapshot) DataURI() string {
	return "data:" + s.format.MimeType() + ";base64," + base64.StdEncoding.EncodeToString(s.data)
}

// Decode decodes the payload into an image.
func (s *Snapshot) Decode() (image.Image, error) {
	return decodeImage(bytes.NewReader(s.data))
}
