package model

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a drawing does not exist in the archive.
var ErrNotFound = errors.New("drawing not found")

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Drawing{},
}

// Drawing is a saved canvas export kept in the gallery.
type Drawing struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Name      string    `json:"name"`
	Mime      string    `json:"mime"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Data      []byte    `json:"-"`
	CreatedAt time.Time `json:"createdAt" gorm:"index:idx_drawing_created_at"`
}

func (*Drawing) TableName() string {
	return "drawings"
}

// Size returns the encoded payload length in bytes.
func (d *Drawing) Size() int { return len(d.Data) }
