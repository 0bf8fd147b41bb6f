package zbar

import (
	"image"
	"unicode/utf8"
)

// Decoded is a detached copy of a Symbol. It is safe to keep after the
// scan that produced it and to share between goroutines.
type Decoded struct {
	Type        SymbolType    `json:"type" yaml:"type"`
	Data        []byte        `json:"data" yaml:"data"`
	Quality     int           `json:"quality" yaml:"quality"`
	Count       int           `json:"count" yaml:"count"`
	Orientation Orientation   `json:"orientation" yaml:"orientation"`
	Polygon     []image.Point `json:"polygon" yaml:"polygon"`
	Components  []Decoded     `json:"components,omitempty" yaml:"components,omitempty"`
}

// Text returns the payload as a string if it is valid UTF-8.
func (d Decoded) Text() (string, bool) {
	if !utf8.Valid(d.Data) {
		return "", false
	}
	return string(d.Data), true
}

// Bounds returns the bounding rectangle of the locator polygon.
func (d Decoded) Bounds() image.Rectangle {
	return boundsOf(d.Polygon)
}
