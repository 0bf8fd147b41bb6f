package barcode

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/Nic0w/zbars/zbar"
)

// Options controls backend decoding behavior.
type Options struct {
	// Formats constrains the set of symbologies to search. Empty means all.
	Formats []zbar.SymbolType

	// Configs are extra decoder settings such as "ean13.add-check=0".
	Configs []string

	// TryHarder scans every pixel row and column and retries inverted
	// images (slower but more robust).
	TryHarder bool

	// Multi returns every symbol instead of only the best one.
	Multi bool

	// ROI optionally restricts decoding to a sub-rectangle of the image.
	// If zero-sized or out of bounds it is ignored.
	ROI image.Rectangle

	// MinSize drops symbols whose bounding box is smaller than this many
	// pixels on its shorter side.
	MinSize int
}

// Result represents a decoded barcode.
type Result struct {
	Type        zbar.SymbolType  `json:"type" yaml:"type"`
	Value       string           `json:"value" yaml:"value"`
	Raw         []byte           `json:"-" yaml:"-"`
	Points      []image.Point    `json:"points,omitempty" yaml:"points,omitempty"`
	BBox        image.Rectangle  `json:"bbox" yaml:"bbox"`
	Orientation zbar.Orientation `json:"orientation" yaml:"orientation"`
	Quality     int              `json:"quality" yaml:"quality"`
	// XML is libzbar's XML rendering of the symbol, filled when requested.
	XML string `json:"-" yaml:"-"`
}

// Backend is a pluggable barcode decoder implementation.
type Backend interface {
	Decode(ctx context.Context, img image.Image, opts Options) ([]Result, error)
}

// NewBackend returns the default backend implementation.
func NewBackend() (Backend, error) { return NewZbarBackend(), nil }

// ParseFormats converts symbology names such as "qrcode" or "EAN-13" into
// symbol types. "all" or "*" yields an empty list.
func ParseFormats(names []string) ([]zbar.SymbolType, error) {
	var out []zbar.SymbolType
	for _, raw := range names {
		for _, name := range strings.Split(raw, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			t, err := zbar.ParseSymbolType(name)
			if err != nil {
				return nil, fmt.Errorf("invalid barcode format %q: %w", name, err)
			}
			if t == zbar.SymbolNone {
				return nil, nil
			}
			out = append(out, t)
		}
	}
	return out, nil
}

// FormatNames returns the configuration names of types.
func FormatNames(types []zbar.SymbolType) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, t.ConfigName())
	}
	return out
}
