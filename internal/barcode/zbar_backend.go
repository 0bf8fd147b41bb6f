package barcode

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"slices"

	"github.com/Nic0w/zbars/internal/imageio"
	"github.com/Nic0w/zbars/zbar"
)

// ZbarBackend decodes with libzbar. It builds a scanner per call, so one
// instance can serve concurrent callers.
type ZbarBackend struct {
	// WithXML fills Result.XML.
	WithXML bool
}

func NewZbarBackend() *ZbarBackend { return &ZbarBackend{} }

func (b *ZbarBackend) scanner(opts Options) (*zbar.ImageScanner, error) {
	builder := zbar.NewScannerBuilder()
	if len(opts.Formats) == 0 {
		builder.WithConfig(zbar.SymbolNone, zbar.ConfigEnable, 1)
	}
	for _, f := range opts.Formats {
		builder.WithConfig(f, zbar.ConfigEnable, 1)
	}
	if opts.TryHarder {
		builder.WithConfig(zbar.SymbolNone, zbar.ConfigXDensity, 1).
			WithConfig(zbar.SymbolNone, zbar.ConfigYDensity, 1).
			WithConfig(zbar.SymbolNone, zbar.ConfigTestInverted, 1)
	}
	for _, c := range opts.Configs {
		builder.WithConfigString(c)
	}
	return builder.Build()
}

func (b *ZbarBackend) Decode(ctx context.Context, img image.Image, opts Options) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("barcode: nil image")
	}

	scanner, err := b.scanner(opts)
	if err != nil {
		return nil, fmt.Errorf("barcode: configure scanner: %w", err)
	}
	defer func() { _ = scanner.Close() }()

	zimg, err := imageio.NewZbarImage(img)
	if err != nil {
		return nil, err
	}
	defer func() { _ = zimg.Close() }()

	if !opts.ROI.Empty() {
		bounds := img.Bounds()
		if roi := opts.ROI.Intersect(bounds); !roi.Empty() {
			zimg.SetCrop(roi.Sub(bounds.Min))
		}
	}

	set, err := scanner.ScanImage(zimg)
	if err != nil {
		return nil, fmt.Errorf("barcode: scan: %w", err)
	}

	var xml []string
	if b.WithXML {
		for sym := range set.All() {
			// Each symbol's XML covers its tail; keep only its own element.
			x, err := sym.XML()
			if err != nil {
				return nil, err
			}
			xml = append(xml, x)
		}
		for i := 0; i+1 < len(xml); i++ {
			xml[i] = xml[i][:len(xml[i])-len(xml[i+1])]
		}
	}

	offset := img.Bounds().Min
	results := make([]Result, 0, set.Len())
	for i, d := range set.Snapshot() {
		r := FromDecoded(d, offset)
		if opts.MinSize > 0 && min(r.BBox.Dx(), r.BBox.Dy()) < opts.MinSize {
			continue
		}
		if b.WithXML {
			r.XML = xml[i]
		}
		results = append(results, r)
	}

	if !opts.Multi && len(results) > 1 {
		best := slices.MaxFunc(results, func(a, b Result) int { return a.Quality - b.Quality })
		results = []Result{best}
	}
	slog.Debug("barcode decode", "symbols", len(results), "formats", FormatNames(opts.Formats))
	return results, nil
}

// FromDecoded converts a detached symbol into a Result, translating its
// coordinates by offset.
func FromDecoded(d zbar.Decoded, offset image.Point) Result {
	pts := make([]image.Point, len(d.Polygon))
	for i, p := range d.Polygon {
		pts[i] = p.Add(offset)
	}
	value, ok := d.Text()
	if !ok {
		value = fmt.Sprintf("%x", d.Data)
	}
	bbox := d.Bounds()
	if !bbox.Empty() {
		bbox = bbox.Add(offset)
	}
	return Result{
		Type:        d.Type,
		Value:       value,
		Raw:         d.Data,
		Points:      pts,
		BBox:        bbox,
		Orientation: d.Orientation,
		Quality:     d.Quality,
	}
}
