package pdf

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"slices"
	"time"

	"github.com/Nic0w/zbars/internal/barcode"
)

// ImageResult holds the symbols found in one embedded image.
type ImageResult struct {
	Index   int              `json:"index"`
	Width   int              `json:"width"`
	Height  int              `json:"height"`
	Results []barcode.Result `json:"results"`
}

// PageResult holds every scanned image of one page.
type PageResult struct {
	Page   int           `json:"page"`
	Images []ImageResult `json:"images"`
}

// DocumentResult is the outcome of ScanPDF.
type DocumentResult struct {
	Filename string        `json:"filename"`
	Pages    []PageResult  `json:"pages"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Symbols returns the total number of decoded symbols.
func (d *DocumentResult) Symbols() int {
	n := 0
	for _, p := range d.Pages {
		for _, img := range p.Images {
			n += len(img.Results)
		}
	}
	return n
}

// ScanPDF extracts the images of the selected pages and decodes each one with
// backend.
func ScanPDF(ctx context.Context, backend barcode.Backend, filename, pageRange string,
	creds *Credentials, opts barcode.Options,
) (*DocumentResult, error) {
	start := time.Now()
	pages, err := ExtractImages(filename, pageRange, creds)
	if err != nil {
		return nil, err
	}
	results, err := ScanPages(ctx, backend, pages, opts)
	if err != nil {
		return nil, err
	}
	doc := &DocumentResult{Filename: filename, Pages: results, Elapsed: time.Since(start)}
	slog.Info("pdf scanned", "file", filename, "pages", len(results), "symbols", doc.Symbols(),
		"duration_ms", doc.Elapsed.Milliseconds())
	return doc, nil
}

// ScanPages decodes already extracted page images in ascending page order.
// It stops at the first decode failure or when ctx is done.
func ScanPages(ctx context.Context, backend barcode.Backend, pages map[int][]image.Image,
	opts barcode.Options,
) ([]PageResult, error) {
	nums := make([]int, 0, len(pages))
	for n := range pages {
		nums = append(nums, n)
	}
	slices.Sort(nums)

	out := make([]PageResult, 0, len(nums))
	for _, n := range nums {
		page := PageResult{Page: n, Images: make([]ImageResult, 0, len(pages[n]))}
		for i, img := range pages[n] {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			res, err := backend.Decode(ctx, img, opts)
			if err != nil {
				return nil, fmt.Errorf("page %d image %d: %w", n, i, err)
			}
			b := img.Bounds()
			page.Images = append(page.Images, ImageResult{Index: i, Width: b.Dx(), Height: b.Dy(), Results: res})
		}
		out = append(out, page)
	}
	return out, nil
}
