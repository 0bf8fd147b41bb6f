// Package pdf extracts the raster images embedded in PDF pages and scans
// them for barcodes.
package pdf

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Nic0w/zbars/internal/imageio"
)

// Credentials unlock encrypted documents.
type Credentials struct {
	UserPassword  string `json:"user_password,omitempty" yaml:"user_password,omitempty"`
	OwnerPassword string `json:"owner_password,omitempty" yaml:"owner_password,omitempty"`
}

func (c *Credentials) pdfcpuConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	if c != nil {
		conf.UserPW = c.UserPassword
		conf.OwnerPW = c.OwnerPassword
	}
	return conf
}

// PageCount returns the number of pages in filename.
func PageCount(filename string, creds *Credentials) (int, error) {
	f, err := os.Open(filename) //nolint:gosec // G304: caller-chosen document
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := api.PageCount(f, creds.pdfcpuConfig())
	if err != nil {
		return 0, fmt.Errorf("counting pages of %s: %w", filename, err)
	}
	return n, nil
}

// ExtractImages returns the images embedded in the selected pages of
// filename, keyed by page number. An empty pageRange selects every page.
func ExtractImages(filename string, pageRange string, creds *Credentials) (map[int][]image.Image, error) {
	pages, err := ParsePages(pageRange)
	if err != nil {
		return nil, fmt.Errorf("invalid page range %q: %w", pageRange, err)
	}
	if _, err := os.Stat(filename); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "zbars-pdf-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	if err := api.ExtractImagesFile(filename, dir, selection(pages), creds.pdfcpuConfig()); err != nil {
		return nil, fmt.Errorf("extracting images from %s: %w", filename, err)
	}
	return collectPageImages(dir, strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
}

// selection renders pages in pdfcpu's page selection syntax. Nil selects
// everything.
func selection(pages []int) []string {
	if len(pages) == 0 {
		return nil
	}
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = strconv.Itoa(p)
	}
	return out
}

// pageFilePattern matches "page_<n>_..." and pdfcpu's "<base>_<n>_<res>.<ext>".
func pageFilePattern(base string) *regexp.Regexp {
	prefix := "page"
	if base != "" {
		prefix = "(?:page|" + regexp.QuoteMeta(base) + ")"
	}
	return regexp.MustCompile("^" + prefix + `_([1-9][0-9]*)_`)
}

func pageOf(name string, re *regexp.Regexp) (int, bool) {
	m := re.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	return n, err == nil
}

// collectPageImages groups the decodable page images in dir by page. Other
// files, and images that fail to decode, are skipped.
func collectPageImages(dir, base string) (map[int][]image.Image, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	re := pageFilePattern(base)
	out := make(map[int][]image.Image)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		page, ok := pageOf(e.Name(), re)
		if !ok {
			continue
		}
		img, _, err := imageio.LoadImage(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		out[page] = append(out[page], img)
	}
	return out, nil
}

// ParsePages parses a selection such as "1-3,7" into sorted, distinct page
// numbers. Blank input yields nil.
func ParsePages(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var pages []int
	for _, tok := range strings.Split(s, ",") {
		lo, hi, err := pageSpan(strings.TrimSpace(tok))
		if err != nil {
			return nil, err
		}
		for p := lo; p <= hi; p++ {
			pages = append(pages, p)
		}
	}
	slices.Sort(pages)
	return slices.Compact(pages), nil
}

// pageSpan parses "n" or "lo-hi".
func pageSpan(tok string) (int, int, error) {
	loText, hiText, isRange := strings.Cut(tok, "-")
	lo, err := pageNumber(loText)
	if err != nil {
		return 0, 0, err
	}
	if !isRange {
		return lo, lo, nil
	}
	hi, err := pageNumber(hiText)
	if err != nil {
		return 0, 0, err
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("range %q runs backwards", tok)
	}
	return lo, hi, nil
}

func pageNumber(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid page number %q", s)
	}
	return n, nil
}
