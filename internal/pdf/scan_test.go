package pdf

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nic0w/zbars/internal/barcode"
	"github.com/Nic0w/zbars/internal/testutil"
	"github.com/Nic0w/zbars/zbar"
)

type countingBackend struct {
	calls int
	err   error
}

func (b *countingBackend) Decode(_ context.Context, img image.Image, _ barcode.Options) ([]barcode.Result, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return []barcode.Result{{Type: zbar.SymbolQRCode, Value: "w", Quality: img.Bounds().Dx()}}, nil
}

func TestScanPages_SortedByPage(t *testing.T) {
	pages := map[int][]image.Image{
		3: {image.NewGray(image.Rect(0, 0, 30, 10))},
		1: {image.NewGray(image.Rect(0, 0, 10, 10)), image.NewGray(image.Rect(0, 0, 20, 5))},
	}
	backend := &countingBackend{}

	got, err := ScanPages(context.Background(), backend, pages, barcode.Options{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Page)
	assert.Equal(t, 3, got[1].Page)
	require.Len(t, got[0].Images, 2)
	assert.Equal(t, ImageResult{Index: 1, Width: 20, Height: 5, Results: []barcode.Result{{Type: zbar.SymbolQRCode, Value: "w", Quality: 20}}}, got[0].Images[1])
	assert.Equal(t, 3, backend.calls)

	doc := DocumentResult{Pages: got}
	assert.Equal(t, 3, doc.Symbols())
}

func TestScanPages_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	backend := &countingBackend{err: boom}
	pages := map[int][]image.Image{1: {image.NewGray(image.Rect(0, 0, 4, 4))}, 2: {image.NewGray(image.Rect(0, 0, 4, 4))}}

	_, err := ScanPages(context.Background(), backend, pages, barcode.Options{})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "page 1 image 0")
	assert.Equal(t, 1, backend.calls)
}

func TestScanPages_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	backend := &countingBackend{}
	_, err := ScanPages(ctx, backend, map[int][]image.Image{1: {image.NewGray(image.Rect(0, 0, 4, 4))}}, barcode.Options{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, backend.calls)
}

func TestScanPages_RealBackend(t *testing.T) {
	pages := map[int][]image.Image{1: {testutil.QRImage(t, "Hello PDF", 256)}}
	got, err := ScanPages(context.Background(), barcode.NewZbarBackend(), pages, barcode.Options{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Images[0].Results, 1)
	assert.Equal(t, "Hello PDF", got[0].Images[0].Results[0].Value)
}

func TestScanPDF_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dir := t.TempDir()
	pngPath := filepath.Join(dir, "qr.png")
	testutil.SaveImage(t, testutil.QRImage(t, "Hello PDF", 256), pngPath)

	pdfPath := filepath.Join(dir, "codes.pdf")
	if err := api.ImportImagesFile([]string{pngPath}, pdfPath, nil, nil); err != nil {
		t.Skipf("pdfcpu could not build a fixture PDF: %v", err)
	}

	n, err := PageCount(pdfPath, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	doc, err := ScanPDF(context.Background(), barcode.NewZbarBackend(), pdfPath, "1", nil, barcode.Options{})
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)
	require.Equal(t, 1, doc.Symbols())
	assert.Equal(t, "Hello PDF", doc.Pages[0].Images[0].Results[0].Value)
}
