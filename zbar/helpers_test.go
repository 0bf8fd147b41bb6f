package zbar

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Nic0w/zbars/internal/testutil"
)

func grayImage(t *testing.T, img image.Image) *Image {
	t.Helper()

	w, h, pix := testutil.Gray(img)
	zimg, err := NewImage(w, h, FormatY800, pix)
	require.NoError(t, err)
	t.Cleanup(func() { _ = zimg.Close() })
	return zimg
}

func qrImage(t *testing.T, text string) *Image {
	t.Helper()
	return grayImage(t, testutil.QRImage(t, text, 256))
}

func qrScanner(t *testing.T) *ImageScanner {
	t.Helper()

	scanner, err := NewScannerBuilder().
		WithConfig(SymbolQRCode, ConfigEnable, 1).
		Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = scanner.Close() })
	return scanner
}
