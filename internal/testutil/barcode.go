package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/liyue201/goqr"
	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/require"
)

// QRImage renders text as a size×size QR code with the standard quiet zone.
func QRImage(t testing.TB, text string, size int) image.Image {
	t.Helper()

	qr, err := qrcode.New(text, qrcode.Medium)
	require.NoError(t, err, "Failed to encode QR code")
	return qr.Image(size)
}

// QRPNG renders text as PNG-encoded QR code bytes.
func QRPNG(t testing.TB, text string, size int) []byte {
	t.Helper()

	data, err := qrcode.Encode(text, qrcode.Medium, size)
	require.NoError(t, err, "Failed to encode QR code")
	return data
}

// WriteQRFile writes a QR code PNG for text into dir and returns its path.
func WriteQRFile(t testing.TB, dir, name, text string, size int) string {
	t.Helper()

	require.NoError(t, MkdirAll(dir))
	path := filepath.Join(dir, name)
	require.NoError(t, qrcode.WriteFile(text, qrcode.Medium, size, path), "Failed to write QR file: %s", path)
	return path
}

// Gray converts img to a tightly packed 8-bit greyscale buffer, the layout
// of the Y800 format.
func Gray(img image.Image) (width, height int, pix []byte) {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return b.Dx(), b.Dy(), gray.Pix
}

// Blank returns a white greyscale buffer of the given size.
func Blank(width, height int) []byte {
	pix := make([]byte, width*height)
	for i := range pix {
		pix[i] = 0xff
	}
	return pix
}

// SideBySide places images left to right on a white canvas separated by gap
// pixels.
func SideBySide(gap int, imgs ...image.Image) image.Image {
	width, height := gap, 0
	for _, img := range imgs {
		width += img.Bounds().Dx() + gap
		height = max(height, img.Bounds().Dy())
	}
	canvas := image.NewGray(image.Rect(0, 0, width, height+2*gap))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)

	x := gap
	for _, img := range imgs {
		r := image.Rect(x, gap, x+img.Bounds().Dx(), gap+img.Bounds().Dy())
		draw.Draw(canvas, r, img, img.Bounds().Min, draw.Src)
		x += img.Bounds().Dx() + gap
	}
	return canvas
}

// SaveImage writes img as PNG.
func SaveImage(t testing.TB, img image.Image, path string) {
	t.Helper()

	require.NoError(t, MkdirAll(filepath.Dir(path)))
	f, err := os.Create(path) //nolint:gosec // G304: test output path
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	require.NoError(t, png.Encode(f, img))
}

// RecognizeQR decodes QR codes in img with a pure-Go decoder so fixtures
// can be checked independently of libzbar.
func RecognizeQR(t testing.TB, img image.Image) []string {
	t.Helper()

	codes, err := goqr.Recognize(img)
	require.NoError(t, err, "Failed to recognize QR code")

	out := make([]string, 0, len(codes))
	for _, c := range codes {
		out = append(out, string(c.Payload))
	}
	return out
}
