package support

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"github.com/cucumber/godog"
	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// aQRCodeImageContaining writes a PNG QR code for text into the temp dir.
func (tc *TestContext) aQRCodeImageContaining(name, text string) error {
	path := tc.TempPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := qrcode.WriteFile(text, qrcode.Medium, qrSize, path); err != nil {
		return fmt.Errorf("failed to write QR code %s: %w", name, err)
	}
	return nil
}

// aBlankImage writes a white PNG with nothing to decode.
func (tc *TestContext) aBlankImage(name string) error {
	img := image.NewGray(image.Rect(0, 0, 120, 80))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	return writePNG(tc.TempPath(name), img)
}

// aFileContaining writes raw text, used for corrupt-image scenarios.
func (tc *TestContext) aFileContaining(name, content string) error {
	path := tc.TempPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o600)
}

func writePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path) //nolint:gosec // G304: test fixture path
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// RegisterImageSteps registers fixture generation steps.
func (tc *TestContext) RegisterImageSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a QR code image "([^"]*)" containing "([^"]*)"$`, tc.aQRCodeImageContaining)
	sc.Step(`^a blank image "([^"]*)"$`, tc.aBlankImage)
	sc.Step(`^a file "([^"]*)" containing "([^"]*)"$`, tc.aFileContaining)
}
