package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Nic0w/zbars/internal/testutil"
	"github.com/disintegration/imaging"
	qrcode "github.com/skip2/go-qrcode"
)

// Fixture describes one generated image and the payloads it must decode to.
type Fixture struct {
	Path     string   `json:"path"`
	Expected []string `json:"expected"`
	Note     string   `json:"note,omitempty"`
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		outDir  = flag.String("out", "testdata", "output directory, relative to the project root")
		size    = flag.Int("size", 256, "QR code side in pixels")
		verbose = flag.Bool("v", false, "Verbose output")
		help    = flag.Bool("h", false, "Show help")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Generate barcode test images and a manifest of their payloads.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *help {
		flag.Usage()
		return
	}

	root, err := testutil.ProjectRoot()
	if err != nil {
		slog.Error("Failed to find project root", "error", err)
		os.Exit(1)
	}
	dir := filepath.Join(root, *outDir)
	if *verbose {
		slog.Info("Generating test data", "dir", dir, "size", *size)
	}

	fixtures, err := generate(dir, *size)
	if err != nil {
		slog.Error("Failed to generate test data", "error", err)
		os.Exit(1)
	}
	if err := writeManifest(filepath.Join(dir, "fixtures", "manifest.json"), fixtures); err != nil {
		slog.Error("Failed to write manifest", "error", err)
		os.Exit(1)
	}
	slog.Info("Generated test data", "images", len(fixtures), "dir", dir)
}

// generate writes every fixture image under dir/images and returns the
// manifest entries. Paths in the manifest are relative to dir.
func generate(dir string, size int) ([]Fixture, error) {
	var fixtures []Fixture
	add := func(rel string, img image.Image, note string, expected ...string) error {
		if err := saveImage(filepath.Join(dir, rel), img); err != nil {
			return err
		}
		fixtures = append(fixtures, Fixture{Path: rel, Expected: expected, Note: note})
		return nil
	}

	payloads := []string{"Hello", "zbars", "https://zbar.sourceforge.net/", "12345678901234567890", "MIXED case 42"}
	for i, text := range payloads {
		img, err := qrImage(text, size)
		if err != nil {
			return nil, err
		}
		if err := add(fmt.Sprintf("images/single/qr_%d.png", i+1), img, "", text); err != nil {
			return nil, err
		}
	}

	rotated, err := qrImage("Rotated", size)
	if err != nil {
		return nil, err
	}
	for _, r := range []struct {
		name string
		img  image.Image
	}{
		{"90", imaging.Rotate90(rotated)},
		{"180", imaging.Rotate180(rotated)},
		{"270", imaging.Rotate270(rotated)},
	} {
		if err := add("images/rotated/qr_"+r.name+".png", r.img, "rotated "+r.name, "Rotated"); err != nil {
			return nil, err
		}
	}

	left, err := qrImage("left", size)
	if err != nil {
		return nil, err
	}
	right, err := qrImage("right", size)
	if err != nil {
		return nil, err
	}
	if err := add("images/multi/pair.png", testutil.SideBySide(size/4, left, right), "two symbols", "left", "right"); err != nil {
		return nil, err
	}

	small := imaging.Resize(left, size/2, size/2, imaging.NearestNeighbor)
	if err := add("images/scaled/qr_half.png", small, "downscaled", "left"); err != nil {
		return nil, err
	}

	blank := image.NewGray(image.Rect(0, 0, size, size))
	draw.Draw(blank, blank.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	if err := add("images/blank/blank.png", blank, "no symbols"); err != nil {
		return nil, err
	}

	return fixtures, nil
}

func qrImage(text string, size int) (image.Image, error) {
	qr, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %q: %w", text, err)
	}
	return qr.Image(size), nil
}

func saveImage(path string, img image.Image) error {
	if err := testutil.MkdirAll(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func writeManifest(path string, fixtures []Fixture) error {
	if err := testutil.MkdirAll(filepath.Dir(path)); err != nil {
		return err
	}
	data, err := json.MarshalIndent(fixtures, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}
