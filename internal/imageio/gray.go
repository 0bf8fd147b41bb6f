package imageio

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"

	"github.com/Nic0w/zbars/zbar"
)

// PrepareOptions controls the pixel adjustments applied before scanning.
type PrepareOptions struct {
	// MinSide upscales images whose shorter side is below it.
	MinSide int
	// Invert produces a negative, for light-on-dark barcodes.
	Invert bool
}

// Prepare applies opts to img. The input is never modified.
func Prepare(img image.Image, opts PrepareOptions) image.Image {
	b := img.Bounds()
	if opts.MinSide > 0 {
		if short := min(b.Dx(), b.Dy()); short > 0 && short < opts.MinSide {
			scale := float64(opts.MinSide) / float64(short)
			img = imaging.Resize(img, int(float64(b.Dx())*scale+0.5), 0, imaging.NearestNeighbor)
		}
	}
	if opts.Invert {
		img = imaging.Invert(img)
	}
	return img
}

// ToGray converts img to 8-bit greyscale with a tightly packed pixel buffer
// of exactly Dx*Dy bytes. A *image.Gray that is already packed from its
// first pixel is returned as a view sharing img's memory.
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	if g, ok := img.(*image.Gray); ok && g.Stride == b.Dx() && b.Min == (image.Point{}) {
		n := b.Dx() * b.Dy()
		if len(g.Pix) == n {
			return g
		}
		// SubImage keeps the parent's tail past the last row.
		return &image.Gray{Pix: g.Pix[:n:n], Stride: g.Stride, Rect: g.Rect}
	}

	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < b.Dy(); y++ {
			copy(out.Pix[y*out.Stride:(y+1)*out.Stride], g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return out
	}

	// imaging.Grayscale yields NRGBA with equal colour channels; transparent
	// pixels are composited onto white.
	nrgba := imaging.Grayscale(img)
	for y := 0; y < b.Dy(); y++ {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := 0; x < b.Dx(); x++ {
			v, a := uint32(row[x*4]), uint32(row[x*4+3])
			out.Pix[y*out.Stride+x] = uint8((v*a + 0xff*(0xff-a)) / 0xff)
		}
	}
	return out
}

// NewZbarImage converts img into a Y800 zbar image without a further copy.
// Converted pixels are moved into an owned image; a packed *image.Gray is
// borrowed instead, so img must stay unmodified until the result is closed.
// The caller must Close it.
func NewZbarImage(img image.Image) (*zbar.Image, error) {
	if img == nil {
		return nil, &ImageProcessingError{Operation: "convert", Err: errors.New("input image is nil")}
	}
	g := ToGray(img)
	newImage := zbar.NewImage
	if sharesPixels(img, g) {
		newImage = zbar.NewImageBorrowed
	}
	zimg, err := newImage(g.Rect.Dx(), g.Rect.Dy(), zbar.FormatY800, g.Pix)
	if err != nil {
		return nil, &ImageProcessingError{Operation: "convert", Err: err}
	}
	return zimg, nil
}

func sharesPixels(img image.Image, g *image.Gray) bool {
	src, ok := img.(*image.Gray)
	return ok && len(src.Pix) > 0 && len(g.Pix) > 0 && &src.Pix[0] == &g.Pix[0]
}

// LoadZbarImage loads an image file straight into an owned Y800 zbar image.
func LoadZbarImage(path string) (*zbar.Image, Metadata, error) {
	img, meta, err := LoadImage(path)
	if err != nil {
		return nil, Metadata{}, err
	}
	zimg, err := NewZbarImage(img)
	if err != nil {
		return nil, Metadata{}, err
	}
	return zimg, meta, nil
}
