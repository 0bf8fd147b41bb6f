package zbar

/*
#include <zbar.h>

static void zbars_image_set_go_data(zbar_image_t *img, void *data, unsigned long len) {
	zbar_image_set_data(img, data, len, NULL);
}
*/
import "C"

import (
	"image"
	"log/slog"
	"runtime"
	"unsafe"

	"github.com/Nic0w/zbars/internal/metrics"
)

// Image is a native image handle together with its pixel data.
//
// Neither constructor copies pixels. An owned Image takes over the slice it
// was given; a borrowed Image only references caller memory. In both cases
// the slice is pinned until Close and libzbar reads it in place. Images
// produced by Convert hold a native buffer freed by the native destroy
// call. The data is fixed at construction; geometry, format and crop can be
// changed afterwards.
type Image struct {
	img     *C.zbar_image_t
	owned   bool
	pinner  runtime.Pinner
	data    []byte
	results generation
}

// NewImage creates an Image that takes ownership of data. len(data) must
// equal format.BufferSize(width, height). The slice is handed over without
// a copy: the caller must not touch it until Close releases it.
func NewImage(width, height int, format Format, data []byte) (*Image, error) {
	i, err := newGoImage(width, height, format, data)
	if err != nil {
		return nil, err
	}
	i.owned = true
	return i, nil
}

// NewImageBorrowed creates an Image over caller memory without copying it.
// The slice is pinned until Close; the caller must not modify it while the
// image is being scanned.
func NewImageBorrowed(width, height int, format Format, data []byte) (*Image, error) {
	return newGoImage(width, height, format, data)
}

// newGoImage attaches pinned Go memory with no native cleanup handler.
func newGoImage(width, height int, format Format, data []byte) (*Image, error) {
	if err := checkBufferSize(format, width, height, len(data)); err != nil {
		return nil, err
	}
	i, err := newImage(width, height, format)
	if err != nil {
		return nil, err
	}
	i.pinner.Pin(&data[0])
	i.data = data
	C.zbars_image_set_go_data(i.img, unsafe.Pointer(&data[0]), C.ulong(len(data)))
	return i, nil
}

// dataPointer is the buffer libzbar reads pixels from.
func (i *Image) dataPointer() unsafe.Pointer {
	if i.img == nil {
		return nil
	}
	return unsafe.Pointer(C.zbar_image_get_data(i.img))
}

func newImage(width, height int, format Format) (*Image, error) {
	img := C.zbar_image_create()
	if img == nil {
		return nil, newScanError("image_create", -1, &NativeDetail{Code: ErrorNoMem, Severity: SeverityError})
	}
	C.zbar_image_set_format(img, C.ulong(format))
	C.zbar_image_set_size(img, C.uint(width), C.uint(height))
	metrics.HandleOpened(metrics.KindImage)
	return &Image{img: img}, nil
}

// wrapImage adopts a native image created by libzbar, such as a conversion
// result. Its data is released by the cleanup handler libzbar installed.
func wrapImage(img *C.zbar_image_t) *Image {
	metrics.HandleOpened(metrics.KindImage)
	return &Image{img: img, owned: true}
}

// Owned reports whether the image owns its pixel data, either a slice handed
// to NewImage or a native buffer from Convert.
func (i *Image) Owned() bool {
	return i.owned
}

func (i *Image) Width() int {
	if i.img == nil {
		return 0
	}
	return int(C.zbar_image_get_width(i.img))
}

func (i *Image) Height() int {
	if i.img == nil {
		return 0
	}
	return int(C.zbar_image_get_height(i.img))
}

func (i *Image) Format() Format {
	if i.img == nil {
		return 0
	}
	return Format(C.zbar_image_get_format(i.img))
}

func (i *Image) Sequence() uint {
	if i.img == nil {
		return 0
	}
	return uint(C.zbar_image_get_sequence(i.img))
}

// Crop returns the region of the image that is scanned.
func (i *Image) Crop() image.Rectangle {
	if i.img == nil {
		return image.Rectangle{}
	}
	var x, y, w, h C.uint
	C.zbar_image_get_crop(i.img, &x, &y, &w, &h)
	return image.Rect(int(x), int(y), int(x+w), int(y+h))
}

// SetFormat changes the declared pixel format. The data is not converted;
// use Convert for that.
func (i *Image) SetFormat(format Format) {
	if i.img != nil {
		C.zbar_image_set_format(i.img, C.ulong(format))
	}
}

// SetSize changes the declared dimensions. The crop region is reset to the
// whole image.
func (i *Image) SetSize(width, height int) {
	if i.img != nil {
		C.zbar_image_set_size(i.img, C.uint(width), C.uint(height))
	}
}

func (i *Image) SetSequence(seq uint) {
	if i.img != nil {
		C.zbar_image_set_sequence(i.img, C.uint(seq))
	}
}

// SetCrop restricts scanning to r. libzbar clips r to the image bounds.
func (i *Image) SetCrop(r image.Rectangle) {
	if i.img == nil {
		return
	}
	r = r.Canon()
	if r.Min.X < 0 {
		r.Min.X = 0
	}
	if r.Min.Y < 0 {
		r.Min.Y = 0
	}
	C.zbar_image_set_crop(i.img, C.uint(r.Min.X), C.uint(r.Min.Y), C.uint(r.Dx()), C.uint(r.Dy()))
}

// Symbols returns the results attached by the last scan, or nil if the
// image was never scanned.
func (i *Image) Symbols() *SymbolSet {
	if i.img == nil {
		return nil
	}
	set := C.zbar_image_get_symbols(i.img)
	if set == nil {
		return nil
	}
	return newSymbolSet(set, i.results.stamp())
}

// FirstSymbol returns the first decoded symbol of the last scan, or nil.
func (i *Image) FirstSymbol() *Symbol {
	if i.img == nil {
		return nil
	}
	return newSymbol(C.zbar_image_first_symbol(i.img), i.results.stamp())
}

// Convert returns a new owned Image holding this image's pixels converted
// to format by libzbar.
func (i *Image) Convert(format Format) (*Image, error) {
	if i.img == nil {
		return nil, ErrClosed
	}
	out := C.zbar_image_convert(i.img, C.ulong(format))
	if out == nil {
		return nil, newScanError("image_convert to "+format.String(), -1, &NativeDetail{Code: ErrorUnsupported, Severity: SeverityError})
	}
	return wrapImage(out), nil
}

// beginScan invalidates every view into the previous results.
func (i *Image) beginScan() stamp {
	i.results.advance()
	return i.results.stamp()
}

// Close destroys the native image. Symbol views obtained from it become
// invalid. Close is idempotent.
func (i *Image) Close() error {
	if i == nil || i.img == nil {
		return nil
	}
	i.results.advance()
	C.zbar_image_destroy(i.img)
	i.img = nil
	if i.data != nil {
		i.pinner.Unpin()
		i.data = nil
	}
	metrics.HandleClosed(metrics.KindImage)
	slog.Debug("zbar image closed", "owned", i.owned)
	return nil
}
