package zbar

import (
	"fmt"
	"strings"
)

// Format is a four-character pixel format code (fourcc) as understood by
// libzbar. The zero value is not a valid format.
type Format uint32

// Fourcc packs four characters into a Format, first character in the low byte.
func Fourcc(a, b, c, d byte) Format {
	return Format(uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24)
}

var (
	FormatY800 = Fourcc('Y', '8', '0', '0')
	FormatGREY = Fourcc('G', 'R', 'E', 'Y')
	FormatY8   = Fourcc('Y', '8', ' ', ' ')
	FormatI420 = Fourcc('I', '4', '2', '0')
	FormatYU12 = Fourcc('Y', 'U', '1', '2')
	FormatYV12 = Fourcc('Y', 'V', '1', '2')
	FormatNV12 = Fourcc('N', 'V', '1', '2')
	FormatNV21 = Fourcc('N', 'V', '2', '1')
	FormatYUYV = Fourcc('Y', 'U', 'Y', 'V')
	FormatUYVY = Fourcc('U', 'Y', 'V', 'Y')
	FormatYVYU = Fourcc('Y', 'V', 'Y', 'U')
	FormatRGB3 = Fourcc('R', 'G', 'B', '3')
	FormatBGR3 = Fourcc('B', 'G', 'R', '3')
	FormatRGB4 = Fourcc('R', 'G', 'B', '4')
	FormatBGR4 = Fourcc('B', 'G', 'R', '4')
	FormatRGBP = Fourcc('R', 'G', 'B', 'P')
	FormatRGBO = Fourcc('R', 'G', 'B', 'O')
)

type layout int

const (
	layoutGray layout = iota + 1
	layoutYUV420
	layoutYUV422
	layoutRGB16
	layoutRGB24
	layoutRGB32
)

var knownFormats = map[Format]layout{
	FormatY800: layoutGray,
	FormatGREY: layoutGray,
	FormatY8:   layoutGray,
	FormatI420: layoutYUV420,
	FormatYU12: layoutYUV420,
	FormatYV12: layoutYUV420,
	FormatNV12: layoutYUV420,
	FormatNV21: layoutYUV420,
	FormatYUYV: layoutYUV422,
	FormatUYVY: layoutYUV422,
	FormatYVYU: layoutYUV422,
	FormatRGBP: layoutRGB16,
	FormatRGBO: layoutRGB16,
	FormatRGB3: layoutRGB24,
	FormatBGR3: layoutRGB24,
	FormatRGB4: layoutRGB32,
	FormatBGR4: layoutRGB32,
}

// FormatFromCode returns the Format for a raw fourcc value. Any value is
// accepted; unknown values are custom codes.
func FormatFromCode(code uint32) Format {
	return Format(code)
}

// FormatFromLabel parses a fourcc label such as "Y800". Labels shorter than
// four characters are padded with spaces, as in "Y8".
func FormatFromLabel(label string) (Format, error) {
	if label == "" || len(label) > 4 {
		return 0, fmt.Errorf("zbar: invalid fourcc label %q: want 1 to 4 characters", label)
	}
	for i := 0; i < len(label); i++ {
		if label[i] < 0x20 || label[i] > 0x7e {
			return 0, fmt.Errorf("zbar: invalid fourcc label %q: non-printable character", label)
		}
	}
	b := []byte(label + strings.Repeat(" ", 4-len(label)))
	return Fourcc(b[0], b[1], b[2], b[3]), nil
}

// Code returns the raw fourcc value.
func (f Format) Code() uint32 {
	return uint32(f)
}

// Known reports whether f is one of the formats with a fixed buffer layout.
func (f Format) Known() bool {
	_, ok := knownFormats[f]
	return ok
}

// Label returns the four characters of the code. Codes with non-printable
// bytes are rendered in hexadecimal.
func (f Format) Label() string {
	b := []byte{byte(f), byte(f >> 8), byte(f >> 16), byte(f >> 24)}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("0x%08x", uint32(f))
		}
	}
	return string(b)
}

func (f Format) String() string {
	return strings.TrimRight(f.Label(), " ")
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := FormatFromLabel(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// BufferSize returns the exact number of bytes an image of the given size
// occupies in this format. It reports false for custom codes.
func (f Format) BufferSize(width, height int) (int, bool) {
	l, ok := knownFormats[f]
	if !ok || width < 0 || height < 0 {
		return 0, false
	}
	halfW, halfH := (width+1)/2, (height+1)/2
	switch l {
	case layoutGray:
		return width * height, true
	case layoutYUV420:
		return width*height + 2*halfW*halfH, true
	case layoutYUV422:
		return 4 * halfW * height, true
	case layoutRGB16:
		return 2 * width * height, true
	case layoutRGB24:
		return 3 * width * height, true
	case layoutRGB32:
		return 4 * width * height, true
	}
	return 0, false
}

// checkBufferSize validates data against the size derived from the image
// geometry. Custom codes only require a non-empty buffer.
func checkBufferSize(format Format, width, height, got int) error {
	want, ok := format.BufferSize(width, height)
	if !ok {
		if got == 0 {
			return newInvalidBufferSizeError(format, got, -1)
		}
		return nil
	}
	if want == 0 || got != want {
		return newInvalidBufferSizeError(format, got, want)
	}
	return nil
}
