package zbar

/*
#include <stdlib.h>
#include <zbar.h>
*/
import "C"

import (
	"image"
	"iter"
	"strings"
	"unsafe"
)

// Symbol is a view of one decoded barcode. It is valid only while the
// result set it came from is current; see the package documentation.
type Symbol struct {
	sym *C.zbar_symbol_t
	st  stamp
}

func newSymbol(sym *C.zbar_symbol_t, st stamp) *Symbol {
	if sym == nil {
		return nil
	}
	return &Symbol{sym: sym, st: st}
}

// Valid reports whether the symbol can still be read.
func (s *Symbol) Valid() bool {
	return s != nil && s.st.live()
}

func (s *Symbol) Type() SymbolType {
	s.st.check()
	return SymbolType(C.zbar_symbol_get_type(s.sym))
}

// Bytes returns a copy of the raw payload.
func (s *Symbol) Bytes() []byte {
	s.st.check()
	n := C.zbar_symbol_get_data_length(s.sym)
	if n == 0 {
		return []byte{}
	}
	return C.GoBytes(unsafe.Pointer(C.zbar_symbol_get_data(s.sym)), C.int(n))
}

// Quality is an unscaled, relative confidence; larger is better.
func (s *Symbol) Quality() int {
	s.st.check()
	return int(C.zbar_symbol_get_quality(s.sym))
}

// Count is the number of consecutive frames the symbol was decoded in when
// the scanner cache is enabled. It is 0 otherwise.
func (s *Symbol) Count() int {
	s.st.check()
	return int(C.zbar_symbol_get_count(s.sym))
}

func (s *Symbol) Orientation() Orientation {
	s.st.check()
	return Orientation(C.zbar_symbol_get_orientation(s.sym))
}

// Points yields the locator polygon vertices in order.
func (s *Symbol) Points() iter.Seq2[int, image.Point] {
	return func(yield func(int, image.Point) bool) {
		s.st.check()
		n := C.zbar_symbol_get_loc_size(s.sym)
		for idx := C.uint(0); idx < n; idx++ {
			s.st.check()
			p := image.Pt(int(C.zbar_symbol_get_loc_x(s.sym, idx)), int(C.zbar_symbol_get_loc_y(s.sym, idx)))
			if !yield(int(idx), p) {
				return
			}
		}
	}
}

// Polygon returns the locator polygon, read from the native symbol on every
// call.
func (s *Symbol) Polygon() []image.Point {
	s.st.check()
	pts := make([]image.Point, 0, int(C.zbar_symbol_get_loc_size(s.sym)))
	for _, p := range s.Points() {
		pts = append(pts, p)
	}
	return pts
}

// Bounds returns the bounding rectangle of the locator polygon.
func (s *Symbol) Bounds() image.Rectangle {
	return boundsOf(s.Polygon())
}

// Next returns the following symbol of the same result set, or nil.
func (s *Symbol) Next() *Symbol {
	s.st.check()
	return newSymbol(C.zbar_symbol_next(s.sym), s.st)
}

// Components returns the sub-symbols of a composite or add-on symbol, or nil.
func (s *Symbol) Components() *SymbolSet {
	s.st.check()
	set := C.zbar_symbol_get_components(s.sym)
	if set == nil {
		return nil
	}
	return newSymbolSet(set, s.st)
}

// XML renders this symbol and every symbol after it in the result set as
// one XML fragment, in libzbar's own format.
func (s *Symbol) XML() (string, error) {
	s.st.check()
	var buf *C.char
	var size C.uint
	defer func() {
		if buf != nil {
			C.free(unsafe.Pointer(buf))
		}
	}()

	var sb strings.Builder
	for cur := s.sym; cur != nil; cur = C.zbar_symbol_next(cur) {
		out := C.zbar_symbol_xml(cur, &buf, &size)
		if out == nil {
			return "", newScanError("symbol_xml", -1, &NativeDetail{Code: ErrorNoMem, Severity: SeverityError})
		}
		sb.WriteString(C.GoString(out))
	}
	return sb.String(), nil
}

// Snapshot copies the symbol into a value that does not depend on native
// memory.
func (s *Symbol) Snapshot() Decoded {
	d := Decoded{
		Type:        s.Type(),
		Data:        s.Bytes(),
		Quality:     s.Quality(),
		Count:       s.Count(),
		Orientation: s.Orientation(),
		Polygon:     s.Polygon(),
	}
	if comps := s.Components(); comps != nil && comps.Len() > 0 {
		d.Components = comps.Snapshot()
	}
	return d
}

func boundsOf(pts []image.Point) image.Rectangle {
	if len(pts) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X)
		r.Max.Y = max(r.Max.Y, p.Y)
	}
	return r
}
