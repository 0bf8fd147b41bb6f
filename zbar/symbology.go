package zbar

/*
#include <stdlib.h>
#include <zbar.h>
*/
import "C"

import (
	"fmt"
	"strings"
	"unsafe"
)

// SymbolType identifies a barcode symbology.
type SymbolType int

const (
	SymbolNone       SymbolType = C.ZBAR_NONE
	SymbolPartial    SymbolType = C.ZBAR_PARTIAL
	SymbolEAN2       SymbolType = C.ZBAR_EAN2
	SymbolEAN5       SymbolType = C.ZBAR_EAN5
	SymbolEAN8       SymbolType = C.ZBAR_EAN8
	SymbolUPCE       SymbolType = C.ZBAR_UPCE
	SymbolISBN10     SymbolType = C.ZBAR_ISBN10
	SymbolUPCA       SymbolType = C.ZBAR_UPCA
	SymbolEAN13      SymbolType = C.ZBAR_EAN13
	SymbolISBN13     SymbolType = C.ZBAR_ISBN13
	SymbolComposite  SymbolType = C.ZBAR_COMPOSITE
	SymbolI25        SymbolType = C.ZBAR_I25
	SymbolDataBar    SymbolType = C.ZBAR_DATABAR
	SymbolDataBarExp SymbolType = C.ZBAR_DATABAR_EXP
	SymbolCodabar    SymbolType = C.ZBAR_CODABAR
	SymbolCode39     SymbolType = C.ZBAR_CODE39
	SymbolPDF417     SymbolType = C.ZBAR_PDF417
	SymbolQRCode     SymbolType = C.ZBAR_QRCODE
	SymbolSQCode     SymbolType = C.ZBAR_SQCODE
	SymbolCode93     SymbolType = C.ZBAR_CODE93
	SymbolCode128    SymbolType = C.ZBAR_CODE128

	// symbolMask selects the base symbology; the bits above carry add-on flags.
	symbolMask SymbolType = C.ZBAR_SYMBOL
	addonMask  SymbolType = C.ZBAR_ADDON
	addon2     SymbolType = C.ZBAR_ADDON2
	addon5     SymbolType = C.ZBAR_ADDON5
)

type symbolName struct {
	display string
	config  string
}

var symbolNames = map[SymbolType]symbolName{
	SymbolNone:       {"NONE", "none"},
	SymbolPartial:    {"PARTIAL", "partial"},
	SymbolEAN2:       {"EAN-2", "ean2"},
	SymbolEAN5:       {"EAN-5", "ean5"},
	SymbolEAN8:       {"EAN-8", "ean8"},
	SymbolUPCE:       {"UPC-E", "upce"},
	SymbolISBN10:     {"ISBN-10", "isbn10"},
	SymbolUPCA:       {"UPC-A", "upca"},
	SymbolEAN13:      {"EAN-13", "ean13"},
	SymbolISBN13:     {"ISBN-13", "isbn13"},
	SymbolComposite:  {"COMPOSITE", "composite"},
	SymbolI25:        {"I2/5", "i25"},
	SymbolDataBar:    {"DataBar", "databar"},
	SymbolDataBarExp: {"DataBar-Exp", "databar-exp"},
	SymbolCodabar:    {"Codabar", "codabar"},
	SymbolCode39:     {"CODE-39", "code39"},
	SymbolPDF417:     {"PDF417", "pdf417"},
	SymbolQRCode:     {"QR-Code", "qrcode"},
	SymbolSQCode:     {"SQ-Code", "sqcode"},
	SymbolCode93:     {"CODE-93", "code93"},
	SymbolCode128:    {"CODE-128", "code128"},
}

// SymbolTypes lists every concrete symbology libzbar can decode.
func SymbolTypes() []SymbolType {
	return []SymbolType{
		SymbolEAN2, SymbolEAN5, SymbolEAN8, SymbolUPCE, SymbolISBN10,
		SymbolUPCA, SymbolEAN13, SymbolISBN13, SymbolComposite, SymbolI25,
		SymbolDataBar, SymbolDataBarExp, SymbolCodabar, SymbolCode39,
		SymbolPDF417, SymbolQRCode, SymbolSQCode, SymbolCode93, SymbolCode128,
	}
}

// Base strips add-on flags.
func (t SymbolType) Base() SymbolType {
	return t & symbolMask
}

// Addon returns the add-on digit count (2 or 5), or 0 when there is none.
func (t SymbolType) Addon() int {
	switch t & addonMask {
	case addon2:
		return 2
	case addon5:
		return 5
	}
	return 0
}

// String returns the name libzbar prints for the symbology, for example
// "QR-Code" or "EAN-13+5".
func (t SymbolType) String() string {
	n, ok := symbolNames[t.Base()]
	if !ok {
		return fmt.Sprintf("UNKNOWN(%d)", int(t))
	}
	if a := t.Addon(); a != 0 {
		return fmt.Sprintf("%s+%d", n.display, a)
	}
	return n.display
}

// ConfigName returns the lower-case name used in configuration strings such
// as "qrcode.enable=1".
func (t SymbolType) ConfigName() string {
	if n, ok := symbolNames[t.Base()]; ok {
		return n.config
	}
	return ""
}

// MarshalText implements encoding.TextMarshaler.
func (t SymbolType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ParseSymbolType accepts either the display name ("QR-Code") or the
// configuration name ("qrcode"), case-insensitively.
func ParseSymbolType(name string) (SymbolType, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for t, n := range symbolNames {
		if key == n.config || key == strings.ToLower(n.display) {
			return t, nil
		}
	}
	if key == "*" || key == "all" {
		return SymbolNone, nil
	}
	return SymbolNone, fmt.Errorf("zbar: unknown symbology %q", name)
}

// Config is a decoder configuration setting.
type Config int

const (
	ConfigEnable       Config = C.ZBAR_CFG_ENABLE
	ConfigAddCheck     Config = C.ZBAR_CFG_ADD_CHECK
	ConfigEmitCheck    Config = C.ZBAR_CFG_EMIT_CHECK
	ConfigASCII        Config = C.ZBAR_CFG_ASCII
	ConfigBinary       Config = C.ZBAR_CFG_BINARY
	ConfigMinLen       Config = C.ZBAR_CFG_MIN_LEN
	ConfigMaxLen       Config = C.ZBAR_CFG_MAX_LEN
	ConfigUncertainty  Config = C.ZBAR_CFG_UNCERTAINTY
	ConfigPosition     Config = C.ZBAR_CFG_POSITION
	ConfigTestInverted Config = C.ZBAR_CFG_TEST_INVERTED
	ConfigXDensity     Config = C.ZBAR_CFG_X_DENSITY
	ConfigYDensity     Config = C.ZBAR_CFG_Y_DENSITY
)

var configNames = map[Config]string{
	ConfigEnable:       "enable",
	ConfigAddCheck:     "add-check",
	ConfigEmitCheck:    "emit-check",
	ConfigASCII:        "ascii",
	ConfigBinary:       "binary",
	ConfigMinLen:       "min-length",
	ConfigMaxLen:       "max-length",
	ConfigUncertainty:  "uncertainty",
	ConfigPosition:     "position",
	ConfigTestInverted: "test-inverted",
	ConfigXDensity:     "x-density",
	ConfigYDensity:     "y-density",
}

func (c Config) String() string {
	if n, ok := configNames[c]; ok {
		return n
	}
	return fmt.Sprintf("config(%d)", int(c))
}

// Orientation is the coarse direction of a decoded symbol.
type Orientation int

const (
	OrientationUnknown Orientation = C.ZBAR_ORIENT_UNKNOWN
	OrientationUp      Orientation = C.ZBAR_ORIENT_UP
	OrientationRight   Orientation = C.ZBAR_ORIENT_RIGHT
	OrientationDown    Orientation = C.ZBAR_ORIENT_DOWN
	OrientationLeft    Orientation = C.ZBAR_ORIENT_LEFT
)

func (o Orientation) String() string {
	switch o {
	case OrientationUp:
		return "UP"
	case OrientationRight:
		return "RIGHT"
	case OrientationDown:
		return "DOWN"
	case OrientationLeft:
		return "LEFT"
	}
	return "UNKNOWN"
}

// MarshalText implements encoding.TextMarshaler.
func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// ParseConfig parses a configuration string such as "qrcode.enable=1" or
// "*.x-density=2" with libzbar's own parser.
func ParseConfig(s string) (SymbolType, Config, int, error) {
	cs := C.CString(s)
	defer C.free(unsafe.Pointer(cs))

	var sym C.zbar_symbol_type_t
	var cfg C.zbar_config_t
	var val C.int
	if rc := C.zbar_parse_config(cs, &sym, &cfg, &val); rc != 0 {
		return SymbolNone, ConfigEnable, 0, newConfigurationError("parse_config "+s, int(rc), SymbolNone, ConfigEnable)
	}
	return SymbolType(sym), Config(cfg), int(val), nil
}
