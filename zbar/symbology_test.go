package zbar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolTypeString(t *testing.T) {
	assert.Equal(t, "QR-Code", SymbolQRCode.String())
	assert.Equal(t, "EAN-13", SymbolEAN13.String())
	assert.Equal(t, "EAN-13+5", (SymbolEAN13 | addon5).String())
	assert.Equal(t, "UPC-A+2", (SymbolUPCA | addon2).String())
	assert.Equal(t, 5, (SymbolEAN13 | addon5).Addon())
	assert.Equal(t, SymbolEAN13, (SymbolEAN13 | addon5).Base())
	assert.Equal(t, "qrcode", SymbolQRCode.ConfigName())
}

func TestSymbolTypeValues(t *testing.T) {
	assert.Equal(t, 0, int(SymbolNone))
	assert.Equal(t, 1, int(SymbolPartial))
	assert.Equal(t, 13, int(SymbolEAN13))
	assert.Equal(t, 64, int(SymbolQRCode))
	assert.Equal(t, 128, int(SymbolCode128))
	assert.Equal(t, 0x80, int(ConfigPosition))
	assert.Equal(t, -1, int(OrientationUnknown))
}

func TestParseSymbolType(t *testing.T) {
	for _, sym := range SymbolTypes() {
		got, err := ParseSymbolType(sym.ConfigName())
		require.NoError(t, err)
		assert.Equal(t, sym, got)

		got, err = ParseSymbolType(sym.String())
		require.NoError(t, err)
		assert.Equal(t, sym, got)
	}

	got, err := ParseSymbolType("*")
	require.NoError(t, err)
	assert.Equal(t, SymbolNone, got)

	_, err = ParseSymbolType("datamatrix")
	assert.Error(t, err)
}

func TestParseConfig(t *testing.T) {
	sym, cfg, val, err := ParseConfig("qrcode.enable=1")
	require.NoError(t, err)
	assert.Equal(t, SymbolQRCode, sym)
	assert.Equal(t, ConfigEnable, cfg)
	assert.Equal(t, 1, val)

	sym, cfg, val, err = ParseConfig("x-density=2")
	require.NoError(t, err)
	assert.Equal(t, SymbolNone, sym)
	assert.Equal(t, ConfigXDensity, cfg)
	assert.Equal(t, 2, val)

	_, _, _, err = ParseConfig("qrcode.bogus=1")
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestNameStrings(t *testing.T) {
	assert.Equal(t, "min-length", ConfigMinLen.String())
	assert.Equal(t, "config(999)", Config(999).String())
	assert.Equal(t, "RIGHT", OrientationRight.String())
	assert.Equal(t, "UNKNOWN", OrientationUnknown.String())
}
