package zbar

import (
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/Nic0w/zbars/internal/testutil"
)

func TestScanImageQRCode(t *testing.T) {
	scanner := qrScanner(t)
	img := qrImage(t, "Hello World")

	set, err := scanner.ScanImage(img)
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())

	sym := set.FirstSymbol()
	require.NotNil(t, sym)
	assert.Equal(t, SymbolQRCode, sym.Type())

	text, err := sym.Data()
	require.NoError(t, err)
	assert.Equal(t, "Hello World", text)
	assert.Equal(t, []byte("Hello World"), sym.Bytes())
	assert.Nil(t, sym.Next())

	assert.Len(t, sym.Polygon(), 4)
	bounds := sym.Bounds()
	assert.False(t, bounds.Empty())
	assert.True(t, bounds.In(image.Rect(0, 0, 256, 256)))
}

func TestScanImageSetMatchesImageSymbols(t *testing.T) {
	scanner := qrScanner(t)
	img := qrImage(t, "same set")

	set, err := scanner.ScanImage(img)
	require.NoError(t, err)

	fromImage := img.Symbols()
	require.NotNil(t, fromImage)
	assert.Equal(t, set.Len(), fromImage.Len())
	assert.Equal(t, set.FirstSymbol().Bytes(), img.FirstSymbol().Bytes())
}

func TestScanImageDisabledSymbology(t *testing.T) {
	scanner, err := NewScannerBuilder().
		WithConfig(SymbolEAN13, ConfigEnable, 1).
		Build()
	require.NoError(t, err)
	defer scanner.Close()

	set, err := scanner.ScanImage(qrImage(t, "ignored"))
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
	assert.Nil(t, set.FirstSymbol())
}

func TestScanImageMultipleSymbols(t *testing.T) {
	scanner := qrScanner(t)
	img := grayImage(t, testutil.SideBySide(20,
		testutil.QRImage(t, "first", 200),
		testutil.QRImage(t, "second", 200),
	))

	set, err := scanner.ScanImage(img)
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())

	var payloads []string
	for sym := range set.All() {
		payloads = append(payloads, string(sym.Bytes()))
	}
	assert.ElementsMatch(t, []string{"first", "second"}, payloads)

	it := set.Iter()
	count := 0
	for _, ok := it.Next(); ok; _, ok = it.Next() {
		count++
	}
	assert.Equal(t, 2, count)
	_, ok := it.Next()
	assert.False(t, ok, "iterator stays exhausted")

	assert.Len(t, set.Symbols(), 2)
}

func TestRescanInvalidatesPreviousSet(t *testing.T) {
	scanner := qrScanner(t)
	img := qrImage(t, "Hello World")

	first, err := scanner.ScanImage(img)
	require.NoError(t, err)
	sym := first.FirstSymbol()
	require.NotNil(t, sym)
	assert.True(t, first.Valid())

	second, err := scanner.ScanImage(img)
	require.NoError(t, err)

	assert.False(t, first.Valid())
	assert.False(t, sym.Valid())
	assert.True(t, second.Valid())
	assert.PanicsWithValue(t, ErrSymbolSetInvalidated, func() { first.Len() })
	assert.PanicsWithValue(t, ErrSymbolSetInvalidated, func() { sym.Bytes() })
	assert.Equal(t, 1, second.Len())
}

func TestCloseInvalidatesSymbols(t *testing.T) {
	scanner := qrScanner(t)
	img := qrImage(t, "closing")

	set, err := scanner.ScanImage(img)
	require.NoError(t, err)
	require.NoError(t, img.Close())

	assert.False(t, set.Valid())
	assert.PanicsWithValue(t, ErrSymbolSetInvalidated, func() { set.FirstSymbol() })

	_, err = scanner.ScanImage(img)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSnapshotOutlivesImage(t *testing.T) {
	scanner := qrScanner(t)
	img := qrImage(t, "detached")

	set, err := scanner.ScanImage(img)
	require.NoError(t, err)
	decoded := set.Snapshot()
	require.NoError(t, img.Close())

	require.Len(t, decoded, 1)
	assert.Equal(t, SymbolQRCode, decoded[0].Type)
	text, ok := decoded[0].Text()
	assert.True(t, ok)
	assert.Equal(t, "detached", text)
	assert.Len(t, decoded[0].Polygon, 4)
	assert.False(t, decoded[0].Bounds().Empty())
}

func TestSymbolXML(t *testing.T) {
	scanner := qrScanner(t)
	img := qrImage(t, "xml payload")

	set, err := scanner.ScanImage(img)
	require.NoError(t, err)

	xml, err := set.FirstSymbol().XML()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(xml, "<symbol "), xml)
	assert.Contains(t, xml, "type='QR-Code'")
	assert.Contains(t, xml, "xml payload")
}

func TestSymbolXMLCoversTail(t *testing.T) {
	scanner := qrScanner(t)
	img := grayImage(t, testutil.SideBySide(20,
		testutil.QRImage(t, "one", 200),
		testutil.QRImage(t, "two", 200),
	))

	set, err := scanner.ScanImage(img)
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())

	head, err := set.FirstSymbol().XML()
	require.NoError(t, err)
	tail, err := set.FirstSymbol().Next().XML()
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(head, "<symbol "))
	assert.Equal(t, 1, strings.Count(tail, "<symbol "))
	assert.True(t, strings.HasSuffix(head, tail))
}

func TestSymbolDataWith(t *testing.T) {
	scanner := qrScanner(t)
	img := qrImage(t, "Hello Latin-1")

	set, err := scanner.ScanImage(img)
	require.NoError(t, err)
	sym := set.FirstSymbol()
	require.NotNil(t, sym)

	text, err := sym.Data()
	require.NoError(t, err)
	latin1, err := sym.DataWith(charmap.ISO8859_1)
	require.NoError(t, err)
	assert.Equal(t, "Hello Latin-1", latin1)
	assert.Equal(t, text, latin1)
}

func TestScannerConfigString(t *testing.T) {
	scanner, err := NewScannerBuilder().
		WithConfigString("qrcode.enable=1").
		WithConfigString("*.x-density=1").
		WithCache(false).
		Build()
	require.NoError(t, err)
	defer scanner.Close()

	set, err := scanner.ScanImage(qrImage(t, "configured"))
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())
}

func TestScannerBuilderStopsAtFirstFailure(t *testing.T) {
	var steps []string
	b := NewScannerBuilder().
		WithConfig(SymbolQRCode, ConfigEnable, 1).
		WithConfigString("qrcode.nonsense=1").
		WithConfig(SymbolCode128, ConfigEnable, 1)
	b.trace = func(step string) { steps = append(steps, step) }

	scanner, err := b.Build()
	assert.Nil(t, scanner)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{"disable_all", "set_config QR-Code.enable", "set_config qrcode.nonsense=1"}, steps)
}

func TestScannerClosed(t *testing.T) {
	scanner, err := NewImageScanner()
	require.NoError(t, err)
	require.NoError(t, scanner.Close())
	require.NoError(t, scanner.Close())

	assert.ErrorIs(t, scanner.SetConfig(SymbolQRCode, ConfigEnable, 1), ErrClosed)
	assert.ErrorIs(t, scanner.EnableCache(true), ErrClosed)
}
