package output

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Nic0w/zbars/internal/barcode"
	"github.com/Nic0w/zbars/zbar"
)

func sampleReports() []Report {
	return []Report{
		{
			Source: "a.png",
			Width:  256,
			Height: 256,
			Results: []barcode.Result{{
				Type:        zbar.SymbolQRCode,
				Value:       "Hello World",
				Raw:         []byte("Hello World"),
				Points:      []image.Point{{10, 10}, {10, 90}, {90, 90}, {90, 10}},
				BBox:        image.Rect(10, 10, 90, 90),
				Orientation: zbar.OrientationUp,
				Quality:     1,
			}},
		},
		{Source: "b.png", Err: errors.New("decode failed")},
	}
}

func TestIsSupported(t *testing.T) {
	for _, f := range Formats {
		assert.True(t, IsSupported(f), f)
	}
	assert.False(t, IsSupported("pdf"))
}

func TestWriteText(t *testing.T) {
	out, err := Format(FormatText, sampleReports())
	require.NoError(t, err)
	assert.Equal(t, "QR-Code:Hello World\nb.png: error: decode failed\n", out)
}

func TestWriteJSON(t *testing.T) {
	out, err := Format(FormatJSON, sampleReports())
	require.NoError(t, err)

	var doc struct {
		Reports []Document `json:"reports"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Reports, 2)

	first := doc.Reports[0]
	assert.Equal(t, "a.png", first.Source)
	require.Len(t, first.Symbols, 1)
	assert.Equal(t, "QR-Code", first.Symbols[0].Type)
	assert.Equal(t, "Hello World", first.Symbols[0].Data)
	assert.Equal(t, "UP", first.Symbols[0].Orientation)
	assert.Equal(t, BBox{X: 10, Y: 10, Width: 80, Height: 80}, first.Symbols[0].BBox)
	assert.Len(t, first.Symbols[0].Points, 4)

	assert.Equal(t, "decode failed", doc.Reports[1].Error)
	assert.Empty(t, doc.Reports[1].Symbols)
}

func TestBinaryPayloadIsBase64(t *testing.T) {
	reports := []Report{{Source: "bin", Results: []barcode.Result{{
		Type: zbar.SymbolCode128, Value: "fffe", Raw: []byte{0xff, 0xfe},
	}}}}
	out, err := Format(FormatJSON, reports)
	require.NoError(t, err)
	assert.Contains(t, out, `"data_base64": "//4="`)
	assert.NotContains(t, out, `"data":`)
}

func TestWriteYAML(t *testing.T) {
	out, err := Format(FormatYAML, sampleReports())
	require.NoError(t, err)

	var doc map[string][]Document
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	require.Len(t, doc["reports"], 2)
	assert.Equal(t, "Hello World", doc["reports"][0].Symbols[0].Data)
}

func TestWriteCSV(t *testing.T) {
	out, err := Format(FormatCSV, sampleReports())
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2, "header plus one symbol row")
	assert.Equal(t, "source", rows[0][0])
	assert.Equal(t, []string{"a.png", "0", "0", "QR-Code", "Hello World", "1", "10", "10", "80", "80"}, rows[1])
}

func TestWriteXML(t *testing.T) {
	out, err := Format(FormatXML, sampleReports())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<barcodes xmlns='http://zbar.sourceforge.net/2008/barcode'>\n"))
	assert.Contains(t, out, "<source href='a.png'>\n<index num='0'>\n")
	assert.Contains(t, out, "<symbol type='QR-Code' quality='1' orientation='UP'><data><![CDATA[Hello World]]></data></symbol>")
	assert.Contains(t, out, "<source href='b.png'>\n</source>\n")
	assert.True(t, strings.HasSuffix(out, "</barcodes>\n"))
}

func TestWriteXMLPrefersNativeRendering(t *testing.T) {
	reports := []Report{
		{Source: "doc.pdf", Index: 0, Results: []barcode.Result{{Type: zbar.SymbolQRCode, XML: "<symbol native='1'/>"}}},
		{Source: "doc.pdf", Index: 1, Results: []barcode.Result{{Type: zbar.SymbolQRCode, XML: "<symbol native='2'/>"}}},
	}
	out, err := Format(FormatXML, reports)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "<source "), "pages of one document share a source element")
	assert.Contains(t, out, "<index num='1'>\n<symbol native='2'/>\n</index>")
}

func TestSymbolXMLEscapesCDATA(t *testing.T) {
	x := symbolXML(barcode.Result{Type: zbar.SymbolQRCode, Value: "a]]>b"})
	assert.Contains(t, x, "<![CDATA[a]]]]><![CDATA[>b]]>")
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := Format("html", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}
