package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Nic0w/zbars/internal/output"
	"github.com/Nic0w/zbars/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanCommandText(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteQRFile(t, dir, "hello.png", "hello zbars", 256)

	out, _, err := execute(t, "scan", path)
	require.NoError(t, err)
	assert.Equal(t, "QR-Code:hello zbars\n", out)
}

func TestScanCommandDirectoryJSON(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteQRFile(t, dir, "a.png", "first", 200)
	testutil.WriteQRFile(t, dir, "b.png", "second", 200)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o600))

	out, _, err := execute(t, "scan", "--format", "json", dir)
	require.NoError(t, err)

	var doc struct {
		Reports []output.Document `json:"reports"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Reports, 2)
	assert.Equal(t, filepath.Join(dir, "a.png"), doc.Reports[0].Source)
	require.Len(t, doc.Reports[0].Symbols, 1)
	assert.Equal(t, "first", doc.Reports[0].Symbols[0].Data)
	require.Len(t, doc.Reports[1].Symbols, 1)
	assert.Equal(t, "second", doc.Reports[1].Symbols[0].Data)
}

func TestScanCommandSymbologyFilter(t *testing.T) {
	path := testutil.WriteQRFile(t, t.TempDir(), "qr.png", "filtered", 256)

	out, _, err := execute(t, "scan", "--symbologies", "ean13", path)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestScanCommandXMLToFile(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteQRFile(t, dir, "qr.png", "to file", 256)
	target := filepath.Join(dir, "out.xml")

	out, _, err := execute(t, "scan", "--format", "xml", "--output", target, path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<barcodes xmlns='http://zbar.sourceforge.net/2008/barcode'>")
	assert.Contains(t, string(data), "<![CDATA[to file]]>")
}

func TestScanCommandErrors(t *testing.T) {
	dir := t.TempDir()
	good := testutil.WriteQRFile(t, dir, "good.png", "ok", 200)
	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not a png"), 0o600))

	tests := []struct {
		name    string
		args    []string
		wantOut string
		wantErr string
	}{
		{"missing file", []string{"scan", filepath.Join(dir, "missing.png")}, "", "stat"},
		{"no args", []string{"scan"}, "", "requires at least 1 arg"},
		{"bad format", []string{"scan", "--format", "html", good}, "", "invalid output format"},
		{"bad symbology", []string{"scan", "--symbologies", "nope", good}, "", "nope"},
		{"bad config", []string{"scan", "--config-set", "qrcode.bogus=1", good}, "", "invalid scanner config"},
		{"one bad image", []string{"scan", good, bad}, "QR-Code:ok\n" + bad + ": error: ", "1 of 2 inputs failed"},
		{"empty directory", []string{"scan", t.TempDir()}, "", "no supported images"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			if tt.wantOut != "" {
				assert.Contains(t, out, tt.wantOut)
			}
		})
	}
}
