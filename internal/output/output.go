// Package output renders scan reports as text, JSON, YAML, CSV or ZBar XML.
package output

import (
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/Nic0w/zbars/internal/barcode"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCSV  = "csv"
	FormatXML  = "xml"
)

// Formats lists every supported format name.
var Formats = []string{FormatText, FormatJSON, FormatYAML, FormatCSV, FormatXML}

// IsSupported reports whether format names a supported output format.
func IsSupported(format string) bool {
	return slices.Contains(Formats, format)
}

// Report is the outcome of scanning one source: an image file, a PDF page
// or a video frame.
type Report struct {
	Source  string
	Index   int
	Width   int
	Height  int
	Results []barcode.Result
	Err     error
}

// BBox is an axis-aligned bounding box in image pixels.
type BBox struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Symbol is the serialized form of one barcode.Result. Payloads that are
// not valid UTF-8 are carried in DataBase64.
type Symbol struct {
	Type        string   `json:"type" yaml:"type"`
	Data        string   `json:"data,omitempty" yaml:"data,omitempty"`
	DataBase64  string   `json:"data_base64,omitempty" yaml:"data_base64,omitempty"`
	Quality     int      `json:"quality" yaml:"quality"`
	Orientation string   `json:"orientation" yaml:"orientation"`
	Points      [][2]int `json:"points,omitempty" yaml:"points,omitempty,flow"`
	BBox        BBox     `json:"bbox" yaml:"bbox"`
}

// Document is the serialized form of a Report.
type Document struct {
	Source  string   `json:"source" yaml:"source"`
	Index   int      `json:"index" yaml:"index"`
	Width   int      `json:"width,omitempty" yaml:"width,omitempty"`
	Height  int      `json:"height,omitempty" yaml:"height,omitempty"`
	Symbols []Symbol `json:"symbols" yaml:"symbols"`
	Error   string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewDocument converts r into its serialized form.
func NewDocument(r Report) Document {
	doc := Document{Source: r.Source, Index: r.Index, Width: r.Width, Height: r.Height, Symbols: []Symbol{}}
	if r.Err != nil {
		doc.Error = r.Err.Error()
	}
	for _, res := range r.Results {
		s := Symbol{
			Type:        res.Type.String(),
			Quality:     res.Quality,
			Orientation: res.Orientation.String(),
			BBox:        BBox{X: res.BBox.Min.X, Y: res.BBox.Min.Y, Width: res.BBox.Dx(), Height: res.BBox.Dy()},
		}
		if res.Raw == nil || utf8.Valid(res.Raw) {
			s.Data = res.Value
		} else {
			s.DataBase64 = base64.StdEncoding.EncodeToString(res.Raw)
		}
		for _, p := range res.Points {
			s.Points = append(s.Points, [2]int{p.X, p.Y})
		}
		doc.Symbols = append(doc.Symbols, s)
	}
	return doc
}

// Write renders reports to w in the given format.
func Write(w io.Writer, format string, reports []Report) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, reports)
	case FormatYAML:
		return writeYAML(w, reports)
	case FormatCSV:
		return writeCSV(w, reports)
	case FormatXML:
		return writeXML(w, reports)
	case FormatText, "":
		return writeText(w, reports)
	}
	return fmt.Errorf("unsupported output format %q (supported: %s)", format, strings.Join(Formats, ", "))
}

// Format renders reports into a string.
func Format(format string, reports []Report) (string, error) {
	var sb strings.Builder
	if err := Write(&sb, format, reports); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func docs(reports []Report) []Document {
	out := make([]Document, 0, len(reports))
	for _, r := range reports {
		out = append(out, NewDocument(r))
	}
	return out
}

func writeJSON(w io.Writer, reports []Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Reports []Document `json:"reports"`
	}{docs(reports)})
}

func writeYAML(w io.Writer, reports []Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string][]Document{"reports": docs(reports)}); err != nil {
		return err
	}
	return enc.Close()
}

func writeCSV(w io.Writer, reports []Report) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"source", "index", "symbol_index", "type", "data", "quality", "x", "y", "width", "height"}); err != nil {
		return err
	}
	for _, r := range reports {
		doc := NewDocument(r)
		for j, s := range doc.Symbols {
			data := s.Data
			if data == "" {
				data = s.DataBase64
			}
			row := []string{
				doc.Source,
				strconv.Itoa(doc.Index),
				strconv.Itoa(j),
				s.Type,
				data,
				strconv.Itoa(s.Quality),
				strconv.Itoa(s.BBox.X),
				strconv.Itoa(s.BBox.Y),
				strconv.Itoa(s.BBox.Width),
				strconv.Itoa(s.BBox.Height),
			}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// writeText prints one "Type:data" line per symbol, like zbarimg.
func writeText(w io.Writer, reports []Report) error {
	for _, r := range reports {
		if r.Err != nil {
			if _, err := fmt.Fprintf(w, "%s: error: %v\n", r.Source, r.Err); err != nil {
				return err
			}
			continue
		}
		for _, res := range r.Results {
			if _, err := fmt.Fprintf(w, "%s:%s\n", res.Type, res.Value); err != nil {
				return err
			}
		}
	}
	return nil
}
