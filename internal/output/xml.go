package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/Nic0w/zbars/internal/barcode"
)

const barcodeNamespace = "http://zbar.sourceforge.net/2008/barcode"

// writeXML emits the document layout of zbarimg --xml. Symbols carry the
// XML libzbar rendered when available.
func writeXML(w io.Writer, reports []Report) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<barcodes xmlns='%s'>\n", barcodeNamespace)
	lastSource := ""
	open := false
	for _, r := range reports {
		if !open || r.Source != lastSource {
			if open {
				sb.WriteString("</source>\n")
			}
			sb.WriteString("<source href='")
			_ = xml.EscapeText(&sb, []byte(r.Source))
			sb.WriteString("'>\n")
			lastSource, open = r.Source, true
		}
		if len(r.Results) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "<index num='%d'>\n", r.Index)
		for _, res := range r.Results {
			sb.WriteString(symbolXML(res))
			sb.WriteString("\n")
		}
		sb.WriteString("</index>\n")
	}
	if open {
		sb.WriteString("</source>\n")
	}
	sb.WriteString("</barcodes>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func symbolXML(res barcode.Result) string {
	if res.XML != "" {
		return res.XML
	}
	data := strings.ReplaceAll(res.Value, "]]>", "]]]]><![CDATA[>")
	return fmt.Sprintf("<symbol type='%s' quality='%d' orientation='%s'><data><![CDATA[%s]]></data></symbol>",
		res.Type, res.Quality, res.Orientation, data)
}
