package cmd

import (
	"fmt"
	"log/slog"

	"github.com/Nic0w/zbars/internal/barcode"
	"github.com/Nic0w/zbars/internal/output"
	"github.com/Nic0w/zbars/internal/pdf"
	"github.com/spf13/cobra"
)

// pdfCmd represents the pdf command.
var pdfCmd = &cobra.Command{
	Use:   "pdf [file...]",
	Short: "Decode barcodes in images embedded in PDF files",
	Long: `Extract the images embedded in PDF pages and decode the barcodes in them.

Works with scanned documents and PDFs that carry barcodes as raster images.
Vector-drawn barcodes are not rendered and are not found.

Examples:
  zbars pdf invoice.pdf
  zbars pdf *.pdf --format json
  zbars pdf scan.pdf --pages 1-3,5 --password secret`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: bindOnRun(pdfFlagBindings...),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := validatedConfig()
		if err != nil {
			return err
		}
		opts, err := cfg.BarcodeOptions()
		if err != nil {
			return err
		}
		backend := barcode.NewZbarBackend()
		backend.WithXML = cfg.Output.Format == output.FormatXML

		var reports []output.Report
		for _, file := range args {
			doc, err := pdf.ScanPDF(cmd.Context(), backend, file, cfg.PDF.Pages, cfg.Credentials(), opts)
			if err != nil {
				slog.Warn("failed to scan pdf", "file", file, "error", err)
				reports = append(reports, output.Report{Source: file, Err: err})
				continue
			}
			reports = append(reports, documentReports(doc)...)
		}
		if err := writeReports(cmd.OutOrStdout(), cfg, reports); err != nil {
			return err
		}
		return failedReports(reports)
	},
}

var pdfFlagBindings = append([]flagBinding{
	{"pdf.pages", "pages"},
	{"pdf.user_password", "password"},
	{"pdf.owner_password", "owner-password"},
	{"output.format", "format"},
	{"output.file", "output"},
}, scannerFlagBindings...)

// documentReports flattens a scanned document into one report per embedded
// image, sourced as "file#page".
func documentReports(doc *pdf.DocumentResult) []output.Report {
	var reports []output.Report
	for _, page := range doc.Pages {
		source := fmt.Sprintf("%s#%d", doc.Filename, page.Page)
		for _, img := range page.Images {
			reports = append(reports, output.Report{
				Source:  source,
				Index:   img.Index,
				Width:   img.Width,
				Height:  img.Height,
				Results: img.Results,
			})
		}
	}
	return reports
}

func init() {
	rootCmd.AddCommand(pdfCmd)
	addOutputFlags(pdfCmd)
	addScannerFlags(pdfCmd)

	pdfCmd.Flags().String("pages", "", "page range to process (e.g., '1-5', '1,3,5')")
	pdfCmd.Flags().StringP("password", "p", "", "user password for encrypted PDFs")
	pdfCmd.Flags().String("owner-password", "", "owner password for encrypted PDFs")
}
