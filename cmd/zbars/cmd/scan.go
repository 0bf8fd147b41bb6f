package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Nic0w/zbars/internal/barcode"
	"github.com/Nic0w/zbars/internal/batch"
	"github.com/Nic0w/zbars/internal/config"
	"github.com/Nic0w/zbars/internal/imageio"
	"github.com/Nic0w/zbars/internal/output"
	"github.com/spf13/cobra"
)

// scanCmd represents the scan command.
var scanCmd = &cobra.Command{
	Use:   "scan [image files or directories...]",
	Short: "Decode barcodes in image files",
	Long: `Decode barcodes and QR codes in one or more image files.

Directories are expanded to the supported images they contain
(` + fmt.Sprint(imageio.SupportedExtensions) + `).

Examples:
  zbars scan code.png
  zbars scan --multi --format json ./photos
  zbars scan --symbologies qrcode --config-set x-density=2 label.jpg
  zbars scan --format xml -o results.xml a.png b.png`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: bindOnRun(scanFlagBindings...),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := validatedConfig()
		if err != nil {
			return err
		}
		opts, err := cfg.BarcodeOptions()
		if err != nil {
			return err
		}
		paths, err := imageio.ExpandPaths(args)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no supported images found in %v", args)
		}

		backend := barcode.NewZbarBackend()
		backend.WithXML = cfg.Output.Format == output.FormatXML

		start := time.Now()
		reports, err := batch.ScanFiles(commandContext(cmd), backend, paths, opts,
			batch.Config{MaxWorkers: cfg.Scanner.Workers})
		if err != nil {
			return err
		}
		stats := batch.Summarize(reports, time.Since(start), cfg.Scanner.Workers)
		slog.Info("Scan complete", "files", stats.Files, "failed", stats.Failed,
			"symbols", stats.Symbols, "duration", stats.TotalDuration.String())

		if err := writeReports(cmd.OutOrStdout(), cfg, reports); err != nil {
			return err
		}
		return failedReports(reports)
	},
}

var scanFlagBindings = append([]flagBinding{
	{"output.format", "format"},
	{"output.file", "output"},
	{"scanner.workers", "workers"},
}, scannerFlagBindings...)

var scannerFlagBindings = []flagBinding{
	{"scanner.symbologies", "symbologies"},
	{"scanner.configs", "config-set"},
	{"scanner.try_harder", "try-harder"},
	{"scanner.multi", "multi"},
	{"scanner.min_size", "min-size"},
}

// writeReports renders reports to the configured output file, or to stdout
// when none is set.
func writeReports(stdout io.Writer, cfg *config.Config, reports []output.Report) error {
	w := stdout
	if cfg.Output.File != "" && cfg.Output.File != "-" {
		f, err := os.Create(cfg.Output.File) //nolint:gosec // G304: user-selected output path
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				slog.Warn("Error closing output file", "path", cfg.Output.File, "error", err)
			}
		}()
		w = f
	}
	return output.Write(w, cfg.Output.Format, reports)
}

func failedReports(reports []output.Report) error {
	failed := 0
	for _, r := range reports {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(reports))
	}
	return nil
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", output.FormatText, fmt.Sprintf("output format %v", output.Formats))
	cmd.Flags().StringP("output", "o", "", "output file (default stdout)")
}

func addScannerFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("symbologies", nil, "comma-separated symbologies to enable (default all)")
	cmd.Flags().StringArray("config-set", nil, "decoder setting as [symbology.]config[=value], repeatable")
	cmd.Flags().Bool("try-harder", false, "scan every row and column and retry inverted images")
	cmd.Flags().Bool("multi", false, "report every symbol instead of the best one")
	cmd.Flags().Int("min-size", 0, "drop symbols smaller than this many pixels")
}

func init() {
	rootCmd.AddCommand(scanCmd)
	addOutputFlags(scanCmd)
	addScannerFlags(scanCmd)
	scanCmd.Flags().Int("workers", 0, "files scanned in parallel (0 = one per CPU)")
}
