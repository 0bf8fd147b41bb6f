package cmd

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/Nic0w/zbars/internal/barcode"
	"github.com/Nic0w/zbars/internal/capture"
	"github.com/Nic0w/zbars/internal/config"
	"github.com/Nic0w/zbars/internal/output"
	"github.com/Nic0w/zbars/zbar"
	"github.com/spf13/cobra"
)

// captureCmd represents the capture command.
var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Decode barcodes from a video device",
	Long: `Open a video device and print the symbols of every frame that contains any.

The command runs until interrupted, or until --max-frames frames with
symbols have been printed.

Examples:
  zbars capture
  zbars capture --device /dev/video1 --display
  zbars capture --max-frames 1 --format json --symbologies qrcode`,
	Args:    cobra.NoArgs,
	PreRunE: bindOnRun(captureFlagBindings...),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := validatedConfig()
		if err != nil {
			return err
		}
		controls, _ := cmd.Flags().GetStringArray("control")
		if err := mergeControls(cfg, controls); err != nil {
			return err
		}

		proc, err := openProcessor(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = proc.Close() }()

		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		loop := &capture.Loop{
			Source:    capture.ProcessorSource{Processor: proc},
			Interval:  cfg.Timeout(),
			MaxFrames: cfg.Processor.MaxFrames,
		}
		return loop.Run(ctx, frameWriter(cmd.OutOrStdout(), cfg.Processor.Device, cfg.Output.Format))
	},
}

var captureFlagBindings = append([]flagBinding{
	{"output.format", "format"},
	{"scanner.symbologies", "symbologies"},
	{"scanner.configs", "config-set"},
	{"processor.max_frames", "max-frames"},
}, processorFlagBindings...)

var processorFlagBindings = []flagBinding{
	{"processor.device", "device"},
	{"processor.display", "display"},
	{"processor.threaded", "threaded"},
	{"processor.timeout_ms", "timeout"},
	{"processor.width", "width"},
	{"processor.height", "height"},
	{"processor.iomode", "iomode"},
	{"processor.interface_version", "interface"},
	{"processor.input_format", "input-format"},
	{"processor.output_format", "output-format"},
}

// openProcessor builds the processor from cfg, opens its video device and
// applies the device controls. The caller closes it.
func openProcessor(cfg *config.Config) (*zbar.Processor, error) {
	builder, err := cfg.ToProcessorBuilder()
	if err != nil {
		return nil, err
	}
	proc, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to configure processor: %w", err)
	}
	if err := proc.Init(cfg.Processor.Device, cfg.Processor.Display); err != nil {
		_ = proc.Close()
		return nil, err
	}
	if err := applyControls(proc, cfg.Processor.Controls); err != nil {
		_ = proc.Close()
		return nil, err
	}
	if cfg.Processor.Display {
		if _, err := proc.SetVisible(true); err != nil {
			_ = proc.Close()
			return nil, err
		}
	}
	slog.Info("Video device opened", "device", cfg.Processor.Device, "threaded", proc.Threaded())
	return proc, nil
}

// frameWriter returns a capture sink printing each frame as one report.
func frameWriter(w io.Writer, device, format string) capture.Sink {
	return func(f capture.Frame) error {
		return output.Write(w, format, []output.Report{frameReport(device, f)})
	}
}

func frameReport(device string, f capture.Frame) output.Report {
	results := make([]barcode.Result, 0, len(f.Symbols))
	for _, d := range f.Symbols {
		results = append(results, barcode.FromDecoded(d, image.Point{}))
	}
	return output.Report{Source: device, Index: int(f.Seq), Results: results}
}

// mergeControls adds --control name=value pairs on top of the configured
// controls.
func mergeControls(cfg *config.Config, pairs []string) error {
	if len(pairs) == 0 {
		return nil
	}
	if cfg.Processor.Controls == nil {
		cfg.Processor.Controls = map[string]int{}
	}
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return fmt.Errorf("invalid control %q, expected name=value", pair)
		}
		value, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("invalid control %q: %w", pair, err)
		}
		cfg.Processor.Controls[name] = value
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func addProcessorFlags(cmd *cobra.Command) {
	defaults := config.DefaultConfig().Processor
	cmd.Flags().String("device", defaults.Device, "video device to open")
	cmd.Flags().Bool("display", defaults.Display, "show a preview window")
	cmd.Flags().Bool("threaded", defaults.Threaded, "run capture on a libzbar thread")
	cmd.Flags().Int("timeout", defaults.TimeoutMS, "per-poll timeout in milliseconds (-1 = forever)")
	cmd.Flags().Uint("width", 0, "requested capture width")
	cmd.Flags().Uint("height", 0, "requested capture height")
	cmd.Flags().String("iomode", defaults.IOMode, "frame transfer mode (auto, read, mmap, userptr)")
	cmd.Flags().Int("interface", 0, "video interface version (0 = auto, 1 = V4L1, 2 = V4L2)")
	cmd.Flags().String("input-format", "", "force the capture format as a fourcc (e.g. YUYV)")
	cmd.Flags().String("output-format", "", "force the scan format as a fourcc (e.g. Y800)")
	cmd.Flags().StringArray("control", nil, "video device control as name=value, repeatable")
}

func init() {
	rootCmd.AddCommand(captureCmd)
	captureCmd.Flags().StringP("format", "f", output.FormatText, fmt.Sprintf("output format %v", output.Formats))
	captureCmd.Flags().StringSlice("symbologies", nil, "comma-separated symbologies to enable (default all)")
	captureCmd.Flags().StringArray("config-set", nil, "decoder setting as [symbology.]config[=value], repeatable")
	captureCmd.Flags().Int("max-frames", 0, "stop after this many frames with symbols (0 = unlimited)")
	addProcessorFlags(captureCmd)
}
