package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Nic0w/zbars/internal/barcode"
	"github.com/Nic0w/zbars/internal/output"
	"github.com/Nic0w/zbars/internal/pdf"
	"github.com/Nic0w/zbars/zbar"
)

var logLevels = []string{"debug", "info", "warn", "error"}

var ioModes = map[string]zbar.IOMode{
	"auto":    zbar.IOModeAuto,
	"read":    zbar.IOModeRead,
	"mmap":    zbar.IOModeMmap,
	"userptr": zbar.IOModeUserPtr,
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Scanner: ScannerConfig{
			Symbologies: []string{},
			Configs:     []string{},
		},
		Processor: ProcessorConfig{
			Device:    "/dev/video0",
			Display:   false,
			Threaded:  true,
			IOMode:    "auto",
			TimeoutMS: 250,
			Controls:  map[string]int{},
		},
		Output: OutputConfig{
			Format: output.FormatText,
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     10,
			ShutdownTimeout: 10,
		},
	}
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains(logLevels, c.LogLevel) {
		errs = append(errs, fmt.Errorf("invalid log level %q, must be one of: %s", c.LogLevel, strings.Join(logLevels, ", ")))
	}
	if !output.IsSupported(c.Output.Format) {
		errs = append(errs, fmt.Errorf("invalid output format %q, must be one of: %s", c.Output.Format, strings.Join(output.Formats, ", ")))
	}

	if _, err := barcode.ParseFormats(c.Scanner.Symbologies); err != nil {
		errs = append(errs, err)
	}
	for _, s := range c.Scanner.Configs {
		if _, _, _, err := zbar.ParseConfig(s); err != nil {
			errs = append(errs, fmt.Errorf("invalid scanner config %q: %w", s, err))
		}
	}
	if c.Scanner.MinSize < 0 {
		errs = append(errs, fmt.Errorf("min_size must be non-negative, got %d", c.Scanner.MinSize))
	}
	if c.Scanner.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be non-negative, got %d", c.Scanner.Workers))
	}

	p := c.Processor
	if p.InterfaceVersion < 0 || p.InterfaceVersion > 2 {
		errs = append(errs, fmt.Errorf("interface_version must be 0, 1 or 2, got %d", p.InterfaceVersion))
	}
	if _, ok := ioModes[strings.ToLower(p.IOMode)]; !ok && p.IOMode != "" {
		errs = append(errs, fmt.Errorf("invalid iomode %q", p.IOMode))
	}
	if (p.InputFormat == "") != (p.OutputFormat == "") {
		errs = append(errs, errors.New("input_format and output_format must be set together"))
	}
	for _, f := range []string{p.InputFormat, p.OutputFormat} {
		if f == "" {
			continue
		}
		if _, err := zbar.FormatFromLabel(f); err != nil {
			errs = append(errs, fmt.Errorf("invalid fourcc %q: %w", f, err))
		}
	}
	if (p.Width == 0) != (p.Height == 0) {
		errs = append(errs, errors.New("width and height must be set together"))
	}
	if p.TimeoutMS < -1 {
		errs = append(errs, fmt.Errorf("timeout_ms must be -1 (forever) or non-negative, got %d", p.TimeoutMS))
	}
	if p.MaxFrames < 0 {
		errs = append(errs, fmt.Errorf("max_frames must be non-negative, got %d", p.MaxFrames))
	}

	s := c.Server
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port must be between 1 and 65535, got %d", s.Port))
	}
	if s.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Errorf("max_upload_mb must be positive, got %d", s.MaxUploadMB))
	}
	if s.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("shutdown_timeout must be non-negative, got %d", s.ShutdownTimeout))
	}

	return errors.Join(errs...)
}

// SlogLevel returns the logging level; Verbose forces debug.
func (c *Config) SlogLevel() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// BarcodeOptions converts the scanner section into decode options.
func (c *Config) BarcodeOptions() (barcode.Options, error) {
	formats, err := barcode.ParseFormats(c.Scanner.Symbologies)
	if err != nil {
		return barcode.Options{}, err
	}
	return barcode.Options{
		Formats:   formats,
		Configs:   slices.Clone(c.Scanner.Configs),
		TryHarder: c.Scanner.TryHarder,
		Multi:     c.Scanner.Multi,
		MinSize:   c.Scanner.MinSize,
	}, nil
}

// Timeout is the per-poll processor timeout; -1 ms means forever.
func (c *Config) Timeout() time.Duration {
	if c.Processor.TimeoutMS < 0 {
		return zbar.Forever
	}
	return time.Duration(c.Processor.TimeoutMS) * time.Millisecond
}

// Credentials returns the PDF passwords, or nil when none are set.
func (c *Config) Credentials() *pdf.Credentials {
	if c.PDF.UserPassword == "" && c.PDF.OwnerPassword == "" {
		return nil
	}
	return &pdf.Credentials{UserPassword: c.PDF.UserPassword, OwnerPassword: c.PDF.OwnerPassword}
}

// ToProcessorBuilder translates the processor and scanner sections into a
// builder. Options left at their zero value are not requested.
func (c *Config) ToProcessorBuilder() (*zbar.ProcessorBuilder, error) {
	p := c.Processor
	b := zbar.NewProcessorBuilder().Threaded(p.Threaded)

	if p.Width > 0 && p.Height > 0 {
		b.WithSize(p.Width, p.Height)
	}
	if p.InterfaceVersion != 0 {
		b.WithInterfaceVersion(zbar.InterfaceVersion(p.InterfaceVersion))
	}
	if mode, ok := ioModes[strings.ToLower(p.IOMode)]; ok && mode != zbar.IOModeAuto {
		b.WithIOMode(mode)
	} else if !ok && p.IOMode != "" {
		return nil, fmt.Errorf("invalid iomode %q", p.IOMode)
	}
	if p.InputFormat != "" && p.OutputFormat != "" {
		in, err := zbar.FormatFromLabel(p.InputFormat)
		if err != nil {
			return nil, err
		}
		out, err := zbar.FormatFromLabel(p.OutputFormat)
		if err != nil {
			return nil, err
		}
		b.WithFormat(in, out)
	}

	formats, err := barcode.ParseFormats(c.Scanner.Symbologies)
	if err != nil {
		return nil, err
	}
	if len(formats) == 0 {
		b.WithConfig(zbar.SymbolNone, zbar.ConfigEnable, 1)
	}
	for _, f := range formats {
		b.WithConfig(f, zbar.ConfigEnable, 1)
	}
	for _, s := range c.Scanner.Configs {
		sym, cfg, val, err := zbar.ParseConfig(s)
		if err != nil {
			return nil, fmt.Errorf("invalid scanner config %q: %w", s, err)
		}
		b.WithConfig(sym, cfg, val)
	}
	return b, nil
}
