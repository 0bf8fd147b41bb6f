package zbar

/*
#include <zbar.h>
*/
import "C"

import (
	"log/slog"
	"time"

	"github.com/Nic0w/zbars/internal/metrics"
)

// ImageScanner decodes still images. A scanner holds no results of its own:
// each scan attaches them to the Image that was scanned.
type ImageScanner struct {
	scn *C.zbar_image_scanner_t
}

// NewImageScanner creates a scanner with libzbar's default configuration,
// where most symbologies are enabled. NewScannerBuilder starts from nothing
// enabled instead.
func NewImageScanner() (*ImageScanner, error) {
	scn := C.zbar_image_scanner_create()
	if scn == nil {
		return nil, newConfigurationError("image_scanner_create", -1, SymbolNone, ConfigEnable)
	}
	metrics.HandleOpened(metrics.KindScanner)
	return &ImageScanner{scn: scn}, nil
}

// SetConfig applies one decoder setting. SymbolNone applies it to every
// symbology.
func (s *ImageScanner) SetConfig(sym SymbolType, cfg Config, value int) error {
	if s.scn == nil {
		return ErrClosed
	}
	rc := C.zbar_image_scanner_set_config(s.scn, C.zbar_symbol_type_t(sym), C.zbar_config_t(cfg), C.int(value))
	return configStatus("image_scanner_set_config", int(rc), sym, cfg)
}

// SetConfigString applies a setting written as "symbology.config=value".
func (s *ImageScanner) SetConfigString(config string) error {
	if s.scn == nil {
		return ErrClosed
	}
	sym, cfg, val, err := ParseConfig(config)
	if err != nil {
		return err
	}
	return s.SetConfig(sym, cfg, val)
}

// EnableCache turns on inter-frame result caching, which suppresses
// duplicates across consecutive scans and fills Symbol.Count.
func (s *ImageScanner) EnableCache(enable bool) error {
	if s.scn == nil {
		return ErrClosed
	}
	C.zbar_image_scanner_enable_cache(s.scn, cBool(enable))
	return nil
}

// ScanImage decodes img and attaches the results to it. The returned set is
// the one img.Symbols reports; results of any earlier scan of img die.
func (s *ImageScanner) ScanImage(img *Image) (*SymbolSet, error) {
	if s.scn == nil || img == nil || img.img == nil {
		return nil, ErrClosed
	}
	st := img.beginScan()
	start := time.Now()
	rc := int(C.zbar_scan_image(s.scn, img.img))
	if rc < 0 {
		metrics.ObserveScan(metrics.SourceScanner, metrics.StatusError, time.Since(start), 0)
		return nil, newScanError("scan_image", rc, nil)
	}
	metrics.ObserveScan(metrics.SourceScanner, metrics.StatusOK, time.Since(start), rc)
	return newSymbolSet(C.zbar_image_get_symbols(img.img), st), nil
}

// Close destroys the native scanner. Close is idempotent.
func (s *ImageScanner) Close() error {
	if s == nil || s.scn == nil {
		return nil
	}
	C.zbar_image_scanner_destroy(s.scn)
	s.scn = nil
	metrics.HandleClosed(metrics.KindScanner)
	return nil
}

// ScannerBuilder collects scanner settings and applies them in call order.
type ScannerBuilder struct {
	steps []buildStep[*ImageScanner]
	trace func(step string)
}

// NewScannerBuilder returns a builder whose scanner starts with every
// symbology disabled.
func NewScannerBuilder() *ScannerBuilder {
	b := &ScannerBuilder{}
	b.add("disable_all", func(s *ImageScanner) error {
		return s.SetConfig(SymbolNone, ConfigEnable, 0)
	})
	return b
}

func (b *ScannerBuilder) add(name string, apply func(*ImageScanner) error) *ScannerBuilder {
	b.steps = append(b.steps, buildStep[*ImageScanner]{name: name, apply: apply})
	return b
}

func (b *ScannerBuilder) WithConfig(sym SymbolType, cfg Config, value int) *ScannerBuilder {
	return b.add("set_config "+sym.String()+"."+cfg.String(), func(s *ImageScanner) error {
		return s.SetConfig(sym, cfg, value)
	})
}

// WithConfigString adds a setting written as "symbology.config=value".
func (b *ScannerBuilder) WithConfigString(config string) *ScannerBuilder {
	return b.add("set_config "+config, func(s *ImageScanner) error {
		return s.SetConfigString(config)
	})
}

func (b *ScannerBuilder) WithCache(enable bool) *ScannerBuilder {
	return b.add("enable_cache", func(s *ImageScanner) error {
		return s.EnableCache(enable)
	})
}

// Build creates the scanner and applies every setting. On the first failure
// the scanner is destroyed and the failing step's error is returned.
func (b *ScannerBuilder) Build() (*ImageScanner, error) {
	scn, err := NewImageScanner()
	if err != nil {
		return nil, err
	}
	if err := runSteps(scn, b.steps, b.trace); err != nil {
		_ = scn.Close()
		return nil, err
	}
	return scn, nil
}

type buildStep[T any] struct {
	name  string
	apply func(T) error
}

func runSteps[T any](target T, steps []buildStep[T], trace func(string)) error {
	for _, step := range steps {
		if trace != nil {
			trace(step.name)
		}
		if err := step.apply(target); err != nil {
			slog.Debug("zbar build step failed", "step", step.name, "error", err)
			return err
		}
		slog.Debug("zbar build step applied", "step", step.name)
	}
	return nil
}
