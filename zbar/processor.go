package zbar

/*
#include <stdlib.h>
#include <zbar.h>

static int zbars_processor_error_code(zbar_processor_t *proc) {
	return (int)zbar_processor_get_error_code(proc);
}

static const char *zbars_processor_error_string(zbar_processor_t *proc) {
	return zbar_processor_error_string(proc, 0);
}
*/
import "C"

import (
	"log/slog"
	"time"
	"unsafe"

	"github.com/Nic0w/zbars/internal/metrics"
)

// InterfaceVersion selects the video capture API.
type InterfaceVersion int

const (
	InterfaceAuto InterfaceVersion = 0
	InterfaceV4L1 InterfaceVersion = 1
	InterfaceV4L2 InterfaceVersion = 2
)

// IOMode selects how video frames are transferred from the driver.
type IOMode int

const (
	IOModeAuto    IOMode = 0
	IOModeRead    IOMode = 1
	IOModeMmap    IOMode = 2
	IOModeUserPtr IOMode = 3
)

// Processor combines video capture, an optional display window and a
// scanner. In threaded mode libzbar runs capture and display on its own
// thread. A *Processor may be shared between goroutines, but calls that
// produce results (ProcessOne, ProcessImage, Results) replace the previous
// results and must be serialized by the caller.
type Processor struct {
	proc     *C.zbar_processor_t
	threaded bool
	video    bool
	results  generation
	handler  unsafe.Pointer

	// held is the reference taken by zbar_processor_get_results for the
	// set most recently handed out.
	held *C.zbar_symbol_set_t
}

// NewProcessor creates a processor with every symbology disabled.
func NewProcessor(threaded bool) (*Processor, error) {
	proc := C.zbar_processor_create(cBool(threaded))
	if proc == nil {
		return nil, newConfigurationError("processor_create", -1, SymbolNone, ConfigEnable)
	}
	metrics.HandleOpened(metrics.KindProcessor)
	p := &Processor{proc: proc, threaded: threaded}
	if err := p.SetConfig(SymbolNone, ConfigEnable, 0); err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}

// Threaded reports whether libzbar runs a background thread for this processor.
func (p *Processor) Threaded() bool {
	return p.threaded
}

func (p *Processor) detail() *NativeDetail {
	if p.proc == nil {
		return nil
	}
	code := int(C.zbars_processor_error_code(p.proc))
	if code == int(ErrorOK) {
		return nil
	}
	return newNativeDetail(code, C.GoString(C.zbars_processor_error_string(p.proc)))
}

// Init opens videoDevice (for example "/dev/video0"; empty selects the
// default) and optionally a display window. The device string is passed to
// libzbar unmodified.
func (p *Processor) Init(videoDevice string, enableDisplay bool) error {
	if p.proc == nil {
		return ErrClosed
	}
	dev := C.CString(videoDevice)
	defer C.free(unsafe.Pointer(dev))

	rc := int(C.zbar_processor_init(p.proc, dev, cBool(enableDisplay)))
	if rc != 0 {
		return newVideoInitError(videoDevice, rc, p.detail())
	}
	p.video = true
	slog.Debug("zbar processor initialized", "device", videoDevice, "display", enableDisplay)
	return nil
}

// RequestSize asks for a preferred capture size. It takes effect when the
// device is opened; libzbar may reject it once Init has run.
func (p *Processor) RequestSize(width, height uint) error {
	if p.proc == nil {
		return ErrClosed
	}
	rc := C.zbar_processor_request_size(p.proc, C.uint(width), C.uint(height))
	return configStatus("processor_request_size", int(rc), SymbolNone, ConfigEnable)
}

// RequestInterface forces a video capture API version. libzbar may reject
// it after Init.
func (p *Processor) RequestInterface(version InterfaceVersion) error {
	if p.proc == nil {
		return ErrClosed
	}
	rc := C.zbar_processor_request_interface(p.proc, C.int(version))
	return configStatus("processor_request_interface", int(rc), SymbolNone, ConfigEnable)
}

// RequestIOMode forces a frame transfer mode. libzbar may reject it after
// Init.
func (p *Processor) RequestIOMode(mode IOMode) error {
	if p.proc == nil {
		return ErrClosed
	}
	rc := C.zbar_processor_request_iomode(p.proc, C.int(mode))
	return configStatus("processor_request_iomode", int(rc), SymbolNone, ConfigEnable)
}

// ForceFormat pins the capture and output formats instead of letting
// libzbar negotiate them. libzbar may reject it after Init; a nonzero
// status is returned as a *ConfigurationError either way.
func (p *Processor) ForceFormat(input, output Format) error {
	if p.proc == nil {
		return ErrClosed
	}
	rc := C.zbar_processor_force_format(p.proc, C.ulong(input), C.ulong(output))
	return configStatus("processor_force_format", int(rc), SymbolNone, ConfigEnable)
}

// SetConfig applies one decoder setting. SymbolNone applies it to every
// symbology.
func (p *Processor) SetConfig(sym SymbolType, cfg Config, value int) error {
	if p.proc == nil {
		return ErrClosed
	}
	rc := C.zbar_processor_set_config(p.proc, C.zbar_symbol_type_t(sym), C.zbar_config_t(cfg), C.int(value))
	return configStatus("processor_set_config", int(rc), sym, cfg)
}

// IsVisible reports whether the display window is shown.
func (p *Processor) IsVisible() (bool, error) {
	if p.proc == nil {
		return false, ErrClosed
	}
	return triState("processor_is_visible", int(C.zbar_processor_is_visible(p.proc)))
}

// SetVisible shows or hides the display window.
func (p *Processor) SetVisible(visible bool) (bool, error) {
	if p.proc == nil {
		return false, ErrClosed
	}
	return triState("processor_set_visible", int(C.zbar_processor_set_visible(p.proc, cBool(visible))))
}

// SetActive starts or stops video capture. In threaded mode frames are
// scanned continuously while active.
func (p *Processor) SetActive(active bool) (bool, error) {
	if p.proc == nil {
		return false, ErrClosed
	}
	return triState("processor_set_active", int(C.zbar_processor_set_active(p.proc, cBool(active))))
}

// UserWait blocks until the user presses a key or clicks in the display
// window, or until timeout. It returns the native key code, 0 on timeout.
func (p *Processor) UserWait(timeout time.Duration) (int, error) {
	if p.proc == nil {
		return 0, ErrClosed
	}
	rc := int(C.zbar_processor_user_wait(p.proc, timeoutMillis(timeout)))
	if rc < 0 {
		return rc, newWaitError(rc, p.detail())
	}
	return rc, nil
}

// ProcessOne captures and scans frames until one yields symbols or timeout
// elapses. It returns nil without error on timeout.
func (p *Processor) ProcessOne(timeout time.Duration) (*SymbolSet, error) {
	if p.proc == nil {
		return nil, ErrClosed
	}
	p.beginResults()
	start := time.Now()
	rc := int(C.zbar_process_one(p.proc, timeoutMillis(timeout)))
	if rc < 0 {
		metrics.ObserveScan(metrics.SourceProcessor, metrics.StatusError, time.Since(start), 0)
		return nil, newScanError("process_one", rc, p.detail())
	}
	if rc == 0 {
		metrics.ObserveScan(metrics.SourceProcessor, metrics.StatusTimeout, time.Since(start), 0)
		return nil, nil
	}
	set := p.fetchResults()
	n := 0
	if set != nil {
		n = set.Len()
	}
	metrics.ObserveScan(metrics.SourceProcessor, metrics.StatusOK, time.Since(start), n)
	return set, nil
}

// ProcessImage scans img with the processor configuration, displaying it
// when a window is open. The returned set is the one img.Symbols reports.
func (p *Processor) ProcessImage(img *Image) (*SymbolSet, error) {
	if p.proc == nil || img == nil || img.img == nil {
		return nil, ErrClosed
	}
	p.beginResults()
	st := img.beginScan()
	start := time.Now()
	rc := int(C.zbar_process_image(p.proc, img.img))
	if rc < 0 {
		metrics.ObserveScan(metrics.SourceProcessor, metrics.StatusError, time.Since(start), 0)
		return nil, newScanError("process_image", rc, p.detail())
	}
	set := newSymbolSet(C.zbar_image_get_symbols(img.img), st)
	metrics.ObserveScan(metrics.SourceProcessor, metrics.StatusOK, time.Since(start), set.Len())
	return set, nil
}

// Results returns the results of the last decoded frame without capturing
// a new one, or nil. Sets returned by earlier calls die.
func (p *Processor) Results() *SymbolSet {
	if p.proc == nil {
		return nil
	}
	p.beginResults()
	return p.fetchResults()
}

// beginResults kills every view handed out so far and drops the native
// reference backing them.
func (p *Processor) beginResults() {
	p.results.advance()
	if p.held != nil {
		C.zbar_symbol_set_ref(p.held, -1)
		p.held = nil
	}
}

func (p *Processor) fetchResults() *SymbolSet {
	set := C.zbar_processor_get_results(p.proc)
	if set == nil {
		return nil
	}
	p.held = set
	return newSymbolSet(set, p.results.stamp())
}

// Close stops capture, destroys the native processor and releases the
// results reference it holds. Close is idempotent.
func (p *Processor) Close() error {
	if p == nil || p.proc == nil {
		return nil
	}
	p.beginResults()
	C.zbar_processor_destroy(p.proc)
	p.proc = nil
	p.releaseHandler()
	metrics.HandleClosed(metrics.KindProcessor)
	slog.Debug("zbar processor closed", "threaded", p.threaded)
	return nil
}
