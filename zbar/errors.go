package zbar

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind identifies the category of a zbar error.
type ErrorKind string

const (
	ErrorKindConfiguration     ErrorKind = "configuration"
	ErrorKindInvalidBufferSize ErrorKind = "invalid_buffer_size"
	ErrorKindVideoInit         ErrorKind = "video_init"
	ErrorKindScan              ErrorKind = "scan"
	ErrorKindWait              ErrorKind = "wait"
	ErrorKindDisplay           ErrorKind = "display"
	ErrorKindDecodeText        ErrorKind = "decode_text"
	ErrorKindClosed            ErrorKind = "closed"
)

// Error is implemented by every error type returned by this package.
type Error interface {
	error
	Kind() ErrorKind
}

var (
	// ErrClosed is returned when a method is called on a closed handle.
	ErrClosed Error = &closedError{}

	// ErrSymbolSetInvalidated is the panic value raised when a symbol view
	// is used after its parent was re-scanned or closed.
	ErrSymbolSetInvalidated = errors.New("zbar: symbol set used after its image or processor was re-scanned or closed")
)

type closedError struct{}

func (*closedError) Error() string   { return "zbar: handle is closed" }
func (*closedError) Kind() ErrorKind { return ErrorKindClosed }

type baseError struct {
	kind    ErrorKind
	message string
	cause   error
}

func (e *baseError) Error() string {
	return e.message
}

func (e *baseError) Kind() ErrorKind {
	return e.kind
}

func (e *baseError) Unwrap() error {
	return e.cause
}

func makeBaseError(kind ErrorKind, message string, detail *NativeDetail, cause error) baseError {
	if detail != nil && detail.Message != "" {
		message = message + ": " + detail.Message
	} else if cause != nil {
		message = message + ": " + cause.Error()
	}
	return baseError{kind: kind, message: "zbar: " + message, cause: cause}
}

// ConfigurationError reports a native configuration call that returned a
// nonzero status.
type ConfigurationError struct {
	baseError
	Op         string
	Code       int
	SymbolType SymbolType
	Config     Config
}

// InvalidBufferSizeError reports image data whose length does not match the
// size derived from the image dimensions and format.
type InvalidBufferSizeError struct {
	baseError
	Got    int
	Want   int
	Format Format
}

// VideoInitError reports a failure to open or initialize a video device.
type VideoInitError struct {
	baseError
	Device string
	Code   int
	Detail *NativeDetail
}

// ScanError reports a failed scan of an image or video frame.
type ScanError struct {
	baseError
	Op     string
	Code   int
	Detail *NativeDetail
}

// WaitError reports a failed wait for user input on a processor window.
type WaitError struct {
	baseError
	Code   int
	Detail *NativeDetail
}

// DisplayError reports a failed visibility or activation change.
type DisplayError struct {
	baseError
	Op   string
	Code int
}

// DecodeTextError reports a symbol payload that could not be decoded as text.
type DecodeTextError struct {
	baseError
	SymbolType SymbolType
}

func newConfigurationError(op string, code int, sym SymbolType, cfg Config) *ConfigurationError {
	msg := fmt.Sprintf("%s failed with status %d", op, code)
	if sym != SymbolNone || cfg != ConfigEnable {
		msg = fmt.Sprintf("%s %s.%s failed with status %d", op, sym, cfg, code)
	}
	return &ConfigurationError{
		baseError:  makeBaseError(ErrorKindConfiguration, msg, nil, nil),
		Op:         op,
		Code:       code,
		SymbolType: sym,
		Config:     cfg,
	}
}

func newInvalidBufferSizeError(format Format, got, want int) *InvalidBufferSizeError {
	msg := fmt.Sprintf("invalid buffer size for %s: got %d bytes, want %d", format, got, want)
	if want < 0 {
		msg = fmt.Sprintf("invalid buffer size for %s: got %d bytes, want a non-empty buffer", format, got)
	}
	return &InvalidBufferSizeError{
		baseError: makeBaseError(ErrorKindInvalidBufferSize, msg, nil, nil),
		Got:       got,
		Want:      want,
		Format:    format,
	}
}

func newVideoInitError(device string, code int, detail *NativeDetail) *VideoInitError {
	return &VideoInitError{
		baseError: makeBaseError(ErrorKindVideoInit, fmt.Sprintf("cannot initialize video device %q (status %d)", device, code), detail, nil),
		Device:    device,
		Code:      code,
		Detail:    detail,
	}
}

func newScanError(op string, code int, detail *NativeDetail) *ScanError {
	return &ScanError{
		baseError: makeBaseError(ErrorKindScan, fmt.Sprintf("%s failed with status %d", op, code), detail, nil),
		Op:        op,
		Code:      code,
		Detail:    detail,
	}
}

func newWaitError(code int, detail *NativeDetail) *WaitError {
	return &WaitError{
		baseError: makeBaseError(ErrorKindWait, fmt.Sprintf("user wait failed with status %d", code), detail, nil),
		Code:      code,
		Detail:    detail,
	}
}

func newDisplayError(op string, code int) *DisplayError {
	return &DisplayError{
		baseError: makeBaseError(ErrorKindDisplay, fmt.Sprintf("%s returned unexpected status %d", op, code), nil, nil),
		Op:        op,
		Code:      code,
	}
}

func newDecodeTextError(sym SymbolType, cause error) *DecodeTextError {
	return &DecodeTextError{
		baseError:  makeBaseError(ErrorKindDecodeText, fmt.Sprintf("%s payload is not valid text", sym), nil, cause),
		SymbolType: sym,
	}
}

// ErrorCode mirrors libzbar's zbar_error_t.
type ErrorCode int

const (
	ErrorOK ErrorCode = iota
	ErrorNoMem
	ErrorInternal
	ErrorUnsupported
	ErrorInvalid
	ErrorSystem
	ErrorLocking
	ErrorBusy
	ErrorXDisplay
	ErrorXProto
	ErrorClosed
	ErrorWinAPI
)

var errorCodeNames = [...]string{
	ErrorOK:          "no error",
	ErrorNoMem:       "out of memory",
	ErrorInternal:    "internal library error",
	ErrorUnsupported: "unsupported request",
	ErrorInvalid:     "invalid request",
	ErrorSystem:      "system error",
	ErrorLocking:     "locking error",
	ErrorBusy:        "all resources busy",
	ErrorXDisplay:    "X11 display error",
	ErrorXProto:      "X11 protocol error",
	ErrorClosed:      "output window is closed",
	ErrorWinAPI:      "windows system error",
}

func (c ErrorCode) String() string {
	if c >= 0 && int(c) < len(errorCodeNames) {
		return errorCodeNames[c]
	}
	return fmt.Sprintf("unknown error (%d)", int(c))
}

// Severity mirrors libzbar's error severity levels.
type Severity int

const (
	SeverityFatal   Severity = -2
	SeverityError   Severity = -1
	SeverityOK      Severity = 0
	SeverityWarning Severity = 1
	SeverityNote    Severity = 2
)

func (s Severity) String() string {
	switch s {
	case SeverityFatal:
		return "FATAL ERROR"
	case SeverityError:
		return "ERROR"
	case SeverityOK:
		return "OK"
	case SeverityWarning:
		return "WARNING"
	case SeverityNote:
		return "NOTE"
	}
	return fmt.Sprintf("SEVERITY(%d)", int(s))
}

// NativeDetail carries the diagnostic state libzbar recorded for a handle.
type NativeDetail struct {
	Code     ErrorCode
	Severity Severity
	Message  string
}

// newNativeDetail builds a detail from a native error code and message. The
// severity is recovered from the message prefix libzbar writes. A zero code
// with no message yields nil.
func newNativeDetail(code int, message string) *NativeDetail {
	message = strings.TrimSpace(message)
	if code == int(ErrorOK) && message == "" {
		return nil
	}
	return &NativeDetail{
		Code:     ErrorCode(code),
		Severity: parseSeverity(message),
		Message:  message,
	}
}

func parseSeverity(message string) Severity {
	for _, s := range []Severity{SeverityFatal, SeverityError, SeverityWarning, SeverityNote, SeverityOK} {
		if strings.HasPrefix(message, s.String()+":") {
			return s
		}
	}
	return SeverityError
}

func configStatus(op string, rc int, sym SymbolType, cfg Config) error {
	if rc == 0 {
		return nil
	}
	return newConfigurationError(op, rc, sym, cfg)
}

func triState(op string, rc int) (bool, error) {
	switch rc {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, newDisplayError(op, rc)
}
