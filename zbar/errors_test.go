package zbar

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err  Error
		kind ErrorKind
	}{
		{newConfigurationError("set_config", 1, SymbolQRCode, ConfigPosition), ErrorKindConfiguration},
		{newInvalidBufferSizeError(FormatY800, 1, 2), ErrorKindInvalidBufferSize},
		{newVideoInitError("nothing", -1, nil), ErrorKindVideoInit},
		{newScanError("scan_image", -1, nil), ErrorKindScan},
		{newWaitError(-1, nil), ErrorKindWait},
		{newDisplayError("processor_set_visible", -1), ErrorKindDisplay},
		{newDecodeTextError(SymbolQRCode, errInvalidUTF8), ErrorKindDecodeText},
		{ErrClosed, ErrorKindClosed},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind())
			assert.Contains(t, tt.err.Error(), "zbar: ")
		})
	}
}

func TestConfigurationErrorMessage(t *testing.T) {
	err := newConfigurationError("processor_set_config", 1, SymbolQRCode, ConfigPosition)
	assert.Equal(t, "zbar: processor_set_config QR-Code.position failed with status 1", err.Error())
	assert.Equal(t, 1, err.Code)
	assert.Equal(t, SymbolQRCode, err.SymbolType)
}

func TestVideoInitErrorCarriesDetail(t *testing.T) {
	detail := newNativeDetail(int(ErrorSystem), "ERROR: zbar processor in _zbar_video_open():\n    system error: opening video device 'nothing'")
	err := newVideoInitError("nothing", -1, detail)

	var vi *VideoInitError
	require.ErrorAs(t, err, &vi)
	assert.Equal(t, "nothing", vi.Device)
	require.NotNil(t, vi.Detail)
	assert.Equal(t, ErrorSystem, vi.Detail.Code)
	assert.Equal(t, SeverityError, vi.Detail.Severity)
	assert.Contains(t, err.Error(), "opening video device")
}

func TestDecodeTextErrorUnwraps(t *testing.T) {
	err := newDecodeTextError(SymbolCode128, errInvalidUTF8)
	assert.True(t, errors.Is(err, errInvalidUTF8))
}

func TestNativeDetail(t *testing.T) {
	assert.Nil(t, newNativeDetail(int(ErrorOK), ""))

	tests := []struct {
		message string
		want    Severity
	}{
		{"FATAL ERROR: zbar window in x", SeverityFatal},
		{"ERROR: zbar video in y", SeverityError},
		{"WARNING: zbar processor in z", SeverityWarning},
		{"NOTE: something", SeverityNote},
		{"no prefix", SeverityError},
	}
	for _, tt := range tests {
		d := newNativeDetail(int(ErrorInvalid), tt.message)
		require.NotNil(t, d)
		assert.Equal(t, tt.want, d.Severity, tt.message)
	}
}

func TestErrorCodeString(t *testing.T) {
	assert.Equal(t, "out of memory", ErrorNoMem.String())
	assert.Equal(t, "windows system error", ErrorWinAPI.String())
	assert.Equal(t, "unknown error (42)", ErrorCode(42).String())
	assert.Equal(t, "WARNING", SeverityWarning.String())
}

func TestConfigStatus(t *testing.T) {
	assert.NoError(t, configStatus("op", 0, SymbolNone, ConfigEnable))

	for _, rc := range []int{1, -1, 2} {
		err := configStatus("op", rc, SymbolEAN13, ConfigEnable)
		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, rc, cfgErr.Code)
	}
}

func TestTriState(t *testing.T) {
	v, err := triState("op", 0)
	require.NoError(t, err)
	assert.False(t, v)

	v, err = triState("op", 1)
	require.NoError(t, err)
	assert.True(t, v)

	for _, rc := range []int{-1, 2} {
		_, err = triState("op", rc)
		var dispErr *DisplayError
		require.ErrorAs(t, err, &dispErr)
		assert.Equal(t, rc, dispErr.Code)
	}
}
