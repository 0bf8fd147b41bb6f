//go:build zbar_fork

package zbar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControlsRequireOpenProcessor(t *testing.T) {
	assert.True(t, DeviceControlsAvailable)

	proc, err := NewProcessor(false)
	require.NoError(t, err)
	require.NoError(t, proc.Close())

	assert.ErrorIs(t, proc.SetControl("brightness", 10), ErrClosed)
	_, err = proc.Control("brightness")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestControlWithoutVideoFails(t *testing.T) {
	proc, err := NewProcessor(false)
	require.NoError(t, err)
	defer proc.Close()

	_, err = proc.Control("brightness")
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}
