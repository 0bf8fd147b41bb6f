//go:build !zbar_fork

package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyControlsUnavailable(t *testing.T) {
	require.NoError(t, applyControls(nil, nil))
	assert.ErrorIs(t, applyControls(nil, map[string]int{"brightness": 1}), errControlsUnavailable)
}
