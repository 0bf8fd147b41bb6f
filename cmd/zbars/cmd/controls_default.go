//go:build !zbar_fork

package cmd

import (
	"errors"

	"github.com/Nic0w/zbars/zbar"
)

var errControlsUnavailable = errors.New("video controls need a libzbar with the control API; rebuild with -tags zbar_fork")

func applyControls(_ *zbar.Processor, controls map[string]int) error {
	if len(controls) > 0 {
		return errControlsUnavailable
	}
	return nil
}
