package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Nic0w/zbars/internal/imageio"
	"github.com/Nic0w/zbars/internal/testutil"
	"github.com/Nic0w/zbars/zbar"
)

func grayQR(t *testing.T) *zbar.Image {
	t.Helper()
	img, err := imageio.NewZbarImage(testutil.QRImage(t, "config", 256))
	require.NoError(t, err)
	return img
}
