//go:build !zbar_fork

package zbar

// DeviceControlsAvailable reports whether SetControl and Control were
// compiled in. Build with -tags zbar_fork against a libzbar that exports the
// video control API to enable them.
const DeviceControlsAvailable = false
