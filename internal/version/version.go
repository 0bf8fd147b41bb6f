package version

import (
	"fmt"
	"runtime"

	"github.com/Nic0w/zbars/zbar"
)

// Build-time variables set by ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns version information
func Info() (string, string, string) {
	return Version, GitCommit, BuildDate
}

// Zbar returns the version of the linked libzbar as "major.minor.patch".
func Zbar() string {
	major, minor, patch := zbar.Version()
	return fmt.Sprintf("%d.%d.%d", major, minor, patch)
}

// String renders the multi-line banner printed by the version command.
func String() string {
	return fmt.Sprintf("zbars %s\ncommit: %s\nbuilt: %s\nlibzbar: %s\ngo: %s %s/%s\n",
		Version, GitCommit, BuildDate, Zbar(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
