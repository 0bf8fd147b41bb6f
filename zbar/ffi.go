package zbar

/*
#cgo !windows pkg-config: zbar
#cgo windows LDFLAGS: -lzbar
#include <zbar.h>
*/
import "C"

import "time"

// Forever makes blocking processor calls wait without a deadline.
const Forever time.Duration = -1

// timeoutMillis converts a Go duration to the millisecond timeout libzbar
// expects, where -1 means wait indefinitely.
func timeoutMillis(d time.Duration) C.int {
	if d < 0 {
		return -1
	}
	ms := d.Milliseconds()
	if ms > int64(^uint32(0)>>1) {
		return -1
	}
	return C.int(ms)
}

func cBool(v bool) C.int {
	if v {
		return 1
	}
	return 0
}

// Version reports the version of the linked libzbar.
func Version() (major, minor, patch uint) {
	var maj, mn, pt C.uint
	C.zbar_version(&maj, &mn, &pt)
	return uint(maj), uint(mn), uint(pt)
}

// SetVerbosity sets the debug output level of libzbar. Level 0 disables it.
func SetVerbosity(level int) {
	C.zbar_set_verbosity(C.int(level))
}

// IncreaseVerbosity raises the libzbar debug output level by one.
func IncreaseVerbosity() {
	C.zbar_increase_verbosity()
}
