package zbar

/*
#include <zbar.h>
*/
import "C"

import (
	"unsafe"

	pointer "github.com/mattn/go-pointer"
)

//export goZbarDataHandler
func goZbarDataHandler(img *C.zbar_image_t, userdata unsafe.Pointer) {
	h, ok := pointer.Restore(userdata).(*dataHandler)
	if !ok || h == nil || img == nil {
		return
	}
	dispatchFrame(img, h)
}
