package zbar

/*
#include <zbar.h>

extern void goZbarDataHandler(zbar_image_t *image, void *userdata);

static void zbars_processor_set_data_handler(zbar_processor_t *proc, void *userdata) {
	zbar_processor_set_data_handler(proc, (zbar_image_data_handler_t *)goZbarDataHandler, userdata);
}

static void zbars_processor_clear_data_handler(zbar_processor_t *proc) {
	zbar_processor_set_data_handler(proc, NULL, NULL);
}
*/
import "C"

import (
	"log/slog"

	pointer "github.com/mattn/go-pointer"
)

// DataHandler receives the results of every decoded frame. The set is
// valid only until the handler returns.
type DataHandler func(*SymbolSet)

type dataHandler struct {
	fn DataHandler
}

// SetDataHandler registers fn to be called by libzbar for every frame that
// yields symbols. In threaded mode it runs on the native capture thread.
// A nil fn removes the current handler.
func (p *Processor) SetDataHandler(fn DataHandler) error {
	if p.proc == nil {
		return ErrClosed
	}
	C.zbars_processor_clear_data_handler(p.proc)
	p.releaseHandler()
	if fn == nil {
		return nil
	}
	p.handler = pointer.Save(&dataHandler{fn: fn})
	C.zbars_processor_set_data_handler(p.proc, p.handler)
	return nil
}

func (p *Processor) releaseHandler() {
	if p.handler != nil {
		pointer.Unref(p.handler)
		p.handler = nil
	}
}

func dispatchFrame(img *C.zbar_image_t, h *dataHandler) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("zbar data handler panicked", "panic", r)
		}
	}()
	var gen generation
	set := newSymbolSet(C.zbar_image_get_symbols(img), gen.stamp())
	defer gen.advance()
	h.fn(set)
}
