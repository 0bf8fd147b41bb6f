//go:build zbar_fork

package zbar

/*
#include <stdlib.h>
#include <zbar.h>
*/
import "C"

import "unsafe"

// DeviceControlsAvailable reports whether SetControl and Control were
// compiled in.
const DeviceControlsAvailable = true

// SetControl sets a named video device control such as "brightness" or
// "focus_auto". Names are those the driver reports. Init must have opened a
// video device first.
func (p *Processor) SetControl(name string, value int) error {
	if p.proc == nil {
		return ErrClosed
	}
	if !p.video {
		return newConfigurationError("processor_set_control "+name+": no video device", -1, SymbolNone, ConfigEnable)
	}
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	rc := C.zbar_processor_set_control(p.proc, cname, C.int(value))
	return configStatus("processor_set_control "+name, int(rc), SymbolNone, ConfigEnable)
}

// Control reads the current value of a named video device control.
func (p *Processor) Control(name string) (int, error) {
	if p.proc == nil {
		return 0, ErrClosed
	}
	if !p.video {
		return 0, newConfigurationError("processor_get_control "+name+": no video device", -1, SymbolNone, ConfigEnable)
	}
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	var value C.int
	if rc := C.zbar_processor_get_control(p.proc, cname, &value); rc != 0 {
		return 0, configStatus("processor_get_control "+name, int(rc), SymbolNone, ConfigEnable)
	}
	return int(value), nil
}
