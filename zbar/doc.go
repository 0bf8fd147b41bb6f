// Package zbar binds libzbar, the native ZBar barcode engine, through cgo.
//
// The package wraps the four native handle kinds (image, image scanner,
// processor and symbol set) with Go types that own their handle and release
// it exactly once on Close.
//
// Decoded results are exposed as views into native memory. A *SymbolSet and
// every *Symbol reached from it belong to the scan that produced them: the
// next scan of the same Image or Processor, or closing it, makes them stale.
// Touching a stale view panics with ErrSymbolSetInvalidated. Call Valid to
// check liveness, or Snapshot to copy results into plain Go values that can
// be kept, sent across goroutines or serialized.
//
// Building requires libzbar 0.23 or newer. On Unix-like systems it is found
// through pkg-config; on Windows set CGO_CFLAGS and CGO_LDFLAGS to the ZBar
// include and library directories. The extended video control API of the
// maintained ZBar fork is compiled only with the zbar_fork build tag.
//
// Basic usage:
//
//	scanner, err := zbar.NewScannerBuilder().
//		WithConfig(zbar.SymbolQRCode, zbar.ConfigEnable, 1).
//		Build()
//	if err != nil {
//		return err
//	}
//	defer scanner.Close()
//
//	img, err := zbar.NewImage(width, height, zbar.FormatY800, gray)
//	if err != nil {
//		return err
//	}
//	defer img.Close()
//
//	set, err := scanner.ScanImage(img)
//	if err != nil {
//		return err
//	}
//	for sym := range set.All() {
//		text, _ := sym.Data()
//		fmt.Println(sym.Type(), text)
//	}
package zbar
