// Package barcode decodes barcodes in Go images through a pluggable
// Backend. The default backend is libzbar via the zbar package.
package barcode
