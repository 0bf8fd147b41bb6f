package zbar

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding"
)

var errInvalidUTF8 = errors.New("invalid UTF-8")

// Data returns the payload as text. It fails with *DecodeTextError when the
// payload is not valid UTF-8; Bytes always succeeds.
func (s *Symbol) Data() (string, error) {
	return payloadText(s.Type(), s.Bytes())
}

// DataWith decodes the payload from a legacy character set, for example
// charmap.ISO8859_1 or japanese.ShiftJIS.
func (s *Symbol) DataWith(enc encoding.Encoding) (string, error) {
	return payloadTextWith(s.Type(), s.Bytes(), enc)
}

func payloadText(sym SymbolType, raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", newDecodeTextError(sym, errInvalidUTF8)
	}
	return string(raw), nil
}

func payloadTextWith(sym SymbolType, raw []byte, enc encoding.Encoding) (string, error) {
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", newDecodeTextError(sym, err)
	}
	return payloadText(sym, out)
}
