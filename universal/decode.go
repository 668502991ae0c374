package universal

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// DecodeText returns data as UTF-8. Valid UTF-8 passes through; anything
// else is decoded with the charset chardet guesses, falling back to
// Windows-1252 which every byte sequence decodes under.
func DecodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}
	name := "windows-1252"
	if res, err := chardet.NewTextDetector().DetectBest(data); err == nil && res.Charset != "" {
		name = res.Charset
	}
	enc, _ := charset.Lookup(name)
	if enc == nil {
		enc, _ = charset.Lookup("windows-1252")
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", name, err)
	}
	return string(out), nil
}
