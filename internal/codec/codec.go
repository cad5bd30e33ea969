// Package codec implements the Codec Cascade (§4.C): decoding a byte buffer
// read from a child process's stdout/stderr by trying, in order, a fixed
// list of character encodings and returning the first one that decodes
// without introducing replacement characters.
package codec

import (
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
)

// candidate is one entry in the cascade.
type candidate struct {
	name   string
	decode func([]byte) (string, bool)
}

var cascade = []candidate{
	{name: "UTF-8", decode: decodeUTF8},
	{name: "host-default", decode: decodeHostDefault},
	{name: "UTF-16", decode: decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM))},
	{name: "GB18030", decode: decodeWith(simplifiedchinese.GB18030)},
}

// Decode tries each codec in the cascade in order and returns the first
// decoding that reports no replacement/invalid characters. If every codec
// fails that test, it falls back to a lossy UTF-8-ish decode (stdlib
// string(b), which replaces invalid sequences with U+FFFD) so callers
// always get a displayable string (§7 DecodeFailure: "emit bytes via lossy
// decode").
func Decode(b []byte) string {
	for _, c := range cascade {
		if text, ok := c.decode(b); ok {
			return text
		}
	}
	return string(b)
}

func decodeUTF8(b []byte) (string, bool) {
	if !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}

// decodeHostDefault decodes with the platform's conventional non-UTF-8
// legacy encoding, implemented per build tag (see codec_unix.go /
// codec_windows.go).
func decodeHostDefault(b []byte) (string, bool) {
	return hostDefaultDecode(b)
}

func decodeWith(enc encoding.Encoding) func([]byte) (string, bool) {
	return func(b []byte) (string, bool) {
		decoded, err := enc.NewDecoder().Bytes(b)
		if err != nil {
			return "", false
		}
		text := string(decoded)
		if containsReplacement(text) {
			return "", false
		}
		return text, true
	}
}

func containsReplacement(s string) bool {
	for _, r := range s {
		if r == utf8.RuneError {
			return true
		}
	}
	return false
}
