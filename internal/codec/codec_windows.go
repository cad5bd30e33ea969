//go:build windows

package codec

import "golang.org/x/text/encoding/charmap"

// hostDefaultDecode decodes using Windows-1252, the conventional default
// code page for western-locale Windows installs. A real deployment would
// query GetACP() and select the matching code page table; this module
// settles for the common-case default, matching the level of fidelity the
// rest of the cascade needs (UTF-8 is tried first anyway).
func hostDefaultDecode(b []byte) (string, bool) {
	return decodeWith(charmap.Windows1252)(b)
}
