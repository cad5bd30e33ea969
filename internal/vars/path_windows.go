//go:build windows

package vars

import "strings"

// normalizePath replaces '/' with '\' for path-typed names (§4.D).
func normalizePath(p string) string {
	return strings.ReplaceAll(p, "/", "\\")
}
