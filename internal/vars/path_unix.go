//go:build !windows

package vars

// normalizePath is a pass-through on non-Windows hosts (§4.D).
func normalizePath(p string) string {
	return p
}
