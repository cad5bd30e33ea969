package taskloader

import (
	"strconv"
	"strings"
)

// versionLessThan100 reports whether a dotted version string (e.g. "0.1.3",
// "1.2") is less than 1.0.0, per the version dispatch rule of §4.F. An
// unparseable or missing component is treated as 0, mirroring Qt's
// QVersionNumber::fromString, which stops at the first non-numeric
// component rather than failing outright.
//
// No repo in the reference corpus parses semantic versions (the closest
// analog, an auto-update version check, was dropped along with the rest of
// that teacher package — see DESIGN.md), so this is plain stdlib string
// splitting rather than a wired third-party library.
func versionLessThan100(v string) bool {
	return versionMajor(v) < 1
}

func versionMajor(v string) int {
	parts := strings.SplitN(v, ".", 2)
	major, _ := strconv.Atoi(parts[0])
	return major
}
