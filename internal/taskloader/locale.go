package taskloader

import (
	"sort"

	"github.com/tootal/tasksh/internal/logging"
)

// localeString implements the locale-map fallback rule (§4.F rule 2): a
// plain JSON string passes through unchanged; a JSON object is treated as a
// locale map, resolved by taking the active locale's entry, falling back
// with a warning, when the active locale is absent, to the entry with the
// lexicographically smallest key (see firstLocaleEntry); the order in which
// the entries appear in the document is not used. field names the document
// path, used only for the warning.
func localeString(raw any, locale, path, field string) string {
	switch v := raw.(type) {
	case string:
		return v
	case map[string]any:
		if s, ok := v[locale].(string); ok {
			return s
		}
		logging.Warn("taskloader: %s %s has no entry for locale %q, using first entry", path, field, locale)
		return firstLocaleEntry(v)
	default:
		return ""
	}
}

// firstLocaleEntry returns the value for the lexicographically smallest key.
// encoding/json decodes objects into a Go map, which has no memory of
// source order, so "first entry (insertion order)" is approximated by a
// deterministic, sorted pick rather than true insertion order.
func firstLocaleEntry(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return ""
	}
	if s, ok := m[keys[0]].(string); ok {
		return s
	}
	return ""
}

// localeStringList implements §4.F rule 3: args (or any similar sequence)
// may contain plain strings or locale-maps, resolved element-wise.
func localeStringList(raw any, locale, path, field string) []string {
	arr, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, el := range arr {
		out = append(out, localeString(el, locale, path, field))
	}
	return out
}
