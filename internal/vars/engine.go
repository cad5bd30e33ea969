// Package vars implements the Variable Engine (§4.D): expansion of
// ${name} and ${namespace:key} references in task template strings against
// a composed Context of host/document state, environment, magic date/time
// tokens, and interactive inputs.
package vars

import (
	"os"
	"regexp"
	"sync"
	"time"
)

// Engine expands template strings. It is stateless apart from the clock
// reading taken once per Expand call, so a single Engine is safe to reuse
// (and to share) across tasks.
type Engine struct{}

// New returns a ready-to-use Engine.
func New() *Engine {
	return &Engine{}
}

// Expand replaces every ${...} reference in text per §4.D and returns the
// result. It may block inside ctx.Prompter when text contains ${input:*}.
func (e *Engine) Expand(text string, ctx Context) (string, error) {
	return e.expand(text, ctx, nil)
}

// ExpandAll expands every element of list and drops any that become empty
// after expansion (§4.D).
func (e *Engine) ExpandAll(list []string, ctx Context) ([]string, error) {
	out := make([]string, 0, len(list))
	for _, s := range list {
		v, err := e.Expand(s, ctx)
		if err != nil {
			return nil, err
		}
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// expand is the internal entry point; stack tracks the input ids currently
// being resolved (for cycle detection) as the recursion unwinds through an
// input's own description/default fields.
func (e *Engine) expand(text string, ctx Context, stack []string) (string, error) {
	text = expandFixedNames(text, ctx)
	text = expandMagic(text, ctx)
	text = expandEnv(text, ctx)

	return e.expandInputs(text, ctx, stack)
}

type fixedName struct {
	name   string
	value  string
	isPath bool
	active bool
}

func expandFixedNames(text string, ctx Context) string {
	names := []fixedName{
		{"notebookFolder", ctx.NotebookFolder, true, ctx.HasNotebook},
		{"notebookFolderBasename", ctx.NotebookFolderBasename, false, ctx.HasNotebook},
		{"notebookName", ctx.NotebookName, false, ctx.HasNotebook},
		{"notebookDescription", ctx.NotebookDescription, false, ctx.HasNotebook},

		{"file", ctx.File, true, true},
		{"fileNotebookFolder", ctx.FileNotebookFolder, true, true},
		{"relativeFile", ctx.RelativeFile, false, true},
		{"fileBasename", ctx.FileBasename, false, true},
		{"fileBasenameNoExtension", ctx.FileBasenameNoExtension, false, true},
		{"fileDirname", ctx.FileDirname, true, true},
		{"fileExtname", ctx.FileExtname, false, true},

		{"selectedText", ctx.SelectedText, false, true},
		{"cwd", ctx.Cwd, true, true},
		{"taskFile", ctx.TaskFile, true, true},
		{"taskDirname", ctx.TaskDirname, true, true},
		{"execPath", ctx.ExecPath, true, true},
		{"pathSeparator", ctx.PathSeparator, false, true},
	}

	for _, n := range names {
		if !n.active {
			continue
		}
		value := n.value
		if n.isPath {
			value = normalizePath(value)
		}
		text = replaceName(text, n.name, value)
	}
	return text
}

func expandMagic(text string, ctx Context) string {
	now := time.Now
	if ctx.Now != nil {
		now = ctx.Now
	}
	instant := now()

	for _, key := range magicKeys {
		value, ok := magicValue(key, instant, ctx.FileBasename, ctx.FileBasenameNoExtension)
		if !ok {
			continue
		}
		text = replacePrefixed(text, "magic", key, value)
	}
	return text
}

func expandEnv(text string, ctx Context) string {
	lookup := os.Getenv
	if ctx.Env != nil {
		lookup = ctx.Env
	}

	keys := extractPrefixedKeys(text, "env")
	for _, key := range keys {
		text = replacePrefixed(text, "env", key, lookup(key))
	}
	return text
}

func (e *Engine) expandInputs(text string, ctx Context, stack []string) (string, error) {
	ids := extractPrefixedKeys(text, "input")
	if len(ids) == 0 {
		return text, nil
	}
	if ctx.Inputs == nil {
		return "", &ErrMissingInput{InputID: ids[0]}
	}

	resolved := make(map[string]string, len(ids))
	for _, id := range ids {
		for _, inflight := range stack {
			if inflight == id {
				return "", &ErrInputCycle{InputID: id}
			}
		}

		input, ok := ctx.Inputs.Input(id)
		if !ok {
			return "", &ErrMissingInput{InputID: id}
		}

		value, err := e.resolveInput(input, ctx, append(stack, id))
		if err != nil {
			return "", err
		}
		resolved[id] = value
	}

	for id, value := range resolved {
		text = replacePrefixed(text, "input", id, value)
	}
	return text, nil
}

func (e *Engine) resolveInput(input Input, ctx Context, stack []string) (string, error) {
	switch input.Type {
	case PickString:
		options, err := e.expandList(input.Options, ctx, stack)
		if err != nil {
			return "", err
		}
		idx, ok := ctx.Prompter.PickString(ctx.Label, options)
		if !ok {
			return "", &ErrTaskCancelled{InputID: input.ID}
		}
		if idx < 0 || idx >= len(options) {
			return "", &ErrTaskCancelled{InputID: input.ID}
		}
		return options[idx], nil

	default: // PromptString, and the documented default when Type is unset
		desc, err := e.expand(input.Description, ctx, stack)
		if err != nil {
			return "", err
		}
		def, err := e.expand(input.Default, ctx, stack)
		if err != nil {
			return "", err
		}
		value, ok := ctx.Prompter.PromptString(ctx.Label, desc, def, input.Password)
		if !ok {
			return "", &ErrTaskCancelled{InputID: input.ID}
		}
		return value, nil
	}
}

func (e *Engine) expandList(list []string, ctx Context, stack []string) ([]string, error) {
	out := make([]string, len(list))
	for i, s := range list {
		v, err := e.expand(s, ctx, stack)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func replaceName(text, name, value string) string {
	return namePattern(name).ReplaceAllLiteralString(text, value)
}

func replacePrefixed(text, ns, key, value string) string {
	return prefixedPattern(ns, key).ReplaceAllLiteralString(text, value)
}

// patternMu guards the package-level pattern caches below, which every
// Engine shares.
var patternMu sync.Mutex

var namePatternCache = map[string]*regexp.Regexp{}

func namePattern(name string) *regexp.Regexp {
	patternMu.Lock()
	defer patternMu.Unlock()
	if re, ok := namePatternCache[name]; ok {
		return re
	}
	re := regexp.MustCompile(`\$\{[\t ]*` + regexp.QuoteMeta(name) + `[\t ]*\}`)
	namePatternCache[name] = re
	return re
}

var prefixedPatternCache = map[string]*regexp.Regexp{}

func prefixedPattern(ns, key string) *regexp.Regexp {
	cacheKey := ns + "\x00" + key
	patternMu.Lock()
	defer patternMu.Unlock()
	if re, ok := prefixedPatternCache[cacheKey]; ok {
		return re
	}
	re := regexp.MustCompile(`\$\{[\t ]*` + regexp.QuoteMeta(ns) + `[\t ]*:[\t ]*` + regexp.QuoteMeta(key) + `[\t ]*\}`)
	prefixedPatternCache[cacheKey] = re
	return re
}

var prefixedKeyPattern = map[string]*regexp.Regexp{}

// extractPrefixedKeys returns the deduplicated, first-seen-order list of
// keys used with the given namespace prefix in text (§4.D "Input dedup").
func extractPrefixedKeys(text, ns string) []string {
	patternMu.Lock()
	re, ok := prefixedKeyPattern[ns]
	if !ok {
		re = regexp.MustCompile(`\$\{[\t ]*` + regexp.QuoteMeta(ns) + `[\t ]*:[\t ]*(.*?)[\t ]*\}`)
		prefixedKeyPattern[ns] = re
	}
	patternMu.Unlock()

	var keys []string
	seen := make(map[string]bool)
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		key := m[1]
		if seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys
}
