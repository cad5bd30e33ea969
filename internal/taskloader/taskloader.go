// Package taskloader implements the Task Loader (§4.F): turning one task
// JSON document into a task.Task tree, including version dispatch, the
// locale-map fallback rule, and the per-OS overlay merge.
package taskloader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/tootal/tasksh/internal/logging"
	"github.com/tootal/tasksh/internal/task"
	"github.com/tootal/tasksh/internal/vars"
)

// defaultVersion is used when a document omits "version" entirely (§4.F).
const defaultVersion = "0.1.3"

// osOverlayKey names the per-OS object this host should merge (§3, §4.F).
func osOverlayKey() string {
	switch runtime.GOOS {
	case "windows":
		return "windows"
	case "darwin":
		return "osx"
	default:
		return "linux"
	}
}

// ParseError reports a syntactically invalid task document (§7): the
// loader logs and skips the file rather than failing the whole scan.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load reads and parses one task JSON file into a root task.Task. locale is
// the host's active locale tag, used by the locale-map fallback rule.
func Load(path, locale string) (*task.Task, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		logging.Warn("taskloader: invalid JSON in %s: %v", path, err)
		return nil, &ParseError{Path: path, Err: err}
	}

	root := &task.Task{File: path, Locale: locale}
	applyDocument(root, doc, path)
	if root.Label == "" {
		base := filepath.Base(path)
		root.Label = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return root, nil
}

// applyDocument is the version-dispatch entry point (§4.F): it reads
// "version" (keeping the version t already inherited from its parent when
// absent, else defaulting), then either runs the V0 parser or emits
// UnsupportedVersion and leaves t with only its default fields.
func applyDocument(t *task.Task, doc map[string]any, path string) {
	versionStr := t.Version
	if versionStr == "" {
		versionStr = defaultVersion
	}
	if v, ok := doc["version"].(string); ok && v != "" {
		versionStr = v
	}
	t.Version = versionStr

	if versionLessThan100(versionStr) {
		parseV0(t, doc, path, true)
		return
	}

	logging.Warn("taskloader: %s declares unsupported version %s (>= 1.0.0); loading a skeletal task", path, versionStr)
}

// parseV0 implements the V0 parser rules of §4.F, applied to one JSON
// object against the task that's being built (a root or one of its
// children, already seeded with parent-inherited fields by task.NewChild).
// mergeOSOverlay is false while applying an already-merged overlay object,
// to avoid re-descending into its own (nonexistent) overlay key.
func parseV0(t *task.Task, obj map[string]any, path string, mergeOSOverlay bool) {
	if v, ok := obj["type"].(string); ok {
		t.Type = task.Kind(v)
	}

	if v, ok := obj["icon"].(string); ok {
		t.Icon = resolveIcon(v, path)
	}

	if v, ok := obj["shortcut"].(string); ok {
		t.Shortcut = v
	}

	if raw, ok := obj["command"]; ok {
		t.Command = localeString(raw, t.Locale, path, "command")
	}

	if raw, ok := obj["args"]; ok {
		t.Args = localeStringList(raw, t.Locale, path, "args")
	}

	if raw, ok := obj["label"]; ok {
		t.Label = localeString(raw, t.Locale, path, "label")
	} else if t.Label == "" && t.Command != "" {
		t.Label = t.Command
	}

	if raw, ok := obj["options"]; ok {
		applyOptions(t, raw, path)
	}

	if raw, ok := obj["tasks"]; ok {
		applyChildren(t, raw, path)
	}

	if raw, ok := obj["inputs"]; ok {
		applyInputs(t, raw, path)
	}

	if mergeOSOverlay {
		if raw, ok := obj[osOverlayKey()]; ok {
			if overlay, ok := raw.(map[string]any); ok {
				parseV0(t, overlay, path, false)
			}
		}
	}
}

// resolveIcon resolves a relative icon path against the task file's
// directory and drops it silently if the result doesn't exist (§3).
func resolveIcon(p, taskFile string) string {
	if p == "" {
		return ""
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(filepath.Dir(taskFile), p)
	}
	if _, err := os.Stat(p); err != nil {
		logging.Warn("taskloader: icon %s referenced by %s does not exist", p, taskFile)
		return ""
	}
	return p
}

func applyOptions(t *task.Task, raw any, path string) {
	options, ok := raw.(map[string]any)
	if !ok {
		return
	}

	if v, ok := options["cwd"].(string); ok {
		t.Cwd = v
	}

	if raw, ok := options["env"]; ok {
		if envObj, ok := raw.(map[string]any); ok {
			env := make(map[string]string, len(envObj))
			for k, v := range envObj {
				env[k] = localeString(v, t.Locale, path, "options.env."+k)
			}
			t.Env = env
		}
	}

	if t.Type == task.KindShell {
		if raw, ok := options["shell"]; ok {
			if shell, ok := raw.(map[string]any); ok {
				if v, ok := shell["executable"].(string); ok {
					t.Shell.Executable = v
				}
				if raw, ok := shell["args"]; ok {
					if arr, ok := raw.([]any); ok {
						args := make([]string, 0, len(arr))
						for _, el := range arr {
							if s, ok := el.(string); ok {
								args = append(args, s)
							}
						}
						t.Shell.Args = args
					}
				}
			}
		}
	}
}

func applyChildren(t *task.Task, raw any, path string) {
	arr, ok := raw.([]any)
	if !ok {
		return
	}
	for _, el := range arr {
		childObj, ok := el.(map[string]any)
		if !ok {
			continue
		}
		child := task.NewChild(t)
		applyDocument(child, childObj, path)
		t.Children = append(t.Children, child)
	}
}

func applyInputs(t *task.Task, raw any, path string) {
	arr, ok := raw.([]any)
	if !ok {
		return
	}

	inputs := make([]task.Input, 0, len(arr))
	for _, el := range arr {
		obj, ok := el.(map[string]any)
		if !ok {
			continue
		}

		var in task.Input
		if v, ok := obj["id"].(string); ok {
			in.ID = v
		} else {
			logging.Warn("taskloader: %s has an input with no id", path)
			continue
		}

		in.Type = vars.PromptString
		if v, ok := obj["type"].(string); ok {
			if parsed, ok := parseInputType(v); ok {
				in.Type = parsed
			} else {
				logging.Warn("taskloader: %s input %q has unknown type %q, treating as promptString", path, in.ID, v)
			}
		}

		if raw, ok := obj["description"]; ok {
			in.Description = localeString(raw, t.Locale, path, "inputs["+in.ID+"].description")
		}
		if raw, ok := obj["default"]; ok {
			in.Default = localeString(raw, t.Locale, path, "inputs["+in.ID+"].default")
		}

		if in.Type == vars.PromptString {
			if v, ok := obj["password"].(bool); ok {
				in.Password = v
			}
		}

		if in.Type == vars.PickString {
			if raw, ok := obj["options"]; ok {
				in.Options = localeStringList(raw, t.Locale, path, "inputs["+in.ID+"].options")
			}
			if in.Default != "" && !contains(in.Options, in.Default) {
				logging.Warn("taskloader: %s input %q default %q is not one of its options", path, in.ID, in.Default)
			}
		}

		inputs = append(inputs, in)
	}
	t.Inputs = inputs
}

// parseInputType recognizes the two closed input kinds of §3 and rejects
// anything else (§9: "a faithful reimplementation should ... reject unknown
// values with a warning").
func parseInputType(s string) (vars.InputType, bool) {
	switch vars.InputType(s) {
	case vars.PromptString:
		return vars.PromptString, true
	case vars.PickString:
		return vars.PickString, true
	default:
		return "", false
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
