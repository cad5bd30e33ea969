// Package task implements the Task Document model (§3, §4.E): the in-memory
// tree of runnable tasks, its inheritance rules, and the resolved accessors
// that run template fields through the Variable Engine.
package task

import (
	"github.com/tootal/tasksh/internal/shellprofile"
	"github.com/tootal/tasksh/internal/vars"
)

// Kind is the task invocation style (§3 "type").
type Kind string

const (
	KindShell   Kind = "shell"
	KindProcess Kind = "process"
)

// Input is an exact re-export of vars.Input: the engine's view of a
// declared input IS the task's view of it, so there is nothing to add by
// wrapping it in a second type.
type Input = vars.Input

// ShellOptions holds the options.shell.* fields (§3), honored only when
// Type == KindShell.
type ShellOptions struct {
	Executable string
	Args       []string
}

// Task is one node of the tree described in §3. Fields here are the raw,
// unexpanded templates; resolved values are produced on demand by the
// accessor methods further down, each of which runs its template(s) through
// the Variable Engine against a freshly built vars.Context.
type Task struct {
	Version  string
	Type     Kind
	Label    string
	Command  string
	Args     []string
	Icon     string
	Shortcut string

	Cwd   string
	Env   map[string]string
	Shell ShellOptions

	Inputs   []Input
	Children []*Task

	File   string
	Locale string
}

// NewChild builds a task that inherits from parent per invariant 2 (§3):
// version, type, command, args, and options.* are copied at construction
// time; label, inputs, and children are left zero so the caller can set
// them from the child's own document. file and locale also propagate,
// matching invariant 1 (a task's file equals its root ancestor's file).
//
// Per the design note in §9, there is no persistent parent back-pointer:
// inheritance happens once, here, and the resulting Task never looks at its
// parent again.
func NewChild(parent *Task) *Task {
	if parent == nil {
		return &Task{}
	}
	child := &Task{
		Version: parent.Version,
		Type:    parent.Type,
		Command: parent.Command,
		Args:    append([]string(nil), parent.Args...),
		Cwd:     parent.Cwd,
		Shell: ShellOptions{
			Executable: parent.Shell.Executable,
			Args:       append([]string(nil), parent.Shell.Args...),
		},
		File:   parent.File,
		Locale: parent.Locale,
	}
	if parent.Env != nil {
		child.Env = make(map[string]string, len(parent.Env))
		for k, v := range parent.Env {
			child.Env[k] = v
		}
	}
	return child
}

// Input implements vars.InputProvider. It deliberately looks only at this
// task's own Inputs slice — see the decision recorded in DESIGN.md and in
// vars.InputProvider's doc comment: the original only ever consults
// Task::m_inputs, never an ancestor's.
func (t *Task) Input(id string) (Input, bool) {
	for _, in := range t.Inputs {
		if in.ID == id {
			return in, true
		}
	}
	return Input{}, false
}

// EffectiveLabel returns Label, falling back to Command (§3: "defaults to
// command text when unset") when Label is empty. Falling back further, to
// the task file's base name, is the loader's responsibility for the root
// task (it knows the file path before any Task exists to ask).
func (t *Task) EffectiveLabel() string {
	if t.Label != "" {
		return t.Label
	}
	return t.Command
}

// ResolvedCommand expands Command through the engine (§4.E: "resolved
// accessors ... always run their stored template through the Variable
// Engine at call time").
func (t *Task) ResolvedCommand(rc ResolveContext) (string, error) {
	ctx := t.varsContext(rc)
	return rc.engine().Expand(t.Command, ctx)
}

// ResolvedArgs expands each element of Args, dropping any that become empty
// (§4.D expand_all contract).
func (t *Task) ResolvedArgs(rc ResolveContext) ([]string, error) {
	ctx := t.varsContext(rc)
	return rc.engine().ExpandAll(t.Args, ctx)
}

// ResolvedCwd is the one accessor with fallback logic (§3, §4.E): if the
// configured options.cwd template expands to a non-empty value, use it;
// otherwise fall back to the workspace root, else the current document's
// containing folder, else the task file's own directory.
func (t *Task) ResolvedCwd(rc ResolveContext) (string, error) {
	ctx := t.varsContext(rc)
	if t.Cwd != "" {
		expanded, err := rc.engine().Expand(t.Cwd, ctx)
		if err != nil {
			return "", err
		}
		if expanded != "" {
			return expanded, nil
		}
	}
	return ctx.Cwd, nil
}

// ResolvedEnv expands every options.env value. The caller (the Runner) is
// responsible for merging the result onto the process environment with
// child-wins semantics (§3).
func (t *Task) ResolvedEnv(rc ResolveContext) (map[string]string, error) {
	if len(t.Env) == 0 {
		return nil, nil
	}
	ctx := t.varsContext(rc)
	out := make(map[string]string, len(t.Env))
	for k, v := range t.Env {
		expanded, err := rc.engine().Expand(v, ctx)
		if err != nil {
			return nil, err
		}
		out[k] = expanded
	}
	return out, nil
}

// ResolvedShellExecutable expands options.shell.executable, falling back to
// the host's default interpreter when unset (§3: "Default is OS-dependent",
// supplied by the caller via rc.DefaultShellExecutable).
func (t *Task) ResolvedShellExecutable(rc ResolveContext) (string, error) {
	if t.Shell.Executable == "" {
		return rc.DefaultShellExecutable, nil
	}
	ctx := t.varsContext(rc)
	return rc.engine().Expand(t.Shell.Executable, ctx)
}

// ResolvedShellArgs implements §4.E's shell_args(): if the configured
// sequence is empty, defer to the Shell Profiles table (§4.B); otherwise
// expand the configured sequence.
func (t *Task) ResolvedShellArgs(rc ResolveContext) ([]string, error) {
	if len(t.Shell.Args) == 0 {
		executable, err := t.ResolvedShellExecutable(rc)
		if err != nil {
			return nil, err
		}
		profile := shellprofile.Lookup(shellprofile.Identity(executable))
		return append([]string(nil), profile.DefaultArgs...), nil
	}
	ctx := t.varsContext(rc)
	return rc.engine().ExpandAll(t.Shell.Args, ctx)
}
