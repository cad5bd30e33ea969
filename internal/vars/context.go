package vars

import "time"

// InputType identifies the two input kinds of §3.
type InputType string

const (
	PromptString InputType = "promptString"
	PickString   InputType = "pickString"
)

// Input is the engine's view of a declared input: template strings for
// Description/Default, not yet expanded.
type Input struct {
	ID          string
	Type        InputType
	Description string
	Default     string
	Password    bool
	Options     []string
}

// InputProvider resolves an input declaration by id. Per the decision
// recorded in DESIGN.md (grounded on taskvariablemgr.cpp's Task::getInput,
// which only ever looks at the resolving task's own inputs), implementers
// should NOT walk an inheritance chain — only the task being expanded is
// consulted.
type InputProvider interface {
	Input(id string) (Input, bool)
}

// Prompter is the subset of the Host Bridge (§4.A) the engine needs to
// resolve interactive inputs. hostbridge.Bridge satisfies this interface
// structurally; the engine package intentionally doesn't import hostbridge
// so it stays usable with the narrowest possible fake.
type Prompter interface {
	PromptString(title, label, defaultValue string, password bool) (value string, ok bool)
	PickString(title string, options []string) (index int, ok bool)
}

// Context bundles every piece of live state a single Expand call may need:
// host/document state, the task's own path fields, and the collaborators
// (InputProvider, Prompter) needed to resolve ${input:*}.
type Context struct {
	HasNotebook            bool
	NotebookFolder         string
	NotebookFolderBasename string
	NotebookName           string
	NotebookDescription    string

	File                   string
	FileNotebookFolder     string
	RelativeFile           string
	FileBasename           string
	FileBasenameNoExtension string
	FileDirname            string
	FileExtname            string

	SelectedText  string
	Cwd           string
	TaskFile      string
	TaskDirname   string
	ExecPath      string
	PathSeparator string

	// Env looks up a process environment variable; defaults to os.Getenv
	// when nil.
	Env func(name string) string

	// Now returns the wall-clock instant magic: date/time tokens are
	// evaluated against. Defaults to time.Now when nil. The engine calls it
	// once per expansion pass (§4.D: "evaluated once per expansion call"),
	// plus once for each nested expansion of an input's description or
	// default.
	Now func() time.Time

	// Label is the task's label, used as the dialog title for input
	// prompts.
	Label string

	Inputs   InputProvider
	Prompter Prompter
}
