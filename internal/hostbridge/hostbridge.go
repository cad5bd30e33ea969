// Package hostbridge defines the narrow, read-only facade the task engine
// uses to ask the embedding note-taking application about its state
// (§4.A). Keeping it an interface is what lets the variable engine, the
// task document, and the process runner be exercised with in-memory
// fixtures instead of a real GUI.
package hostbridge

// Workspace describes the notebook/workspace state the engine needs.
type Workspace struct {
	RootPath    string
	Name        string
	Description string
}

// DialogKind distinguishes an informational dialog from a yes/no question,
// per the show_message operation of §4.A.
type DialogKind int

const (
	DialogInfo DialogKind = iota
	DialogQuestion
)

// Bridge is the read-only adapter over the embedding application. Every
// method is synchronous from the core's point of view (§5): a dialog call
// may block the caller until the user responds.
type Bridge interface {
	// CurrentDocument returns the absolute path of the focused document,
	// and false if nothing is focused.
	CurrentDocument() (path string, ok bool)

	// CurrentWorkspace returns the active workspace, and false if none.
	CurrentWorkspace() (ws Workspace, ok bool)

	// WorkspaceContaining returns the first configured workspace whose
	// root contains path by prefix.
	WorkspaceContaining(path string) (ws Workspace, ok bool)

	// SelectedText returns the current selection, possibly empty.
	SelectedText() string

	// AppExecutablePath returns the path to the running application
	// binary.
	AppExecutablePath() string

	// PromptString shows a single-line text prompt. ok is false when the
	// user cancels.
	PromptString(title, label, defaultValue string, password bool) (value string, ok bool)

	// PickString shows a list of options and returns the chosen index. ok
	// is false when the user cancels.
	PickString(title string, options []string) (index int, ok bool)

	// ShowMessage shows an info or question dialog and returns the user's
	// choice index (meaningful only for DialogQuestion); ok is false if the
	// dialog was dismissed without a choice.
	ShowMessage(kind DialogKind, title, body string) (choice int, ok bool)
}
