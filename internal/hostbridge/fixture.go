package hostbridge

import "strings"

// PromptResponse is one scripted answer for Fixture.PromptString.
type PromptResponse struct {
	Value string
	OK    bool
}

// PickResponse is one scripted answer for Fixture.PickString.
type PickResponse struct {
	Index int
	OK    bool
}

// MessageResponse is one scripted answer for Fixture.ShowMessage.
type MessageResponse struct {
	Choice int
	OK     bool
}

// Fixture is an in-memory Bridge used by the task, runner and control
// package tests: host state is set directly, and dialog calls are answered
// from queued responses instead of rendering anything.
type Fixture struct {
	Document     string
	HasDocument  bool
	Workspace    Workspace
	HasWorkspace bool
	Workspaces   []Workspace
	Selected     string
	ExecPath     string

	// PromptResponses is consumed in order, one per PromptString call.
	PromptResponses []PromptResponse
	// PickResponses is consumed in order, one per PickString call.
	PickResponses []PickResponse
	// MessageResponses is consumed in order, one per ShowMessage call.
	MessageResponses []MessageResponse

	// Calls records every dialog invocation for assertions.
	Calls []FixtureCall
}

// FixtureCall records one dialog call made against the Fixture.
type FixtureCall struct {
	Method   string
	Title    string
	Label    string
	Default  string
	Password bool
	Options  []string
	Kind     DialogKind
	Body     string
}

func NewFixture() *Fixture {
	return &Fixture{ExecPath: "/opt/app/app"}
}

func (f *Fixture) CurrentDocument() (string, bool) {
	return f.Document, f.HasDocument
}

func (f *Fixture) CurrentWorkspace() (Workspace, bool) {
	return f.Workspace, f.HasWorkspace
}

func (f *Fixture) WorkspaceContaining(path string) (Workspace, bool) {
	for _, ws := range f.Workspaces {
		if strings.HasPrefix(path, ws.RootPath) {
			return ws, true
		}
	}
	return Workspace{}, false
}

func (f *Fixture) SelectedText() string {
	return f.Selected
}

func (f *Fixture) AppExecutablePath() string {
	return f.ExecPath
}

func (f *Fixture) PromptString(title, label, defaultValue string, password bool) (string, bool) {
	f.Calls = append(f.Calls, FixtureCall{Method: "PromptString", Title: title, Label: label, Default: defaultValue, Password: password})
	if len(f.PromptResponses) == 0 {
		return "", false
	}
	resp := f.PromptResponses[0]
	f.PromptResponses = f.PromptResponses[1:]
	return resp.Value, resp.OK
}

func (f *Fixture) PickString(title string, options []string) (int, bool) {
	f.Calls = append(f.Calls, FixtureCall{Method: "PickString", Title: title, Options: options})
	if len(f.PickResponses) == 0 {
		return 0, false
	}
	resp := f.PickResponses[0]
	f.PickResponses = f.PickResponses[1:]
	return resp.Index, resp.OK
}

func (f *Fixture) ShowMessage(kind DialogKind, title, body string) (int, bool) {
	f.Calls = append(f.Calls, FixtureCall{Method: "ShowMessage", Title: title, Body: body, Kind: kind})
	if len(f.MessageResponses) == 0 {
		return 0, false
	}
	resp := f.MessageResponses[0]
	f.MessageResponses = f.MessageResponses[1:]
	return resp.Choice, resp.OK
}

var _ Bridge = (*Fixture)(nil)
