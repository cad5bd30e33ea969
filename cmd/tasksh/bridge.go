package main

import (
	"os"

	tea "charm.land/bubbletea/v2"

	"github.com/tootal/tasksh/internal/hostbridge"
)

// tuiBridge implements hostbridge.Bridge against a live bubbletea program
// instead of a test fixture (§4.A). Every dialog method runs on whatever
// goroutine the runner happens to call it from (the stdout/stderr pumps,
// or the variable engine during a launch), which is never the bubbletea
// event loop goroutine — so each method hands its request to the program
// via Send and blocks on a private response channel until the Update loop,
// running on the program's own goroutine, resolves it from user input.
type tuiBridge struct {
	program *tea.Program

	workspaceRoot string
	document      string
}

type promptRequest struct {
	title, label, defaultValue string
	password                   bool
	reply                      chan promptReply
}

type promptReply struct {
	value string
	ok    bool
}

type pickRequest struct {
	title   string
	options []string
	reply   chan pickReply
}

type pickReply struct {
	index int
	ok    bool
}

type messageRequest struct {
	kind  hostbridge.DialogKind
	title string
	body  string
	reply chan pickReply
}

func (b *tuiBridge) CurrentDocument() (string, bool) {
	return b.document, b.document != ""
}

func (b *tuiBridge) CurrentWorkspace() (hostbridge.Workspace, bool) {
	if b.workspaceRoot == "" {
		return hostbridge.Workspace{}, false
	}
	return hostbridge.Workspace{RootPath: b.workspaceRoot, Name: "workspace"}, true
}

func (b *tuiBridge) WorkspaceContaining(path string) (hostbridge.Workspace, bool) {
	return b.CurrentWorkspace()
}

func (b *tuiBridge) SelectedText() string {
	return ""
}

func (b *tuiBridge) AppExecutablePath() string {
	exe, err := os.Executable()
	if err != nil {
		return "tasksh"
	}
	return exe
}

func (b *tuiBridge) PromptString(title, label, defaultValue string, password bool) (string, bool) {
	reply := make(chan promptReply, 1)
	b.program.Send(promptRequest{title: title, label: label, defaultValue: defaultValue, password: password, reply: reply})
	r := <-reply
	return r.value, r.ok
}

func (b *tuiBridge) PickString(title string, options []string) (int, bool) {
	reply := make(chan pickReply, 1)
	b.program.Send(pickRequest{title: title, options: options, reply: reply})
	r := <-reply
	return r.index, r.ok
}

func (b *tuiBridge) ShowMessage(kind hostbridge.DialogKind, title, body string) (int, bool) {
	reply := make(chan pickReply, 1)
	b.program.Send(messageRequest{kind: kind, title: title, body: body, reply: reply})
	r := <-reply
	return r.index, r.ok
}

var _ hostbridge.Bridge = (*tuiBridge)(nil)
