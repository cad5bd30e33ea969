package task

import (
	"testing"
	"time"

	"github.com/tootal/tasksh/internal/hostbridge"
	"github.com/tootal/tasksh/internal/vars"
)

func rcFixture(fx *hostbridge.Fixture) ResolveContext {
	return ResolveContext{
		Bridge:                 fx,
		DefaultShellExecutable: "/bin/bash",
		Getenv:                 func(string) string { return "" },
		Now:                    func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) },
	}
}

// TestInheritanceCopiesButExcludesLabelInputsChildren exercises §8 property
// 1 / scenario S2: a child inherits command/type/version/options but never
// label, inputs, or children.
func TestInheritanceCopiesButExcludesLabelInputsChildren(t *testing.T) {
	parent := &Task{
		Version: "0.1.3",
		Type:    KindProcess,
		Command: "a",
		File:    "/notes/.tasksh/tasks/build.json",
		Inputs:  []Input{{ID: "secret"}},
	}
	child := NewChild(parent)
	child.Label = "C"

	if child.Command != "a" {
		t.Fatalf("child.Command = %q, want %q", child.Command, "a")
	}
	if child.Type != KindProcess {
		t.Fatalf("child.Type = %q", child.Type)
	}
	if child.File != parent.File {
		t.Fatalf("child.File = %q, want parent's %q", child.File, parent.File)
	}
	if child.Label != "C" {
		t.Fatalf("child.Label = %q, want %q", child.Label, "C")
	}
	if len(child.Inputs) != 0 {
		t.Fatalf("child inherited inputs, want none: %v", child.Inputs)
	}
	if len(child.Children) != 0 {
		t.Fatalf("child inherited children, want none")
	}
}

func TestInputLooksOnlyAtOwnInputs(t *testing.T) {
	parent := &Task{Inputs: []Input{{ID: "pw"}}}
	child := NewChild(parent)

	if _, ok := child.Input("pw"); ok {
		t.Fatal("child resolved an input declared only on its parent; inputs must not be inherited")
	}
}

func TestResolvedArgsExpandsMagic(t *testing.T) {
	// Scenario S1.
	tk := &Task{Command: "echo", Args: []string{"${magic:yyyy}"}}
	rc := rcFixture(hostbridge.NewFixture())

	args, err := tk.ResolvedArgs(rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(args) != 1 || args[0] != "2024" {
		t.Fatalf("got %v, want [2024]", args)
	}
}

func TestResolvedCommandWithInput(t *testing.T) {
	// Scenario S3.
	tk := &Task{
		Command: "ssh ${input:pw}",
		Inputs:  []Input{{ID: "pw", Type: vars.PromptString, Password: true}},
	}
	fx := hostbridge.NewFixture()
	fx.PromptResponses = []hostbridge.PromptResponse{{Value: "secret", OK: true}}
	rc := rcFixture(fx)

	got, err := tk.ResolvedCommand(rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ssh secret" {
		t.Fatalf("got %q", got)
	}
	if len(fx.Calls) != 1 {
		t.Fatalf("expected exactly one bridge call, got %d", len(fx.Calls))
	}
}

func TestResolvedCwdFallsBackThroughWorkspaceThenDocThenTaskFile(t *testing.T) {
	tk := &Task{File: "/notes/.tasksh/tasks/build.json"}

	// No workspace, no document: falls back to the task file's directory.
	rc := rcFixture(hostbridge.NewFixture())
	got, err := tk.ResolvedCwd(rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/notes/.tasksh/tasks" {
		t.Fatalf("got %q", got)
	}

	// A focused document but no workspace: falls back to its folder.
	fx := hostbridge.NewFixture()
	fx.Document, fx.HasDocument = "/notes/today.md", true
	rc = rcFixture(fx)
	got, err = tk.ResolvedCwd(rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/notes" {
		t.Fatalf("got %q", got)
	}

	// A workspace wins over both.
	fx2 := hostbridge.NewFixture()
	fx2.Document, fx2.HasDocument = "/notes/today.md", true
	fx2.Workspace, fx2.HasWorkspace = hostbridge.Workspace{RootPath: "/ws"}, true
	rc = rcFixture(fx2)
	got, err = tk.ResolvedCwd(rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/ws" {
		t.Fatalf("got %q", got)
	}
}

func TestResolvedCwdExplicitOverridesFallback(t *testing.T) {
	tk := &Task{Cwd: "/explicit"}
	rc := rcFixture(hostbridge.NewFixture())
	got, err := tk.ResolvedCwd(rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/explicit" {
		t.Fatalf("got %q", got)
	}
}

func TestResolvedShellArgsDefersToProfile(t *testing.T) {
	tk := &Task{Type: KindShell}
	rc := rcFixture(hostbridge.NewFixture())
	rc.DefaultShellExecutable = "/bin/bash"

	got, err := tk.ResolvedShellArgs(rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "-c" {
		t.Fatalf("got %v, want [-c]", got)
	}
}

func TestResolvedEnvMergesTemplates(t *testing.T) {
	tk := &Task{Env: map[string]string{"FOO": "${magic:yyyy}"}}
	rc := rcFixture(hostbridge.NewFixture())

	got, err := tk.ResolvedEnv(rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["FOO"] != "2024" {
		t.Fatalf("got %v", got)
	}
}
