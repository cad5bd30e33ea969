package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tootal/tasksh/internal/registry"
	"github.com/tootal/tasksh/internal/runner"
	"github.com/tootal/tasksh/internal/task"
)

func newTestModel(t *testing.T) *model {
	t.Helper()
	reg, err := registry.New("en_US", 0, nil)
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}
	t.Cleanup(func() { reg.Close() })
	return newModel(reg, &runner.Runner{}, task.ResolveContext{})
}

func TestRefreshEntriesFlattensChildrenWithDepth(t *testing.T) {
	dir := t.TempDir()
	doc := `{
		"command": "make",
		"tasks": [{"label": "build:debug", "args": ["debug"]}]
	}`
	if err := os.WriteFile(filepath.Join(dir, "build.json"), []byte(doc), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	reg, err := registry.New("en_US", 0, nil)
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}
	defer reg.Close()
	reg.AddSearchPath(dir)
	if err := reg.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	m := newModel(reg, &runner.Runner{}, task.ResolveContext{})
	m.refreshEntries()

	if len(m.entries) != 2 {
		t.Fatalf("got %d entries, want 2 (root + child)", len(m.entries))
	}
	if m.entries[0].depth != 0 || m.entries[1].depth != 1 {
		t.Fatalf("got depths %d,%d", m.entries[0].depth, m.entries[1].depth)
	}
	if m.entries[1].task.EffectiveLabel() != "build:debug" {
		t.Fatalf("got label %q", m.entries[1].task.EffectiveLabel())
	}
}

func TestConfirmPromptDialogDeliversValue(t *testing.T) {
	m := newTestModel(t)
	reply := make(chan promptReply, 1)
	m.beginPrompt(promptRequest{title: "t", label: "l", defaultValue: "x", reply: reply})
	m.input.SetValue("hello")

	m.confirmDialog()

	got := <-reply
	if !got.ok || got.value != "hello" {
		t.Fatalf("got %+v", got)
	}
	if m.mode != dialogNone {
		t.Fatalf("expected dialog to reset, got mode %d", m.mode)
	}
}

func TestCancelPickDialogDeliversNotOK(t *testing.T) {
	m := newTestModel(t)
	reply := make(chan pickReply, 1)
	m.beginPick(pickRequest{title: "t", options: []string{"a", "b"}, reply: reply})

	m.cancelDialog()

	got := <-reply
	if got.ok {
		t.Fatalf("expected cancelled pick to report ok=false, got %+v", got)
	}
}

func TestCopyOutputUsesInjectedWriter(t *testing.T) {
	m := newTestModel(t)
	m.output = []string{"line one", "line two"}

	var captured string
	orig := clipboardWrite
	clipboardWrite = func(s string) error {
		captured = s
		return nil
	}
	defer func() { clipboardWrite = orig }()

	m.copyOutput()

	if captured != "line one\nline two" {
		t.Fatalf("got %q", captured)
	}
	if m.status != "output copied to clipboard" {
		t.Fatalf("got status %q", m.status)
	}
}
