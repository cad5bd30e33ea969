package runner

import (
	"sync"
	"testing"
	"time"

	"github.com/tootal/tasksh/internal/hostbridge"
	"github.com/tootal/tasksh/internal/task"
	"github.com/tootal/tasksh/internal/vars"
)

type collectingOutput struct {
	mu      sync.Mutex
	banners []string
	lines   []string
}

func (o *collectingOutput) Banner(line string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.banners = append(o.banners, line)
}

func (o *collectingOutput) Line(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lines = append(o.lines, text)
}

func (o *collectingOutput) snapshot() (banners, lines []string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.banners...), append([]string(nil), o.lines...)
}

func baseRC() task.ResolveContext {
	return task.ResolveContext{
		Bridge:                 hostbridge.NewFixture(),
		DefaultShellExecutable: "/bin/bash",
		Getenv:                 func(string) string { return "" },
		Now:                    func() time.Time { return time.Now() },
	}
}

func TestLaunchEmptyCommandAbortsSilently(t *testing.T) {
	r := &Runner{}
	tk := &task.Task{Type: task.KindProcess, Command: ""}
	out := &collectingOutput{}

	err := r.Launch(tk, baseRC(), out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	banners, _ := out.snapshot()
	if len(banners) != 0 {
		t.Fatalf("expected no banners for an empty command, got %v", banners)
	}
}

func TestLaunchCancelledInputAbortsSilently(t *testing.T) {
	r := &Runner{}
	tk := &task.Task{
		Type:    task.KindProcess,
		Command: "echo",
		Args:    []string{"${input:name}"},
		Inputs:  []task.Input{{ID: "name", Type: vars.PromptString}},
	}
	fx := hostbridge.NewFixture()
	fx.PromptResponses = []hostbridge.PromptResponse{{OK: false}}
	rc := baseRC()
	rc.Bridge = fx

	out := &collectingOutput{}
	err := r.Launch(tk, rc, out)
	if err != nil {
		t.Fatalf("expected nil error on cancel, got %v", err)
	}
	banners, _ := out.snapshot()
	if len(banners) != 0 {
		t.Fatalf("expected no banners on cancel, got %v", banners)
	}
}

func TestLaunchProcessRunsAndStreamsOutput(t *testing.T) {
	r := &Runner{}
	tk := &task.Task{
		Type:    task.KindProcess,
		Command: "/bin/echo",
		Args:    []string{"hello"},
	}

	out := &collectingOutput{}
	if err := r.Launch(tk, baseRC(), out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		_, lines := out.snapshot()
		if len(lines) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	_, lines := out.snapshot()
	if len(lines) == 0 {
		t.Fatal("expected at least one line of output from echo")
	}
}

func TestBuildArgvProcessVsShell(t *testing.T) {
	r := &Runner{}
	rc := baseRC()

	tk := &task.Task{Type: task.KindProcess}
	program, argv, err := r.buildArgv(tk, rc, "echo", []string{"hello world", "a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if program != "echo" || len(argv) != 2 || argv[0] != "hello world" || argv[1] != "a" {
		t.Fatalf("got program=%q argv=%v", program, argv)
	}

	shellTk := &task.Task{Type: task.KindShell, Shell: task.ShellOptions{Executable: "/bin/bash"}}
	program, argv, err = r.buildArgv(shellTk, rc, "echo", []string{"hello world", "a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if program != "/bin/bash" {
		t.Fatalf("got program %q", program)
	}
	want := []string{"-c", `echo \"hello world\" a`}
	if len(argv) != len(want) || argv[0] != want[0] || argv[1] != want[1] {
		t.Fatalf("got argv %v, want %v", argv, want)
	}
}
