// Command tasksh is an interactive demo host for the task runner core: a
// terminal UI that implements hostbridge.Bridge for real, so the Variable
// Engine's ${input:*} prompts and the Inline Control Channel's dialogs have
// a living, driveable implementation instead of only test fixtures (§4.A,
// §4.I).
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/term"

	"github.com/tootal/tasksh/internal/config"
	"github.com/tootal/tasksh/internal/logging"
	"github.com/tootal/tasksh/internal/registry"
	"github.com/tootal/tasksh/internal/runner"
	"github.com/tootal/tasksh/internal/task"
)

func main() {
	workspace := flag.String("workspace", "", "workspace root to scan for a .tasksh/tasks folder")
	locale := flag.String("locale", "en_US", "locale used to resolve localized task document fields")
	list := flag.String("list", "", "non-interactive mode: list tasks found under the given directory and exit")
	flag.Parse()

	paths, err := config.DefaultPaths()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tasksh: resolving paths: %v\n", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "tasksh: preparing %s: %v\n", paths.Home, err)
		os.Exit(1)
	}

	if *list != "" {
		os.Exit(runHeadless(*list, *locale))
	}

	if !isInteractive() {
		fmt.Fprintln(os.Stderr, "tasksh: not a terminal; pass -list <dir> for headless use")
		os.Exit(1)
	}

	os.Exit(runTUI(paths, *workspace, *locale))
}

func isInteractive() bool {
	return term.IsTerminal(os.Stdin.Fd()) && term.IsTerminal(os.Stdout.Fd())
}

// runHeadless lists every task discovered under dir without starting the
// TUI, for scripting and CI smoke checks.
func runHeadless(dir, locale string) int {
	reg, err := registry.New(locale, 0, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tasksh: %v\n", err)
		return 1
	}
	defer reg.Close()

	reg.AddSearchPath(dir)
	if err := reg.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "tasksh: %v\n", err)
		return 1
	}
	for _, t := range reg.Tasks() {
		fmt.Printf("%s\t%s\n", t.EffectiveLabel(), t.File)
	}
	return 0
}

func runTUI(paths *config.Paths, workspace, locale string) int {
	if err := logging.Initialize(paths.LogRoot, logging.LevelInfo); err != nil {
		fmt.Fprintf(os.Stderr, "tasksh: warning: could not initialize logging: %v\n", err)
	}
	defer logging.Close()
	logging.Info("tasksh starting")

	var m *model
	reg, err := registry.New(locale, 500*time.Millisecond, func() {
		if m != nil {
			m.send(tasksChangedMsg{})
		}
	})
	if err != nil {
		logging.Error("tasksh: creating registry: %v", err)
		return 1
	}
	defer reg.Close()

	reg.AddSearchPath(paths.UserTaskFolder)
	if appFolder, err := config.AppTaskFolder(); err == nil {
		reg.AddSearchPath(appFolder)
	}
	if workspace != "" {
		if wsFolder, ok := config.WorkspaceTaskFolder(workspace); ok {
			reg.AddSearchPath(wsFolder)
		}
	}

	bridge := &tuiBridge{workspaceRoot: workspace}

	rcBase := task.ResolveContext{
		Bridge:                 bridge,
		DefaultShellExecutable: defaultShellExecutable(),
	}
	run := &runner.Runner{Bridge: bridge}

	m = newModel(reg, run, rcBase)

	if err := reg.Init(); err != nil {
		logging.Warn("tasksh: initial load: %v", err)
	}
	// Init's onChanged fires before m.program exists, so m.send would drop
	// it; populate the list directly for the first frame.
	m.refreshEntries()

	stop := make(chan struct{})
	reg.Run(stop)
	defer close(stop)

	p := tea.NewProgram(m)
	bridge.program = p
	m.program = p

	if _, err := p.Run(); err != nil {
		logging.Error("tasksh: exited with error: %v", err)
		fmt.Fprintf(os.Stderr, "tasksh: %v\n", err)
		return 1
	}
	logging.Info("tasksh shutdown complete")
	return 0
}

func defaultShellExecutable() string {
	if exe := os.Getenv("SHELL"); exe != "" {
		return exe
	}
	return filepath.Clean("/bin/sh")
}
