package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPathsEnsureDirectories(t *testing.T) {
	tmp := t.TempDir()
	paths := &Paths{
		Home:           filepath.Join(tmp, "tasksh"),
		UserTaskFolder: filepath.Join(tmp, "tasksh", "tasks"),
		LogRoot:        filepath.Join(tmp, "tasksh", "logs"),
		CacheRoot:      filepath.Join(tmp, "tasksh", "cache"),
	}

	if err := paths.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories() error = %v", err)
	}

	for _, dir := range []string{paths.Home, paths.UserTaskFolder, paths.LogRoot, paths.CacheRoot} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %s to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %s to be a directory", dir)
		}
	}
}

func TestWorkspaceTaskFolder(t *testing.T) {
	tmp := t.TempDir()

	if _, ok := WorkspaceTaskFolder(tmp); ok {
		t.Fatalf("expected no workspace task folder without a %s directory", WorkspaceConfigDirName)
	}

	if err := os.MkdirAll(filepath.Join(tmp, WorkspaceConfigDirName), 0755); err != nil {
		t.Fatal(err)
	}

	folder, ok := WorkspaceTaskFolder(tmp)
	if !ok {
		t.Fatalf("expected workspace task folder to be recognized")
	}
	want := filepath.Join(tmp, WorkspaceConfigDirName, "tasks")
	if folder != want {
		t.Fatalf("folder = %s, want %s", folder, want)
	}
}

func TestAppTaskFolderEnvOverride(t *testing.T) {
	t.Setenv(AppTaskFolderEnvVar, "/opt/tasksh/tasks")
	dir, err := AppTaskFolder()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/opt/tasksh/tasks" {
		t.Fatalf("dir = %s, want /opt/tasksh/tasks", dir)
	}
}
