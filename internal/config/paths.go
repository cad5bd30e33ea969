// Package config computes the filesystem layout the task registry scans:
// an application-scope task folder, a user-scope task folder, and (when
// the active workspace opts in) a workspace-scope task folder.
package config

import (
	"os"
	"path/filepath"
)

// Paths holds the filesystem locations the registry and loader consult.
type Paths struct {
	Home           string // ~/.tasksh
	UserTaskFolder string // ~/.tasksh/tasks
	LogRoot        string // ~/.tasksh/logs
	CacheRoot      string // ~/.tasksh/cache
}

// AppTaskFolderEnvVar overrides the application-scope task folder, mirroring
// how the teacher's installer-relative paths are made testable.
const AppTaskFolderEnvVar = "TASKSH_APP_TASK_FOLDER"

// DefaultPaths returns the default paths configuration, rooted at the
// user's home directory.
func DefaultPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	root := filepath.Join(home, ".tasksh")

	return &Paths{
		Home:           root,
		UserTaskFolder: filepath.Join(root, "tasks"),
		LogRoot:        filepath.Join(root, "logs"),
		CacheRoot:      filepath.Join(root, "cache"),
	}, nil
}

// EnsureDirectories creates all required directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{p.Home, p.UserTaskFolder, p.LogRoot, p.CacheRoot}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}

// AppTaskFolder returns the application-scope (shipped-defaults) task
// folder. It is relative to the running executable by default, overridable
// via AppTaskFolderEnvVar for tests and packaging layouts that install
// defaults elsewhere.
func AppTaskFolder() (string, error) {
	if dir := os.Getenv(AppTaskFolderEnvVar); dir != "" {
		return dir, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(exe), "tasks"), nil
}

// WorkspaceConfigDirName and workspaceTasksDirName mirror the teacher's
// bundle-notebook layout: a hidden config directory at the workspace root
// holding a "tasks" subfolder.
const (
	WorkspaceConfigDirName = ".tasksh"
	workspaceTasksDirName  = "tasks"
)

// WorkspaceTaskFolder returns the workspace-scope task folder for a
// workspace rooted at root, if the workspace uses the recognized bundle
// layout (a WorkspaceConfigDirName directory present at its root).
func WorkspaceTaskFolder(root string) (string, bool) {
	configDir := filepath.Join(root, WorkspaceConfigDirName)
	info, err := os.Stat(configDir)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return filepath.Join(configDir, workspaceTasksDirName), true
}
