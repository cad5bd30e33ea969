package task

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tootal/tasksh/internal/hostbridge"
	"github.com/tootal/tasksh/internal/vars"
)

// ResolveContext bundles the live host/process state a resolved accessor
// needs to build a vars.Context (§4.D, §4.E). It is built once per launch
// (or per UI refresh) by the caller — typically the Runner or a demo host —
// and passed to every accessor call for a given Task.
type ResolveContext struct {
	Bridge hostbridge.Bridge

	// DefaultShellExecutable is the OS-dependent interpreter path used when
	// a task declares no options.shell.executable (§3).
	DefaultShellExecutable string

	// Getenv looks up a process environment variable; defaults to
	// os.Getenv when nil.
	Getenv func(string) string

	// Now returns the wall-clock instant magic: tokens are evaluated
	// against; defaults to time.Now when nil.
	Now func() time.Time

	// Engine expands templates; defaults to a package-level vars.Engine
	// when nil, since the engine is stateless and safe to share.
	Engine *vars.Engine
}

var sharedEngine = vars.New()

func (rc ResolveContext) engine() *vars.Engine {
	if rc.Engine != nil {
		return rc.Engine
	}
	return sharedEngine
}

// varsContext assembles a vars.Context from host state (via rc.Bridge) and
// this task's own document fields (File, Locale is not a vars concern).
func (t *Task) varsContext(rc ResolveContext) vars.Context {
	ctx := vars.Context{
		Env:      rc.Getenv,
		Now:      rc.Now,
		Label:    t.EffectiveLabel(),
		Inputs:   t,
		TaskFile: t.File,
	}
	if ctx.Env == nil {
		ctx.Env = os.Getenv
	}
	if t.File != "" {
		ctx.TaskDirname = filepath.Dir(t.File)
	}

	if rc.Bridge != nil {
		ctx.Prompter = rc.Bridge
		ctx.ExecPath = rc.Bridge.AppExecutablePath()
		ctx.SelectedText = rc.Bridge.SelectedText()

		if ws, ok := rc.Bridge.CurrentWorkspace(); ok {
			ctx.HasNotebook = true
			ctx.NotebookFolder = ws.RootPath
			ctx.NotebookFolderBasename = filepath.Base(ws.RootPath)
			ctx.NotebookName = ws.Name
			ctx.NotebookDescription = ws.Description
		}

		if doc, ok := rc.Bridge.CurrentDocument(); ok {
			ctx.File = doc
			ctx.RelativeFile = doc
			ctx.FileBasename = filepath.Base(doc)
			ext := filepath.Ext(doc)
			ctx.FileExtname = ext
			ctx.FileBasenameNoExtension = strings.TrimSuffix(ctx.FileBasename, ext)
			ctx.FileDirname = filepath.Dir(doc)

			if docWs, ok := rc.Bridge.WorkspaceContaining(doc); ok {
				ctx.FileNotebookFolder = docWs.RootPath
				if rel, err := filepath.Rel(docWs.RootPath, doc); err == nil {
					ctx.RelativeFile = rel
				}
			}
		}
	}

	ctx.Cwd = resolveFallbackCwd(rc, ctx)
	ctx.PathSeparator = string(filepath.Separator)
	return ctx
}

// resolveFallbackCwd implements the three-level fallback from §3's
// options.cwd description: workspace root, else the current document's
// containing folder, else the task file's directory.
func resolveFallbackCwd(rc ResolveContext, ctx vars.Context) string {
	if ctx.HasNotebook && ctx.NotebookFolder != "" {
		return ctx.NotebookFolder
	}
	if ctx.FileDirname != "" {
		return ctx.FileDirname
	}
	return ctx.TaskDirname
}
