// Package runner implements the Process Builder & Runner (§4.H): resolving
// a task's template fields, building the child process per its Type and
// Shell Profile, and streaming its output through the Codec Cascade and the
// Inline Control Channel.
package runner

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/alessio/shellescape"

	"github.com/tootal/tasksh/internal/codec"
	"github.com/tootal/tasksh/internal/control"
	"github.com/tootal/tasksh/internal/hostbridge"
	"github.com/tootal/tasksh/internal/logging"
	"github.com/tootal/tasksh/internal/safego"
	"github.com/tootal/tasksh/internal/shellprofile"
	"github.com/tootal/tasksh/internal/task"
	"github.com/tootal/tasksh/internal/vars"
)

// Output receives banner lines and decoded child output (§4.H step 5).
// Banner carries lifecycle banners and Line carries actual program output,
// so a UI can style them differently; the text passed to Line already has
// control-channel lines stripped.
type Output interface {
	Banner(line string)
	Line(text string)
}

// Runner launches tasks. It holds no per-task state, so a single Runner may
// launch many tasks concurrently.
type Runner struct {
	Bridge hostbridge.Bridge
}

// Launch resolves task's template fields and starts its child process
// (§4.H). It returns once the child has been started (or step 1/6 aborted
// it cleanly); the child's own lifecycle is reported asynchronously to out.
func (r *Runner) Launch(t *task.Task, rc task.ResolveContext, out Output) error {
	command, err := t.ResolvedCommand(rc)
	if err != nil {
		return r.abort(out, t, err)
	}
	if command == "" {
		// Step 1: empty command aborts with no error (§4.H).
		return nil
	}

	args, err := t.ResolvedArgs(rc)
	if err != nil {
		return r.abort(out, t, err)
	}
	cwd, err := t.ResolvedCwd(rc)
	if err != nil {
		return r.abort(out, t, err)
	}
	env, err := t.ResolvedEnv(rc)
	if err != nil {
		return r.abort(out, t, err)
	}

	program, argv, err := r.buildArgv(t, rc, command, args)
	if err != nil {
		return r.abort(out, t, err)
	}

	cmd := exec.Command(program, argv...)
	cmd.Dir = cwd
	cmd.Env = mergeEnv(os.Environ(), env)

	logging.Info("runner: run task %q: %s %s", t.EffectiveLabel(), program, shellescape.QuoteCommand(argv))

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return r.spawnError(out, t, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return r.spawnError(out, t, err)
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return r.spawnError(out, t, err)
	}

	if err := cmd.Start(); err != nil {
		return r.spawnError(out, t, err)
	}

	if out != nil {
		out.Banner(fmt.Sprintf("[%s] running: %s", t.EffectiveLabel(), shellescape.QuoteCommand(argv)))
	}

	channel := &control.Channel{Bridge: r.Bridge, Stdin: stdin}

	var wg sync.WaitGroup
	wg.Add(2)
	safego.Go("runner-stdout-pump", func() {
		defer wg.Done()
		pump(stdout, channel, out)
	})
	safego.Go("runner-stderr-pump", func() {
		defer wg.Done()
		pump(stderr, channel, out)
	})

	safego.Go("runner-wait", func() {
		wg.Wait()
		waitErr := cmd.Wait()
		reportFinish(out, t, cmd, waitErr)
	})

	return nil
}

// abort handles a TaskCancelled expansion error (§4.H step 6): launch
// returns without starting the child, with no banner and no error surfaced
// to the user (§7: "abort expansion and launch silently").
func (r *Runner) abort(out Output, t *task.Task, err error) error {
	var cancelled *vars.ErrTaskCancelled
	if errors.As(err, &cancelled) {
		return nil
	}
	logging.Warn("runner: resolving task %q: %v", t.EffectiveLabel(), err)
	if out != nil {
		out.Banner(fmt.Sprintf("[%s] error: %v", t.EffectiveLabel(), err))
	}
	return err
}

func (r *Runner) spawnError(out Output, t *task.Task, err error) error {
	logging.Error("runner: spawning task %q: %v", t.EffectiveLabel(), err)
	if out != nil {
		out.Banner(fmt.Sprintf("[%s] error: %v", t.EffectiveLabel(), err))
	}
	return err
}

// buildArgv implements §4.H step 3: process tasks run command/args
// directly; shell tasks run the configured interpreter with its profile's
// default args followed by the §4.B join of command+args.
func (r *Runner) buildArgv(t *task.Task, rc task.ResolveContext, command string, args []string) (program string, argv []string, err error) {
	if t.Type == task.KindProcess {
		return command, args, nil
	}

	executable, err := t.ResolvedShellExecutable(rc)
	if err != nil {
		return "", nil, err
	}
	shellArgs, err := t.ResolvedShellArgs(rc)
	if err != nil {
		return "", nil, err
	}

	profile := shellprofile.Lookup(shellprofile.Identity(executable))
	tail := shellprofile.JoinCommand(profile, command, args)

	argv = make([]string, 0, len(shellArgs)+len(tail))
	argv = append(argv, shellArgs...)
	argv = append(argv, tail...)
	return executable, argv, nil
}

func mergeEnv(base []string, overlay map[string]string) []string {
	if len(overlay) == 0 {
		return base
	}
	out := make([]string, 0, len(base)+len(overlay))
	out = append(out, base...)
	for k, v := range overlay {
		out = append(out, k+"="+v)
	}
	return out
}

// pump decodes a stream, runs it through the control channel, and forwards
// the residual text to out (§4.H step 5).
func pump(r io.Reader, channel *control.Channel, out Output) {
	buf := make([]byte, 32*1024)
	var pending strings.Builder
	for {
		n, err := r.Read(buf)
		if n > 0 {
			pending.WriteString(codec.Decode(buf[:n]))
			text := pending.String()
			stripped := channel.Process(text)
			if stripped != "" && out != nil {
				out.Line(stripped)
			}
			pending.Reset()
		}
		if err != nil {
			return
		}
	}
}

func reportFinish(out Output, t *task.Task, cmd *exec.Cmd, waitErr error) {
	if out == nil {
		return
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			out.Banner(fmt.Sprintf("[%s] finished with exit code %d", t.EffectiveLabel(), exitErr.ExitCode()))
			return
		}
		out.Banner(fmt.Sprintf("[%s] error: %v", t.EffectiveLabel(), waitErr))
		return
	}
	out.Banner(fmt.Sprintf("[%s] finished with exit code %d", t.EffectiveLabel(), cmd.ProcessState.ExitCode()))
}
