// Package procexec implements foreground and background simple-command
// execution and pipeline orchestration: resolving a path, forking and
// execing, waiting (or recording a background job), and wiring pipeline
// stages together with golang.org/x/sync/errgroup.
package procexec

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/AlanLuu/alsh/internal/builtin"
	"github.com/AlanLuu/alsh/internal/redirect"
	"github.com/AlanLuu/alsh/internal/shellctx"
	"github.com/AlanLuu/alsh/pkg/shellerr"
)

const name = "alsh"

// Command is a simple command ready for dispatch: argument vector plus
// its resolved redirection clauses. NoOp marks an empty alias replacement:
// the command runs nothing but still exits with status 1.
type Command struct {
	Argv      []string
	Redirects []redirect.Spec
	NoOp      bool
}

// RunForeground executes cmd and waits for it, whether it resolves to a
// builtin (run in-process, with descriptors dup2-bound for its duration)
// or an external program (forked and exec'd via os/exec).
func RunForeground(ctx context.Context, sc *shellctx.Context, cmd Command) (int, error) {
	if cmd.NoOp {
		return 1, nil
	}
	if len(cmd.Argv) == 0 {
		return 0, nil
	}

	files, cleanup, err := redirect.OpenFiles(cmd.Redirects)
	defer cleanup()
	if err != nil {
		return 1, err
	}

	if builtin.Is(cmd.Argv[0]) {
		plan, err := redirect.Apply(files)
		if err != nil {
			return 1, err
		}
		defer plan.Restore()
		status, _, err := builtin.Dispatch(ctx, sc, cmd.Argv)
		return status, err
	}

	return runExternal(sc, cmd, files, nil, nil)
}

// RunBackground forks cmd without waiting, recording a job in sc.
func RunBackground(ctx context.Context, sc *shellctx.Context, cmd Command) (shellctx.Job, error) {
	if cmd.NoOp {
		return shellctx.Job{}, nil
	}
	if len(cmd.Argv) == 0 {
		return shellctx.Job{}, shellerr.New(shellerr.Syntax, name, "", "empty command")
	}
	files, cleanup, err := redirect.OpenFiles(cmd.Redirects)
	if err != nil {
		cleanup()
		return shellctx.Job{}, err
	}

	resolved, err := exec.LookPath(cmd.Argv[0])
	if err != nil {
		cleanup()
		return shellctx.Job{}, shellerr.Wrap(shellerr.System, name, cmd.Argv[0], "not found", err)
	}
	ecmd := exec.Command(resolved, cmd.Argv[1:]...)
	wireStreams(ecmd, files, nil, nil)
	if err := ecmd.Start(); err != nil {
		cleanup()
		return shellctx.Job{}, shellerr.Wrap(shellerr.System, name, cmd.Argv[0], "failed to start", err)
	}
	job := sc.AddJob(ecmd.Process.Pid)
	sc.Logger.Debug("background job started", "job", job.Number, "pid", job.PID, "job_id", job.ULID)
	go func() {
		_ = ecmd.Wait()
		cleanup()
		sc.ChildTerminated.Store(true)
		sc.RemoveJob(job.PID)
		sc.Logger.Debug("background job done", "job", job.Number, "pid", job.PID, "job_id", job.ULID)
		sc.PushMessage(fmt.Sprintf("[%d]+ Done %s", job.Number, strings.Join(cmd.Argv, " ")))
	}()
	fmt.Fprintf(os.Stderr, "[%d] %d\n", job.Number, job.PID)
	return job, nil
}

// RunPipeline wires len(stages) simple commands together with anonymous
// pipes: each non-final stage forks within an errgroup so a start
// failure in any stage is collected by the group; a pipe-creation failure
// is returned immediately. The final stage runs in the foreground and its
// status is the pipeline's.
func RunPipeline(ctx context.Context, sc *shellctx.Context, stages []Command) (int, error) {
	if len(stages) == 0 {
		return 0, nil
	}
	if len(stages) == 1 {
		return RunForeground(ctx, sc, stages[0])
	}

	origStdin := os.Stdin
	origStdout := os.Stdout
	defer func() {
		os.Stdin = origStdin
		os.Stdout = origStdout
	}()

	var g errgroup.Group
	var nextStdin *os.File = origStdin

	for i := 0; i < len(stages)-1; i++ {
		stage := stages[i]
		stdin := nextStdin
		r, w, err := os.Pipe()
		if err != nil {
			return 1, shellerr.Wrap(shellerr.System, name, "", "pipe creation failed", err)
		}
		nextStdin = r
		g.Go(func() error {
			defer w.Close()
			files, cleanup, err := redirect.OpenFiles(stage.Redirects)
			defer cleanup()
			if err != nil {
				return err
			}
			_, err = runExternalOrBuiltin(ctx, sc, stage, files, stdin, w)
			return err
		})
	}

	final := stages[len(stages)-1]
	files, cleanup, err := redirect.OpenFiles(final.Redirects)
	defer cleanup()
	var status int
	if err == nil {
		status, err = runExternalOrBuiltin(ctx, sc, final, files, nextStdin, origStdout)
	}
	if werr := g.Wait(); werr != nil && err == nil {
		err = werr
	}
	return status, err
}

// runExternalOrBuiltin is the pipeline-stage variant of RunForeground:
// builtins run in-process with descriptors dup2-bound (including the
// pipe ends), externals run via os/exec with the pipe ends wired directly.
func runExternalOrBuiltin(ctx context.Context, sc *shellctx.Context, cmd Command, files map[int]*os.File, stdin, stdout *os.File) (int, error) {
	if cmd.NoOp {
		return 1, nil
	}
	if len(cmd.Argv) == 0 {
		return 0, nil
	}
	if builtin.Is(cmd.Argv[0]) {
		if _, ok := files[0]; !ok && stdin != nil {
			files[0] = stdin
		}
		if _, ok := files[1]; !ok && stdout != nil {
			files[1] = stdout
		}
		plan, err := redirect.Apply(files)
		if err != nil {
			return 1, err
		}
		defer plan.Restore()
		status, _, err := builtin.Dispatch(ctx, sc, cmd.Argv)
		return status, err
	}
	return runExternal(sc, cmd, files, stdin, stdout)
}

func runExternal(sc *shellctx.Context, cmd Command, files map[int]*os.File, stdin, stdout *os.File) (int, error) {
	resolved, err := exec.LookPath(cmd.Argv[0])
	if err != nil {
		return 1, shellerr.Wrap(shellerr.System, name, cmd.Argv[0], classifyLookupErr(err), err)
	}
	ecmd := exec.Command(resolved, cmd.Argv[1:]...)
	wireStreams(ecmd, files, stdin, stdout)

	runErr := ecmd.Run()
	if runErr == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if asExitError(runErr, &exitErr) {
		if exitErr.ProcessState.Exited() {
			return exitErr.ProcessState.ExitCode(), nil
		}
		// terminated by signal
		return 1, nil
	}
	return 1, shellerr.Wrap(shellerr.System, name, cmd.Argv[0], "exec failed", runErr)
}

func wireStreams(ecmd *exec.Cmd, files map[int]*os.File, fallbackStdin, fallbackStdout *os.File) {
	ecmd.Stdin = fallbackStdin
	ecmd.Stdout = fallbackStdout
	ecmd.Stderr = os.Stderr
	if ecmd.Stdin == nil {
		ecmd.Stdin = os.Stdin
	}
	if ecmd.Stdout == nil {
		ecmd.Stdout = os.Stdout
	}
	var maxFD int
	for fd := range files {
		if fd > maxFD {
			maxFD = fd
		}
	}
	if maxFD >= 3 {
		ecmd.ExtraFiles = make([]*os.File, maxFD-2)
	}
	for fd, f := range files {
		switch fd {
		case 0:
			ecmd.Stdin = f
		case 1:
			ecmd.Stdout = f
		case 2:
			ecmd.Stderr = f
		default:
			ecmd.ExtraFiles[fd-3] = f
		}
	}
}

func classifyLookupErr(err error) string {
	if strings.Contains(err.Error(), "permission denied") {
		return "permission denied"
	}
	return "not found"
}

func asExitError(err error, target **exec.ExitError) bool {
	ee, ok := err.(*exec.ExitError)
	if !ok {
		return false
	}
	*target = ee
	return true
}
