// Package shellctx bundles the process-wide interpreter state: history,
// variable and alias stores, background-job records, the cached working
// directory, and the signal-observable flags. Every other package
// receives a *Context instead of touching package-level globals.
package shellctx

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/oklog/ulid/v2"

	"github.com/AlanLuu/alsh/internal/alias"
	"github.com/AlanLuu/alsh/internal/history"
	"github.com/AlanLuu/alsh/internal/varstore"
	"github.com/AlanLuu/alsh/pkg/clog"
)

// Job is a background-job record: a sequential job number and a pid.
type Job struct {
	Number int
	PID    int
	ULID   string
}

// Context is the shell's process-wide state. Most mutation happens from
// the main read/execute flow; background-job goroutines and the signal
// router's rc watcher also update the job table and message queue, which
// is why those (and cwd) are mutex-guarded and the flags below are atomic.
type Context struct {
	Logger *slog.Logger

	History *history.Store
	Vars    *varstore.Store
	Aliases *alias.Store

	ExecPath string // absolute path to this shell's own executable

	cwdMu sync.RWMutex
	cwd   string

	Interrupted       atomic.Bool
	ChildTerminated   atomic.Bool
	BackgroundRunning atomic.Bool

	jobsMu  sync.Mutex
	jobs    []Job
	nextJob int

	msgMu    sync.Mutex
	messages []string

	LastStatus int
}

func New(logger *slog.Logger, hist *history.Store, vars *varstore.Store, aliases *alias.Store) *Context {
	wd, _ := os.Getwd()
	execPath, _ := os.Executable()
	return &Context{
		Logger:   logger,
		History:  hist,
		Vars:     vars,
		Aliases:  aliases,
		ExecPath: execPath,
		cwd:      wd,
	}
}

// Cwd returns the cached working directory.
func (c *Context) Cwd() string {
	c.cwdMu.RLock()
	defer c.cwdMu.RUnlock()
	return c.cwd
}

// SetCwd overwrites the cached working directory after a successful chdir.
func (c *Context) SetCwd(path string) {
	c.cwdMu.Lock()
	defer c.cwdMu.Unlock()
	c.cwd = path
}

// AddJob records a new background job, assigning the next monotonically
// increasing job number.
func (c *Context) AddJob(pid int) Job {
	c.jobsMu.Lock()
	defer c.jobsMu.Unlock()
	c.nextJob++
	j := Job{Number: c.nextJob, PID: pid, ULID: ulid.Make().String()}
	c.jobs = append(c.jobs, j)
	c.BackgroundRunning.Store(true)
	return j
}

// RemoveJob deletes the record for pid, reporting whether one existed.
// Called on receipt of the corresponding child-termination event.
func (c *Context) RemoveJob(pid int) (Job, bool) {
	c.jobsMu.Lock()
	defer c.jobsMu.Unlock()
	for i, j := range c.jobs {
		if j.PID == pid {
			c.jobs = append(c.jobs[:i], c.jobs[i+1:]...)
			if len(c.jobs) == 0 {
				c.BackgroundRunning.Store(false)
			}
			return j, true
		}
	}
	return Job{}, false
}

// Jobs returns a snapshot of outstanding background jobs, oldest first.
func (c *Context) Jobs() []Job {
	c.jobsMu.Lock()
	defer c.jobsMu.Unlock()
	out := make([]Job, len(c.jobs))
	copy(out, c.jobs)
	return out
}

// PushMessage enqueues a deferred notification (background-job-done,
// rc-file-changed) to be surfaced at the next prompt, never mid-command.
func (c *Context) PushMessage(msg string) {
	c.msgMu.Lock()
	defer c.msgMu.Unlock()
	c.messages = append(c.messages, msg)
}

// DrainMessages returns and clears all pending deferred messages.
func (c *Context) DrainMessages() []string {
	c.msgMu.Lock()
	defer c.msgMu.Unlock()
	out := c.messages
	c.messages = nil
	return out
}

// TraceContext attaches the current command line and recursion depth to
// ctx for the debug-level dispatch trace, consumed by pkg/clog's
// AttributesHandler.
func (c *Context) TraceContext(ctx context.Context, line string, depth int) context.Context {
	ctx = clog.ContextWithAttributes(ctx)
	clog.AddAttributes(ctx, map[string]any{"line": line, "depth": depth})
	return ctx
}
