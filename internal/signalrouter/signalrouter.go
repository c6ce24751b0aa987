// Package signalrouter delivers interrupt (SIGINT) events into the shared
// flags in shellctx.Context, and optionally watches the
// startup file for live reload. Its goroutines run under
// sourcegraph/conc/panics.Catcher so a panic in one never crashes the
// whole shell process.
package signalrouter

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/sourcegraph/conc/panics"

	"github.com/AlanLuu/alsh/internal/shellctx"
)

// Router owns the OS signal channel and (optionally) an fsnotify watcher
// on the startup file.
type Router struct {
	sc      *shellctx.Context
	sigCh   chan os.Signal
	watcher *fsnotify.Watcher
	catcher *panics.Catcher
	stop    chan struct{}
}

// Start installs the SIGINT handler and, if rcPath is non-empty, a
// live-reload watcher on it. Call Stop to tear both down.
func Start(sc *shellctx.Context, rcPath string) (*Router, error) {
	r := &Router{
		sc:      sc,
		sigCh:   make(chan os.Signal, 1),
		catcher: &panics.Catcher{},
		stop:    make(chan struct{}),
	}
	signal.Notify(r.sigCh, os.Interrupt, syscall.SIGINT)

	go r.catcher.Try(func() { r.watchSignals() })

	if rcPath != "" {
		if err := r.watchRC(rcPath); err != nil {
			sc.Logger.Debug("rc watch disabled", "error", err)
		}
	}

	return r, nil
}

// watchSignals sets the interrupt flag on SIGINT. Child reaping itself is
// done per-job by internal/procexec's own background-wait goroutine
// (os/exec already tracks each child independently), so unlike the
// original SIGCHLD-handler design this router does not also reap —
// a second, untargeted wait4 here would race os/exec's own Wait call.
func (r *Router) watchSignals() {
	for {
		select {
		case <-r.sigCh:
			r.sc.Interrupted.Store(true)
		case <-r.stop:
			return
		}
	}
}

func (r *Router) watchRC(rcPath string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	dir := filepath.Dir(rcPath)
	if err := w.Add(dir); err != nil {
		w.Close()
		return err
	}
	r.watcher = w
	go r.catcher.Try(func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) == filepath.Clean(rcPath) && ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					r.sc.PushMessage(fmt.Sprintf("alsh: %s changed, run 'exec' to reload", rcPath))
				}
			case werr, ok := <-w.Errors:
				if !ok {
					return
				}
				r.sc.Logger.Debug("rc watcher error", "error", werr)
			case <-r.stop:
				return
			}
		}
	})
	return nil
}

// Stop tears down the signal channel and watcher, surfacing any panic
// recovered from the router's goroutines.
func (r *Router) Stop() {
	close(r.stop)
	signal.Stop(r.sigCh)
	if r.watcher != nil {
		r.watcher.Close()
	}
	if recovered := r.catcher.Recovered(); recovered != nil {
		r.sc.Logger.Error("signal router panic recovered", "panic", recovered.AsError())
	}
}
