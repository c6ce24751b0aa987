// Command alsh is the interactive POSIX-style command shell's entrypoint:
// `alsh` with no arguments runs the interactive read loop on stdin (stdin
// is not checked for being a tty; the prompt is shown either way),
// `alsh SCRIPT` reads lines from SCRIPT with no prompt and no history file.
package main

import (
	"fmt"
	"os"

	"github.com/AlanLuu/alsh/internal/config"
	"github.com/AlanLuu/alsh/internal/repl"
	"github.com/AlanLuu/alsh/pkg/clog"
)

func main() {
	os.Exit(run())
}

func run() int {
	env, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "alsh:", err)
		return 1
	}
	logger := clog.New(env.SlogLevel(), os.Stderr)

	sh, err := repl.New(logger, env)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if len(os.Args) > 1 {
		return sh.RunScript(os.Args[1])
	}
	return sh.RunInteractive()
}
