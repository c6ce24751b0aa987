// Package builtin implements the shell's in-process command dispatch:
// true, false, cd, export, let, alias, exec, history, chk, exit, and the
// supplemented jobs/unalias/unset/pwd builtins.
package builtin

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path"
	"strconv"
	"strings"
	"syscall"

	"github.com/AlanLuu/alsh/internal/shellctx"
	"github.com/AlanLuu/alsh/internal/varstore"
	"github.com/AlanLuu/alsh/pkg/shellerr"
)

const name = "alsh"

// ExitRequest is returned by the `exit` builtin to signal the top-level
// read loop to terminate with Status.
type ExitRequest struct {
	Status int
}

func (e *ExitRequest) Error() string { return "exit requested" }

// table lists every recognized builtin name, for fast first-token lookup
// without a type switch at every call site.
var table = map[string]bool{
	"true": true, "false": true, "cd": true, "export": true, "let": true,
	"alias": true, "exec": true, "history": true, "chk": true, "exit": true,
	"jobs": true, "unalias": true, "unset": true, "pwd": true,
}

// Is reports whether name matches a builtin (used by internal/procexec to
// decide whether to route through Dispatch rather than fork+exec).
func Is(first string) bool {
	return table[first]
}

// Dispatch runs a builtin identified by argv[0]. handled is false if
// argv[0] is not a builtin name, in which case the caller should fall
// through to external execution.
func Dispatch(ctx context.Context, sc *shellctx.Context, argv []string) (status int, handled bool, err error) {
	if len(argv) == 0 || !table[argv[0]] {
		return 0, false, nil
	}
	args := argv[1:]
	switch argv[0] {
	case "true":
		return 0, true, nil
	case "false":
		return 1, true, nil
	case "cd":
		return cd(sc, args)
	case "export":
		return export(sc, args)
	case "let":
		return let(sc, args)
	case "alias":
		return aliasBuiltin(sc, args)
	case "unalias":
		return unalias(sc, args)
	case "unset":
		return unset(sc, args)
	case "exec":
		return execReplace(sc, args)
	case "history":
		return historyBuiltin(ctx, sc, args)
	case "chk":
		return chk(args)
	case "jobs":
		return jobs(sc, args)
	case "pwd":
		fmt.Fprintln(os.Stdout, sc.Cwd())
		return 0, true, nil
	case "exit":
		st := 0
		if len(args) > 0 {
			if n, convErr := strconv.Atoi(args[0]); convErr == nil {
				st = n
			}
		}
		return st, true, &ExitRequest{Status: st}
	}
	return 0, false, nil
}

func cd(sc *shellctx.Context, args []string) (int, bool, error) {
	var target string
	switch {
	case len(args) == 0:
		home, err := os.UserHomeDir()
		if err != nil {
			home = os.Getenv("HOME")
		}
		if home == "" {
			return 1, true, shellerr.New(shellerr.System, "cd", "", "cannot determine home directory")
		}
		target = home
	case args[0] == "..":
		target = path.Dir(sc.Cwd())
	default:
		target = args[0]
	}
	if err := os.Chdir(target); err != nil {
		switch {
		case os.IsPermission(err):
			return 1, true, shellerr.Wrap(shellerr.System, "cd", target, "permission denied", err)
		case os.IsNotExist(err):
			return 1, true, shellerr.Wrap(shellerr.System, "cd", target, "no such file or directory", err)
		default:
			return 1, true, shellerr.Wrap(shellerr.System, "cd", target, "cannot change directory", err)
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		wd = target
	}
	sc.SetCwd(wd)
	return 0, true, nil
}

func export(sc *shellctx.Context, args []string) (int, bool, error) {
	if len(args) == 0 {
		for _, p := range varstore.Environ() {
			fmt.Fprintf(os.Stdout, "export %s='%s'\n", p.Name, p.Value)
		}
		return 0, true, nil
	}
	name, value, hasValue := strings.Cut(args[0], "=")
	if hasValue {
		if err := sc.Vars.SetExported(name, value); err != nil {
			return 1, true, shellerr.Wrap(shellerr.System, "export", name, "failed to export", err)
		}
		return 0, true, nil
	}
	if promoted, err := sc.Vars.PromoteToExported(name); err != nil {
		return 1, true, shellerr.Wrap(shellerr.System, "export", name, "failed to export", err)
	} else if !promoted {
		return 1, true, shellerr.New(shellerr.Builtin, "export", name, "not a local variable")
	}
	return 0, true, nil
}

func let(sc *shellctx.Context, args []string) (int, bool, error) {
	if len(args) == 0 {
		for _, p := range sc.Vars.Locals() {
			fmt.Fprintf(os.Stdout, "let %s=\"%s\"\n", p.Name, p.Value)
		}
		return 0, true, nil
	}
	name, value, _ := strings.Cut(args[0], "=")
	sc.Vars.SetLocal(name, value)
	return 0, true, nil
}

func aliasBuiltin(sc *shellctx.Context, args []string) (int, bool, error) {
	if len(args) == 0 {
		for _, p := range sc.Aliases.All() {
			fmt.Fprintf(os.Stdout, "alias %s=%s\n", p.Name, p.Value)
		}
		return 0, true, nil
	}
	name, value, hasValue := strings.Cut(args[0], "=")
	if hasValue {
		sc.Aliases.Set(name, value)
		return 0, true, nil
	}
	value, ok := sc.Aliases.Get(name)
	if !ok {
		return 1, true, shellerr.New(shellerr.Builtin, "alias", name, "unknown alias name")
	}
	fmt.Fprintf(os.Stdout, "alias %s=%s\n", name, value)
	return 0, true, nil
}

func unalias(sc *shellctx.Context, args []string) (int, bool, error) {
	if len(args) != 1 {
		return 1, true, shellerr.New(shellerr.Syntax, "unalias", "", "invalid option")
	}
	if !sc.Aliases.Unset(args[0]) {
		return 1, true, shellerr.New(shellerr.Builtin, "unalias", args[0], "unknown alias name")
	}
	return 0, true, nil
}

func unset(sc *shellctx.Context, args []string) (int, bool, error) {
	if len(args) != 1 {
		return 1, true, shellerr.New(shellerr.Syntax, "unset", "", "invalid option")
	}
	sc.Vars.UnsetLocal(args[0])
	return 0, true, nil
}

func execReplace(sc *shellctx.Context, args []string) (int, bool, error) {
	argv := args
	binary := ""
	if len(argv) == 0 {
		binary = sc.ExecPath
		argv = []string{sc.ExecPath}
	} else {
		resolved, err := exec.LookPath(argv[0])
		if err != nil {
			return 1, true, shellerr.Wrap(shellerr.System, "exec", argv[0], "not found", err)
		}
		binary = resolved
	}
	err := syscall.Exec(binary, argv, os.Environ())
	// syscall.Exec only returns on failure; success replaces this process.
	return 1, true, shellerr.Wrap(shellerr.System, "exec", binary, "exec failed", err)
}

func historyBuiltin(ctx context.Context, sc *shellctx.Context, args []string) (int, bool, error) {
	if len(args) == 0 {
		for i, entry := range sc.History.All() {
			fmt.Fprintf(os.Stdout, "%d  %s\n", i+1, entry)
		}
		return 0, true, nil
	}
	switch args[0] {
	case "-c":
		sc.History.Clear()
		return 0, true, nil
	case "-w":
		if err := sc.History.Write(ctx); err != nil {
			return 1, true, shellerr.Wrap(shellerr.System, "history", "-w", "failed to write history file", err)
		}
		return 0, true, nil
	default:
		return 1, true, shellerr.New(shellerr.Builtin, "history", args[0], "unknown history flag")
	}
}

func jobs(sc *shellctx.Context, _ []string) (int, bool, error) {
	for _, j := range sc.Jobs() {
		fmt.Fprintf(os.Stdout, "[%d] %d\n", j.Number, j.PID)
	}
	return 0, true, nil
}

const chkEpsilon = 1e-5

func chk(args []string) (int, bool, error) {
	if len(args) != 3 {
		return 1, true, shellerr.New(shellerr.Builtin, "chk", strings.Join(args, " "), "expected 3 arguments")
	}
	a, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 1, true, shellerr.Wrap(shellerr.Builtin, "chk", args[0], "not a number", err)
	}
	b, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return 1, true, shellerr.Wrap(shellerr.Builtin, "chk", args[2], "not a number", err)
	}
	op := strings.TrimPrefix(args[1], "-")
	var ok bool
	switch op {
	case "eq":
		ok = math.Abs(a-b) < chkEpsilon
	case "ne":
		ok = math.Abs(a-b) >= chkEpsilon
	case "lt":
		ok = a < b
	case "le":
		ok = a <= b
	case "gt":
		ok = a > b
	case "ge":
		ok = a >= b
	default:
		return 1, true, shellerr.New(shellerr.Builtin, "chk", args[1], "bad argument")
	}
	if ok {
		return 0, true, nil
	}
	return 1, true, nil
}
