// Package repl implements the top-level read loop: prompt rendering,
// startup-file loading, history persistence, and per-line dispatch into
// internal/compose. It is the only package that talks to the terminal.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/AlanLuu/alsh/internal/alias"
	"github.com/AlanLuu/alsh/internal/builtin"
	"github.com/AlanLuu/alsh/internal/compose"
	"github.com/AlanLuu/alsh/internal/config"
	"github.com/AlanLuu/alsh/internal/history"
	"github.com/AlanLuu/alsh/internal/shellctx"
	"github.com/AlanLuu/alsh/internal/signalrouter"
	"github.com/AlanLuu/alsh/internal/varstore"
	"github.com/AlanLuu/alsh/internal/varsub"
	"github.com/AlanLuu/alsh/pkg/shellfmt"
	"github.com/AlanLuu/alsh/pkg/storage"
)

const rcFileName = ".alshrc"
const profileFileName = ".alsh.yaml"

// Profile is the optional ~/.alsh.yaml declarative pre-seed, loaded
// before .alshrc.
type Profile struct {
	Vars    map[string]string `yaml:"vars"`
	Aliases map[string]string `yaml:"aliases"`
	Prompt  struct {
		Color bool `yaml:"color"`
	} `yaml:"prompt"`
}

// Shell is the interactive (or scripted) top-level driver.
type Shell struct {
	ctx      *shellctx.Context
	env      *config.Env
	home     string
	scripted bool
	out      io.Writer
	errOut   io.Writer
}

// New builds a Shell. Which mode it runs in is chosen afterwards:
// RunInteractive reads stdin, RunScript puts the shell in non-interactive
// scripted mode (no prompt, no history file, reading from the named file).
func New(logger *slog.Logger, env *config.Env) (*Shell, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	if home == "" {
		return nil, fmt.Errorf("alsh: cannot determine home directory")
	}

	backend, err := storage.NewLocalStorage(home)
	if err != nil {
		return nil, fmt.Errorf("alsh: %w", err)
	}
	hist := history.New(backend, env.HistoryCapacity)

	if env.S3Enabled() {
		s3Backend, err := storage.NewS3Storage(context.Background(), env.HistoryS3Bucket, env.HistoryS3Prefix, env.HistoryS3Region)
		if err != nil {
			logger.Warn("s3 history mirror disabled", "error", err)
		} else {
			hist = hist.WithMirror(s3Backend)
		}
	}

	sc := shellctx.New(logger, hist, varstore.New(), alias.New())

	return &Shell{ctx: sc, env: env, home: home, out: os.Stdout, errOut: os.Stderr}, nil
}

// RunInteractive loads the startup files, replays history, and reads
// from the terminal until EOF or `exit`. Returns the process exit code.
func (sh *Shell) RunInteractive() int {
	if err := sh.ctx.History.Load(context.Background()); err != nil {
		fmt.Fprintln(sh.errOut, err)
	}
	sh.loadProfile()
	sh.loadRC()

	var router *signalrouter.Router
	rcPath := ""
	if sh.env.WatchRC {
		rcPath = filepath.Join(sh.home, rcFileName)
	}
	router, err := signalrouter.Start(sh.ctx, rcPath)
	if err != nil {
		fmt.Fprintln(sh.errOut, err)
	}
	defer router.Stop()

	reader := bufio.NewReader(os.Stdin)
	for {
		for _, msg := range sh.ctx.DrainMessages() {
			fmt.Fprintln(sh.errOut, msg)
		}
		fmt.Fprint(sh.out, sh.prompt())

		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			fmt.Fprintln(sh.errOut, err)
			break
		}

		status, exited, exitStatus := sh.evalLine(line)
		sh.ctx.LastStatus = status
		if exited {
			sh.shutdown()
			return exitStatus
		}
		sh.ctx.Interrupted.Store(false)
	}
	sh.shutdown()
	return 0
}

// RunScript reads path line by line with no prompt and no history file.
func (sh *Shell) RunScript(path string) int {
	sh.scripted = true
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintln(sh.errOut, "alsh: cannot open script:", err)
		return 1
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		status, exited, exitStatus := sh.evalLine(scanner.Text())
		sh.ctx.LastStatus = status
		if exited {
			return exitStatus
		}
	}
	return 0
}

// evalLine normalizes, bang-expands, history-appends (interactive only),
// variable-substitutes, and dispatches one raw input line.
func (sh *Shell) evalLine(raw string) (status int, exited bool, exitStatus int) {
	line := normalize(raw)
	if line == "" {
		return 0, false, 0
	}

	if !sh.scripted {
		expanded, err := history.Expand(line, sh.ctx.History)
		if err != nil {
			fmt.Fprintln(sh.errOut, err)
			return 1, false, 0
		}
		if expanded != line {
			fmt.Fprintln(sh.out, expanded)
		}
		line = expanded
		sh.ctx.History.Append(line)
	}

	substituted, err := varsub.Substitute(line, sh.ctx.Vars)
	if err != nil {
		fmt.Fprintln(sh.errOut, err)
		return 1, false, 0
	}

	ctx := sh.ctx.TraceContext(context.Background(), substituted, 0)
	status, err = compose.Run(ctx, sh.ctx, substituted)
	if err != nil {
		var exitReq *builtin.ExitRequest
		if asExitRequest(err, &exitReq) {
			return exitReq.Status, true, exitReq.Status
		}
		fmt.Fprintln(sh.errOut, err)
	}
	return status, false, 0
}

func asExitRequest(err error, target **builtin.ExitRequest) bool {
	er, ok := err.(*builtin.ExitRequest)
	if !ok {
		return false
	}
	*target = er
	return true
}

// normalize trims a trailing newline and surrounding spaces and removes
// a space-preceded inline comment.
func normalize(raw string) string {
	s := strings.TrimRight(raw, "\n")
	if idx := findComment(s); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func findComment(s string) int {
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		if c == '\'' || c == '"' {
			quote = c
			continue
		}
		if c == '#' && i > 0 && s[i-1] == ' ' {
			return i - 1
		}
	}
	return -1
}

func (sh *Shell) loadProfile() {
	path := filepath.Join(sh.home, profileFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		fmt.Fprintln(sh.errOut, "alsh: malformed", profileFileName+":", err)
		return
	}
	for k, v := range p.Vars {
		sh.ctx.Vars.SetLocal(k, v)
	}
	for k, v := range p.Aliases {
		sh.ctx.Aliases.Set(k, v)
	}
	if p.Prompt.Color {
		sh.env.PromptColor = true
	}
}

func (sh *Shell) loadRC() {
	path := filepath.Join(sh.home, rcFileName)
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := normalize(scanner.Text())
		if line == "" {
			continue
		}
		if warning := shellfmt.Lint(line); warning != "" {
			fmt.Fprintln(sh.errOut, "alsh:", rcFileName+":", warning)
		}
		sh.evalLine(line)
	}
}

func (sh *Shell) shutdown() {
	_ = sh.ctx.History.Write(context.Background())
}

// prompt renders "NAME:CWD$ " (or "NAME-root:CWD# " for uid 0), with ~
// substituted for the home prefix and the CWD segment truncated
// display-width-aware if the whole prompt would exceed 80 columns.
func (sh *Shell) prompt() string {
	cwd := sh.ctx.Cwd()
	if strings.HasPrefix(cwd, sh.home) {
		cwd = "~" + strings.TrimPrefix(cwd, sh.home)
	}

	name := "alsh"
	sep, marker := ":", "$"
	if os.Geteuid() == 0 {
		name += "-root"
		marker = "#"
	}

	const maxWidth = 80
	fixed := runewidth.StringWidth(name + sep + marker + " ")
	if budget := maxWidth - fixed; budget > 0 && runewidth.StringWidth(cwd) > budget {
		cwd = "…" + runewidth.Truncate(cwd, budget-1, "")
	}

	text := name + sep + cwd + marker + " "
	if !sh.env.PromptColor {
		return text
	}
	c := color.New(color.FgGreen)
	if sh.ctx.LastStatus != 0 {
		c = color.New(color.FgRed)
	}
	return c.Sprint(text)
}
