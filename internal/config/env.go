// Package config loads the ambient, ALSH_-namespaced environment
// configuration. None of these settings change the command-language
// surface — they only parameterize logging, history capacity, prompt
// color, the .alshrc watch, and the optional S3 history mirror.
package config

import (
	"fmt"
	"log/slog"

	"github.com/kelseyhightower/envconfig"

	"github.com/AlanLuu/alsh/pkg/clog"
)

// Env holds every ambient setting alsh reads from the process environment.
type Env struct {
	LogLevel         string `envconfig:"LOG_LEVEL" default:"warn"`
	HistoryCapacity  int    `envconfig:"HISTORY_CAPACITY" default:"1000"`
	PromptColor      bool   `envconfig:"PROMPT_COLOR" default:"true"`
	WatchRC          bool   `envconfig:"WATCH_RC" default:"false"`
	HistoryS3Bucket  string `envconfig:"HISTORY_S3_BUCKET"`
	HistoryS3Prefix  string `envconfig:"HISTORY_S3_PREFIX" default:"alsh/"`
	HistoryS3Region  string `envconfig:"HISTORY_S3_REGION" default:"us-east-1"`
}

const namespace = "ALSH"

// Load reads the ALSH_* environment into an Env, applying defaults for
// anything unset.
func Load() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}
	return &env, nil
}

// SlogLevel derives the developer-trace log level from LogLevel.
func (e *Env) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelWarn
	}
	return clog.SlogLevel(e.LogLevel)
}

// S3Enabled reports whether the optional S3 history mirror is configured.
func (e *Env) S3Enabled() bool {
	return e != nil && e.HistoryS3Bucket != ""
}
