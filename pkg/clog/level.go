package clog

import "log/slog"

// SlogLevel parses the ALSH_LOG_LEVEL value, falling back to debug on any
// error so a typo in the environment never silences the logger entirely.
func SlogLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelDebug
	}
	return level
}

// New builds the shell's slog.Logger: a text handler writing to w at the
// given level, wrapped so interpreter context attributes get merged in.
func New(level slog.Level, w interface {
	Write(p []byte) (int, error)
}) *slog.Logger {
	base := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewAttributesHandler(base))
}
