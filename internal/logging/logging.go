// Package logging builds the slog.Logger shared by the server and the repos CLI.
//
// The server logs to stdout in the format chosen by LOG_FORMAT. The CLI keeps
// stdout for its listing and logs to stderr, errors only unless -v is given.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const (
	FormatText = "text"
	FormatJSON = "json"

	// AppName is attached to every server record as "app".
	AppName = "repo-explorer"
)

// Options selects the logger New builds.
type Options struct {
	Level  string // debug, info, warn, error; empty means info
	Format string // text or json; empty means text
	App    string // attached as "app" when non-empty
}

// New builds a logger writing to w. An unknown level or format is an error.
func New(w io.Writer, opts Options) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	format, err := ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	logger := slog.New(handler)
	if opts.App != "" {
		logger = logger.With(slog.String("app", opts.App))
	}
	return logger, nil
}

// ForCLI returns the repos command's logger: text on w, errors only, or
// everything down to debug when verbose is set.
func ForCLI(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelError
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ParseLevel converts a level name (any case, "warning" accepted) to
// slog.Level. The empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return slog.LevelInfo, nil
	case strings.EqualFold(s, "warning"):
		return slog.LevelWarn, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("logging: unknown level %q", s)
	}
	return level, nil
}

// ParseFormat normalizes a format name. The empty string is text.
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("logging: unknown format %q", s)
	}
}
