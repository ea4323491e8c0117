package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"flacify/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// File is the append-only log file. Empty disables the file sink.
	File string
	// Console receives a mirror of every line. Nil disables the mirror.
	Console io.Writer
	// Color enables ANSI level colours on the console mirror.
	Color bool
}

// New constructs a slog logger writing to the configured sinks. The returned
// close function releases the log file and is safe to call more than once.
func New(opts Options) (*slog.Logger, func() error, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))
	addSource := levelVar.Level() <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	if format != "console" && format != "json" {
		return nil, nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	var handlers []slog.Handler
	closeFn := func() error { return nil }

	if path := strings.TrimSpace(opts.File); path != "" {
		file, err := openLogFile(path)
		if err != nil {
			return nil, nil, err
		}
		closed := false
		closeFn = func() error {
			if closed {
				return nil
			}
			closed = true
			return file.Close()
		}
		if format == "json" {
			handlers = append(handlers, newJSONHandler(file, levelVar, addSource))
		} else {
			handlers = append(handlers, newLineHandler(file, levelVar, addSource, false))
		}
	}

	if opts.Console != nil {
		handlers = append(handlers, newLineHandler(opts.Console, levelVar, false, opts.Color))
	}

	return slog.New(newFanoutHandler(handlers...)), closeFn, nil
}

// NewFromConfig creates the run logger: the configured log file plus, when
// enabled, a console mirror on the supplied writer.
func NewFromConfig(cfg *config.Config, console io.Writer) (*slog.Logger, func() error, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", Console: console, Color: isTerminal(console)})
	}
	opts := Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	}
	if cfg.Logging.Console && console != nil {
		opts.Console = console
		opts.Color = isTerminal(console)
	}
	return New(opts)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}
