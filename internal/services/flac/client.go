package flac

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"flacify/internal/logging"
)

var commandContext = exec.CommandContext

// DefaultCompressionLevel is the codec's maximum compression preset.
const DefaultCompressionLevel = 8

// Client defines FLAC encoding behaviour.
type Client interface {
	Encode(ctx context.Context, sourcePath, artifactPath string) error
}

// ConversionError reports a codec run that exited unsuccessfully.
type ConversionError struct {
	Source     string
	Diagnostic string
	Err        error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("flac conversion of %s failed", e.Source)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Diagnostic != "" {
		msg += " (" + e.Diagnostic + ")"
	}
	return msg
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithCompressionLevel sets the -0..-8 preset. Out-of-range values are ignored.
func WithCompressionLevel(level int) Option {
	return func(c *CLI) {
		if level >= 0 && level <= DefaultCompressionLevel {
			c.level = level
		}
	}
}

// WithLogger routes codec diagnostics to logger at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *CLI) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// CLI wraps the flac command-line encoder.
type CLI struct {
	binary string
	level  int
	logger *slog.Logger
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "flac", level: DefaultCompressionLevel, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Binary returns the executable the client launches.
func (c *CLI) Binary() string { return c.binary }

// Encode converts sourcePath into artifactPath. Foreign metadata chunks are
// carried across. On failure any partial artifact is removed and a
// *ConversionError carrying the codec's output is returned.
func (c *CLI) Encode(ctx context.Context, sourcePath, artifactPath string) error {
	if strings.TrimSpace(sourcePath) == "" {
		return errors.New("source path required")
	}
	if strings.TrimSpace(artifactPath) == "" {
		return errors.New("artifact path required")
	}

	args := []string{
		"-" + strconv.Itoa(c.level),
		"--keep-foreign-metadata",
		"--silent",
		"-o", artifactPath,
		sourcePath,
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	err := cmd.Run()
	diagnostic := strings.TrimSpace(output.String())
	if err != nil {
		if removeErr := os.Remove(artifactPath); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			logging.WarnWithContext(c.logger, "partial artifact not removed", "partial_artifact_left",
				logging.String("artifact", artifactPath),
				logging.Error(removeErr),
				logging.String(logging.FieldErrorHint, "delete the artifact before re-running"),
				logging.String(logging.FieldImpact, "the file will be skipped on the next run"),
			)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return &ConversionError{Source: sourcePath, Diagnostic: diagnostic, Err: err}
	}

	if diagnostic != "" {
		c.logger.Debug("flac diagnostics",
			logging.String("source", sourcePath),
			logging.String("output", diagnostic),
		)
	}
	return nil
}

var _ Client = (*CLI)(nil)
