package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"flacify/internal/config"
	"flacify/internal/logging"
	"flacify/internal/reconcile"
	"flacify/internal/scan"
	"flacify/internal/services"
	"flacify/internal/services/flac"
	"flacify/internal/trash"
)

// Runner converts every source beneath a root directory.
type Runner struct {
	cfg    *config.Config
	codec  flac.Client
	logger *slog.Logger
	newID  func() string
}

// NewRunner builds a Runner from the effective configuration.
func NewRunner(cfg *config.Config, codec flac.Client, logger *slog.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "runner", "init", "config required", nil)
	}
	if codec == nil {
		return nil, services.Wrap(services.ErrConfiguration, "runner", "init", "codec client required", nil)
	}
	if _, err := newLocator(cfg); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		cfg:    cfg,
		codec:  codec,
		logger: logger,
		newID:  uuid.NewString,
	}, nil
}

// newLocator builds a Locator with an empty cache so each run sees trash
// directories created since the previous one.
func newLocator(cfg *config.Config) (*trash.Locator, error) {
	locator, err := trash.NewLocator(cfg.Trash.DirName, cfg.Trash.VolumeRoots, cfg.Trash.CacheSize)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "runner", "init", "trash locator", err)
	}
	return locator, nil
}

// Run enumerates root and processes each source with bounded concurrency.
// Per-file failures are counted, never returned. The error is non-nil only
// when enumeration fails or ctx is cancelled; the Summary still reports the
// work completed before that.
func (r *Runner) Run(ctx context.Context, root string) (Summary, error) {
	start := time.Now()
	summary := Summary{RunID: r.newID(), DryRun: r.cfg.Workflow.DryRun}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return summary, services.Wrap(services.ErrValidation, "runner", "resolve root", root, err)
	}
	summary.Root = absRoot

	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(r.logger, "runner"))

	mode := "dry-run"
	if !summary.DryRun {
		mode = "real"
	}
	logger.Info("run started",
		logging.String("root", absRoot),
		logging.String("mode", mode),
		logging.Int("concurrency", r.cfg.Workflow.Concurrency),
		logging.String("trash_name", r.cfg.Trash.DirName),
		logging.Bool("preserve_structure", r.cfg.Trash.PreserveStructure),
	)

	locator, err := newLocator(r.cfg)
	if err != nil {
		summary.Duration = time.Since(start)
		return summary, err
	}

	sources, err := scan.Sources(ctx, absRoot, scan.Options{
		SkipDirs: []string{locator.Sentinel()},
		OnError: func(path string, err error) {
			logging.WarnWithContext(logger, "unreadable path skipped during scan", "scan_entry_unreadable",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on the directory"),
				logging.String(logging.FieldImpact, "files below this path were not processed"),
			)
		},
	})
	if err != nil {
		summary.Duration = time.Since(start)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			summary.Interrupted = true
			return summary, err
		}
		return summary, services.Wrap(services.ErrValidation, "runner", "enumerate", absRoot, err)
	}
	summary.Discovered = int64(len(sources))
	logger.Info("sources discovered", logging.Int("count", len(sources)))

	reconciler := reconcile.New(
		reconcile.Options{DryRun: summary.DryRun, ScanRoot: absRoot},
		locator,
		trash.NewMover(r.cfg.Trash.PreserveStructure),
		r.logger,
	)
	fw := NewFileWorkflow(r.codec, reconciler, r.logger)

	var counts tally
	var g errgroup.Group
	g.SetLimit(r.cfg.Workflow.Concurrency)
	total := len(sources)
	for _, path := range sources {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			out := fw.Process(ctx, path)
			done := counts.record(out)
			logger.Info("file finished",
				logging.String(logging.FieldSource, path),
				logging.String("result", string(out.Tally())),
				logging.String("progress", fmt.Sprintf("%d/%d", done, total)),
				logging.Duration("elapsed", out.Duration),
			)
			return nil
		})
	}
	_ = g.Wait()

	counts.fill(&summary)
	summary.Duration = time.Since(start)
	summary.Interrupted = ctx.Err() != nil
	r.logSummary(logger, summary)

	if summary.Interrupted {
		return summary, ctx.Err()
	}
	return summary, nil
}

func (r *Runner) logSummary(logger *slog.Logger, s Summary) {
	attrs := []logging.Attr{
		logging.Int64("discovered", s.Discovered),
		logging.Int64("processed", s.Processed),
		logging.Int64("converted", s.Converted),
		logging.Int64("skipped_existing", s.SkippedExisting),
		logging.Int64("failed_conversion", s.FailedConversion),
		logging.Int64("failed_size", s.FailedSize),
		logging.Int64("moved_to_trash", s.MovedToTrash),
		logging.Int64("disposal_failed", s.DisposalFailed),
		logging.Int64("would_move", s.WouldMove),
		logging.Int64("kept", s.Kept),
		logging.Int64("dry_run_discarded", s.DryRunDiscarded),
		logging.Bytes("bytes_saved", s.BytesSaved),
		logging.Duration("duration", s.Duration.Round(time.Millisecond)),
	}
	if s.SkippedUnsupported > 0 {
		attrs = append(attrs, logging.Int64("skipped_unsupported", s.SkippedUnsupported))
	}
	if s.Interrupted {
		logging.WarnWithContext(logger, "run interrupted", "run_interrupted", append(attrs,
			logging.String(logging.FieldErrorHint, "re-run to process the remaining files"),
			logging.String(logging.FieldImpact, "files after the interruption were not processed"),
		)...)
		return
	}
	logger.Info("run finished", logging.Args(attrs...)...)
}
