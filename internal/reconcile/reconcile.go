// Package reconcile decides what happens to a source file once its FLAC
// artifact exists: the source goes to the trash when the artifact is
// strictly smaller, otherwise both stay. Dry runs measure the same decision,
// move nothing, and delete the artifact afterwards.
package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"flacify/internal/fileutil"
	"flacify/internal/logging"
	"flacify/internal/services"
)

// Disposition is the final fate of a converted source.
type Disposition string

const (
	MovedToTrash     Disposition = "moved_to_trash"
	TrashUnavailable Disposition = "trash_unavailable"
	MoveFailed       Disposition = "move_failed"
	WouldMove        Disposition = "would_move"
	KeptBoth         Disposition = "kept_both"
	SizeUnavailable  Disposition = "size_unavailable"
)

// Failed reports whether the disposition is a per-file error.
func (d Disposition) Failed() bool {
	switch d {
	case TrashUnavailable, MoveFailed, SizeUnavailable:
		return true
	default:
		return false
	}
}

// Locator finds the trash root for a source.
type Locator interface {
	Locate(sourcePath string) (string, bool)
}

// Mover relocates a source into a trash root.
type Mover interface {
	Destination(source, trashRoot, relDir string) string
	Move(source, trashRoot, relDir string) (string, error)
}

// Options configures a Reconciler for one run.
type Options struct {
	DryRun bool
	// ScanRoot anchors the relative directory mirrored under the trash root.
	ScanRoot string
}

// Result describes one reconciliation.
type Result struct {
	Disposition  Disposition
	SourceSize   int64
	ArtifactSize int64
	// SavedBytes is source minus artifact when the artifact is smaller, else 0.
	SavedBytes  int64
	Destination string
	// ArtifactDiscarded is set when a dry run deleted the artifact.
	ArtifactDiscarded bool
	Err               error
}

// Reconciler applies the disposal policy.
type Reconciler struct {
	opts    Options
	locator Locator
	mover   Mover
	logger  *slog.Logger
	remove  func(string) error
}

// New constructs a Reconciler.
func New(opts Options, locator Locator, mover Mover, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		opts:    opts,
		locator: locator,
		mover:   mover,
		logger:  logging.NewComponentLogger(logger, "reconcile"),
		remove:  os.Remove,
	}
}

// Reconcile compares the sizes of source and artifact and disposes of the
// source accordingly. The source is never removed unless the move into the
// trash completed.
func (r *Reconciler) Reconcile(ctx context.Context, source, artifact string) Result {
	logger := logging.WithContext(ctx, r.logger)
	result := r.decide(logger, source, artifact)
	if r.opts.DryRun {
		result.ArtifactDiscarded = r.discardArtifact(logger, artifact)
	}
	return result
}

func (r *Reconciler) decide(logger *slog.Logger, source, artifact string) Result {
	srcStat, err := fileutil.Stat(source)
	if err != nil {
		return r.sizeUnavailable(logger, "source", source, err)
	}
	artStat, err := fileutil.Stat(artifact)
	if err != nil {
		return r.sizeUnavailable(logger, "artifact", artifact, err)
	}

	result := Result{SourceSize: srcStat.Size, ArtifactSize: artStat.Size}
	if srcStat.Size <= artStat.Size {
		result.Disposition = KeptBoth
		logger.Info("artifact not smaller; keeping both files",
			logging.Args(append(logging.DecisionAttrs("disposal", "keep_both", "artifact_not_smaller"),
				logging.Bytes("source_size", srcStat.Size),
				logging.Bytes("artifact_size", artStat.Size),
			)...)...,
		)
		return result
	}
	result.SavedBytes = srcStat.Size - artStat.Size

	relDir := r.relativeDir(source)
	trashRoot, found := r.locator.Locate(source)

	if r.opts.DryRun {
		result.Disposition = WouldMove
		attrs := append(logging.DecisionAttrs("disposal", "would_move", "artifact_smaller"),
			logging.Bytes("saved", result.SavedBytes),
		)
		if found {
			result.Destination = r.mover.Destination(source, trashRoot, relDir)
			attrs = append(attrs, logging.String("destination", result.Destination))
		} else {
			attrs = append(attrs, logging.String("destination", "none (no trash directory found)"))
		}
		logger.Info("dry run: would move source to trash", logging.Args(attrs...)...)
		return result
	}

	if !found {
		result.Disposition = TrashUnavailable
		result.Err = services.Wrap(services.ErrNotFound, "reconciling", "locate trash", "no trash directory found", nil)
		logging.ErrorWithContext(logger, "no trash directory found; source left in place", "trash_unavailable",
			logging.Error(result.Err),
			logging.String(logging.FieldErrorHint, "create a trash directory on the volume or configure --volume-root"),
			logging.String(logging.FieldImpact, "source and artifact both remain"),
		)
		return result
	}

	dest, err := r.mover.Move(source, trashRoot, relDir)
	if err != nil {
		result.Disposition = MoveFailed
		result.Err = services.Wrap(services.ErrTransient, "reconciling", "move to trash", "", err)
		hint := services.ErrorHint(result.Err)
		var retained *fileutil.SourceRetainedError
		if errors.As(err, &retained) {
			result.Destination = retained.Dst
			hint = "a verified copy is already in the trash; delete the source manually"
		}
		logging.ErrorWithContext(logger, "move to trash failed; source left in place", "trash_move_failed",
			logging.Error(result.Err),
			logging.String("trash_root", trashRoot),
			logging.String(logging.FieldErrorHint, hint),
		)
		return result
	}

	result.Disposition = MovedToTrash
	result.Destination = dest
	logger.Info("moved source to trash",
		logging.Args(append(logging.DecisionAttrs("disposal", "moved_to_trash", "artifact_smaller"),
			logging.String("destination", dest),
			logging.Bytes("saved", result.SavedBytes),
		)...)...,
	)
	return result
}

func (r *Reconciler) sizeUnavailable(logger *slog.Logger, which, path string, err error) Result {
	marker := services.ErrTransient
	if errors.Is(err, os.ErrNotExist) {
		marker = services.ErrNotFound
	}
	wrapped := services.Wrap(marker, "reconciling", "stat "+which, path, err)
	logging.ErrorWithContext(logger, "cannot read file size; disposal skipped", "size_unavailable",
		logging.Error(wrapped),
		logging.String(logging.FieldErrorHint, services.ErrorHint(wrapped)),
	)
	return Result{Disposition: SizeUnavailable, Err: wrapped}
}

func (r *Reconciler) discardArtifact(logger *slog.Logger, artifact string) bool {
	if err := r.remove(artifact); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false
		}
		logging.WarnWithContext(logger, "dry run: could not delete artifact", "dry_run_cleanup_failed",
			logging.String("artifact", artifact),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the artifact manually"),
			logging.String(logging.FieldImpact, "the artifact survives the dry run and the file will be skipped next time"),
		)
		return false
	}
	logger.Debug("dry run: artifact discarded", logging.String("artifact", artifact))
	return true
}

func (r *Reconciler) relativeDir(source string) string {
	if strings.TrimSpace(r.opts.ScanRoot) == "" {
		return ""
	}
	rel, err := filepath.Rel(r.opts.ScanRoot, filepath.Dir(source))
	if err != nil {
		return ""
	}
	return rel
}
