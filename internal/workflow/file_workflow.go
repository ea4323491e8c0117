package workflow

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"flacify/internal/audiofile"
	"flacify/internal/fileutil"
	"flacify/internal/logging"
	"flacify/internal/reconcile"
	"flacify/internal/services"
	"flacify/internal/services/flac"
)

// Reconciler applies the disposal policy to a converted source.
type Reconciler interface {
	Reconcile(ctx context.Context, source, artifact string) reconcile.Result
}

// FileWorkflow runs one source file through the state machine.
type FileWorkflow struct {
	codec      flac.Client
	reconciler Reconciler
	logger     *slog.Logger

	copyTimes func(src, dst string) error
	probe     func(path string) (flac.StreamInfo, error)
}

// NewFileWorkflow wires a FileWorkflow.
func NewFileWorkflow(codec flac.Client, reconciler Reconciler, logger *slog.Logger) *FileWorkflow {
	return &FileWorkflow{
		codec:      codec,
		reconciler: reconciler,
		logger:     logging.NewComponentLogger(logger, "workflow"),
		copyTimes:  fileutil.CopyTimes,
		probe:      flac.ReadStreamInfo,
	}
}

// Process drives path from Discovered to a terminal state.
func (w *FileWorkflow) Process(ctx context.Context, path string) (out Outcome) {
	start := time.Now()
	ctx = services.WithSource(ctx, path)
	logger := logging.WithContext(ctx, w.logger)

	out = Outcome{Source: path}
	out.enter(StateDiscovered)
	defer func() { out.Duration = time.Since(start) }()

	out.enter(StateClassifying)
	src, ok := audiofile.Classify(path)
	if !ok {
		out.Skip = SkipUnsupported
		out.enter(StateSkip)
		logger.Debug("not a convertible source; skipping")
		return out
	}
	out.Artifact = src.ArtifactPath()

	if _, err := os.Lstat(out.Artifact); err == nil || !errors.Is(err, os.ErrNotExist) {
		out.Skip = SkipArtifactExists
		out.enter(StateSkip)
		attrs := []logging.Attr{
			logging.String("artifact", out.Artifact),
			logging.String(logging.FieldErrorHint, "delete the artifact to convert this file again"),
			logging.String(logging.FieldImpact, "file skipped; nothing was changed"),
		}
		if err != nil {
			attrs = append(attrs, logging.Error(err))
		}
		logging.WarnWithContext(logger, "artifact already exists; skipping", "artifact_exists", attrs...)
		return out
	}

	out.enter(StateConverting)
	convertCtx := services.WithStage(ctx, string(StateConverting))
	logging.WithContext(convertCtx, w.logger).Debug("converting", logging.String("artifact", out.Artifact))
	if err := w.codec.Encode(convertCtx, src.Path, out.Artifact); err != nil {
		return w.conversionFailed(logger, out, err)
	}
	if _, err := fileutil.Stat(out.Artifact); err != nil {
		return w.conversionFailed(logger, out, services.Wrap(services.ErrExternalTool, "converting", "verify artifact",
			"codec reported success but no artifact was written", err))
	}
	out.enter(StateConverted)
	w.afterConversion(logger, src.Path, out.Artifact)

	out.enter(StateReconciling)
	out.Reconcile = w.reconciler.Reconcile(services.WithStage(ctx, string(StateReconciling)), src.Path, out.Artifact)
	out.Err = out.Reconcile.Err
	out.enter(StateDone)
	return out
}

func (w *FileWorkflow) conversionFailed(logger *slog.Logger, out Outcome, err error) Outcome {
	var convErr *flac.ConversionError
	if errors.As(err, &convErr) {
		out.Diagnostic = convErr.Diagnostic
	}
	out.Err = services.Wrap(services.ErrExternalTool, "converting", "flac", "", err)
	out.enter(StateConversionFailed)

	attrs := []logging.Attr{
		logging.Error(out.Err),
		logging.String(logging.FieldErrorHint, services.ErrorHint(out.Err)),
	}
	if out.Diagnostic != "" {
		attrs = append(attrs, logging.String("diagnostic", out.Diagnostic))
	}
	logging.ErrorWithContext(logger, "conversion failed", "conversion_failed", attrs...)
	return out
}

// afterConversion carries the source timestamps over and records the
// artifact's stream parameters. Neither step can change the outcome.
func (w *FileWorkflow) afterConversion(logger *slog.Logger, source, artifact string) {
	if err := w.copyTimes(source, artifact); err != nil {
		logging.WarnWithContext(logger, "could not copy timestamps to artifact", "timestamp_copy_failed",
			logging.String("artifact", artifact),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check ownership of the artifact"),
			logging.String(logging.FieldImpact, "artifact carries the conversion time instead of the source time"),
		)
	}

	info, err := w.probe(artifact)
	if err != nil {
		logging.WarnWithContext(logger, "could not read artifact stream info", "streaminfo_unreadable",
			logging.String("artifact", artifact),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "verify the artifact with flac -t"),
			logging.String(logging.FieldImpact, "stream details missing from the log"),
		)
		return
	}
	logger.Debug("artifact stream info",
		logging.Int("sample_rate", info.SampleRate),
		logging.Int("channels", info.Channels),
		logging.Int("bits_per_sample", info.BitsPerSample),
		logging.Duration("duration", info.Duration()),
	)
}
