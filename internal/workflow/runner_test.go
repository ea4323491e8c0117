package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"flacify/internal/logging"
	"flacify/internal/services"
	"flacify/internal/services/flac"
	"flacify/internal/testsupport"
	"flacify/internal/workflow"
)

func newRunner(t *testing.T, codec flac.Client, opts ...testsupport.ConfigOption) (*workflow.Runner, string, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	root, trashRoot := musicRoot(t, cfg)
	if codec == nil {
		codec = flac.NewCLI(flac.WithBinary(cfg.Codec.Binary), flac.WithLogger(logging.NewNop()))
	}
	runner, err := workflow.NewRunner(cfg, codec, logging.NewNop())
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return runner, root, trashRoot
}

func TestDryRunLeavesFilesystemUnchanged(t *testing.T) {
	runner, root, trashRoot := newRunner(t, nil, testsupport.WithFakeCodec(testsupport.CodecShrinks))
	testsupport.WriteFile(t, filepath.Join(root, "Album", "01.wav"), 2048)
	testsupport.WriteFile(t, filepath.Join(root, "Album", "02.aif"), 2048)
	testsupport.WriteFile(t, filepath.Join(root, "Album", "cover.jpg"), 512)
	volume := filepath.Dir(root)
	before := snapshot(t, volume)

	summary, err := runner.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	after := snapshot(t, volume)
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("dry run changed the filesystem:\nbefore %v\nafter  %v", sortedKeys(before), sortedKeys(after))
	}
	if !summary.DryRun || summary.Discovered != 2 || summary.Processed != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.WouldMove != 2 || summary.DryRunDiscarded != 2 || summary.Converted != 2 {
		t.Fatalf("expected two would-move previews, got %+v", summary)
	}
	if summary.BytesSaved != 2*(2048-4) {
		t.Fatalf("unexpected bytes saved: %d", summary.BytesSaved)
	}
	if entries, _ := os.ReadDir(trashRoot); len(entries) != 0 {
		t.Fatalf("dry run must not populate the trash, found %d entries", len(entries))
	}
}

func TestRealRunMovesSourcesAndIsIdempotent(t *testing.T) {
	runner, root, trashRoot := newRunner(t, nil,
		testsupport.WithFakeCodec(testsupport.CodecShrinks),
		testsupport.WithRealMode(),
	)
	wav := filepath.Join(root, "a.wav")
	aiff := filepath.Join(root, "Disc 2", "b.aiff")
	testsupport.WriteFile(t, wav, 4096)
	testsupport.WriteFile(t, aiff, 4096)

	first, err := runner.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.MovedToTrash != 2 || first.Failures() != 0 {
		t.Fatalf("expected both sources moved, got %+v", first)
	}
	for _, source := range []string{wav, aiff} {
		if _, err := os.Stat(source); !os.IsNotExist(err) {
			t.Fatalf("expected %s to leave its directory, stat err=%v", source, err)
		}
		if _, err := os.Stat(source + ".flac"); err != nil {
			t.Fatalf("expected artifact beside %s: %v", source, err)
		}
		if _, err := os.Stat(filepath.Join(trashRoot, filepath.Base(source))); err != nil {
			t.Fatalf("expected %s in trash: %v", filepath.Base(source), err)
		}
	}

	trashBefore := snapshot(t, trashRoot)
	second, err := runner.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Discovered != 0 || second.Processed != 0 {
		t.Fatalf("expected nothing left to process, got %+v", second)
	}
	if !reflect.DeepEqual(trashBefore, snapshot(t, trashRoot)) {
		t.Fatal("second run changed the trash")
	}
}

func TestRealRunSkipsSourcesWithArtifacts(t *testing.T) {
	codec := &fakeCodec{}
	runner, root, _ := newRunner(t, codec, testsupport.WithRealMode())
	source := filepath.Join(root, "kept.wav")
	testsupport.WriteFile(t, source, 100)
	testsupport.WriteFile(t, source+".flac", 10)

	summary, err := runner.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.SkippedExisting != 1 || codec.callCount() != 0 {
		t.Fatalf("expected skip without conversion, got %+v calls=%d", summary, codec.callCount())
	}
	if _, err := os.Stat(source); err != nil {
		t.Fatalf("skipped source must stay in place: %v", err)
	}
}

func TestRunKeepsBothWhenArtifactIsLarger(t *testing.T) {
	codec := &fakeCodec{grow: map[string]bool{"tiny.wav": true}}
	runner, root, trashRoot := newRunner(t, codec, testsupport.WithRealMode())
	source := filepath.Join(root, "tiny.wav")
	testsupport.WriteFile(t, source, 64)

	summary, err := runner.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Kept != 1 || summary.MovedToTrash != 0 {
		t.Fatalf("expected keep-both, got %+v", summary)
	}
	if _, err := os.Stat(source); err != nil {
		t.Fatalf("source must be kept: %v", err)
	}
	if _, err := os.Stat(source + ".flac"); err != nil {
		t.Fatalf("artifact must be kept: %v", err)
	}
	if entries, _ := os.ReadDir(trashRoot); len(entries) != 0 {
		t.Fatal("nothing should reach the trash")
	}
}

func TestRunIsolatesPerFileFailures(t *testing.T) {
	codec := &fakeCodec{fail: map[string]bool{"02.wav": true}}
	runner, root, trashRoot := newRunner(t, codec, testsupport.WithRealMode(), testsupport.WithConcurrency(1))
	for _, name := range []string{"01.wav", "02.wav", "03.wav"} {
		testsupport.WriteFile(t, filepath.Join(root, name), 1024)
	}

	summary, err := runner.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("per-file failures must not fail the run: %v", err)
	}
	if summary.Processed != 3 || summary.FailedConversion != 1 || summary.MovedToTrash != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(root, "02.wav")); err != nil {
		t.Fatalf("failed source must stay in place: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "02.wav.flac")); !os.IsNotExist(err) {
		t.Fatalf("failed conversion must not leave an artifact, stat err=%v", err)
	}
	for _, name := range []string{"01.wav", "03.wav"} {
		if _, err := os.Stat(filepath.Join(trashRoot, name)); err != nil {
			t.Fatalf("expected %s in trash: %v", name, err)
		}
	}
}

func TestRunCountsEveryFileUnderConcurrency(t *testing.T) {
	const workers = 4
	const files = 25
	codec := &fakeCodec{fail: map[string]bool{"track-07.wav": true}}
	runner, root, _ := newRunner(t, codec, testsupport.WithConcurrency(workers))
	for i := range files {
		testsupport.WriteFile(t, filepath.Join(root, fmt.Sprintf("disc-%d", i%3), fmt.Sprintf("track-%02d.wav", i)), 256)
	}
	testsupport.WriteFile(t, filepath.Join(root, "disc-0", "track-00.wav.flac"), 8)

	summary, err := runner.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Processed != files || summary.TerminalTotal() != files {
		t.Fatalf("expected %d terminal outcomes, got processed=%d total=%d", files, summary.Processed, summary.TerminalTotal())
	}
	if summary.SkippedExisting != 1 || summary.FailedConversion != 1 || summary.WouldMove != files-2 {
		t.Fatalf("unexpected partition: %+v", summary)
	}
	if got := codec.maxActive.Load(); got > workers {
		t.Fatalf("concurrency limit exceeded: %d > %d", got, workers)
	}
}

func TestRunSkipsTrashDirectoryContents(t *testing.T) {
	codec := &fakeCodec{}
	runner, root, _ := newRunner(t, codec)
	testsupport.WriteFile(t, filepath.Join(root, "#recycle", "old.wav"), 64)
	testsupport.WriteFile(t, filepath.Join(root, "new.wav"), 64)

	summary, err := runner.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Discovered != 1 || codec.callCount() != 1 {
		t.Fatalf("expected only new.wav to be processed, got %+v", summary)
	}
}

func TestRunMissingRootFails(t *testing.T) {
	runner, root, _ := newRunner(t, &fakeCodec{})
	_, err := runner.Run(context.Background(), filepath.Join(root, "missing"))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRunCancelledBeforeStartReportsInterrupted(t *testing.T) {
	codec := &fakeCodec{}
	runner, root, _ := newRunner(t, codec)
	testsupport.WriteFile(t, filepath.Join(root, "a.wav"), 64)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary, err := runner.Run(ctx, root)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if !summary.Interrupted || codec.callCount() != 0 {
		t.Fatalf("expected interrupted run without conversions, got %+v", summary)
	}
}

func TestNewRunnerRequiresCodec(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := workflow.NewRunner(cfg, nil, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRunSeesTrashCreatedAfterEarlierRun(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithRealMode())
	volume := testsupport.VolumeRoot(cfg)
	root := filepath.Join(volume, "music")
	source := filepath.Join(root, "late.wav")
	testsupport.WriteFile(t, source, 1024)

	runner, err := workflow.NewRunner(cfg, &fakeCodec{}, logging.NewNop())
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	first, err := runner.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.DisposalFailed != 1 {
		t.Fatalf("expected trash to be unavailable, got %+v", first)
	}

	trashRoot := filepath.Join(volume, cfg.Trash.DirName)
	testsupport.MkdirAll(t, trashRoot)
	if err := os.Remove(source + ".flac"); err != nil {
		t.Fatalf("remove artifact: %v", err)
	}

	second, err := runner.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.MovedToTrash != 1 {
		t.Fatalf("expected the new trash directory to be used, got %+v", second)
	}
	if _, err := os.Stat(filepath.Join(trashRoot, "late.wav")); err != nil {
		t.Fatalf("expected source in trash: %v", err)
	}
}
