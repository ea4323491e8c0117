package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"flacify/internal/config"
	"flacify/internal/runlock"
	"flacify/internal/services"
	"flacify/internal/testsupport"
)

type cliTestEnv struct {
	cfg       *config.Config
	root      string
	trashRoot string
}

func setupCLITestEnv(t *testing.T, codec string) *cliTestEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FLACIFY_LOG_FILE", "")
	t.Setenv("FLACIFY_VOLUME_ROOTS", "")
	t.Setenv("FLACIFY_CODEC", "")

	cfg := testsupport.NewConfig(t, testsupport.WithFakeCodec(codec))
	volume := testsupport.VolumeRoot(cfg)
	env := &cliTestEnv{
		cfg:       cfg,
		root:      filepath.Join(volume, "music"),
		trashRoot: filepath.Join(volume, "#recycle"),
	}
	testsupport.MkdirAll(t, env.root)
	testsupport.MkdirAll(t, env.trashRoot)
	return env
}

func (e *cliTestEnv) flags() []string {
	return []string{
		"--codec", e.cfg.Codec.Binary,
		"--log-file", e.cfg.Logging.File,
		"--volume-root", testsupport.VolumeRoot(e.cfg),
	}
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCLIDryRunLeavesSourcesInPlace(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.CodecShrinks)
	source := filepath.Join(env.root, "Artist", "01 Intro.wav")
	testsupport.WriteFile(t, source, 8192)

	stdout, _, err := runCLI(t, append(env.flags(), env.root)...)
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if _, err := os.Stat(source); err != nil {
		t.Fatalf("dry run moved the source: %v", err)
	}
	if _, err := os.Stat(source + ".flac"); !os.IsNotExist(err) {
		t.Fatalf("dry run left an artifact, stat err=%v", err)
	}
	for _, want := range []string{"run started", "Run summary", "dry-run", "Would move to trash"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in output:\n%s", want, stdout)
		}
	}

	logData, err := os.ReadFile(env.cfg.Logging.File)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(logData), "dry run: would move source to trash") {
		t.Fatalf("expected would-move decision in log:\n%s", logData)
	}
}

func TestCLIRealRunMovesSourceToTrash(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.CodecShrinks)
	source := filepath.Join(env.root, "02.aiff")
	testsupport.WriteFile(t, source, 8192)

	stdout, _, err := runCLI(t, append(env.flags(), "--no-dry-run", "-q", "-j", "2", env.root)...)
	if err != nil {
		t.Fatalf("real run failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.trashRoot, "02.aiff")); err != nil {
		t.Fatalf("expected source in trash: %v", err)
	}
	if _, err := os.Stat(source + ".flac"); err != nil {
		t.Fatalf("expected artifact to remain: %v", err)
	}
	if strings.Contains(stdout, "run started") {
		t.Fatalf("quiet run mirrored log lines:\n%s", stdout)
	}
	if !strings.Contains(stdout, "Moved to trash") {
		t.Fatalf("expected summary table, got:\n%s", stdout)
	}
}

func TestCLIConversionFailureStillExitsZero(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.CodecFails)
	source := filepath.Join(env.root, "bad.wav")
	testsupport.WriteFile(t, source, 1024)

	stdout, _, err := runCLI(t, append(env.flags(), "-n", "-q", env.root)...)
	if err != nil {
		t.Fatalf("per-file failure must not fail the run: %v", err)
	}
	if !strings.Contains(stdout, "need attention") {
		t.Fatalf("expected failure notice in summary:\n%s", stdout)
	}
	if _, err := os.Stat(source); err != nil {
		t.Fatalf("failed source must stay: %v", err)
	}
	if _, err := os.Stat(source + ".flac"); !os.IsNotExist(err) {
		t.Fatalf("partial artifact must be removed, stat err=%v", err)
	}
}

func TestCLIMissingRootIsSetupError(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.CodecShrinks)
	_, _, err := runCLI(t, append(env.flags(), filepath.Join(env.root, "missing"))...)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Scan root") {
		t.Fatalf("expected scan root detail, got %v", err)
	}
}

func TestCLIMissingCodecIsSetupError(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.CodecShrinks)
	testsupport.WriteFile(t, filepath.Join(env.root, "a.wav"), 64)
	args := []string{
		"--codec", filepath.Join(t.TempDir(), "no-such-flac"),
		"--log-file", env.cfg.Logging.File,
		"--volume-root", testsupport.VolumeRoot(env.cfg),
		env.root,
	}
	_, _, err := runCLI(t, args...)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(env.root, "a.wav.flac")); !os.IsNotExist(statErr) {
		t.Fatal("no file may be touched when setup fails")
	}
}

func TestCLIRejectsBadCompressionLevel(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.CodecShrinks)
	_, _, err := runCLI(t, append(env.flags(), "--compression", "11", env.root)...)
	if err == nil || !strings.Contains(err.Error(), "compression_level") {
		t.Fatalf("expected compression validation error, got %v", err)
	}
}

func TestCLIRejectsBadLogFormat(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.CodecShrinks)
	source := filepath.Join(env.root, "a.wav")
	testsupport.WriteFile(t, source, 64)

	_, _, err := runCLI(t, append(env.flags(), "--log-format", "xml", env.root)...)
	if err == nil || !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("expected log format validation error, got %v", err)
	}
	if _, statErr := os.Stat(source + ".flac"); !os.IsNotExist(statErr) {
		t.Fatal("no file may be touched when a flag is rejected")
	}
}

func TestCLIRefusesConcurrentRunSharingLog(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.CodecShrinks)
	lock, err := runlock.Acquire(env.cfg.LockPath())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer lock.Release()

	_, _, err = runCLI(t, append(env.flags(), env.root)...)
	if !errors.Is(err, runlock.ErrHeld) {
		t.Fatalf("expected lock error, got %v", err)
	}
}

func TestCLIRequiresRootArgument(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.CodecShrinks)
	if _, _, err := runCLI(t, env.flags()...); err == nil {
		t.Fatal("expected error without a root directory")
	}
}

func TestDepsCommandReportsCodec(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.CodecShrinks)
	stdout, _, err := runCLI(t, append([]string{"deps"}, env.flags()...)...)
	if err != nil {
		t.Fatalf("deps failed: %v", err)
	}
	for _, want := range []string{"FLAC", "ready", env.cfg.Codec.Binary, "all required binaries found"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in deps output:\n%s", want, stdout)
		}
	}
}

func TestDepsCommandFailsWhenCodecMissing(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.CodecShrinks)
	stdout, _, err := runCLI(t, "deps", "--codec", "definitely-not-flac", "--log-file", env.cfg.Logging.File)
	if err == nil || !strings.Contains(err.Error(), "FLAC") {
		t.Fatalf("expected missing dependency error, got %v", err)
	}
	if !strings.Contains(stdout, "missing") {
		t.Fatalf("expected missing status in table:\n%s", stdout)
	}
}

func TestConfigCommandPrintsEffectiveTOML(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.CodecShrinks)
	stdout, _, err := runCLI(t, append([]string{"config", "--preserve-structure", "--trash-name", ".Trash"}, env.flags()...)...)
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	for _, want := range []string{"[trash]", ".Trash", "preserve_structure = true", "dry_run = true", env.cfg.Logging.File} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in config output:\n%s", want, stdout)
		}
	}
}
