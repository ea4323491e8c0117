package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"flacify/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a finalized config rooted in a unique temp directory.
// The log file, the volume root, and the codec binary all live under that
// directory so tests never touch the real system.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Logging.File = filepath.Join(base, "logs", "flacify.log")
	cfgVal.Logging.Console = false
	cfgVal.Trash.VolumeRoots = []string{filepath.Join(base, "volume")}
	cfgVal.Codec.Binary = "flac"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Finalize(); err != nil {
		t.Fatalf("finalize test config: %v", err)
	}
	return builder.cfg
}

// WithRealMode disables dry-run on the test config.
func WithRealMode() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workflow.DryRun = false
	}
}

// WithConcurrency overrides the worker count.
func WithConcurrency(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workflow.Concurrency = n
	}
}

// WithStubbedBinaries writes stub executables that exit 0 for the provided
// names and prepends them to PATH. If names is empty, the codec is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"flac"}
		}
		for _, name := range names {
			writeStub(b, name, "exit 0\n")
		}
	}
}

// Codec behaviours for WithFakeCodec. Each script receives the real flac
// argument list and writes the file named by -o.
const (
	// CodecShrinks writes a 4-byte artifact, smaller than any fixture.
	CodecShrinks = `printf 'fLaC' > "$out"`
	// CodecGrows writes an artifact twice the size of the source.
	CodecGrows = `cat "$src" "$src" > "$out"`
	// CodecFails leaves a partial artifact and exits nonzero.
	CodecFails = `printf 'partial' > "$out"; echo "ERROR: input has an unsupported format" >&2; exit 1`
)

// WithFakeCodec installs a shell script named flac on PATH whose body is
// behaviour, with $src and $out bound to the source and -o target.
func WithFakeCodec(behaviour string) ConfigOption {
	return func(b *configBuilder) {
		body := `out=""
src=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; shift 2; continue; fi
  src="$1"
  shift
done
` + behaviour + "\n"
		writeStub(b, "flac", body)
	}
}

func writeStub(b *configBuilder, name, body string) {
	binDir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, name)
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		b.t.Fatalf("write stub %s: %v", name, err)
	}
	if name == "flac" {
		b.cfg.Codec.Binary = target
	}
	b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(filepath.Dir(cfg.Logging.File))
}

// VolumeRoot returns the single volume root NewConfig configures.
func VolumeRoot(cfg *config.Config) string {
	return cfg.Trash.VolumeRoots[0]
}
