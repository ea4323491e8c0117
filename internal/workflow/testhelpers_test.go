package workflow_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"flacify/internal/config"
	"flacify/internal/services/flac"
	"flacify/internal/testsupport"
)

// fakeCodec writes an artifact sized relative to its source, or fails for
// sources whose base name is listed in fail.
type fakeCodec struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
	grow  map[string]bool
	// noOutput reports success without writing anything.
	noOutput bool
	delay    time.Duration

	active    atomic.Int64
	maxActive atomic.Int64
}

func (f *fakeCodec) Encode(ctx context.Context, source, artifact string) error {
	cur := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		seen := f.maxActive.Load()
		if cur <= seen || f.maxActive.CompareAndSwap(seen, cur) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, source)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return &flac.ConversionError{Source: source, Err: ctx.Err()}
		}
	}
	base := filepath.Base(source)
	if f.fail[base] {
		return &flac.ConversionError{Source: source, Diagnostic: "ERROR: bad header", Err: errors.New("exit status 1")}
	}
	if f.noOutput {
		return nil
	}
	info, err := os.Stat(source)
	if err != nil {
		return err
	}
	size := info.Size() / 2
	if f.grow[base] {
		size = info.Size() * 2
	}
	return os.WriteFile(artifact, make([]byte, size), 0o644)
}

func (f *fakeCodec) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// musicRoot returns the scan root inside the config's volume, with the
// volume's trash directory created.
func musicRoot(t *testing.T, cfg *config.Config) (root, trashRoot string) {
	t.Helper()
	volume := testsupport.VolumeRoot(cfg)
	trashRoot = filepath.Join(volume, cfg.Trash.DirName)
	testsupport.MkdirAll(t, trashRoot)
	root = filepath.Join(volume, "music")
	testsupport.MkdirAll(t, root)
	return root, trashRoot
}

// snapshot maps every regular file beneath dir to its size.
func snapshot(t *testing.T, dir string) map[string]int64 {
	t.Helper()
	files := make(map[string]int64)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			files[path] = info.Size()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("snapshot %s: %v", dir, err)
	}
	return files
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
