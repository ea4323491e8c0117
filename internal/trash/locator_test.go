package trash

import (
	"os"
	"path/filepath"
	"testing"
)

func mkdir(t *testing.T, path string) string {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	return path
}

func newTestLocator(t *testing.T, roots ...string) *Locator {
	t.Helper()
	loc, err := NewLocator("#recycle", roots, 16)
	if err != nil {
		t.Fatalf("NewLocator: %v", err)
	}
	return loc
}

func TestLocateNearestAncestorWins(t *testing.T) {
	base := t.TempDir()
	volume := filepath.Join(base, "volume1")
	mkdir(t, filepath.Join(volume, "#recycle"))
	nearer := mkdir(t, filepath.Join(volume, "music", "#recycle"))
	album := mkdir(t, filepath.Join(volume, "music", "album"))

	loc := newTestLocator(t, volume)
	got, ok := loc.Locate(filepath.Join(album, "track.wav"))
	if !ok || got != nearer {
		t.Fatalf("expected nearest ancestor %q, got %q (ok=%v)", nearer, got, ok)
	}
}

func TestLocateUpwardBeatsFallback(t *testing.T) {
	base := t.TempDir()
	volume := filepath.Join(base, "volume1")
	mkdir(t, filepath.Join(volume, "#recycle"))
	share := filepath.Join(base, "share")
	ancestor := mkdir(t, filepath.Join(share, "#recycle"))
	mkdir(t, filepath.Join(share, "a", "b"))

	loc := newTestLocator(t, volume)
	got, ok := loc.Locate(filepath.Join(share, "a", "b", "x.aiff"))
	if !ok || got != ancestor {
		t.Fatalf("expected ancestor trash %q, got %q (ok=%v)", ancestor, got, ok)
	}
}

func TestLocateFallbackOrder(t *testing.T) {
	base := t.TempDir()
	first := filepath.Join(base, "volume1")
	second := filepath.Join(base, "volume2")
	backup := mkdir(t, filepath.Join(first, "backup", "#recycle"))
	mkdir(t, filepath.Join(second, "#recycle"))
	elsewhere := mkdir(t, filepath.Join(base, "elsewhere"))

	loc := newTestLocator(t, first, second)
	got, ok := loc.Locate(filepath.Join(elsewhere, "x.wav"))
	if !ok || got != backup {
		t.Fatalf("expected first volume backup trash %q, got %q (ok=%v)", backup, got, ok)
	}

	mainTrash := mkdir(t, filepath.Join(first, "#recycle"))
	loc = newTestLocator(t, first, second)
	got, ok = loc.Locate(filepath.Join(elsewhere, "x.wav"))
	if !ok || got != mainTrash {
		t.Fatalf("expected main trash %q before backup, got %q (ok=%v)", mainTrash, got, ok)
	}
}

func TestLocateNoneFound(t *testing.T) {
	base := t.TempDir()
	loc := newTestLocator(t, filepath.Join(base, "volume1"), filepath.Join(base, "volume2"))
	if got, ok := loc.Locate(filepath.Join(base, "music", "x.wav")); ok {
		t.Fatalf("expected no trash, got %q", got)
	}
}

func TestLocateIgnoresSentinelFile(t *testing.T) {
	base := t.TempDir()
	volume := mkdir(t, filepath.Join(base, "volume1"))
	if err := os.WriteFile(filepath.Join(volume, "#recycle"), []byte("not a dir"), 0o644); err != nil {
		t.Fatal(err)
	}
	loc := newTestLocator(t, volume)
	if got, ok := loc.Locate(filepath.Join(volume, "x.wav")); ok {
		t.Fatalf("expected sentinel file to be ignored, got %q", got)
	}
}

func TestLocateCachesUpwardSearchPerDirectory(t *testing.T) {
	loc := newTestLocator(t)
	calls := 0
	loc.isDir = func(path string) bool {
		calls++
		return path == filepath.Join("/volume9", "#recycle")
	}

	dir := filepath.Join("/volume9", "music", "album")
	for _, name := range []string{"a.wav", "b.wav", "c.wav"} {
		got, ok := loc.Locate(filepath.Join(dir, name))
		if !ok || got != filepath.Join("/volume9", "#recycle") {
			t.Fatalf("unexpected result %q %v", got, ok)
		}
	}
	// album, music, volume9: three probes for the first file only.
	if calls != 3 {
		t.Fatalf("expected cached lookups after the first file, got %d probes", calls)
	}
}

func TestNewLocatorRejectsBadSentinel(t *testing.T) {
	if _, err := NewLocator("", nil, 0); err == nil {
		t.Fatal("expected error for empty sentinel")
	}
	if _, err := NewLocator("a/b", nil, 0); err == nil {
		t.Fatal("expected error for nested sentinel")
	}
}

func TestFallbackCandidates(t *testing.T) {
	loc := newTestLocator(t, "/volume1", "/volume2")
	want := []string{"/volume1/#recycle", "/volume1/backup/#recycle", "/volume2/#recycle", "/volume2/backup/#recycle"}
	got := loc.FallbackCandidates()
	if len(got) != len(want) {
		t.Fatalf("unexpected candidates %v", got)
	}
	for i := range want {
		if got[i] != filepath.FromSlash(want[i]) {
			t.Fatalf("candidate %d: got %q want %q", i, got[i], want[i])
		}
	}
}
