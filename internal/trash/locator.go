package trash

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const backupDirName = "backup"

// Locator resolves the trash root for source files.
type Locator struct {
	sentinel    string
	volumeRoots []string
	// upward caches the ancestor-search result per source directory; an empty
	// value records that no ancestor holds the sentinel.
	upward *lru.Cache[string, string]
	isDir  func(string) bool
}

// NewLocator builds a Locator for the sentinel directory name. volumeRoots
// are tried in order after the ancestor search fails.
func NewLocator(sentinel string, volumeRoots []string, cacheSize int) (*Locator, error) {
	sentinel = strings.TrimSpace(sentinel)
	if sentinel == "" || strings.ContainsRune(sentinel, filepath.Separator) {
		return nil, fmt.Errorf("invalid trash sentinel %q", sentinel)
	}
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	cache, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("trash cache: %w", err)
	}
	return &Locator{
		sentinel:    sentinel,
		volumeRoots: append([]string(nil), volumeRoots...),
		upward:      cache,
		isDir:       isDirectory,
	}, nil
}

// Sentinel returns the trash directory name the locator searches for.
func (l *Locator) Sentinel() string { return l.sentinel }

// Locate returns the trash root for sourcePath, or false when none exists.
func (l *Locator) Locate(sourcePath string) (string, bool) {
	abs, err := filepath.Abs(sourcePath)
	if err != nil {
		return "", false
	}
	if root := l.searchUpward(filepath.Dir(abs)); root != "" {
		return root, true
	}
	for _, candidate := range l.FallbackCandidates() {
		if l.isDir(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// FallbackCandidates lists the fixed-order volume locations consulted when no
// ancestor holds the sentinel.
func (l *Locator) FallbackCandidates() []string {
	candidates := make([]string, 0, len(l.volumeRoots)*2)
	for _, root := range l.volumeRoots {
		candidates = append(candidates,
			filepath.Join(root, l.sentinel),
			filepath.Join(root, backupDirName, l.sentinel),
		)
	}
	return candidates
}

func (l *Locator) searchUpward(dir string) string {
	if cached, ok := l.upward.Get(dir); ok {
		return cached
	}
	found := ""
	for current := dir; ; {
		candidate := filepath.Join(current, l.sentinel)
		if l.isDir(candidate) {
			found = candidate
			break
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	l.upward.Add(dir, found)
	return found
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
