package trash

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"flacify/internal/fileutil"
)

const maxNameAttempts = 10000

// Mover relocates files into a trash root.
type Mover struct {
	preserveStructure bool

	mu       sync.Mutex
	reserved map[string]struct{}
}

// NewMover returns a Mover. With preserveStructure the source's directory
// relative to the scan root is recreated beneath the trash root; otherwise
// files land flat in the trash root.
func NewMover(preserveStructure bool) *Mover {
	return &Mover{preserveStructure: preserveStructure, reserved: make(map[string]struct{})}
}

// Destination previews where source would land without reserving a name.
func (m *Mover) Destination(source, trashRoot, relDir string) string {
	return filepath.Join(m.targetDir(trashRoot, relDir), filepath.Base(source))
}

// Move relocates source into trashRoot and returns the final path. An
// occupied name gets a -N suffix before the extension. The source is removed
// only once the file is in place.
func (m *Mover) Move(source, trashRoot, relDir string) (string, error) {
	dir := m.targetDir(trashRoot, relDir)
	if dir != trashRoot {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create trash subdirectory: %w", err)
		}
	}

	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		dest, err := m.reserve(dir, filepath.Base(source))
		if err != nil {
			return "", err
		}
		err = fileutil.MoveFile(source, dest)
		m.release(dest)
		if err == nil {
			return dest, nil
		}
		if errors.Is(err, os.ErrExist) {
			continue
		}
		return "", err
	}
	return "", fmt.Errorf("exhausted trash filename slots in %s", dir)
}

func (m *Mover) targetDir(trashRoot, relDir string) string {
	if !m.preserveStructure {
		return trashRoot
	}
	rel := filepath.Clean(relDir)
	if rel == "." || rel == "" || filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return trashRoot
	}
	return filepath.Join(trashRoot, rel)
}

// reserve claims the first free name for base in dir, where free means
// neither on disk nor reserved by a concurrent Move.
func (m *Mover) reserve(dir, base string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name := base
		if attempt > 0 {
			name = fmt.Sprintf("%s-%d%s", stem, attempt, ext)
		}
		candidate := filepath.Join(dir, name)
		if _, taken := m.reserved[candidate]; taken {
			continue
		}
		if _, err := os.Lstat(candidate); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		m.reserved[candidate] = struct{}{}
		return candidate, nil
	}
	return "", fmt.Errorf("exhausted trash filename slots in %s", dir)
}

func (m *Mover) release(path string) {
	m.mu.Lock()
	delete(m.reserved, path)
	m.mu.Unlock()
}
