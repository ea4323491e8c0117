// Package scan enumerates convertible sources beneath a root directory.
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"flacify/internal/audiofile"
)

// synologyMetadataDir holds thumbnails and extended attributes, never audio.
const synologyMetadataDir = "@eaDir"

// Options tunes enumeration.
type Options struct {
	// SkipDirs names directories (by base name) that are never descended,
	// typically the trash sentinel.
	SkipDirs []string
	// OnError receives unreadable entries below the root. Those entries are
	// skipped; a nil OnError ignores them silently.
	OnError func(path string, err error)
}

// Sources returns every convertible source below root, sorted by path. The
// list is fully materialized before it is returned. Only an unreadable root
// or cancellation is an error.
func Sources(ctx context.Context, root string, opts Options) ([]string, error) {
	root = filepath.Clean(root)
	skip := make(map[string]struct{}, len(opts.SkipDirs)+1)
	skip[synologyMetadataDir] = struct{}{}
	for _, name := range opts.SkipDirs {
		if name != "" {
			skip[name] = struct{}{}
		}
	}

	files := make([]string, 0, 128)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			if opts.OnError != nil {
				opts.OnError(path, walkErr)
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, ok := skip[d.Name()]; ok {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if audiofile.HasSourceExtension(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}
