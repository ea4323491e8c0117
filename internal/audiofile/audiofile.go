// Package audiofile decides which paths are convertible sources and derives
// the FLAC artifact path for each.
package audiofile

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
)

// ArtifactExt is appended to the full source filename to name the artifact.
const ArtifactExt = ".flac"

// Format identifies the container of an uncompressed source.
type Format string

const (
	FormatWAV  Format = "wav"
	FormatAIFF Format = "aiff"
)

var sourceExtensions = map[string]Format{
	"wav":  FormatWAV,
	"aif":  FormatAIFF,
	"aiff": FormatAIFF,
}

// SourceFile is an uncompressed audio file eligible for conversion.
type SourceFile struct {
	Path string
	// Ext is the extension as it appears on disk, without the dot.
	Ext    string
	Format Format
}

// ArtifactPath returns the conversion target for this source.
func (s SourceFile) ArtifactPath() string {
	return ArtifactPath(s.Path)
}

// Classify reports whether path names a convertible source. Extension
// matching is case-insensitive. AppleDouble companions (`._name.wav`) are
// resource forks rather than audio and are rejected.
func Classify(path string) (SourceFile, bool) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "._") {
		return SourceFile{}, false
	}
	ext := filepath.Ext(base)
	if ext == "" || ext == base {
		return SourceFile{}, false
	}
	raw := ext[1:]
	// Casers carry state, so each call folds with its own.
	format, ok := sourceExtensions[cases.Fold().String(raw)]
	if !ok {
		return SourceFile{}, false
	}
	return SourceFile{Path: path, Ext: raw, Format: format}, true
}

// HasSourceExtension reports whether name carries a recognized source
// extension, ignoring case.
func HasSourceExtension(name string) bool {
	_, ok := Classify(name)
	return ok
}

// ArtifactPath appends the FLAC extension to the full source filename so the
// original extension survives: `Track 01.AIFF` becomes `Track 01.AIFF.flac`.
func ArtifactPath(sourcePath string) string {
	return sourcePath + ArtifactExt
}

// SourceFromArtifact recovers the source path from an artifact path. It
// reports false when artifactPath does not end in the FLAC extension.
func SourceFromArtifact(artifactPath string) (string, bool) {
	if !strings.HasSuffix(artifactPath, ArtifactExt) {
		return "", false
	}
	source := strings.TrimSuffix(artifactPath, ArtifactExt)
	if source == "" || strings.HasSuffix(source, string(filepath.Separator)) {
		return "", false
	}
	return source, true
}
