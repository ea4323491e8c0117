package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Codec contains settings for the external FLAC encoder.
type Codec struct {
	Binary           string `toml:"binary"`
	CompressionLevel int    `toml:"compression_level"`
}

// Trash contains settings for locating and filling trash directories.
type Trash struct {
	// DirName is the sentinel directory name searched for at every ancestor
	// of a source file and under each volume root.
	DirName string `toml:"dir_name"`
	// VolumeRoots are tested in order once the upward search finds nothing.
	// Each root contributes <root>/<dir_name> and <root>/backup/<dir_name>.
	VolumeRoots []string `toml:"volume_roots"`
	// PreserveStructure mirrors the source path relative to the scanned root
	// under the trash root instead of moving flat.
	PreserveStructure bool `toml:"preserve_structure"`
	// CacheSize bounds the per-directory lookup cache.
	CacheSize int `toml:"cache_size"`
}

// Workflow contains batch execution settings.
type Workflow struct {
	DryRun      bool `toml:"dry_run"`
	Concurrency int  `toml:"concurrency"`
}

// Logging contains configuration for log output.
type Logging struct {
	File    string `toml:"file"`
	Format  string `toml:"format"`
	Level   string `toml:"level"`
	Console bool   `toml:"console"`
}

// Config encapsulates all configuration values for flacify.
//
// There is no configuration file: values start from Default, are overridden
// by command-line flags and a small set of environment fallbacks, and are
// then normalized and validated once before a run starts.
type Config struct {
	Codec    Codec    `toml:"codec"`
	Trash    Trash    `toml:"trash"`
	Workflow Workflow `toml:"workflow"`
	Logging  Logging  `toml:"logging"`
}

// Finalize normalizes user-provided values and validates the result.
func (c *Config) Finalize() error {
	if err := c.normalize(); err != nil {
		return err
	}
	return c.Validate()
}

// EnsureDirectories creates the directory holding the log file.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Logging.File) == "" {
		return nil
	}
	dir := filepath.Dir(c.Logging.File)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log directory %q: %w", dir, err)
	}
	return nil
}

// LockPath returns the run lock path paired with the log file.
func (c *Config) LockPath() string {
	return c.Logging.File + ".lock"
}

// MarshalTOML renders the effective configuration.
func (c *Config) MarshalTOML() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
