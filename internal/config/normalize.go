package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeCodec()
	if err := c.normalizeTrash(); err != nil {
		return err
	}
	c.normalizeWorkflow()
	return c.normalizeLogging()
}

func (c *Config) normalizeCodec() {
	c.Codec.Binary = strings.TrimSpace(c.Codec.Binary)
	if c.Codec.Binary == "" {
		if value, ok := os.LookupEnv("FLACIFY_CODEC"); ok {
			c.Codec.Binary = strings.TrimSpace(value)
		}
	}
	if c.Codec.Binary == "" {
		c.Codec.Binary = defaultCodecBinary
	}
}

func (c *Config) normalizeTrash() error {
	c.Trash.DirName = strings.TrimSpace(c.Trash.DirName)
	if c.Trash.DirName == "" {
		c.Trash.DirName = defaultTrashDirName
	}
	if len(c.Trash.VolumeRoots) == 0 {
		if value, ok := os.LookupEnv("FLACIFY_VOLUME_ROOTS"); ok {
			c.Trash.VolumeRoots = filepath.SplitList(value)
		}
	}
	if len(c.Trash.VolumeRoots) == 0 {
		c.Trash.VolumeRoots = append([]string(nil), defaultVolumeRoots...)
	}
	roots := make([]string, 0, len(c.Trash.VolumeRoots))
	seen := make(map[string]struct{}, len(c.Trash.VolumeRoots))
	for _, root := range c.Trash.VolumeRoots {
		if strings.TrimSpace(root) == "" {
			continue
		}
		expanded, err := expandPath(strings.TrimSpace(root))
		if err != nil {
			return fmt.Errorf("trash.volume_roots: %w", err)
		}
		if _, dup := seen[expanded]; dup {
			continue
		}
		seen[expanded] = struct{}{}
		roots = append(roots, expanded)
	}
	c.Trash.VolumeRoots = roots
	if c.Trash.CacheSize <= 0 {
		c.Trash.CacheSize = defaultTrashCacheSize
	}
	return nil
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.Concurrency <= 0 {
		c.Workflow.Concurrency = defaultConcurrency
	}
}

func (c *Config) normalizeLogging() error {
	if strings.TrimSpace(c.Logging.File) == "" {
		if value, ok := os.LookupEnv("FLACIFY_LOG_FILE"); ok {
			c.Logging.File = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Logging.File) == "" {
		c.Logging.File = defaultLogFile
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}
