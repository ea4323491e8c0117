package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCodec(); err != nil {
		return err
	}
	if err := c.validateTrash(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateCodec() error {
	if strings.TrimSpace(c.Codec.Binary) == "" {
		return errors.New("codec.binary must be set")
	}
	if c.Codec.CompressionLevel < 0 || c.Codec.CompressionLevel > maxCompressionLevel {
		return fmt.Errorf("codec.compression_level must be between 0 and %d", maxCompressionLevel)
	}
	return nil
}

func (c *Config) validateTrash() error {
	name := c.Trash.DirName
	if name == "" {
		return errors.New("trash.dir_name must be set")
	}
	if name == "." || name == ".." || strings.ContainsRune(name, filepath.Separator) {
		return fmt.Errorf("trash.dir_name %q must be a single directory name", name)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.Concurrency <= 0 {
		return errors.New("workflow.concurrency must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	if strings.TrimSpace(c.Logging.File) == "" {
		return errors.New("logging.file must be set")
	}
	return nil
}
