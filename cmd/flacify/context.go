package main

import (
	"sync"

	"flacify/internal/config"
)

// commandContext owns the flag-backed configuration shared by every command.
type commandContext struct {
	values    config.Config
	noDryRun  bool
	quiet     bool
	finalized sync.Once
	config    *config.Config
	configErr error
}

func newCommandContext() *commandContext {
	return &commandContext{values: config.Default()}
}

// ensureConfig applies the mode flags, finalizes, and creates the log
// directory. The result is computed once per command invocation.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.finalized.Do(func() {
		cfg := c.values
		cfg.Trash.VolumeRoots = append([]string(nil), c.values.Trash.VolumeRoots...)
		cfg.Workflow.DryRun = !c.noDryRun
		if c.quiet {
			cfg.Logging.Console = false
		}
		if err := cfg.Finalize(); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = &cfg
	})
	return c.config, c.configErr
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
