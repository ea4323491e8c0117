// Package main hosts the flacify CLI entrypoint and command graph.
//
// The root command converts every WAV/AIFF file beneath a directory to FLAC
// and, outside dry-run mode, moves each original into the volume's trash when
// the FLAC is smaller. Two helper commands report codec availability (deps)
// and print the effective configuration (config).
//
// Keep this package lean: flags are translated into a config.Config once,
// setup problems are rejected before any file is touched, and the batch
// itself lives in internal/workflow.
package main
