// Package fileutil holds the filesystem primitives the pipeline relies on:
// a single size-and-timestamp stat, timestamp copying, and a no-clobber move
// that falls back to a verified copy when a rename crosses filesystems.
package fileutil
