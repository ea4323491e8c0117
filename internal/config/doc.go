// Package config builds, normalizes, and validates flacify configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and honours environment fallbacks such as FLACIFY_LOG_FILE and
// FLACIFY_VOLUME_ROOTS. There is deliberately no configuration file: the CLI
// starts from Default, applies flags, and calls Finalize once. The resulting
// *Config is passed explicitly to every component.
//
// MarshalTOML renders the effective values so operators can inspect exactly
// what a run would use.
package config
