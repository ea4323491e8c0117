// Package logging assembles the slog logger every flacify run writes through.
//
// A run logs to an append-only file and, unless quieted, mirrors each line to
// the console. Lines share one layout (`2006-01-02 15:04:05 - LEVEL message
// key=value`) and are serialized per sink so concurrent workers never produce
// interleaved output. Context helpers stamp the run identifier and source path
// onto records; WarnWithContext and ErrorWithContext keep warning and error
// lines carrying an event type, a hint, and an impact.
package logging
