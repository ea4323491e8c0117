// Package services defines shared utilities consumed by the per-file workflow
// and the external codec integration.
//
// Key responsibilities:
//   - Context helpers that stamp the run identifier, source path, and workflow
//     state onto a context for logging.
//   - Structured error markers plus the Wrap helper so failures carry a
//     consistent classification (setup vs per-file) and operator hint.
//
// Use these helpers when adding workflow steps so error handling and
// observability stay uniform across the pipeline.
package services
