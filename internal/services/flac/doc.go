// Package flac wraps the external flac encoder so the workflow can convert
// uncompressed sources into FLAC artifacts and inspect the result.
//
// It exposes a Client interface, a CLI implementation that launches the codec
// binary and captures its diagnostics, and a STREAMINFO probe built on go-flac.
// Tests swap the package-level command constructor to avoid executing the real
// encoder while still exercising argument assembly and failure handling.
package flac
