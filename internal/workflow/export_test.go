package workflow

import "flacify/internal/services/flac"

// SetCopyTimes replaces the timestamp copy performed after conversion.
func SetCopyTimes(w *FileWorkflow, fn func(src, dst string) error) { w.copyTimes = fn }

// SetProbe replaces the STREAMINFO probe performed after conversion.
func SetProbe(w *FileWorkflow, fn func(path string) (flac.StreamInfo, error)) { w.probe = fn }
