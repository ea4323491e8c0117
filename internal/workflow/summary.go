package workflow

import (
	"sync/atomic"
	"time"
)

// Summary aggregates a run. The terminal counters (SkippedExisting,
// SkippedUnsupported, FailedConversion, FailedSize, MovedToTrash,
// DisposalFailed, WouldMove, Kept) partition Processed. Converted and
// DryRunDiscarded are orthogonal tallies.
type Summary struct {
	RunID  string
	Root   string
	DryRun bool

	Discovered int64
	Processed  int64
	Converted  int64

	SkippedExisting    int64
	SkippedUnsupported int64
	FailedConversion   int64
	FailedSize         int64
	MovedToTrash       int64
	DisposalFailed     int64
	WouldMove          int64
	Kept               int64

	DryRunDiscarded int64
	// BytesSaved sums measured savings for moved (or, in a dry run,
	// would-be-moved) sources.
	BytesSaved  int64
	Duration    time.Duration
	Interrupted bool
}

// TerminalTotal sums the terminal counters; it always equals Processed.
func (s Summary) TerminalTotal() int64 {
	return s.SkippedExisting + s.SkippedUnsupported + s.FailedConversion + s.FailedSize +
		s.MovedToTrash + s.DisposalFailed + s.WouldMove + s.Kept
}

// Failures counts per-file errors of every kind.
func (s Summary) Failures() int64 {
	return s.FailedConversion + s.FailedSize + s.DisposalFailed
}

// tally accumulates outcomes from concurrent workers.
type tally struct {
	processed          atomic.Int64
	converted          atomic.Int64
	skippedExisting    atomic.Int64
	skippedUnsupported atomic.Int64
	failedConversion   atomic.Int64
	failedSize         atomic.Int64
	movedToTrash       atomic.Int64
	disposalFailed     atomic.Int64
	wouldMove          atomic.Int64
	kept               atomic.Int64
	dryRunDiscarded    atomic.Int64
	bytesSaved         atomic.Int64
}

func (t *tally) record(out Outcome) int64 {
	if out.Converted() {
		t.converted.Add(1)
	}
	if out.Reconcile.ArtifactDiscarded {
		t.dryRunDiscarded.Add(1)
	}
	switch out.Tally() {
	case TallySkippedExisting:
		t.skippedExisting.Add(1)
	case TallySkippedUnsupported:
		t.skippedUnsupported.Add(1)
	case TallyFailedConversion:
		t.failedConversion.Add(1)
	case TallyFailedSize:
		t.failedSize.Add(1)
	case TallyMovedToTrash:
		t.movedToTrash.Add(1)
		t.bytesSaved.Add(out.Reconcile.SavedBytes)
	case TallyDisposalFailed:
		t.disposalFailed.Add(1)
	case TallyWouldMove:
		t.wouldMove.Add(1)
		t.bytesSaved.Add(out.Reconcile.SavedBytes)
	case TallyKept:
		t.kept.Add(1)
	}
	return t.processed.Add(1)
}

func (t *tally) fill(s *Summary) {
	s.Processed = t.processed.Load()
	s.Converted = t.converted.Load()
	s.SkippedExisting = t.skippedExisting.Load()
	s.SkippedUnsupported = t.skippedUnsupported.Load()
	s.FailedConversion = t.failedConversion.Load()
	s.FailedSize = t.failedSize.Load()
	s.MovedToTrash = t.movedToTrash.Load()
	s.DisposalFailed = t.disposalFailed.Load()
	s.WouldMove = t.wouldMove.Load()
	s.Kept = t.kept.Load()
	s.DryRunDiscarded = t.dryRunDiscarded.Load()
	s.BytesSaved = t.bytesSaved.Load()
}
