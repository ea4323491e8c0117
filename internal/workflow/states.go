package workflow

import (
	"time"

	"flacify/internal/reconcile"
)

// State is a step of the per-file state machine.
type State string

const (
	StateDiscovered       State = "discovered"
	StateClassifying      State = "classifying"
	StateSkip             State = "skip"
	StateConverting       State = "converting"
	StateConversionFailed State = "conversion_failed"
	StateConverted        State = "converted"
	StateReconciling      State = "reconciling"
	StateDone             State = "done"
)

// SkipReason explains a Skip.
type SkipReason string

const (
	SkipUnsupported    SkipReason = "unsupported_extension"
	SkipArtifactExists SkipReason = "artifact_exists"
)

// Tally is the terminal bucket an Outcome is counted in.
type Tally string

const (
	TallySkippedExisting    Tally = "skipped_existing"
	TallySkippedUnsupported Tally = "skipped_unsupported"
	TallyFailedConversion   Tally = "failed_conversion"
	TallyFailedSize         Tally = "failed_size"
	TallyMovedToTrash       Tally = "moved_to_trash"
	TallyDisposalFailed     Tally = "disposal_failed"
	TallyWouldMove          Tally = "would_move"
	TallyKept               Tally = "kept"
)

// Outcome records everything that happened to one source file.
type Outcome struct {
	Source   string
	Artifact string
	// States lists every state visited, in order.
	States     []State
	Skip       SkipReason
	Err        error
	Reconcile  reconcile.Result
	Duration   time.Duration
	Diagnostic string
}

// Final returns the last state visited.
func (o Outcome) Final() State {
	if len(o.States) == 0 {
		return ""
	}
	return o.States[len(o.States)-1]
}

// Converted reports whether the codec produced an artifact.
func (o Outcome) Converted() bool {
	for _, s := range o.States {
		if s == StateConverted {
			return true
		}
	}
	return false
}

// Tally maps the outcome onto exactly one terminal counter.
func (o Outcome) Tally() Tally {
	switch o.Final() {
	case StateSkip:
		if o.Skip == SkipUnsupported {
			return TallySkippedUnsupported
		}
		return TallySkippedExisting
	case StateConversionFailed:
		return TallyFailedConversion
	}
	switch o.Reconcile.Disposition {
	case reconcile.MovedToTrash:
		return TallyMovedToTrash
	case reconcile.WouldMove:
		return TallyWouldMove
	case reconcile.KeptBoth:
		return TallyKept
	case reconcile.TrashUnavailable, reconcile.MoveFailed:
		return TallyDisposalFailed
	default:
		return TallyFailedSize
	}
}

func (o *Outcome) enter(s State) {
	o.States = append(o.States, s)
}
