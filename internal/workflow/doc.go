// Package workflow drives each source file through conversion and
// reconciliation and fans a whole directory tree out across a bounded pool of
// workers.
//
// FileWorkflow is the per-file state machine:
//
//	Discovered -> Classifying -> (Skip | Converting)
//	Converting -> (ConversionFailed | Converted) -> Reconciling -> Done
//
// Skip and ConversionFailed are terminal. Once a file is Converted its
// reconciliation is always attempted. Runner enumerates a root, dispatches
// every source to a FileWorkflow with at most Workflow.Concurrency running at
// once, and folds each Outcome into a Summary whose terminal counters always
// add up to the number of files processed. No per-file failure stops the run;
// only enumeration failure or cancellation is returned as an error.
package workflow
