package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"flacify/internal/workflow"
)

func summaryLines(s workflow.Summary, colorize bool) []string {
	lines := renderSectionHeader("Run summary", colorize)

	mode := "dry-run (no files moved)"
	if !s.DryRun {
		mode = "real"
	}
	lines = append(lines,
		renderStatusLine("Root", statusInfo, s.Root, colorize),
		renderStatusLine("Mode", statusInfo, mode, colorize),
		renderStatusLine("Run ID", statusInfo, s.RunID, colorize),
	)

	savedLabel := "Space saved"
	if s.DryRun {
		savedLabel = "Space to save"
	}
	lines = append(lines, renderStatusLine(savedLabel, statusInfo, humanize.IBytes(uint64(max(s.BytesSaved, 0))), colorize))
	lines = append(lines, renderStatusLine("Duration", statusInfo, s.Duration.Round(time.Millisecond).String(), colorize))

	switch {
	case s.Interrupted:
		lines = append(lines, renderStatusLine("Result", statusWarn,
			fmt.Sprintf("interrupted after %d of %d files", s.Processed, s.Discovered), colorize))
	case s.Failures() > 0:
		lines = append(lines, renderStatusLine("Result", statusWarn,
			fmt.Sprintf("%d of %d files need attention (see log)", s.Failures(), s.Processed), colorize))
	default:
		lines = append(lines, renderStatusLine("Result", statusOK,
			fmt.Sprintf("%d files processed", s.Processed), colorize))
	}

	lines = append(lines, "", summaryTable(s))
	return lines
}

func summaryTable(s workflow.Summary) string {
	rows := [][]string{
		{"Discovered", count(s.Discovered)},
		{"Processed", count(s.Processed)},
		{"Converted", count(s.Converted)},
		{"Skipped (FLAC exists)", count(s.SkippedExisting)},
	}
	if s.SkippedUnsupported > 0 {
		rows = append(rows, []string{"Skipped (unsupported)", count(s.SkippedUnsupported)})
	}
	rows = append(rows,
		[]string{"Conversion failed", count(s.FailedConversion)},
		[]string{"Size unavailable", count(s.FailedSize)},
	)
	if s.DryRun {
		rows = append(rows,
			[]string{"Would move to trash", count(s.WouldMove)},
			[]string{"FLAC discarded", count(s.DryRunDiscarded)},
		)
	} else {
		rows = append(rows,
			[]string{"Moved to trash", count(s.MovedToTrash)},
			[]string{"Trash move failed", count(s.DisposalFailed)},
		)
	}
	rows = append(rows, []string{"Kept both (FLAC not smaller)", count(s.Kept)})
	return renderTable("Outcomes", []string{"Outcome", "Files"}, rows, []columnAlignment{alignLeft, alignRight})
}

func count(n int64) string {
	return strconv.FormatInt(n, 10)
}
