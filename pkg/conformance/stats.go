package conformance

import (
	"fmt"
	"strings"
)

type SummaryStats struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
}

// OK reports whether nothing failed
func (s SummaryStats) OK() bool {
	return s.Failed == 0
}

func ComputeStats(results []TestResult) SummaryStats {
	stats := SummaryStats{Total: len(results)}
	for _, r := range results {
		if r.Skipped {
			stats.Skipped++
		} else if r.Passed {
			stats.Passed++
		} else {
			stats.Failed++
		}
	}
	return stats
}

func FormatStats(stats SummaryStats) string {
	return fmt.Sprintf("%d passed, %d failed, %d skipped (%d total)",
		stats.Passed, stats.Failed, stats.Skipped, stats.Total)
}

// Failures lists one line per failed result
func Failures(results []TestResult) []string {
	var lines []string
	for _, r := range results {
		if r.Skipped || r.Passed {
			continue
		}
		var b strings.Builder
		b.WriteString(r.Test.ID())
		if r.Error != nil {
			fmt.Fprintf(&b, ": %v", r.Error)
		}
		lines = append(lines, b.String())
	}
	return lines
}
