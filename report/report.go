// Package report aggregates suite and test-case records into summary
// statistics and merges duplicate defect reports into issues.
package report

import "time"

// TestCase is a single test case result inside a suite.
type TestCase struct {
	Name         string            `json:"name"`
	Status       string            `json:"status"` // passed, failed, skipped, broken
	DurationMS   float64           `json:"duration_ms"`
	Description  string            `json:"description,omitempty"`
	Steps        []string          `json:"steps,omitempty"`
	Attachments  []string          `json:"attachments,omitempty"`
	Labels       map[string]string `json:"labels,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	StackTrace   string            `json:"stack_trace,omitempty"`
}

// TestSuite is a named, ordered sequence of test cases.
type TestSuite struct {
	Name      string     `json:"name"`
	Cases     []TestCase `json:"tests"`
	StartTime time.Time  `json:"start_time,omitempty"`
	EndTime   time.Time  `json:"end_time,omitempty"`
}

// AddCase appends a test case to the suite.
func (s *TestSuite) AddCase(tc TestCase) {
	s.Cases = append(s.Cases, tc)
}

// SuiteStats is the per-suite pass/fail breakdown.
type SuiteStats struct {
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	Skipped  int     `json:"skipped"`
	Broken   int     `json:"broken"`
	PassRate float64 `json:"pass_rate"`
}

// Statistics computes the suite's pass/fail breakdown.
func (s *TestSuite) Statistics() SuiteStats {
	stats := SuiteStats{Total: len(s.Cases)}
	for _, tc := range s.Cases {
		switch tc.Status {
		case "passed":
			stats.Passed++
		case "failed":
			stats.Failed++
		case "skipped":
			stats.Skipped++
		case "broken":
			stats.Broken++
		}
	}
	if stats.Total > 0 {
		stats.PassRate = float64(stats.Passed) / float64(stats.Total) * 100
	}
	return stats
}

// Severity classifies an issue's impact.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities for reporting: critical first, low last.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	}
	return 4
}

// Issue is a deduplicated defect record aggregating one or more raw
// observations under one title.
type Issue struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
	Tests       []string  `json:"tests"`
	Screenshot  string    `json:"screenshot,omitempty"`
	Occurrences int       `json:"occurrences"`
	Created     time.Time `json:"created"`
}

// Summary is the aggregate over all suites and issues.
type Summary struct {
	Total          int     `json:"total"`
	Passed         int     `json:"passed"`
	Failed         int     `json:"failed"`
	Skipped        int     `json:"skipped"`
	Broken         int     `json:"broken"`
	PassRate       float64 `json:"pass_rate"`
	Issues         int     `json:"issues"`
	CriticalIssues int     `json:"critical_issues"`
	Suites         int     `json:"suites"`
}

// Trends aggregates pass rates across historical report snapshots.
type Trends struct {
	PassRateTrend []float64 `json:"pass_rate_trend"`
	AvgPassRate   float64   `json:"avg_pass_rate"`
	TotalRuns     int       `json:"total_runs"`
}
