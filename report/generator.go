package report

// This file contains the report generator: suite aggregation, duplicate
// issue merging, summary statistics, and the bullet-point digest.

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Generator accumulates suites and issues for one testing session.
type Generator struct {
	logger zerolog.Logger
	now    func() time.Time

	suites  []*TestSuite
	issues  []*Issue
	history []historyEntry
}

// historyEntry is one past report document loaded for trend analysis.
type historyEntry struct {
	Summary *Summary `json:"summary"`
}

// NewGenerator returns an empty report generator.
func NewGenerator(logger zerolog.Logger) *Generator {
	return &Generator{
		logger: logger,
		now:    time.Now,
	}
}

// AddSuite appends a suite. Suites are never merged.
func (g *Generator) AddSuite(suite *TestSuite) {
	g.suites = append(g.suites, suite)
}

// Suites returns the accumulated suites in insertion order.
func (g *Generator) Suites() []*TestSuite {
	return g.suites
}

// Issues returns the deduplicated issues in insertion order.
func (g *Generator) Issues() []*Issue {
	return g.issues
}

// AddIssue records a defect observation, merging it into an existing issue
// when the normalized titles match. A match increments the occurrence count
// and appends the test name; the existing issue's ID is returned. Matching
// is a linear scan in insertion order, acceptable at expected issue volumes.
func (g *Generator) AddIssue(title, description string, severity Severity, testName, screenshot string) string {
	for _, existing := range g.issues {
		if isDuplicateTitle(title, existing.Title) {
			existing.Occurrences++
			if testName != "" {
				existing.Tests = append(existing.Tests, testName)
			}
			g.logger.Debug().
				Str("issue", existing.ID).
				Str("title", title).
				Msg("Merged duplicate issue")
			return existing.ID
		}
	}

	issue := &Issue{
		ID:          fmt.Sprintf("ISSUE-%d", len(g.issues)+1),
		Title:       title,
		Description: description,
		Severity:    severity,
		Screenshot:  screenshot,
		Occurrences: 1,
		Created:     g.now(),
	}
	if testName != "" {
		issue.Tests = []string{testName}
	}
	g.issues = append(g.issues, issue)
	return issue.ID
}

// isDuplicateTitle reports whether two issue titles describe the same
// defect: equal after normalization, or one contains the other.
func isDuplicateTitle(a, b string) bool {
	t1 := strings.ToLower(strings.TrimSpace(a))
	t2 := strings.ToLower(strings.TrimSpace(b))
	return t1 == t2 || strings.Contains(t1, t2) || strings.Contains(t2, t1)
}

// GenerateSummary sums per-suite statistics across all suites. Zero suites
// yield a zero summary, not an error.
func (g *Generator) GenerateSummary() Summary {
	var sum Summary
	for _, suite := range g.suites {
		stats := suite.Statistics()
		sum.Total += stats.Total
		sum.Passed += stats.Passed
		sum.Failed += stats.Failed
		sum.Skipped += stats.Skipped
		sum.Broken += stats.Broken
	}
	if sum.Total > 0 {
		sum.PassRate = float64(sum.Passed) / float64(sum.Total) * 100
	}
	sum.Suites = len(g.suites)
	sum.Issues = len(g.issues)
	for _, issue := range g.issues {
		if issue.Severity == SeverityCritical {
			sum.CriticalIssues++
		}
	}
	return sum
}

// BulletPoints renders the deterministic digest: overall pass rate, failure
// and broken counts when non-zero, critical issue count when non-zero, then
// every issue ordered by severity rank with occurrence annotations.
func (g *Generator) BulletPoints() []string {
	sum := g.GenerateSummary()
	bullets := []string{
		fmt.Sprintf("Ran %d tests with %.1f%% pass rate", sum.Total, sum.PassRate),
	}

	if sum.Failed > 0 {
		bullets = append(bullets, fmt.Sprintf("%d tests failed", sum.Failed))
	}
	if sum.Broken > 0 {
		bullets = append(bullets, fmt.Sprintf("%d tests broken (infrastructure issues)", sum.Broken))
	}
	if sum.CriticalIssues > 0 {
		bullets = append(bullets, fmt.Sprintf("%d critical issues found", sum.CriticalIssues))
	}

	sorted := make([]*Issue, len(g.issues))
	copy(sorted, g.issues)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity.Rank() < sorted[j].Severity.Rank()
	})
	for _, issue := range sorted {
		occ := ""
		if issue.Occurrences > 1 {
			occ = fmt.Sprintf(" (%dx)", issue.Occurrences)
		}
		bullets = append(bullets, fmt.Sprintf("[%s] %s%s", issue.Severity, issue.Title, occ))
	}
	return bullets
}

// LoadHistory reads past report documents for trend analysis. A missing
// file leaves the history empty; a corrupt file is logged and skipped.
func (g *Generator) LoadHistory(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			g.logger.Warn().Err(err).Str("path", path).Msg("Failed to read report history")
		}
		return
	}
	var entries []historyEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		g.logger.Warn().Err(err).Str("path", path).Msg("Corrupt report history, ignoring")
		return
	}
	g.history = entries
}

// GetTrends averages pass rates across the loaded historical snapshots.
// Empty history yields a zero Trends value.
func (g *Generator) GetTrends() Trends {
	var t Trends
	for _, h := range g.history {
		if h.Summary == nil {
			continue
		}
		t.PassRateTrend = append(t.PassRateTrend, h.Summary.PassRate)
	}
	t.TotalRuns = len(g.history)
	if len(t.PassRateTrend) > 0 {
		sum := 0.0
		for _, r := range t.PassRateTrend {
			sum += r
		}
		t.AvgPassRate = sum / float64(len(t.PassRateTrend))
	}
	return t
}
