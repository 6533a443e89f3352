package report

// This file contains report rendering: pure templating over the generator's
// aggregates. Output shape is not core logic.

import (
	"encoding/json"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// Document is the full JSON report payload.
type Document struct {
	Generated    time.Time    `json:"generated"`
	Summary      Summary      `json:"summary"`
	BulletPoints []string     `json:"bullet_points"`
	Issues       []*Issue     `json:"issues"`
	Suites       []suiteBlock `json:"suites"`
}

type suiteBlock struct {
	Name       string     `json:"name"`
	Statistics SuiteStats `json:"statistics"`
	Tests      []TestCase `json:"tests"`
}

// Document assembles the full report payload.
func (g *Generator) Document() Document {
	doc := Document{
		Generated:    g.now(),
		Summary:      g.GenerateSummary(),
		BulletPoints: g.BulletPoints(),
		Issues:       g.issues,
	}
	for _, suite := range g.suites {
		doc.Suites = append(doc.Suites, suiteBlock{
			Name:       suite.Name,
			Statistics: suite.Statistics(),
			Tests:      suite.Cases,
		})
	}
	return doc
}

// WriteJSON writes the report as JSON to <dir>/report.json.
func (g *Generator) WriteJSON(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "failed to create report directory %s", dir)
	}
	path := filepath.Join(dir, "report.json")
	data, err := json.MarshalIndent(g.Document(), "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal report")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrapf(err, "failed to write report to %s", path)
	}
	return path, nil
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<title>betakit test report</title>
<style>
body { font-family: sans-serif; margin: 20px; }
.summary { background: #f0f0f0; padding: 20px; border-radius: 8px; }
.stats { display: flex; gap: 20px; margin: 20px 0; }
.stat-box { background: white; padding: 15px; border-radius: 4px; text-align: center; }
.passed { color: green; }
.failed { color: red; }
.issue { padding: 10px; margin: 5px 0; border-left: 3px solid; }
.critical { border-color: red; background: #fff0f0; }
.high { border-color: orange; background: #fff8f0; }
.medium { border-color: gold; background: #fffef0; }
.low { border-color: green; background: #f0fff0; }
</style>
</head>
<body>
<h1>betakit test report</h1>
<p>Generated: {{.Generated.Format "2006-01-02 15:04:05"}}</p>
<div class="summary">
<h2>Summary</h2>
<div class="stats">
<div class="stat-box"><h3>{{.Summary.Total}}</h3><p>Total Tests</p></div>
<div class="stat-box passed"><h3>{{.Summary.Passed}}</h3><p>Passed</p></div>
<div class="stat-box failed"><h3>{{.Summary.Failed}}</h3><p>Failed</p></div>
<div class="stat-box"><h3>{{printf "%.1f" .Summary.PassRate}}%</h3><p>Pass Rate</p></div>
</div>
</div>
<div class="issues">
<h2>Issues ({{len .Issues}})</h2>
{{range .Issues}}<div class="issue {{.Severity}}">
<strong>{{.Title}}</strong>
<p>{{.Description}}</p>
<small>Occurrences: {{.Occurrences}}</small>
</div>
{{end}}</div>
<div class="bullets">
<h2>Key Points</h2>
<ul>
{{range .BulletPoints}}<li>{{.}}</li>
{{end}}</ul>
</div>
</body>
</html>
`))

// WriteHTML writes the report as HTML to <dir>/report.html.
func (g *Generator) WriteHTML(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "failed to create report directory %s", dir)
	}
	path := filepath.Join(dir, "report.html")
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create %s", path)
	}
	defer f.Close()

	if err := htmlTemplate.Execute(f, g.Document()); err != nil {
		return "", errors.Wrap(err, "failed to render HTML report")
	}
	return path, nil
}
