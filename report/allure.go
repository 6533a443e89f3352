package report

// This file contains the Allure results exporter, for viewing betakit runs
// in Allure-compatible CI viewers.

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// AllureWriter accumulates results in Allure's result-file format.
type AllureWriter struct {
	results []allureResult
}

type allureResult struct {
	UUID          string            `json:"uuid"`
	HistoryID     string            `json:"historyId"`
	Name          string            `json:"name"`
	Status        string            `json:"status"`
	Stage         string            `json:"stage"`
	Description   string            `json:"description,omitempty"`
	Steps         []allureStep      `json:"steps"`
	Attachments   []allureFile      `json:"attachments"`
	Labels        []allureLabel     `json:"labels"`
	Start         int64             `json:"start"`
	Stop          int64             `json:"stop"`
	StatusDetails *allureStatusInfo `json:"statusDetails,omitempty"`
}

type allureStep struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

type allureFile struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Type   string `json:"type"`
}

type allureLabel struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type allureStatusInfo struct {
	Message string `json:"message"`
	Trace   string `json:"trace"`
}

// NewAllureWriter returns an empty writer.
func NewAllureWriter() *AllureWriter {
	return &AllureWriter{}
}

// AddResult converts a test case into Allure result form.
func (w *AllureWriter) AddResult(tc TestCase, suiteName string) {
	now := time.Now().UnixMilli()

	result := allureResult{
		UUID:        newUUID(),
		HistoryID:   tc.Name,
		Name:        tc.Name,
		Status:      tc.Status,
		Stage:       "finished",
		Description: tc.Description,
		Steps:       []allureStep{},
		Attachments: []allureFile{},
		Labels: []allureLabel{
			{Name: "suite", Value: suiteName},
			{Name: "host", Value: "localhost"},
		},
		Start: now,
		Stop:  now + int64(tc.DurationMS),
	}
	for _, step := range tc.Steps {
		result.Steps = append(result.Steps, allureStep{Name: step, Status: "passed"})
	}
	for _, att := range tc.Attachments {
		result.Attachments = append(result.Attachments, allureFile{Name: att, Source: att, Type: "image/png"})
	}
	for k, v := range tc.Labels {
		result.Labels = append(result.Labels, allureLabel{Name: k, Value: v})
	}
	if tc.ErrorMessage != "" {
		result.StatusDetails = &allureStatusInfo{
			Message: tc.ErrorMessage,
			Trace:   tc.StackTrace,
		}
	}

	w.results = append(w.results, result)
}

// WriteResults writes one <uuid>-result.json per result into dir.
func (w *AllureWriter) WriteResults(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create allure directory %s", dir)
	}
	for _, result := range w.results {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal allure result")
		}
		path := filepath.Join(dir, result.UUID+"-result.json")
		if err := os.WriteFile(path, data, 0644); err != nil {
			return errors.Wrapf(err, "failed to write %s", path)
		}
	}
	return nil
}

// WriteEnvironment writes environment.properties into dir.
func (w *AllureWriter) WriteEnvironment(dir string, env map[string]string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create allure directory %s", dir)
	}
	f, err := os.Create(filepath.Join(dir, "environment.properties"))
	if err != nil {
		return errors.Wrap(err, "failed to create environment.properties")
	}
	defer f.Close()
	for k, v := range env {
		if _, err := fmt.Fprintf(f, "%s=%s\n", k, v); err != nil {
			return errors.Wrap(err, "failed to write environment.properties")
		}
	}
	return nil
}

// WriteCategories writes the default defect categorization into dir.
func (w *AllureWriter) WriteCategories(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create allure directory %s", dir)
	}
	categories := []map[string]any{
		{"name": "Product defects", "matchedStatuses": []string{"failed"}},
		{"name": "Test defects", "matchedStatuses": []string{"broken"}},
	}
	data, err := json.MarshalIndent(categories, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal categories")
	}
	path := filepath.Join(dir, "categories.json")
	return errors.Wrapf(os.WriteFile(path, data, 0644), "failed to write %s", path)
}

// newUUID returns a random 16-byte hex identifier.
func newUUID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
