package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllureWriter_WriteResults(t *testing.T) {
	w := NewAllureWriter()
	w.AddResult(TestCase{
		Name:         "login",
		Status:       "failed",
		DurationMS:   120,
		Steps:        []string{"open page", "submit form"},
		Attachments:  []string{"login.png"},
		Labels:       map[string]string{"feature": "auth"},
		ErrorMessage: "button missing",
	}, "auth-suite")

	dir := t.TempDir()
	require.NoError(t, w.WriteResults(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal(data, &result))
	require.Equal(t, "login", result["name"])
	require.Equal(t, "failed", result["status"])
	require.Equal(t, "finished", result["stage"])
	require.NotNil(t, result["statusDetails"])
}

func TestAllureWriter_Environment(t *testing.T) {
	dir := t.TempDir()
	w := NewAllureWriter()
	require.NoError(t, w.WriteEnvironment(dir, map[string]string{"os": "linux"}))

	data, err := os.ReadFile(filepath.Join(dir, "environment.properties"))
	require.NoError(t, err)
	require.Contains(t, string(data), "os=linux")
}

func TestAllureWriter_Categories(t *testing.T) {
	dir := t.TempDir()
	w := NewAllureWriter()
	require.NoError(t, w.WriteCategories(dir))

	data, err := os.ReadFile(filepath.Join(dir, "categories.json"))
	require.NoError(t, err)
	require.Contains(t, string(data), "Product defects")
}
