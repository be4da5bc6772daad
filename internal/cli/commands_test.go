package cli

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns everything it
// printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		singleOutDir = ""
		singleSigma = 0
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func writeTestConfig(t *testing.T, dir, extra string) string {
	t.Helper()
	return writeArchiveConfig(t, dir, "http://127.0.0.1:1", extra)
}

func writeArchiveConfig(t *testing.T, dir, archiveURL, extra string) string {
	t.Helper()
	body := fmt.Sprintf(`
archive:
  base_url: %s
  timeout_seconds: 5
output:
  dir: %s
database:
  sqlite_path: %s
generator:
  seed: 2024
%s`, archiveURL, filepath.Join(dir, "plots"), filepath.Join(dir, "runs.db"), extra)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestSyntheticCommandAndHistory(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTestConfig(t, dir, "")

	out, err := execute(t, "--config", cfg, "synthetic", "42", "--samples", "200")
	require.NoError(t, err)
	plot := filepath.Join(dir, "plots", "light_curve_42.png")
	assert.FileExists(t, plot)
	assert.Contains(t, out, "Plot saved to "+plot)

	out, err = execute(t, "--config", cfg, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "synthetic-42")
	assert.Contains(t, out, "SUCCEEDED")
	assert.Contains(t, out, "200/200")
}

func TestSyntheticCommandRejectsBadGenerator(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTestConfig(t, dir, "")

	_, err := execute(t, "--config", cfg, "synthetic", "--center", "500")
	assert.Error(t, err)
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTestConfig(t, dir, `
jobs:
  - name: demo
    preset: synthetic
    kic: 7
`)

	out, err := execute(t, "--config", cfg, "run")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "plots", "light_curve_7.png"))
	assert.Contains(t, out, "job demo [SUCCEEDED]")
}

func TestPlotCommandArgs(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTestConfig(t, dir, "")

	_, err := execute(t, "--config", cfg, "plot", "8462852")
	assert.Error(t, err)

	_, err = execute(t, "--config", cfg, "plot", "abc", "Tabby")
	assert.Error(t, err)
}

func TestArchiveCommands_NoDataExitsCleanly(t *testing.T) {
	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Path)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfg := writeArchiveConfig(t, dir, srv.URL, "")

	out, err := execute(t, "--config", cfg, "plot", "8462852", "Tabby's Star")
	require.NoError(t, err)
	assert.Contains(t, out, "No data found for Tabby's Star (KIC 8462852).")

	out, err = execute(t, "--config", cfg, "quarter", "8462852", "16")
	require.NoError(t, err)
	assert.Contains(t, out, "No data found for KIC 8462852 in quarter 16.")

	assert.Equal(t, []string{"/0084/008462852/", "/0084/008462852/"}, requests)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, "plots", e.Name(), "no plot directory should be created")
	}

	out, err = execute(t, "--config", cfg, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "NOT_FOUND")
}

func TestQuarterCommand_ArchiveErrorAndUnnamedStar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "archive down", http.StatusBadGateway)
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfg := writeArchiveConfig(t, dir, srv.URL, "")

	_, err := execute(t, "--config", cfg, "quarter", "8462852", "16")
	assert.Error(t, err)

	app, err := NewAppContext(cfg, nil)
	require.NoError(t, err)
	defer app.Close()
	job, err := app.BuildJob(quarterJob(8462852, 16, "", false, 0))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "plots", "light_curve_8462852_Q16.png"), job.OutputPath)
	assert.True(t, job.Query.FirstOnly)

	job, err = app.BuildJob(quarterJob(8462852, 16, "", true, 3))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "plots", "real_light_curve_8462852_Q16.png"), job.OutputPath)
	assert.False(t, job.Query.FirstOnly)
	assert.Equal(t, "remove_nans -> normalize -> remove_outliers(sigma=3)", job.Plan.String())
}
