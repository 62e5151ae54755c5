// Package testutil provides shared helpers for tests.
package testutil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

var (
	testRunDirOnce sync.Once
	testRunDir     string
)

// GetTestRunDir returns the directory holding all temp dirs created during
// this test run. The directory is created once per process under the system
// temp dir and shared by every test, which keeps scratch files grouped and
// easy to inspect after a failure.
func GetTestRunDir() string {
	testRunDirOnce.Do(func() {
		base := filepath.Join(os.TempDir(), "flowc-test-runs")
		_ = os.MkdirAll(base, 0o755)
		dir, err := os.MkdirTemp(base, time.Now().Format("20060102-150405-"))
		if err != nil {
			// Fall back to the base dir rather than failing test setup.
			dir = base
		}
		testRunDir = dir
	})
	return testRunDir
}

// TempDir creates a temp directory under the test run directory using the
// given pattern and removes it when the test finishes.
func TempDir(t *testing.T, pattern string) string {
	t.Helper()

	dir, err := os.MkdirTemp(GetTestRunDir(), pattern)
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() {
		_ = os.RemoveAll(dir)
	})
	return dir
}
