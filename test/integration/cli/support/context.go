package support

import (
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Nic0w/zbars/internal/testutil"
)

// TestContext holds the state of one scenario.
type TestContext struct {
	// Command execution state
	LastCommand  string
	LastStdout   string
	LastStderr   string
	LastError    error
	LastExitCode int
	LastDuration time.Duration

	// Test environment
	WorkingDir string
	TempDir    string
	EnvVars    []string

	// HTTP state
	HTTPServer         *httptest.Server
	LastHTTPStatusCode int
	LastHTTPResponse   string
	LastHTTPHeaders    map[string]string
}

// NewTestContext creates a scenario context rooted at the module directory.
func NewTestContext() (*TestContext, error) {
	root, err := testutil.ProjectRoot()
	if err != nil {
		return nil, err
	}

	tempDir, err := os.MkdirTemp("", "zbars-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &TestContext{
		WorkingDir: root,
		TempDir:    tempDir,
		// Keep user configuration files out of the scenarios.
		EnvVars: []string{"HOME=" + tempDir, "XDG_CONFIG_HOME=" + tempDir},
	}, nil
}

// Cleanup stops the test server and removes the scenario's temp directory.
func (tc *TestContext) Cleanup() error {
	if tc.HTTPServer != nil {
		tc.HTTPServer.Close()
		tc.HTTPServer = nil
	}
	if err := os.RemoveAll(tc.TempDir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove temp directory %s: %w", tc.TempDir, err)
	}
	return nil
}

// AddEnvVar adds an environment variable for command execution.
func (tc *TestContext) AddEnvVar(name, value string) {
	tc.EnvVars = append(tc.EnvVars, fmt.Sprintf("%s=%s", name, value))
}

// TempPath returns name inside the scenario's temp directory.
func (tc *TestContext) TempPath(name string) string {
	return filepath.Join(tc.TempDir, name)
}

// substitute expands {tmp} to the scenario's temp directory.
func (tc *TestContext) substitute(s string) string {
	return strings.ReplaceAll(s, "{tmp}", tc.TempDir)
}
