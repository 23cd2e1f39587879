// Package testutil provides utilities for testing rustboot in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Env describes the isolated environment created by SetupTestEnv.
type Env struct {
	Home       string // HOME and USERPROFILE
	DataHome   string // XDG_DATA_HOME
	RustupHome string // RUSTUP_HOME
	WorkDir    string // an empty project directory
}

// clearedVars are unset for every test on top of all RUSTBOOT_ variables.
var clearedVars = []string{
	"RUST_INSTALL_MODE",
	"RUST_INSTALL_LOCATION",
	"CARGO_HOME",
	"HTTP_PROXY", "http_proxy",
	"HTTPS_PROXY", "https_proxy",
	"NO_PROXY", "no_proxy",
	"REQUEST_METHOD",
}

// SetupTestEnv points every directory rustboot derives from the environment
// at a fresh temp tree and clears the variables that would otherwise leak
// the developer's own settings into a test. Restoration is handled by
// t.Setenv, so callers don't need to clean up.
func SetupTestEnv(t *testing.T) *Env {
	t.Helper()

	tmpDir := t.TempDir()
	env := &Env{
		Home:       filepath.Join(tmpDir, "home"),
		DataHome:   filepath.Join(tmpDir, "data"),
		RustupHome: filepath.Join(tmpDir, "rustup"),
		WorkDir:    filepath.Join(tmpDir, "project"),
	}

	for _, dir := range []string{env.Home, env.DataHome, env.RustupHome, env.WorkDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	t.Setenv("HOME", env.Home)
	t.Setenv("USERPROFILE", env.Home)
	t.Setenv("XDG_DATA_HOME", env.DataHome)
	t.Setenv("RUSTUP_HOME", env.RustupHome)

	toClear := append([]string(nil), clearedVars...)
	for _, kv := range os.Environ() {
		if name, _, _ := strings.Cut(kv, "="); strings.HasPrefix(name, "RUSTBOOT_") {
			toClear = append(toClear, name)
		}
	}
	for _, name := range toClear {
		Unsetenv(t, name)
	}

	return env
}

// Unsetenv removes name for the duration of the test.
func Unsetenv(t *testing.T, name string) {
	t.Helper()
	t.Setenv(name, "")
	if err := os.Unsetenv(name); err != nil {
		t.Fatalf("unset %s: %v", name, err)
	}
}
