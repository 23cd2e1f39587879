package testutil_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZebulonRouseFrantzich/rustboot/internal/testutil"
)

func TestSetupTestEnv(t *testing.T) {
	t.Setenv("RUSTBOOT_TOOLCHAIN", "1.70.0")
	t.Setenv("RUST_INSTALL_LOCATION", "local")

	env := testutil.SetupTestEnv(t)

	vars := map[string]string{
		"HOME":          env.Home,
		"XDG_DATA_HOME": env.DataHome,
		"RUSTUP_HOME":   env.RustupHome,
	}
	for name, want := range vars {
		if got := os.Getenv(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}

	for _, name := range []string{"RUSTBOOT_TOOLCHAIN", "RUST_INSTALL_LOCATION"} {
		if _, ok := os.LookupEnv(name); ok {
			t.Errorf("%s still set", name)
		}
	}

	root := filepath.Dir(env.Home)
	for _, dir := range []string{env.Home, env.DataHome, env.RustupHome, env.WorkDir} {
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("directory %s: %v", dir, err)
		}
		if !strings.HasPrefix(dir, root) {
			t.Errorf("directory %s is not under %s", dir, root)
		}
	}
}
