package artifact

import (
	"path/filepath"
	"testing"

	"github.com/ZebulonRouseFrantzich/rustboot/internal/target"
	"github.com/ZebulonRouseFrantzich/rustboot/internal/toolchain"
)

func resolve(t *testing.T, host target.Host) *target.Target {
	t.Helper()
	tgt, err := target.NewResolver().Resolve(host)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	return tgt
}

func TestLocate_Archive(t *testing.T) {
	tgt := resolve(t, target.Host{OS: "darwin", Arch: "arm64"})

	loc, err := Locate(tgt, toolchain.Channel{Name: "nightly"}, ModeArchive, Options{})
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}

	wantURL := "https://static.rust-lang.org/dist/rust-nightly-aarch64-apple-darwin.tar.xz"
	if loc.URL != wantURL {
		t.Errorf("URL = %q, want %q", loc.URL, wantURL)
	}
	if loc.ArtifactName != "rust-nightly-aarch64-apple-darwin.tar.xz" {
		t.Errorf("ArtifactName = %q", loc.ArtifactName)
	}
	if loc.ArchiveBase != "rust-nightly-aarch64-apple-darwin" {
		t.Errorf("ArchiveBase = %q", loc.ArchiveBase)
	}

	got, ok := loc.BinPath("/opt/rb", "cargo")
	want := filepath.Join("/opt/rb", "toolchains", "rust-nightly-aarch64-apple-darwin", "cargo", "bin", "cargo")
	if !ok || got != want {
		t.Errorf("BinPath(cargo) = %q, %v; want %q", got, ok, want)
	}
}

func TestLocate_MuslStaticUsesUpstreamTriple(t *testing.T) {
	tgt := resolve(t, target.Host{OS: "linux", Arch: "x64"})

	loc, err := Locate(tgt, toolchain.Channel{Name: "1.74.0", Pinned: true}, ModeArchive, Options{BaseURL: "https://mirror.example.com/rust/dist/"})
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}

	want := "https://mirror.example.com/rust/dist/rust-1.74.0-x86_64-unknown-linux-musl.tar.xz"
	if loc.URL != want {
		t.Errorf("URL = %q, want %q", loc.URL, want)
	}
}

func TestLocate_Script(t *testing.T) {
	tgt := resolve(t, target.Host{OS: "darwin", Arch: "x64"})

	loc, err := Locate(tgt, toolchain.Channel{Name: "beta"}, ModeScript, Options{})
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if loc.URL != "https://static.rust-lang.org/dist/rust-beta-x86_64-apple-darwin.tar.xz" {
		t.Errorf("URL = %q", loc.URL)
	}

	got, _ := loc.BinPath("/r", "rustc")
	want := filepath.Join("/r", "toolchains", "rust-beta-x86_64-apple-darwin", "bin", "rustc")
	if got != want {
		t.Errorf("BinPath(rustc) = %q, want %q", got, want)
	}
}

func TestLocate_Rustup(t *testing.T) {
	tgt := resolve(t, target.Host{OS: "darwin", Arch: "arm64"})

	loc, err := Locate(tgt, toolchain.Channel{Name: "stable"}, ModeRustup, Options{})
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if loc.URL != DefaultRustupURL {
		t.Errorf("URL = %q, want %q", loc.URL, DefaultRustupURL)
	}
	if loc.ArtifactName != RustupScriptName {
		t.Errorf("ArtifactName = %q, want %q", loc.ArtifactName, RustupScriptName)
	}

	got, _ := loc.BinPath("/home/u/.rustup", "cargo")
	want := filepath.Join("/home/u/.rustup", "toolchains", "stable-aarch64-apple-darwin", "bin", "cargo")
	if got != want {
		t.Errorf("BinPath(cargo) = %q, want %q", got, want)
	}
}

func TestLocate_Errors(t *testing.T) {
	tgt := resolve(t, target.Host{OS: "darwin", Arch: "arm64"})
	stable := toolchain.Channel{Name: "stable"}

	tests := []struct {
		name string
		tgt  *target.Target
		ch   toolchain.Channel
		mode Mode
		opts Options
	}{
		{"nil target", nil, stable, ModeArchive, Options{}},
		{"zero channel", tgt, toolchain.Channel{}, ModeArchive, Options{}},
		{"unknown mode", tgt, stable, Mode("pip"), Options{}},
		{"relative base URL", tgt, stable, ModeArchive, Options{BaseURL: "dist/"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Locate(tt.tgt, tt.ch, tt.mode, tt.opts); err == nil {
				t.Error("Locate() expected error, got nil")
			}
		})
	}
}

func TestLocation_BinPathUnknown(t *testing.T) {
	tgt := resolve(t, target.Host{OS: "darwin", Arch: "arm64"})
	loc, err := Locate(tgt, toolchain.Channel{Name: "stable"}, ModeArchive, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := loc.BinPath("/r", "clippy-driver"); ok {
		t.Error("BinPath() should not know clippy-driver")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"archive", ModeArchive, false},
		{"", ModeArchive, false},
		{"Script", ModeScript, false},
		{" rustup ", ModeRustup, false},
		{"brew", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode() = %q, want %q", got, tt.want)
			}
		})
	}
}
