package target

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ZebulonRouseFrantzich/rustboot/internal/platform"
)

type recordingLogger struct {
	noopLogger
	warnings []string
}

func (l *recordingLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.warnings = append(l.warnings, msg)
}

func glibc(v string) *platform.Libc { return &platform.Libc{Family: platform.LibcGlibc, Version: v} }

func musl() *platform.Libc { return &platform.Libc{Family: platform.LibcMusl, Version: "1.2.4"} }

func TestResolve(t *testing.T) {
	tests := []struct {
		name         string
		host         Host
		wantTriple   string
		wantArtifact string
		wantWarn     bool
	}{
		{"linux x64 glibc at baseline", Host{"Linux", "x64", glibc("2.35")}, "x86_64-unknown-linux-gnu", "x86_64-unknown-linux-gnu", false},
		{"linux x64 old glibc", Host{"Linux", "x64", glibc("2.17")}, "x86_64-unknown-linux-musl-static", "x86_64-unknown-linux-musl", true},
		{"linux newer glibc minor", Host{"linux", "amd64", glibc("2.39")}, "x86_64-unknown-linux-gnu", "x86_64-unknown-linux-gnu", false},
		{"linux minor compared numerically", Host{"linux", "amd64", glibc("2.100")}, "x86_64-unknown-linux-gnu", "x86_64-unknown-linux-gnu", false},
		{"linux glibc major 3", Host{"linux", "amd64", glibc("3.0")}, "x86_64-unknown-linux-musl-static", "x86_64-unknown-linux-musl", true},
		{"linux unparsable glibc", Host{"linux", "arm64", glibc("garbage")}, "aarch64-unknown-linux-musl-static", "aarch64-unknown-linux-musl", true},
		{"linux arm64 musl", Host{"Linux", "arm64", musl()}, "aarch64-unknown-linux-musl-dynamic", "aarch64-unknown-linux-musl", false},
		{"linux aarch64 musl", Host{"linux", "aarch64", musl()}, "aarch64-unknown-linux-musl-dynamic", "aarch64-unknown-linux-musl", false},
		{"linux unknown libc", Host{"linux", "x86_64", &platform.Libc{Family: platform.LibcUnknown}}, "x86_64-unknown-linux-musl-static", "x86_64-unknown-linux-musl", true},
		{"linux nil libc", Host{"linux", "x86_64", nil}, "x86_64-unknown-linux-musl-static", "x86_64-unknown-linux-musl", true},
		{"darwin arm64", Host{"Darwin", "arm64", nil}, "aarch64-apple-darwin", "aarch64-apple-darwin", false},
		{"darwin x64 ignores libc", Host{"darwin", "x64", glibc("1.0")}, "x86_64-apple-darwin", "x86_64-apple-darwin", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &recordingLogger{}
			r := NewResolver(WithLogger(logger))

			got, err := r.Resolve(tt.host)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got.Triple != tt.wantTriple {
				t.Errorf("Triple = %q, want %q", got.Triple, tt.wantTriple)
			}
			if got.Arch+"-"+got.OS != got.Triple {
				t.Errorf("Arch %q + OS %q do not form Triple %q", got.Arch, got.OS, got.Triple)
			}
			if got.ArtifactTriple != tt.wantArtifact {
				t.Errorf("ArtifactTriple = %q, want %q", got.ArtifactTriple, tt.wantArtifact)
			}
			if gotWarn := len(logger.warnings) > 0; gotWarn != tt.wantWarn {
				t.Errorf("warned = %v, want %v (%v)", gotWarn, tt.wantWarn, logger.warnings)
			}
		})
	}
}

func TestResolve_Unsupported(t *testing.T) {
	tests := []struct {
		name       string
		host       Host
		wantTriple string
	}{
		{"windows", Host{"Windows_NT", "x64", nil}, "x86_64-pc-windows-msvc"},
		{"freebsd", Host{"FreeBSD", "x64", nil}, "x86_64-"},
		{"linux ia32", Host{"Linux", "ia32", glibc("2.35")}, "-unknown-linux-gnu"},
		{"darwin ppc", Host{"Darwin", "ppc64", nil}, "-apple-darwin"},
		{"all empty", Host{}, "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewResolver().Resolve(tt.host)
			if !errors.Is(err, ErrUnsupportedPlatform) {
				t.Fatalf("Resolve() error = %v, want ErrUnsupportedPlatform", err)
			}

			var upe *UnsupportedPlatformError
			if !errors.As(err, &upe) {
				t.Fatalf("error %T is not *UnsupportedPlatformError", err)
			}
			if upe.Triple != tt.wantTriple {
				t.Errorf("Triple = %q, want %q", upe.Triple, tt.wantTriple)
			}
			for _, triple := range SupportedTriples() {
				if !strings.Contains(err.Error(), triple) {
					t.Errorf("error message missing supported triple %q", triple)
				}
			}
		})
	}
}

func TestResolve_EveryTableEntry(t *testing.T) {
	hosts := map[string]Host{
		"x86_64-unknown-linux-gnu":           {"linux", "x64", glibc("2.35")},
		"x86_64-unknown-linux-musl-dynamic":  {"linux", "x64", musl()},
		"x86_64-unknown-linux-musl-static":   {"linux", "x64", glibc("2.17")},
		"x86_64-apple-darwin":                {"darwin", "x64", nil},
		"aarch64-unknown-linux-gnu":          {"linux", "arm64", glibc("2.40")},
		"aarch64-unknown-linux-musl-dynamic": {"linux", "arm64", musl()},
		"aarch64-unknown-linux-musl-static":  {"linux", "arm64", nil},
		"aarch64-apple-darwin":               {"darwin", "arm64", nil},
	}

	supported := SupportedTriples()
	if len(supported) != len(hosts) {
		t.Fatalf("SupportedTriples() has %d entries, test covers %d", len(supported), len(hosts))
	}

	for _, triple := range supported {
		host, ok := hosts[triple]
		if !ok {
			t.Errorf("no host fixture for supported triple %q", triple)
			continue
		}
		got, err := NewResolver().Resolve(host)
		if err != nil {
			t.Errorf("Resolve(%+v) error = %v", host, err)
			continue
		}
		if got.Triple != triple {
			t.Errorf("Resolve(%+v) = %q, want %q", host, got.Triple, triple)
		}
		if len(got.Bins) != 3 {
			t.Errorf("%s: Bins = %v, want rustc, cargo and rustdoc", triple, got.Bins)
		}
	}
}

func TestResolve_GlibcMonotonic(t *testing.T) {
	r := NewResolver()
	for major := 1; major <= 3; major++ {
		for minor := 0; minor <= 50; minor++ {
			v := fmt.Sprintf("%d.%d", major, minor)
			got, err := r.Resolve(Host{"linux", "x64", glibc(v)})
			if err != nil {
				t.Fatalf("Resolve(glibc %s) error = %v", v, err)
			}
			compatible := major == 2 && minor >= 35
			isGNU := got.OS == "unknown-linux-gnu"
			if compatible != isGNU {
				t.Errorf("glibc %s resolved to %q, compatible = %v", v, got.Triple, compatible)
			}
			if !isGNU && !strings.Contains(got.OS, "musl") {
				t.Errorf("glibc %s resolved to non-musl fallback %q", v, got.Triple)
			}
		}
	}
}

func TestResolve_CustomBaseline(t *testing.T) {
	r := NewResolver(WithBaseline(Baseline{Major: 2, Minor: 17}))

	got, err := r.Resolve(Host{"linux", "x64", glibc("2.17")})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.Triple != "x86_64-unknown-linux-gnu" {
		t.Errorf("Triple = %q, want x86_64-unknown-linux-gnu", got.Triple)
	}
}

func TestResolve_DescriptorIsCopied(t *testing.T) {
	r := NewResolver()
	first, err := r.Resolve(Host{"darwin", "arm64", nil})
	if err != nil {
		t.Fatal(err)
	}
	first.Bins["rustc"] = "tampered"

	second, err := r.Resolve(Host{"darwin", "arm64", nil})
	if err != nil {
		t.Fatal(err)
	}
	if second.Bins["rustc"] != "rustc/bin/rustc" {
		t.Errorf("table mutated through returned descriptor: %q", second.Bins["rustc"])
	}
}

func TestParseBaseline(t *testing.T) {
	tests := []struct {
		in      string
		want    Baseline
		wantErr bool
	}{
		{"2.35", Baseline{2, 35}, false},
		{" 2.17 ", Baseline{2, 17}, false},
		{"2", Baseline{}, true},
		{"2.x", Baseline{}, true},
		{"a.1", Baseline{}, true},
		{"", Baseline{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBaseline(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBaseline() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseBaseline() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSupportedTriples_Sorted(t *testing.T) {
	got := SupportedTriples()
	for i := 1; i < len(got); i++ {
		if got[i-1] > got[i] {
			t.Errorf("SupportedTriples() not sorted at %d: %q > %q", i, got[i-1], got[i])
		}
	}
}

func TestHostFromInfo(t *testing.T) {
	info := &platform.Info{OS: "linux", Arch: "", ArchRaw: "riscv64", Libc: musl()}
	host := HostFromInfo(info)
	if host.Arch != "riscv64" || host.OS != "linux" || host.Libc != info.Libc {
		t.Errorf("HostFromInfo() = %+v", host)
	}
}
