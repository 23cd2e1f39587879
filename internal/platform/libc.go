package platform

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// LibcFamily identifies a C library implementation.
type LibcFamily string

const (
	LibcGlibc   LibcFamily = "glibc"
	LibcMusl    LibcFamily = "musl"
	LibcUnknown LibcFamily = ""
)

// Libc describes the C library found on a Linux host.
type Libc struct {
	Family  LibcFamily
	Version string // "2.35" for glibc, "1.2.4" for musl, may be empty
}

// MajorMinor parses the first two numeric components of Version.
func (l *Libc) MajorMinor() (int, int, error) {
	parts := strings.SplitN(l.Version, ".", 3)
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("malformed libc version %q", l.Version)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed libc major version %q: %w", parts[0], err)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed libc minor version %q: %w", parts[1], err)
	}
	return major, minor, nil
}

// LibcProbe inspects the running system for its C library.
type LibcProbe interface {
	Probe(ctx context.Context, distroFamily string) (*Libc, error)
}

// muslLoaderGlob matches the dynamic loader shipped by musl-based systems.
const muslLoaderGlob = "/lib/ld-musl-*.so.1"

var libcVersionRegex = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

// CommandProbe detects the C library with getconf and ldd, falling back to
// the musl loader on disk and the distribution family.
type CommandProbe struct {
	run  func(ctx context.Context, name string, args ...string) (string, error)
	glob func(pattern string) ([]string, error)
}

// NewCommandProbe creates a probe backed by real commands.
func NewCommandProbe() *CommandProbe {
	return &CommandProbe{
		run:  runCombined,
		glob: filepath.Glob,
	}
}

// Probe returns the detected libc. An unrecognized system yields a Libc
// with LibcUnknown family rather than an error.
func (p *CommandProbe) Probe(ctx context.Context, distroFamily string) (*Libc, error) {
	// getconf GNU_LIBC_VERSION prints "glibc 2.35" on glibc systems only
	if out, err := p.run(ctx, "getconf", "GNU_LIBC_VERSION"); err == nil {
		if fields := strings.Fields(out); len(fields) == 2 && strings.EqualFold(fields[0], "glibc") {
			return &Libc{Family: LibcGlibc, Version: fields[1]}, nil
		}
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// musl's ldd exits non-zero but still reports itself on stderr
	if out, _ := p.run(ctx, "ldd", "--version"); out != "" {
		if libc := parseLddOutput(out); libc != nil {
			return libc, nil
		}
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if matches, err := p.glob(muslLoaderGlob); err == nil && len(matches) > 0 {
		return &Libc{Family: LibcMusl}, nil
	}

	if distroFamily == FamilyAlpine {
		return &Libc{Family: LibcMusl}, nil
	}

	return &Libc{Family: LibcUnknown}, nil
}

// parseLddOutput recognizes glibc and musl banners printed by ldd --version.
func parseLddOutput(out string) *Libc {
	lower := strings.ToLower(out)
	switch {
	case strings.Contains(lower, "musl"):
		libc := &Libc{Family: LibcMusl}
		for _, line := range strings.Split(out, "\n") {
			if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "version") {
				libc.Version = libcVersionRegex.FindString(line)
				break
			}
		}
		return libc
	case strings.Contains(lower, "glibc") || strings.Contains(lower, "gnu libc") || strings.Contains(lower, "gnu c library"):
		firstLine, _, _ := strings.Cut(out, "\n")
		return &Libc{Family: LibcGlibc, Version: libcVersionRegex.FindString(firstLine)}
	default:
		return nil
	}
}

func runCombined(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	return strings.TrimSpace(string(out)), err
}
