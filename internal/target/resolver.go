package target

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ZebulonRouseFrantzich/rustboot/internal/platform"
)

// Logger receives resolver warnings.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Error(msg string, keysAndValues ...interface{}) {}

// Baseline is the oldest glibc the gnu toolchains run against. A host glibc
// is compatible when its major equals Major and its minor is >= Minor.
type Baseline struct {
	Major int
	Minor int
}

// DefaultBaseline is glibc 2.35.
var DefaultBaseline = Baseline{Major: 2, Minor: 35}

// ParseBaseline parses "MAJOR.MINOR".
func ParseBaseline(s string) (Baseline, error) {
	majorStr, minorStr, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok {
		return Baseline{}, fmt.Errorf("invalid glibc baseline %q: want MAJOR.MINOR", s)
	}
	major, err := strconv.Atoi(majorStr)
	if err != nil || major < 0 {
		return Baseline{}, fmt.Errorf("invalid glibc baseline major %q", majorStr)
	}
	minor, err := strconv.Atoi(minorStr)
	if err != nil || minor < 0 {
		return Baseline{}, fmt.Errorf("invalid glibc baseline minor %q", minorStr)
	}
	return Baseline{Major: major, Minor: minor}, nil
}

func (b Baseline) String() string {
	return fmt.Sprintf("%d.%d", b.Major, b.Minor)
}

// Compatible reports whether a glibc version can run binaries built against b.
func (b Baseline) Compatible(major, minor int) bool {
	return major == b.Major && minor >= b.Minor
}

// Resolver turns a Host into a supported Target.
type Resolver struct {
	baseline Baseline
	logger   Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithBaseline overrides the glibc baseline.
func WithBaseline(b Baseline) Option {
	return func(r *Resolver) { r.baseline = b }
}

// WithLogger sets the logger used for libc fallback warnings.
func WithLogger(l Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a resolver using DefaultBaseline unless overridden.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{baseline: DefaultBaseline, logger: noopLogger{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve maps host onto a supported target. An unknown OS or architecture
// produces an empty triple component, which never matches the table.
func (r *Resolver) Resolve(host Host) (*Target, error) {
	osPart := mapOS(host.OS)
	archPart := mapArch(host.Arch)

	if osPart == osLinuxGNU {
		osPart = r.refineLinux(host.Libc)
	}

	triple := archPart + "-" + osPart
	desc, ok := Lookup(triple)
	if !ok || archPart == "" || osPart == "" {
		return nil, &UnsupportedPlatformError{
			OS:        host.OS,
			Arch:      host.Arch,
			Triple:    triple,
			Supported: SupportedTriples(),
		}
	}

	r.logger.Debug("resolved target", "triple", triple, "artifact", desc.ArtifactTriple)

	return &Target{
		Arch:       archPart,
		OS:         osPart,
		Triple:     triple,
		Descriptor: desc,
	}, nil
}

const (
	osLinuxGNU         = "unknown-linux-gnu"
	osLinuxMuslDynamic = "unknown-linux-musl-dynamic"
	osLinuxMuslStatic  = "unknown-linux-musl-static"
	osDarwin           = "apple-darwin"
	osWindows          = "pc-windows-msvc"
)

func mapOS(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "windows_nt", "windows":
		return osWindows
	case "darwin":
		return osDarwin
	case "linux":
		return osLinuxGNU
	default:
		return ""
	}
}

func mapArch(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "x64", "amd64", "x86_64":
		return "x86_64"
	case "arm64", "aarch64":
		return "aarch64"
	default:
		return ""
	}
}

// refineLinux picks the Linux OS component from the C library.
func (r *Resolver) refineLinux(libc *platform.Libc) string {
	if libc == nil || libc.Family == platform.LibcUnknown {
		r.logger.Warn("libc is neither glibc nor musl; trying static musl toolchain instead")
		return osLinuxMuslStatic
	}

	switch libc.Family {
	case platform.LibcMusl:
		return osLinuxMuslDynamic
	case platform.LibcGlibc:
		major, minor, err := libc.MajorMinor()
		if err != nil || !r.baseline.Compatible(major, minor) {
			r.logger.Warn("glibc is not compatible; trying static musl toolchain instead",
				"glibc", libc.Version, "baseline", r.baseline.String())
			return osLinuxMuslStatic
		}
		return osLinuxGNU
	default:
		r.logger.Warn("libc is neither glibc nor musl; trying static musl toolchain instead",
			"libc", string(libc.Family))
		return osLinuxMuslStatic
	}
}
