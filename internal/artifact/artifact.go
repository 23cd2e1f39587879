// Package artifact computes where a toolchain is downloaded from and where
// its binaries land once installed.
package artifact

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/ZebulonRouseFrantzich/rustboot/internal/target"
	"github.com/ZebulonRouseFrantzich/rustboot/internal/toolchain"
)

// Mode selects how a toolchain is installed.
type Mode string

const (
	// ModeArchive unpacks the standalone archive and uses its binaries in place.
	ModeArchive Mode = "archive"
	// ModeScript unpacks the standalone archive and runs its install.sh.
	ModeScript Mode = "script"
	// ModeRustup runs the rustup bootstrap script.
	ModeRustup Mode = "rustup"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeArchive, ModeScript, ModeRustup:
		return m, nil
	case "":
		return ModeArchive, nil
	default:
		return "", fmt.Errorf("unknown install strategy %q: want archive, script or rustup", s)
	}
}

// Default download locations.
const (
	DefaultBaseURL   = "https://static.rust-lang.org/dist"
	DefaultRustupURL = "https://sh.rustup.rs"
	RustupScriptName = "rustup.sh"
	InstallScript    = "install.sh"
)

// Options overrides the download hosts.
type Options struct {
	BaseURL   string
	RustupURL string
}

// Location is where one toolchain comes from and how to find its binaries.
type Location struct {
	Mode Mode
	URL  string
	// ArtifactName is the file name the download is saved as.
	ArtifactName string
	// ArchiveBase is the top-level directory inside the archive
	// (archive and script modes).
	ArchiveBase string
	// ToolchainName identifies the installed toolchain, e.g.
	// "nightly-x86_64-unknown-linux-gnu".
	ToolchainName string
	Format        string
	// Bins maps binary name to its path relative to the toolchain home
	// returned by Home.
	Bins map[string]string
}

// Locate computes the download location for t on channel ch.
func Locate(t *target.Target, ch toolchain.Channel, mode Mode, opts Options) (*Location, error) {
	if t == nil {
		return nil, fmt.Errorf("target is required")
	}
	if ch.IsZero() {
		return nil, fmt.Errorf("channel is required")
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	rustupURL := opts.RustupURL
	if rustupURL == "" {
		rustupURL = DefaultRustupURL
	}

	archiveBase := fmt.Sprintf("rust-%s-%s", ch.Name, t.ArtifactTriple)
	loc := &Location{
		Mode:          mode,
		ArchiveBase:   archiveBase,
		ToolchainName: ch.Name + "-" + t.ArtifactTriple,
		Format:        t.Format,
		Bins:          make(map[string]string, len(t.Bins)),
	}

	switch mode {
	case ModeArchive, ModeScript:
		name := archiveBase + "." + t.Format
		u, err := joinURL(baseURL, name)
		if err != nil {
			return nil, err
		}
		loc.URL = u
		loc.ArtifactName = name
		for bin, rel := range t.Bins {
			if mode == ModeArchive {
				loc.Bins[bin] = rel
			} else {
				loc.Bins[bin] = path.Join("bin", bin)
			}
		}
	case ModeRustup:
		if _, err := url.Parse(rustupURL); err != nil {
			return nil, fmt.Errorf("invalid rustup URL %q: %w", rustupURL, err)
		}
		loc.URL = rustupURL
		loc.ArtifactName = RustupScriptName
		loc.Format = ""
		for bin := range t.Bins {
			loc.Bins[bin] = path.Join("bin", bin)
		}
	default:
		return nil, fmt.Errorf("unknown install strategy %q", mode)
	}

	return loc, nil
}

// Home returns the directory Bins are relative to. root is the install root
// for archive and script modes and RUSTUP_HOME for rustup.
func (l *Location) Home(root string) string {
	switch l.Mode {
	case ModeRustup:
		return filepath.Join(root, "toolchains", l.ToolchainName)
	default:
		return filepath.Join(root, "toolchains", l.ArchiveBase)
	}
}

// BinPath returns the absolute path of an installed binary.
func (l *Location) BinPath(root, name string) (string, bool) {
	rel, ok := l.Bins[name]
	if !ok {
		return "", false
	}
	return filepath.Join(l.Home(root), filepath.FromSlash(rel)), true
}

func joinURL(base, name string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid base URL %q: scheme and host are required", base)
	}
	return u.JoinPath(name).String(), nil
}
