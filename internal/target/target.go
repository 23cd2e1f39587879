// Package target maps a host (OS, CPU architecture, C library) onto a Rust
// target triple and looks it up in the table of platforms rustboot ships
// toolchains for.
package target

import (
	"sort"

	"github.com/ZebulonRouseFrantzich/rustboot/internal/platform"
)

// Archive formats published on the upstream dist server.
const (
	FormatTarXZ = "tar.xz"
	FormatTarGZ = "tar.gz"
)

// Host is the raw input to resolution. OS and Arch accept Go, uname and
// Node.js spellings ("Linux", "x64", "aarch64", ...).
type Host struct {
	OS   string
	Arch string
	// Libc is consulted on Linux only. nil means the probe found nothing.
	Libc *platform.Libc
}

// HostFromInfo builds a Host from detected platform information. The raw
// architecture is used so that unsupported CPUs still show up in errors.
func HostFromInfo(info *platform.Info) Host {
	return Host{OS: info.OS, Arch: info.ArchRaw, Libc: info.Libc}
}

// Descriptor says how to fetch and unpack the toolchain for one triple.
type Descriptor struct {
	// ArtifactTriple is the triple used in upstream file names. Both musl
	// variants share x86_64-unknown-linux-musl / aarch64-unknown-linux-musl.
	ArtifactTriple string
	Format         string
	// Bins maps binary name to its path inside the unpacked archive
	// directory rust-<channel>-<ArtifactTriple>/.
	Bins map[string]string
}

// BinNames returns the binary names in Bins in a stable order.
func (d Descriptor) BinNames() []string {
	names := make([]string, 0, len(d.Bins))
	for name := range d.Bins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Target is a resolved, supported platform.
type Target struct {
	Arch   string // "x86_64", "aarch64"
	OS     string // "unknown-linux-gnu", "apple-darwin", ...
	Triple string // Arch + "-" + OS
	Descriptor
}
