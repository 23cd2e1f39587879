package target

import (
	"maps"
	"sort"
)

// standardBins is the layout of the standalone rust-<ch>-<triple> archive.
func standardBins() map[string]string {
	return map[string]string{
		"rustc":   "rustc/bin/rustc",
		"cargo":   "cargo/bin/cargo",
		"rustdoc": "rustc/bin/rustdoc",
	}
}

func entry(artifactTriple string) Descriptor {
	return Descriptor{
		ArtifactTriple: artifactTriple,
		Format:         FormatTarXZ,
		Bins:           standardBins(),
	}
}

// supported is the fixed set of platforms rustboot installs toolchains for.
// Keys are resolver triples, which distinguish dynamic and static musl.
var supported = map[string]Descriptor{
	"x86_64-unknown-linux-gnu":          entry("x86_64-unknown-linux-gnu"),
	"x86_64-unknown-linux-musl-dynamic": entry("x86_64-unknown-linux-musl"),
	"x86_64-unknown-linux-musl-static":  entry("x86_64-unknown-linux-musl"),
	"x86_64-apple-darwin":               entry("x86_64-apple-darwin"),

	"aarch64-unknown-linux-gnu":          entry("aarch64-unknown-linux-gnu"),
	"aarch64-unknown-linux-musl-dynamic": entry("aarch64-unknown-linux-musl"),
	"aarch64-unknown-linux-musl-static":  entry("aarch64-unknown-linux-musl"),
	"aarch64-apple-darwin":               entry("aarch64-apple-darwin"),
}

// SupportedTriples returns every supported triple in sorted order.
func SupportedTriples() []string {
	triples := make([]string, 0, len(supported))
	for triple := range supported {
		triples = append(triples, triple)
	}
	sort.Strings(triples)
	return triples
}

// Lookup returns a copy of the descriptor for a triple.
func Lookup(triple string) (Descriptor, bool) {
	d, ok := supported[triple]
	if !ok {
		return Descriptor{}, false
	}
	d.Bins = maps.Clone(d.Bins)
	return d, true
}
