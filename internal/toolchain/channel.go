// Package toolchain selects the Rust release channel to install from a
// version descriptor.
//
// A descriptor is either a package-style version ("1.2.0-nightly",
// "1.2.0-beta", "1.2.0-stable"), which selects the named channel, or a
// bare MAJOR.MINOR.PATCH, which pins that exact release.
package toolchain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Channel names.
const (
	Stable  = "stable"
	Beta    = "beta"
	Nightly = "nightly"
)

// ErrUnknownToolchain is returned for descriptors that match no pattern.
var ErrUnknownToolchain = errors.New("unknown toolchain")

// UnknownToolchainError carries the rejected descriptor.
type UnknownToolchainError struct {
	Descriptor string
}

func (e *UnknownToolchainError) Error() string {
	return fmt.Sprintf("unknown toolchain %q: want MAJOR.MINOR.PATCH optionally suffixed with -stable, -beta or -nightly", e.Descriptor)
}

// Is reports whether target matches ErrUnknownToolchain.
func (e *UnknownToolchainError) Is(target error) bool {
	return target == ErrUnknownToolchain
}

// Channel is a selected release channel. Name is "stable", "beta",
// "nightly" or a pinned MAJOR.MINOR.PATCH version.
type Channel struct {
	Name   string
	Pinned bool
}

func (c Channel) String() string {
	return c.Name
}

// IsZero reports whether no channel has been selected.
func (c Channel) IsZero() bool {
	return c.Name == ""
}

var versionRegex = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

var suffixes = []struct {
	suffix  string
	channel string
}{
	{"-nightly", Nightly},
	{"-beta", Beta},
	{"-stable", Stable},
}

// Select maps a version descriptor to a channel. Suffixes are checked in
// the order nightly, beta, stable, then the strict version pattern.
func Select(descriptor string) (Channel, error) {
	d := strings.TrimSpace(descriptor)

	for _, s := range suffixes {
		if prefix, ok := strings.CutSuffix(d, s.suffix); ok && versionRegex.MatchString(prefix) {
			return Channel{Name: s.channel}, nil
		}
	}

	if versionRegex.MatchString(d) {
		return Channel{Name: d, Pinned: true}, nil
	}

	return Channel{}, &UnknownToolchainError{Descriptor: descriptor}
}

// ParseChannel accepts a bare channel name or a pinned version, as found in
// rust-toolchain.toml or passed on the command line.
func ParseChannel(name string) (Channel, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case Stable, Beta, Nightly:
		return Channel{Name: n}, nil
	}
	if versionRegex.MatchString(n) {
		return Channel{Name: n, Pinned: true}, nil
	}
	return Channel{}, &UnknownToolchainError{Descriptor: name}
}
