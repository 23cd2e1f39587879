package toolchain

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Default file names searched in the working directory.
const (
	ManifestFile      = "package.json"
	ToolchainFile     = "rust-toolchain.toml"
	ToolchainFileBare = "rust-toolchain"
)

// ErrNoDescriptor is returned by Discover when no source names a channel.
var ErrNoDescriptor = errors.New("no toolchain descriptor found")

// ReadManifest returns the "version" field of a package manifest.
func ReadManifest(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read manifest: %w", err)
	}

	var manifest struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return "", fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return manifest.Version, nil
}

type toolchainFile struct {
	Toolchain struct {
		Channel string `toml:"channel"`
	} `toml:"toolchain"`
}

// ReadToolchainFile returns [toolchain].channel from a rust-toolchain.toml.
// The legacy rust-toolchain format holding only a channel name is accepted
// too.
func ReadToolchainFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read toolchain file: %w", err)
	}

	var tf toolchainFile
	if _, err := toml.Decode(string(data), &tf); err != nil {
		if filepath.Ext(path) == ".toml" {
			return "", fmt.Errorf("parse toolchain file %s: %w", path, err)
		}
		return firstLine(data), nil
	}
	if tf.Toolchain.Channel == "" && filepath.Ext(path) != ".toml" {
		return firstLine(data), nil
	}
	return tf.Toolchain.Channel, nil
}

func firstLine(data []byte) string {
	line, _, _ := strings.Cut(string(data), "\n")
	return strings.TrimSpace(line)
}

// Source reports where a channel was selected from.
type Source string

const (
	SourceFlag          Source = "flag"
	SourceConfig        Source = "config"
	SourceManifest      Source = "manifest"
	SourceToolchainFile Source = "toolchain-file"
)

// Discovery describes the channel chosen by Discover.
type Discovery struct {
	Channel    Channel
	Source     Source
	Descriptor string
	Path       string
}

// Discover picks the channel for dir. A configured descriptor wins; then the
// version of the manifest (manifestPath, or dir/package.json); then a
// rust-toolchain.toml or rust-toolchain file in dir.
func Discover(dir, descriptor, manifestPath string) (*Discovery, error) {
	if descriptor != "" {
		ch, err := Select(descriptor)
		if err != nil {
			return nil, err
		}
		return &Discovery{Channel: ch, Source: SourceConfig, Descriptor: descriptor}, nil
	}

	if manifestPath == "" {
		manifestPath = filepath.Join(dir, ManifestFile)
	}
	version, err := ReadManifest(manifestPath)
	switch {
	case err == nil && version != "":
		ch, err := Select(version)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", manifestPath, err)
		}
		return &Discovery{Channel: ch, Source: SourceManifest, Descriptor: version, Path: manifestPath}, nil
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	for _, name := range []string{ToolchainFile, ToolchainFileBare} {
		path := filepath.Join(dir, name)
		channel, err := ReadToolchainFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if channel == "" {
			continue
		}
		ch, err := ParseChannel(channel)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &Discovery{Channel: ch, Source: SourceToolchainFile, Descriptor: channel, Path: path}, nil
	}

	return nil, ErrNoDescriptor
}
