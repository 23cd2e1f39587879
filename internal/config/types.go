package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ZebulonRouseFrantzich/rustboot/internal/artifact"
	"github.com/ZebulonRouseFrantzich/rustboot/internal/guard"
	"github.com/ZebulonRouseFrantzich/rustboot/internal/target"
)

// FileConfig is the content of a rustboot.lua file: the fields of its global
// rustboot table. Empty fields are unset and fall through to defaults.
type FileConfig struct {
	Toolchain     string   `json:"toolchain,omitempty"`
	Manifest      string   `json:"manifest,omitempty"`
	Strategy      string   `json:"strategy,omitempty"`
	BaseURL       string   `json:"base_url,omitempty"`
	RustupURL     string   `json:"rustup_url,omitempty"`
	InstallRoot   string   `json:"install_root,omitempty"`
	BinDir        string   `json:"bin_dir,omitempty"`
	Binaries      []string `json:"binaries,omitempty"`
	GlibcBaseline string   `json:"glibc_baseline,omitempty"`
	GuardPolicy   string   `json:"guard_policy,omitempty"`
	Proxy         string   `json:"proxy,omitempty"`
}

// Validate checks the values a config file sets.
func (c *FileConfig) Validate() error {
	if c.Strategy != "" {
		if _, err := artifact.ParseMode(c.Strategy); err != nil {
			return &ValidationError{Field: luaFieldStrategy, Message: err.Error()}
		}
	}
	if c.GuardPolicy != "" {
		if _, err := guard.ParsePolicy(c.GuardPolicy); err != nil {
			return &ValidationError{Field: luaFieldGuardPolicy, Message: err.Error()}
		}
	}
	if c.GlibcBaseline != "" {
		if _, err := target.ParseBaseline(c.GlibcBaseline); err != nil {
			return &ValidationError{Field: luaFieldGlibcBaseline, Message: err.Error()}
		}
	}

	for field, raw := range map[string]string{
		luaFieldBaseURL:   c.BaseURL,
		luaFieldRustupURL: c.RustupURL,
		luaFieldProxy:     c.Proxy,
	} {
		if raw == "" {
			continue
		}
		if err := validateURL(raw); err != nil {
			return &ValidationError{Field: field, Message: err.Error()}
		}
	}

	if err := validateBinaries(c.Binaries); err != nil {
		return &ValidationError{Field: luaFieldBinaries, Message: err.Error()}
	}

	return nil
}

// settingsMap returns the set fields keyed by setting key, ready to merge
// into the settings layers.
func (c *FileConfig) settingsMap() map[string]any {
	m := make(map[string]any)
	set := func(key, value string) {
		if value != "" {
			m[key] = value
		}
	}
	set(KeyToolchain, c.Toolchain)
	set(KeyManifest, c.Manifest)
	set(KeyStrategy, c.Strategy)
	set(KeyBaseURL, c.BaseURL)
	set(KeyRustupURL, c.RustupURL)
	set(KeyInstallRoot, c.InstallRoot)
	set(KeyBinDir, c.BinDir)
	set(KeyGlibcBaseline, c.GlibcBaseline)
	set(KeyGuardPolicy, c.GuardPolicy)
	set(KeyProxy, c.Proxy)
	if len(c.Binaries) > 0 {
		m[KeyBinaries] = c.Binaries
	}
	return m
}

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "config validation failed for " + e.Field + ": " + e.Message
	}
	return "config validation failed: " + e.Message
}

// validateURL accepts absolute http and https URLs.
func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("URL must use https:// or http:// scheme (got: %q)", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host: %q", raw)
	}
	return nil
}

// validateBinaries rejects names that could escape the bin directory.
func validateBinaries(names []string) error {
	if len(names) > MaxBinaries {
		return fmt.Errorf("too many binaries (%d), maximum is %d", len(names), MaxBinaries)
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		switch {
		case name == "":
			return fmt.Errorf("binary name cannot be empty")
		case strings.ContainsAny(name, `/\`) || name == "." || name == "..":
			return fmt.Errorf("invalid binary name %q", name)
		case seen[name]:
			return fmt.Errorf("binary %q listed twice", name)
		}
		seen[name] = true
	}
	return nil
}
