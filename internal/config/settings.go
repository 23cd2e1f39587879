package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ZebulonRouseFrantzich/rustboot/internal/artifact"
	"github.com/ZebulonRouseFrantzich/rustboot/internal/guard"
	"github.com/ZebulonRouseFrantzich/rustboot/internal/platform"
	"github.com/ZebulonRouseFrantzich/rustboot/internal/target"
)

// Location is the install scope.
type Location string

const (
	LocationGlobal Location = "global"
	LocationLocal  Location = "local"
)

// ErrUnknownInstallLocation is returned for a location other than global
// or local.
var ErrUnknownInstallLocation = errors.New("unknown install location")

// ParseLocation maps "" and "global" to LocationGlobal and "local" to
// LocationLocal. Values are compared exactly.
func ParseLocation(s string) (Location, error) {
	switch l := Location(s); l {
	case "", LocationGlobal:
		return LocationGlobal, nil
	case LocationLocal:
		return LocationLocal, nil
	default:
		return "", fmt.Errorf("%w: %q (want global or local)", ErrUnknownInstallLocation, s)
	}
}

// Settings is the resolved configuration of one invocation. It is built
// once by Load and passed explicitly from there.
type Settings struct {
	Mode     guard.Mode
	Location Location

	Toolchain string
	Manifest  string

	Strategy  artifact.Mode
	BaseURL   string
	RustupURL string

	// InstallRoot and BinDir are absolute.
	InstallRoot string
	BinDir      string
	// RustupHome is empty when the orchestrator default (InstallRoot/rustup)
	// applies. CargoHome is set only for local installs.
	RustupHome string
	CargoHome  string

	Binaries      []string
	GlibcBaseline target.Baseline
	GuardPolicy   guard.Policy
	Proxy         string

	SuppressLogs bool
	Verbose      bool

	// ConfigFile is the Lua file that was loaded, empty if none.
	ConfigFile string
	WorkingDir string
}

// LoadOptions controls Load.
type LoadOptions struct {
	// WorkingDir anchors local installs and relative paths. Defaults to the
	// process working directory.
	WorkingDir string
	// ConfigFile overrides the --config flag and RUSTBOOT_CONFIG.
	ConfigFile string
	// Flags are bound over every other layer. Only flags the user set take
	// effect.
	Flags *pflag.FlagSet
	// Detector feeds the platform table of the Lua config.
	Detector platform.Detector
	Logger   Logger
}

// RegisterFlags adds the setting flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(KeyMode, "", "install mode: force, skip or conditional (env "+EnvInstallMode+")")
	fs.String(KeyLocation, "", "install location: global or local (env "+EnvInstallLocation+")")
	fs.String(KeyToolchain, "", "toolchain descriptor, e.g. 1.76.0 or 1.2.0-nightly")
	fs.String(KeyManifest, "", "package manifest to read the version descriptor from")
	fs.String(KeyStrategy, "", "install strategy: archive, script or rustup")
	fs.String(KeyBaseURL, "", "base URL of the toolchain archives")
	fs.String(KeyRustupURL, "", "URL of the rustup bootstrap script")
	fs.String(KeyInstallRoot, "", "install root, overriding the location default")
	fs.String(KeyBinDir, "", "directory the binaries are exposed in")
	fs.StringSlice(KeyBinaries, nil, "binaries to expose")
	fs.String(KeyGlibcBaseline, "", "minimum glibc for gnu builds, e.g. 2.35")
	fs.String(KeyGuardPolicy, "", "how existing-rustc probes combine: any or all")
	fs.String(KeyProxy, "", "proxy URL, overriding HTTPS_PROXY and HTTP_PROXY")
	fs.Bool(KeySuppressLogs, false, "silence install progress")
}

// Load layers defaults, the Lua config file, the environment and flags, in
// increasing precedence, and validates the result.
func Load(ctx context.Context, opts LoadOptions) (*Settings, error) {
	logger := opts.Logger
	if logger == nil {
		logger = defaultLogger()
	}

	workingDir := strings.TrimSpace(opts.WorkingDir)
	if workingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determine working directory: %w", err)
		}
		workingDir = wd
	}
	workingDir, err := filepath.Abs(workingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(KeyMode, EnvInstallMode); err != nil {
		return nil, fmt.Errorf("bind %s: %w", EnvInstallMode, err)
	}
	if err := v.BindEnv(KeyLocation, EnvInstallLocation); err != nil {
		return nil, fmt.Errorf("bind %s: %w", EnvInstallLocation, err)
	}
	if opts.Flags != nil {
		if err := v.BindPFlags(opts.Flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	configFile, err := findConfigFile(v, opts.ConfigFile, workingDir)
	if err != nil {
		return nil, err
	}
	if configFile != "" {
		fileCfg, err := NewParser(opts.Detector).ParseFile(ctx, configFile)
		if err != nil {
			return nil, err
		}
		if err := v.MergeConfigMap(fileCfg.settingsMap()); err != nil {
			return nil, fmt.Errorf("merge %s: %w", configFile, err)
		}
		logger.Debug("loaded config file", "path", configFile)
	}

	s, err := build(v, workingDir)
	if err != nil {
		return nil, err
	}
	s.ConfigFile = configFile
	return s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyStrategy, string(artifact.ModeArchive))
	v.SetDefault(KeyBaseURL, artifact.DefaultBaseURL)
	v.SetDefault(KeyRustupURL, artifact.DefaultRustupURL)
	v.SetDefault(KeyBinaries, DefaultBinaries)
	v.SetDefault(KeyGlibcBaseline, target.DefaultBaseline.String())
	v.SetDefault(KeyGuardPolicy, string(guard.PolicyAny))
}

// findConfigFile returns the explicit config path, or rustboot.lua in the
// working directory if present. An explicit path must exist.
func findConfigFile(v *viper.Viper, explicit, workingDir string) (string, error) {
	path := strings.TrimSpace(explicit)
	if path == "" {
		path = strings.TrimSpace(v.GetString(KeyConfig))
	}
	if path != "" {
		path = absFrom(workingDir, path)
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return path, nil
	}

	path = filepath.Join(workingDir, DefaultConfigFile)
	info, err := os.Stat(path)
	switch {
	case err == nil && !info.IsDir():
		return path, nil
	case err == nil || errors.Is(err, os.ErrNotExist):
		return "", nil
	default:
		return "", fmt.Errorf("config file: %w", err)
	}
}

func build(v *viper.Viper, workingDir string) (*Settings, error) {
	location, err := ParseLocation(v.GetString(KeyLocation))
	if err != nil {
		return nil, err
	}
	strategy, err := artifact.ParseMode(v.GetString(KeyStrategy))
	if err != nil {
		return nil, &ValidationError{Field: KeyStrategy, Message: err.Error()}
	}
	policy, err := guard.ParsePolicy(v.GetString(KeyGuardPolicy))
	if err != nil {
		return nil, &ValidationError{Field: KeyGuardPolicy, Message: err.Error()}
	}
	baseline, err := target.ParseBaseline(v.GetString(KeyGlibcBaseline))
	if err != nil {
		return nil, &ValidationError{Field: KeyGlibcBaseline, Message: err.Error()}
	}

	s := &Settings{
		Mode:          guard.ParseMode(v.GetString(KeyMode)),
		Location:      location,
		Toolchain:     strings.TrimSpace(v.GetString(KeyToolchain)),
		Strategy:      strategy,
		BaseURL:       strings.TrimSpace(v.GetString(KeyBaseURL)),
		RustupURL:     strings.TrimSpace(v.GetString(KeyRustupURL)),
		Binaries:      splitList(v.GetStringSlice(KeyBinaries)),
		GlibcBaseline: baseline,
		GuardPolicy:   policy,
		Proxy:         strings.TrimSpace(v.GetString(KeyProxy)),
		SuppressLogs:  v.GetBool(KeySuppressLogs),
		Verbose:       v.GetBool(KeyVerbose),
		WorkingDir:    workingDir,
	}
	if len(s.Binaries) == 0 {
		s.Binaries = append([]string(nil), DefaultBinaries...)
	}

	for key, raw := range map[string]string{KeyBaseURL: s.BaseURL, KeyRustupURL: s.RustupURL, KeyProxy: s.Proxy} {
		if raw == "" {
			continue
		}
		if err := validateURL(raw); err != nil {
			return nil, &ValidationError{Field: key, Message: err.Error()}
		}
	}
	if err := validateBinaries(s.Binaries); err != nil {
		return nil, &ValidationError{Field: KeyBinaries, Message: err.Error()}
	}

	if m := strings.TrimSpace(v.GetString(KeyManifest)); m != "" {
		s.Manifest = absFrom(workingDir, m)
	}

	if err := s.resolvePaths(strings.TrimSpace(v.GetString(KeyInstallRoot)), strings.TrimSpace(v.GetString(KeyBinDir))); err != nil {
		return nil, err
	}
	return s, nil
}

// resolvePaths fills the install root, bin dir and rustup/cargo homes.
func (s *Settings) resolvePaths(installRoot, binDir string) error {
	if installRoot != "" {
		s.InstallRoot = absFrom(s.WorkingDir, installRoot)
	} else {
		root, err := DefaultRoot(s.Location, s.WorkingDir)
		if err != nil {
			return err
		}
		s.InstallRoot = root
	}

	if binDir != "" {
		s.BinDir = absFrom(s.WorkingDir, binDir)
	} else {
		s.BinDir = filepath.Join(s.InstallRoot, "bin")
	}

	if s.Location == LocationLocal {
		s.CargoHome = filepath.Join(s.InstallRoot, "cargo")
		return nil
	}
	home, err := globalRustupHome()
	if err != nil {
		return err
	}
	s.RustupHome = home
	return nil
}

// DefaultRoot returns the install root for location: workingDir/.rustboot
// for local, the user data directory for global.
func DefaultRoot(location Location, workingDir string) (string, error) {
	switch location {
	case LocationLocal:
		return filepath.Join(workingDir, LocalRootDir), nil
	case LocationGlobal, "":
		dataHome := os.Getenv(EnvXDGDataHome)
		if dataHome == "" || !filepath.IsAbs(dataHome) {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("get home directory: %w", err)
			}
			dataHome = filepath.Join(home, ".local", "share")
		}
		return filepath.Join(dataHome, "rustboot"), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownInstallLocation, location)
	}
}

// globalRustupHome is $RUSTUP_HOME, or ~/.rustup as rustup itself defaults.
func globalRustupHome() (string, error) {
	if home := os.Getenv(EnvRustupHome); home != "" {
		return home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".rustup"), nil
}

func absFrom(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

// splitList flattens comma-separated entries, as an environment variable
// like RUSTBOOT_BINARIES=rustc,cargo arrives as one element.
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
