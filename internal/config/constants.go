package config

// Lua schema field names and globals
const (
	luaGlobalRustboot     = "rustboot"
	luaFieldToolchain     = "toolchain"
	luaFieldManifest      = "manifest"
	luaFieldStrategy      = "strategy"
	luaFieldBaseURL       = "base_url"
	luaFieldRustupURL     = "rustup_url"
	luaFieldInstallRoot   = "install_root"
	luaFieldBinDir        = "bin_dir"
	luaFieldBinaries      = "binaries"
	luaFieldGlibcBaseline = "glibc_baseline"
	luaFieldGuardPolicy   = "guard_policy"
	luaFieldProxy         = "proxy"
)

// Setting keys. Flags share these names; RUSTBOOT_ plus the upper-cased key
// with dashes replaced by underscores is the matching environment variable.
const (
	KeyConfig        = "config"
	KeyMode          = "mode"
	KeyLocation      = "location"
	KeyToolchain     = "toolchain"
	KeyManifest      = "manifest"
	KeyStrategy      = "strategy"
	KeyBaseURL       = "base-url"
	KeyRustupURL     = "rustup-url"
	KeyInstallRoot   = "install-root"
	KeyBinDir        = "bin-dir"
	KeyBinaries      = "binaries"
	KeyGlibcBaseline = "glibc-baseline"
	KeyGuardPolicy   = "guard-policy"
	KeyProxy         = "proxy"
	KeySuppressLogs  = "suppress-logs"
	KeyVerbose       = "verbose"
)

// Environment variables read outside the RUSTBOOT_ prefix.
const (
	EnvPrefix          = "RUSTBOOT"
	EnvInstallMode     = "RUST_INSTALL_MODE"
	EnvInstallLocation = "RUST_INSTALL_LOCATION"
	EnvRustupHome      = "RUSTUP_HOME"
	EnvXDGDataHome     = "XDG_DATA_HOME"
)

const (
	// DefaultConfigFile is looked up in the working directory when no
	// config file is given.
	DefaultConfigFile = "rustboot.lua"

	// LocalRootDir is the install root under the working directory for a
	// local install.
	LocalRootDir = ".rustboot"

	// MaxConfigSize bounds the Lua config file read from disk.
	MaxConfigSize = 1 << 20

	// MaxBinaries bounds the binaries list.
	MaxBinaries = 64
)

// DefaultBinaries are exposed when no binaries are configured.
var DefaultBinaries = []string{"rustc", "cargo", "rustdoc"}
