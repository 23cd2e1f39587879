// Package config resolves the settings of one rustboot invocation.
//
// # Layers
//
// Settings are layered with viper, lowest precedence first:
//   - built-in defaults (archive strategy, static.rust-lang.org, rustc/cargo/rustdoc)
//   - a Lua config file: --config, RUSTBOOT_CONFIG, or rustboot.lua in the working directory
//   - the environment: RUST_INSTALL_MODE, RUST_INSTALL_LOCATION and RUSTBOOT_<KEY>
//   - command-line flags the user actually set
//
// Load validates the merged values and resolves every path to an absolute
// one, so callers never look at the environment again.
//
// # Lua Config
//
// The config file runs in a sandboxed gopher-lua VM. os, io, debug, the code
// loaders and the raw/metatable functions are removed; string, table and math
// remain. A read-only platform table describes the host:
//
//	rustboot = {
//	  toolchain = "1.76.0",
//	  strategy = platform.is_alpine and "rustup" or "archive",
//	  bin_dir = "node_modules/.bin",
//	  binaries = { "rustc", "cargo", platform.when(platform.is_linux, "rustdoc") },
//	  glibc_baseline = "2.31",
//	  guard_policy = "all",
//	}
//
// A file that never assigns the rustboot global contributes nothing.
//
// # Error Types
//
//	type ParseError struct {
//	    File    string
//	    Message string  // User-friendly message
//	    Detail  string  // Raw Lua error
//	}
//
//	type ValidationError struct {
//	    Field   string
//	    Message string
//	}
//
// FormatError renders a ParseError briefly, or with the full Lua detail in
// verbose mode. An unknown install location wraps ErrUnknownInstallLocation.
package config
