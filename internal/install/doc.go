// Package install fetches a Rust toolchain and exposes its binaries.
//
// # Install flow
//
// An Orchestrator owns one install root. Install takes the install lock,
// asks the artifact locator for the download location, unpacks or runs the
// toolchain through a Strategy inside a staging directory, checks every
// expected binary exists, links the binaries into the exposure directory
// and writes a receipt:
//
//	orch, err := install.New(install.Config{
//	    Root: "/home/user/.local/share/rustboot",
//	    Mode: artifact.ModeArchive,
//	})
//	if err != nil {
//	    return err
//	}
//	res, err := orch.Install(ctx, install.Request{Target: tgt, Channel: ch})
//
// Three strategies exist: ArchiveStrategy uses the standalone archive's
// directory tree in place, ScriptStrategy runs the archive's install.sh
// with a prefix, RustupStrategy runs the rustup bootstrap script.
//
// # Errors
//
// Downloads wrap ErrDownloadFailed, script failures ErrInstallScriptFailed
// and everything after the download ErrInstallFailed. Nothing is retried.
// A failed install keeps its staging directory for inspection.
//
// # Running binaries
//
// Run starts an exposed binary with inherited stdio and returns its exit
// code; asking for a binary that was never installed yields ErrBinaryNotFound.
package install
