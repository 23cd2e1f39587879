package install

import (
	"errors"
	"fmt"
)

var (
	// ErrDownloadFailed wraps network and HTTP failures while fetching an artifact.
	ErrDownloadFailed = errors.New("download failed")
	// ErrInstallScriptFailed wraps a failing install.sh or rustup bootstrap.
	ErrInstallScriptFailed = errors.New("install script failed")
	// ErrInstallFailed is returned when unpacking, verification or linking fails.
	ErrInstallFailed = errors.New("install failed")
	// ErrBinaryNotFound is returned by Run when the binary was never installed.
	ErrBinaryNotFound = errors.New("binary not found")
)

// BinaryNotFoundError names the binary Run could not find.
type BinaryNotFoundError struct {
	Name string
	Path string
}

func (e *BinaryNotFoundError) Error() string {
	return fmt.Sprintf("binary %q not found at %s", e.Name, e.Path)
}

// Is reports whether target matches ErrBinaryNotFound.
func (e *BinaryNotFoundError) Is(target error) bool {
	return target == ErrBinaryNotFound
}

// ScriptError carries the output of a failed install script.
type ScriptError struct {
	Script string
	Output string
	Err    error
}

func (e *ScriptError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s: %v", e.Script, e.Err)
	}
	return fmt.Sprintf("%s: %v\n%s", e.Script, e.Err, e.Output)
}

func (e *ScriptError) Unwrap() []error {
	return []error{ErrInstallScriptFailed, e.Err}
}
