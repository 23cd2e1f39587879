package shell

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// parentProcess returns the name and executable of the parent process.
// Replaced in tests.
var parentProcess = func(ctx context.Context) (name, exe string, err error) {
	p, err := process.NewProcessWithContext(ctx, int32(os.Getppid()))
	if err != nil {
		return "", "", err
	}
	name, err = p.NameWithContext(ctx)
	if err != nil {
		return "", "", err
	}
	// the executable is informational; some platforms refuse to report it
	exe, _ = p.ExeWithContext(ctx)
	return name, exe, nil
}

// DetectShell detects the user's shell: $SHELL first, then the parent
// process. An undetectable shell is not an error; the result reports
// ShellUnknown.
func DetectShell(ctx context.Context) (*DetectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if shell := os.Getenv("SHELL"); shell != "" {
		shellType := parseShellFromPath(shell)
		if shellType.IsValid() {
			return &DetectionResult{
				Shell:      shellType,
				Method:     "$SHELL environment variable",
				ShellPath:  shell,
				Confidence: "high",
			}, nil
		}
	}

	if shellType, shellPath := detectFromParentProcess(ctx); shellType.IsValid() {
		return &DetectionResult{
			Shell:      shellType,
			Method:     "parent process",
			ShellPath:  shellPath,
			Confidence: "medium",
		}, nil
	}

	return &DetectionResult{
		Shell:      ShellUnknown,
		Method:     "detection failed",
		Confidence: "none",
	}, nil
}

// parseShellFromPath extracts the shell type from a shell binary path
// Examples:
//   - /bin/bash -> bash
//   - /usr/bin/zsh -> zsh
//   - -zsh (login shell) -> zsh
func parseShellFromPath(shellPath string) ShellType {
	baseName := strings.ToLower(filepath.Base(shellPath))
	baseName = strings.TrimPrefix(baseName, "-")
	baseName = strings.TrimSuffix(baseName, ".exe")

	switch baseName {
	case "bash":
		return ShellBash
	case "zsh":
		return ShellZsh
	case "fish":
		return ShellFish
	default:
		return ShellUnknown
	}
}

// detectFromParentProcess identifies the shell that launched rustboot.
func detectFromParentProcess(ctx context.Context) (ShellType, string) {
	name, exe, err := parentProcess(ctx)
	if err != nil {
		return ShellUnknown, ""
	}
	shellType := parseShellFromPath(name)
	if !shellType.IsValid() && exe != "" {
		shellType = parseShellFromPath(exe)
	}
	if exe == "" {
		exe = name
	}
	return shellType, exe
}

// ValidateShell validates that a shell type is supported
func ValidateShell(shell ShellType) error {
	if !shell.IsValid() {
		return &UnsupportedShellError{Shell: shell.String()}
	}
	return nil
}

// ParseShell maps a shell name to its type.
func ParseShell(name string) (ShellType, error) {
	shell := ShellType(strings.ToLower(strings.TrimSpace(name)))
	if err := ValidateShell(shell); err != nil {
		return ShellUnknown, err
	}
	return shell, nil
}

// GetSupportedShells returns a list of supported shells
func GetSupportedShells() []ShellType {
	return []ShellType{ShellBash, ShellZsh, ShellFish}
}
