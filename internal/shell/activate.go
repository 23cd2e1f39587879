package shell

import (
	"fmt"
	"strings"
)

// GenerateActivationCommand returns the line users add to their rc file.
func GenerateActivationCommand(shell ShellType) (string, error) {
	if err := ValidateShell(shell); err != nil {
		return "", err
	}

	switch shell {
	case ShellBash, ShellZsh:
		return fmt.Sprintf(`eval "$(%s %s)"`, ActivationMarker, shell), nil
	case ShellFish:
		// Fish uses pipe to source
		return fmt.Sprintf("%s %s | source", ActivationMarker, shell), nil
	default:
		return "", &UnsupportedShellError{Shell: shell.String()}
	}
}

// EnvScript returns shell code that prepends binDir to PATH unless it is
// already there, so evaluating it twice changes nothing.
func EnvScript(shell ShellType, binDir string) (string, error) {
	if err := ValidateShell(shell); err != nil {
		return "", err
	}
	if binDir == "" {
		return "", fmt.Errorf("bin directory is required")
	}
	if strings.ContainsAny(binDir, "\n\r\x00") {
		return "", fmt.Errorf("bin directory contains control characters: %q", binDir)
	}

	dir := quote(binDir)
	var b strings.Builder
	switch shell {
	case ShellBash, ShellZsh:
		fmt.Fprintf(&b, "case \":${PATH}:\" in\n")
		fmt.Fprintf(&b, "  *:%s:*) ;;\n", dir)
		fmt.Fprintf(&b, "  *) export PATH=%s\"${PATH:+:${PATH}}\" ;;\n", dir)
		fmt.Fprintf(&b, "esac\n")
	case ShellFish:
		fmt.Fprintf(&b, "if not contains -- %s $PATH\n", dir)
		fmt.Fprintf(&b, "    set -gx PATH %s $PATH\n", dir)
		fmt.Fprintf(&b, "end\n")
	}
	return b.String(), nil
}

// quote single-quotes s. Both POSIX shells and fish read '\'' as a literal
// quote inside a single-quoted word.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
