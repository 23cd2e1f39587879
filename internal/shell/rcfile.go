package shell

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

func rcErr(path, msg string, cause error) *RCFileError {
	return &RCFileError{Path: path, Message: msg, Cause: cause}
}

// GetRCFilePath returns the rc file rustboot edits for shell.
func GetRCFilePath(shell ShellType) (string, error) {
	if err := ValidateShell(shell); err != nil {
		return "", err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	switch shell {
	case ShellBash:
		return filepath.Join(home, ".bashrc"), nil
	case ShellZsh:
		return filepath.Join(home, ".zshrc"), nil
	case ShellFish:
		return filepath.Join(home, ".config", "fish", "config.fish"), nil
	}
	return "", &UnsupportedShellError{Shell: shell.String()}
}

// RCFileExists reports whether rcPath is an existing regular file. Anything
// else at that path is an error.
func RCFileExists(rcPath string) (bool, error) {
	info, err := os.Stat(rcPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, rcErr(rcPath, "failed to stat file", err)
	case !info.Mode().IsRegular():
		return false, rcErr(rcPath, "not a regular file", nil)
	}
	return true, nil
}

// CreateRCFile creates rcPath and its parent directories. It fails if the
// file already exists.
func CreateRCFile(rcPath string) error {
	if err := os.MkdirAll(filepath.Dir(rcPath), 0o755); err != nil {
		return rcErr(rcPath, "failed to create parent directory", err)
	}

	f, err := os.OpenFile(rcPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return rcErr(rcPath, "failed to create file", err)
	}
	if _, err := f.WriteString("# Shell configuration\n"); err != nil {
		f.Close()
		return rcErr(rcPath, "failed to write header", err)
	}
	return f.Close()
}

// HasActivationLine checks if the RC file already runs the activation
// command. Commented-out lines don't count.
func HasActivationLine(rcPath string) (bool, error) {
	f, err := os.Open(rcPath)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, rcErr(rcPath, "failed to open file", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "#") && strings.Contains(line, ActivationMarker) {
			return true, nil
		}
	}
	if err := sc.Err(); err != nil {
		return false, rcErr(rcPath, "failed to read file", err)
	}
	return false, nil
}

// BackupRCFile copies rcPath to rcPath+BackupSuffix with the same
// permissions and returns the backup path.
func BackupRCFile(rcPath string) (string, error) {
	info, err := os.Stat(rcPath)
	if err != nil {
		return "", rcErr(rcPath, "failed to stat file for backup", err)
	}
	content, err := os.ReadFile(rcPath)
	if err != nil {
		return "", rcErr(rcPath, "failed to read file for backup", err)
	}

	backupPath := rcPath + BackupSuffix
	if err := os.WriteFile(backupPath, content, info.Mode().Perm()); err != nil {
		return "", rcErr(backupPath, "failed to write backup file", err)
	}
	return backupPath, nil
}

// AddActivationLine appends the activation section to the RC file through a
// temporary file and rename, keeping the file's permissions. A symlinked rc
// file is written through, not replaced.
func AddActivationLine(rcPath string, activationCommand string) error {
	if strings.ContainsAny(activationCommand, "\n\r") {
		return rcErr(rcPath, "activation command must be a single line", nil)
	}

	exists, err := RCFileExists(rcPath)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	perm := os.FileMode(0o644)
	if exists {
		if resolved, err := filepath.EvalSymlinks(rcPath); err == nil {
			rcPath = resolved
		}
		info, err := os.Stat(rcPath)
		if err != nil {
			return rcErr(rcPath, "failed to stat file", err)
		}
		perm = info.Mode().Perm()

		existing, err := os.ReadFile(rcPath)
		if err != nil {
			return rcErr(rcPath, "failed to read existing file", err)
		}
		buf.Write(existing)
		if len(existing) > 0 && existing[len(existing)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	fmt.Fprintf(&buf, "\n%s\n%s\n", sectionComment, activationCommand)

	return replaceFile(rcPath, buf.Bytes(), perm)
}

// replaceFile swaps data into path via a synced temp file in the same
// directory.
func replaceFile(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".rustboot-tmp-*")
	if err != nil {
		return rcErr(path, "failed to create temporary file", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return rcErr(path, "failed to write temporary file", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return rcErr(path, "failed to set permissions", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return rcErr(path, "failed to sync file", err)
	}
	if err := tmp.Close(); err != nil {
		return rcErr(path, "failed to close temporary file", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return rcErr(path, "failed to rename temp file", err)
	}
	return nil
}
