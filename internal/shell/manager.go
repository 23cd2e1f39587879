package shell

import (
	"context"
	"fmt"
)

// Manager orchestrates shell integration setup
type Manager struct {
	detect func(ctx context.Context) (*DetectionResult, error)
}

// NewManager creates a new shell manager
func NewManager() *Manager {
	return &Manager{detect: DetectShell}
}

// SetupIntegration adds the activation line to the rc file of shell unless
// it is already there.
func (m *Manager) SetupIntegration(shell ShellType, opts SetupOptions) (*SetupResult, error) {
	if err := ValidateShell(shell); err != nil {
		return nil, err
	}

	rcPath, err := GetRCFilePath(shell)
	if err != nil {
		return nil, fmt.Errorf("get RC file path: %w", err)
	}

	activationCmd, err := GenerateActivationCommand(shell)
	if err != nil {
		return nil, fmt.Errorf("generate activation command: %w", err)
	}

	exists, err := RCFileExists(rcPath)
	if err != nil {
		return nil, fmt.Errorf("check RC file: %w", err)
	}

	hasActivation := false
	if exists {
		hasActivation, err = HasActivationLine(rcPath)
		if err != nil {
			return nil, fmt.Errorf("check activation line: %w", err)
		}
	}

	result := &SetupResult{
		Shell:             shell,
		RCFile:            rcPath,
		AlreadyPresent:    hasActivation,
		ActivationCommand: activationCmd,
	}
	if (hasActivation && !opts.Force) || opts.DryRun {
		return result, nil
	}

	if !exists {
		if err := CreateRCFile(rcPath); err != nil {
			return nil, fmt.Errorf("create RC file: %w", err)
		}
	} else if opts.Backup {
		result.BackupPath, err = BackupRCFile(rcPath)
		if err != nil {
			return nil, fmt.Errorf("backup RC file: %w", err)
		}
	}

	if err := AddActivationLine(rcPath, activationCmd); err != nil {
		return nil, fmt.Errorf("add activation line: %w", err)
	}
	result.Added = true
	return result, nil
}

// DetectAndSetup detects the user's shell and sets up integration
func (m *Manager) DetectAndSetup(ctx context.Context, opts SetupOptions) (*SetupResult, error) {
	detection, err := m.detect(ctx)
	if err != nil {
		return nil, fmt.Errorf("detect shell: %w", err)
	}

	if !detection.Shell.IsValid() {
		return nil, &UnsupportedShellError{Shell: detection.ShellPath}
	}

	return m.SetupIntegration(detection.Shell, opts)
}
