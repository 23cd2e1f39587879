package shell

import (
	"context"
	"errors"
	"testing"
)

func stubParent(t *testing.T, name, exe string, err error) {
	t.Helper()
	orig := parentProcess
	parentProcess = func(context.Context) (string, string, error) { return name, exe, err }
	t.Cleanup(func() { parentProcess = orig })
}

func TestDetectShell(t *testing.T) {
	tests := []struct {
		name       string
		shellEnv   string
		parentName string
		parentExe  string
		parentErr  error
		want       ShellType
		wantMethod string
	}{
		{
			name:       "SHELL wins",
			shellEnv:   "/usr/bin/zsh",
			parentName: "fish",
			want:       ShellZsh,
			wantMethod: "$SHELL environment variable",
		},
		{
			name:       "unsupported SHELL falls back to parent",
			shellEnv:   "/bin/sh",
			parentName: "-bash",
			parentExe:  "/bin/bash",
			want:       ShellBash,
			wantMethod: "parent process",
		},
		{
			name:       "neither SHELL nor parent is a shell",
			parentName: "node",
			parentExe:  "/usr/bin/node",
			want:       ShellUnknown,
			wantMethod: "detection failed",
		},
		{
			name:       "parent exe used when name is opaque",
			parentName: "login-wrapper",
			parentExe:  "/usr/local/bin/fish",
			want:       ShellFish,
			wantMethod: "parent process",
		},
		{
			name:       "parent lookup fails",
			parentErr:  errors.New("no such process"),
			want:       ShellUnknown,
			wantMethod: "detection failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SHELL", tt.shellEnv)
			stubParent(t, tt.parentName, tt.parentExe, tt.parentErr)

			got, err := DetectShell(context.Background())
			if err != nil {
				t.Fatalf("DetectShell() error = %v", err)
			}
			if got.Shell != tt.want {
				t.Errorf("Shell = %v, want %v", got.Shell, tt.want)
			}
			if got.Method != tt.wantMethod {
				t.Errorf("Method = %q, want %q", got.Method, tt.wantMethod)
			}
		})
	}
}

func TestDetectShell_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := DetectShell(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("DetectShell() error = %v, want context.Canceled", err)
	}
}

func TestParseShellFromPath(t *testing.T) {
	tests := []struct {
		path string
		want ShellType
	}{
		{"/bin/bash", ShellBash},
		{"/usr/bin/zsh", ShellZsh},
		{"/usr/local/bin/fish", ShellFish},
		{"/BIN/BASH", ShellBash},
		{"-zsh", ShellZsh},
		{"bash.exe", ShellBash},
		{"/bin/sh", ShellUnknown},
		{"/usr/bin/tcsh", ShellUnknown},
		{"", ShellUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := parseShellFromPath(tt.path); got != tt.want {
				t.Errorf("parseShellFromPath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestParseShell(t *testing.T) {
	for _, name := range []string{"bash", "ZSH", " fish "} {
		if _, err := ParseShell(name); err != nil {
			t.Errorf("ParseShell(%q) error = %v", name, err)
		}
	}

	_, err := ParseShell("powershell")
	var unsupported *UnsupportedShellError
	if !errors.As(err, &unsupported) {
		t.Errorf("ParseShell(powershell) error = %v, want UnsupportedShellError", err)
	}
}

func TestShellType_IsValid(t *testing.T) {
	for _, s := range GetSupportedShells() {
		if !s.IsValid() {
			t.Errorf("%v.IsValid() = false", s)
		}
	}
	if ShellUnknown.IsValid() || ShellType("sh").IsValid() {
		t.Error("unsupported shells reported valid")
	}
}
