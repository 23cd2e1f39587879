// Package guard decides whether an install hook should install a toolchain
// at all.
package guard

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
)

// Mode is the install mode read from RUST_INSTALL_MODE.
type Mode string

const (
	ModeForce       Mode = "force"
	ModeSkip        Mode = "skip"
	ModeConditional Mode = "conditional"
)

// ParseMode maps exactly "force" and "skip" to their modes; anything else,
// including "FORCE" and the empty string, is conditional.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeForce:
		return ModeForce
	case ModeSkip:
		return ModeSkip
	default:
		return ModeConditional
	}
}

// Policy combines probe results in conditional mode.
type Policy string

const (
	// PolicyAny installs only when no probe finds rustc.
	PolicyAny Policy = "any"
	// PolicyAll installs unless every probe finds rustc.
	PolicyAll Policy = "all"
)

// ParsePolicy validates a policy name; empty means PolicyAny.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyAny, PolicyAll:
		return p, nil
	case "":
		return PolicyAny, nil
	default:
		return "", fmt.Errorf("unknown guard policy %q: want any or all", s)
	}
}

// Probe looks for an existing toolchain.
type Probe interface {
	Name() string
	Found(ctx context.Context) (bool, error)
}

// PathProbe checks for an executable regular file at Path.
type PathProbe struct {
	Path string
}

// DefaultPathProbe checks ~/.cargo/bin/rustc.
func DefaultPathProbe() (*PathProbe, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home directory: %w", err)
	}
	return &PathProbe{Path: filepath.Join(home, ".cargo", "bin", "rustc")}, nil
}

func (p *PathProbe) Name() string { return "path:" + p.Path }

func (p *PathProbe) Found(ctx context.Context) (bool, error) {
	info, err := os.Stat(p.Path)
	if err != nil {
		// ENOTDIR: a path component such as ~/.cargo is a file
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", p.Path, err)
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0, nil
}

// LookupProbe searches PATH for Command.
type LookupProbe struct {
	Command  string
	lookPath func(string) (string, error)
}

// NewLookupProbe creates a probe for command on PATH.
func NewLookupProbe(command string) *LookupProbe {
	return &LookupProbe{Command: command, lookPath: exec.LookPath}
}

func (p *LookupProbe) Name() string { return "lookup:" + p.Command }

func (p *LookupProbe) Found(ctx context.Context) (bool, error) {
	_, err := p.lookPath(p.Command)
	return err == nil, nil
}

// Decision is the outcome of Decide.
type Decision struct {
	Install bool
	Reason  string
}

// Guard decides whether to install.
type Guard struct {
	probes []Probe
	policy Policy
}

// New creates a guard over probes combined with policy.
func New(policy Policy, probes ...Probe) *Guard {
	if policy == "" {
		policy = PolicyAny
	}
	return &Guard{probes: probes, policy: policy}
}

// Decide applies mode. Probes run only in conditional mode.
func (g *Guard) Decide(ctx context.Context, mode Mode) (Decision, error) {
	switch mode {
	case ModeForce:
		return Decision{Install: true, Reason: "install mode is force"}, nil
	case ModeSkip:
		return Decision{Install: false, Reason: "install mode is skip"}, nil
	}

	var found []string
	for _, p := range g.probes {
		if err := ctx.Err(); err != nil {
			return Decision{}, err
		}
		ok, err := p.Found(ctx)
		if err != nil {
			return Decision{}, fmt.Errorf("probe %s: %w", p.Name(), err)
		}
		if ok {
			found = append(found, p.Name())
		}
	}

	var install bool
	switch g.policy {
	case PolicyAll:
		install = len(g.probes) == 0 || len(found) < len(g.probes)
	default:
		install = len(found) == 0
	}

	if install {
		if len(found) == 0 {
			return Decision{Install: true, Reason: "no existing rustc found"}, nil
		}
		return Decision{Install: true, Reason: fmt.Sprintf("rustc found only by %s", strings.Join(found, ", "))}, nil
	}
	return Decision{Install: false, Reason: fmt.Sprintf("rustc already available (%s)", strings.Join(found, ", "))}, nil
}
