package install

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ZebulonRouseFrantzich/rustboot/internal/artifact"
	"github.com/ZebulonRouseFrantzich/rustboot/internal/state"
	"github.com/ZebulonRouseFrantzich/rustboot/internal/target"
	"github.com/ZebulonRouseFrantzich/rustboot/internal/toolchain"
)

// Config holds configuration for the orchestrator.
type Config struct {
	// Root is the absolute install root (toolchains, lock, receipt).
	Root string
	// BinDir is where binaries are exposed. Defaults to Root/bin.
	BinDir string
	// RustupHome is used in rustup mode. Defaults to Root/rustup.
	RustupHome string
	// CargoHome is passed to rustup for a local install; empty for global.
	CargoHome string

	Mode      artifact.Mode
	Artifacts artifact.Options
	// Binaries to expose. Defaults to every binary of the target.
	Binaries []string
	// Proxy overrides HTTP(S)_PROXY when set.
	Proxy  string
	Logger Logger

	Downloader *Downloader
	Runner     Runner
	// Strategy overrides the strategy chosen from Mode.
	Strategy Strategy
}

// Orchestrator runs installs into one install root and launches the
// binaries it exposes.
type Orchestrator struct {
	root       string
	binDir     string
	rustupHome string
	cargoHome  string
	mode       artifact.Mode
	artifacts  artifact.Options
	binaries   []string
	downloader *Downloader
	strategy   Strategy
	logger     Logger
}

// New creates an orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("install root is required")
	}
	if !filepath.IsAbs(cfg.Root) {
		return nil, fmt.Errorf("install root must be absolute: %s", cfg.Root)
	}

	o := &Orchestrator{
		root:       cfg.Root,
		binDir:     cfg.BinDir,
		rustupHome: cfg.RustupHome,
		cargoHome:  cfg.CargoHome,
		mode:       cfg.Mode,
		artifacts:  cfg.Artifacts,
		binaries:   cfg.Binaries,
		downloader: cfg.Downloader,
		strategy:   cfg.Strategy,
		logger:     cfg.Logger,
	}
	if o.mode == "" {
		o.mode = artifact.ModeArchive
	}
	if o.binDir == "" {
		o.binDir = filepath.Join(cfg.Root, "bin")
	}
	if o.rustupHome == "" {
		o.rustupHome = filepath.Join(cfg.Root, "rustup")
	}
	if o.logger == nil {
		o.logger = noopLogger{}
	}
	if o.downloader == nil {
		o.downloader = NewDownloader(WithProxy(ProxyFromEnvironment(cfg.Proxy)))
	}

	if o.strategy == nil {
		runner := cfg.Runner
		if runner == nil {
			runner = &ExecRunner{}
		}
		s, err := NewStrategy(o.mode, o.downloader, NewExtractor(), runner)
		if err != nil {
			return nil, err
		}
		o.strategy = s
	}

	return o, nil
}

// Root returns the install root.
func (o *Orchestrator) Root() string { return o.root }

// BinDir returns the binary exposure directory.
func (o *Orchestrator) BinDir() string { return o.binDir }

// BinaryPath returns where Run looks for name.
func (o *Orchestrator) BinaryPath(name string) string {
	return filepath.Join(o.binDir, name)
}

// Request describes one install.
type Request struct {
	Target  *target.Target
	Channel toolchain.Channel
	// SuppressLogs silences progress logging and captures script output.
	SuppressLogs bool
}

// Result describes a completed install.
type Result struct {
	Location *artifact.Location
	Home     string
	// Links maps binary name to its path in the exposure directory.
	Links    map[string]string
	Receipt  *state.Receipt
	Duration time.Duration
}

// Install locates, fetches and installs the toolchain for req, then exposes
// its binaries. A failed install leaves its staging directory in place.
func (o *Orchestrator) Install(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	logger := o.logger
	if req.SuppressLogs {
		logger = noopLogger{}
	}

	lock, err := state.AcquireLock(ctx, o.root)
	if err != nil {
		return nil, fmt.Errorf("acquire install lock: %w", err)
	}
	defer lock.Release()
	logger.Debug("acquired install lock", "path", lock.Path())

	loc, err := artifact.Locate(req.Target, req.Channel, o.strategy.Mode(), o.artifacts)
	if err != nil {
		return nil, fmt.Errorf("locate artifact: %w", err)
	}

	names, err := o.selectBinaries(loc)
	if err != nil {
		return nil, err
	}

	if proxy, err := o.downloader.ProxyFor(loc.URL); err != nil {
		return nil, fmt.Errorf("resolve proxy: %w", err)
	} else if proxy != nil {
		logger.Info("using proxy", "proxy", proxy.Redacted(), "url", loc.URL)
	}

	homeBase := o.root
	if loc.Mode == artifact.ModeRustup {
		homeBase = o.rustupHome
	}
	home := loc.Home(homeBase)

	staging, err := os.MkdirTemp(o.root, ".staging-")
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	job := &Job{
		Location:       loc,
		Channel:        req.Channel,
		ArtifactTriple: req.Target.ArtifactTriple,
		StagingDir:     staging,
		Home:           home,
		RustupHome:     o.rustupHome,
		CargoHome:      o.cargoHome,
		Quiet:          req.SuppressLogs,
		Logger:         logger,
	}

	logger.Info("installing toolchain", "channel", req.Channel.Name, "target", req.Target.Triple, "strategy", string(loc.Mode))
	if err := o.strategy.Install(ctx, job); err != nil {
		o.logger.Warn("install failed; staging directory kept", "staging", staging)
		return nil, err
	}

	bins := make(map[string]string, len(names))
	for _, name := range names {
		path, _ := loc.BinPath(homeBase, name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			o.logger.Warn("install incomplete; staging directory kept", "staging", staging)
			return nil, fmt.Errorf("%w: %s missing from toolchain at %s", ErrInstallFailed, name, path)
		}
		bins[name] = path
	}

	links, err := Publish(ctx, o.binDir, bins)
	if err != nil {
		o.logger.Warn("linking failed; staging directory kept", "staging", staging)
		return nil, fmt.Errorf("%w: %w", ErrInstallFailed, err)
	}

	if err := os.RemoveAll(staging); err != nil {
		logger.Warn("could not remove staging directory", "staging", staging, "error", err)
	}

	receipt := state.NewReceipt()
	receipt.Channel = req.Channel.Name
	receipt.Triple = req.Target.Triple
	receipt.Mode = string(loc.Mode)
	receipt.URL = loc.URL
	receipt.Home = home
	receipt.BinDir = o.binDir
	receipt.Bins = bins
	if err := receipt.Save(o.root); err != nil {
		return nil, fmt.Errorf("write receipt: %w", err)
	}

	logger.Info("toolchain installed", "home", home, "bin_dir", o.binDir)

	return &Result{
		Location: loc,
		Home:     home,
		Links:    links,
		Receipt:  receipt,
		Duration: time.Since(start),
	}, nil
}

// selectBinaries returns the configured binaries, checking each exists in
// the located toolchain.
func (o *Orchestrator) selectBinaries(loc *artifact.Location) ([]string, error) {
	if len(o.binaries) == 0 {
		names := make([]string, 0, len(loc.Bins))
		for name := range loc.Bins {
			names = append(names, name)
		}
		return names, nil
	}

	var unknown []error
	for _, name := range o.binaries {
		if _, ok := loc.Bins[name]; !ok {
			unknown = append(unknown, fmt.Errorf("binary %q is not part of the toolchain", name))
		}
	}
	if len(unknown) > 0 {
		return nil, errors.Join(unknown...)
	}
	return o.binaries, nil
}

// Installed reports whether name is exposed and resolves to a regular file.
func (o *Orchestrator) Installed(name string) bool {
	info, err := os.Stat(o.BinaryPath(name))
	return err == nil && info.Mode().IsRegular()
}
