package install

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZebulonRouseFrantzich/rustboot/internal/artifact"
	"github.com/ZebulonRouseFrantzich/rustboot/internal/toolchain"
)

// Job is the input to a Strategy.
type Job struct {
	Location       *artifact.Location
	Channel        toolchain.Channel
	ArtifactTriple string
	// StagingDir is a fresh scratch directory on the same filesystem as Home.
	StagingDir string
	// Home is where the toolchain must end up: Location.Home of the install
	// root, or of RUSTUP_HOME in rustup mode.
	Home string
	// RustupHome and CargoHome are set for the rustup child process.
	// CargoHome is empty for a global install.
	RustupHome string
	CargoHome  string
	Quiet      bool
	Logger     Logger
}

// Strategy installs a located toolchain into Job.Home.
type Strategy interface {
	Mode() artifact.Mode
	Install(ctx context.Context, job *Job) error
}

// NewStrategy returns the strategy for mode.
func NewStrategy(mode artifact.Mode, d *Downloader, x *Extractor, r Runner) (Strategy, error) {
	switch mode {
	case artifact.ModeArchive:
		return &ArchiveStrategy{downloader: d, extractor: x}, nil
	case artifact.ModeScript:
		return &ScriptStrategy{downloader: d, extractor: x, runner: r}, nil
	case artifact.ModeRustup:
		return &RustupStrategy{downloader: d, runner: r}, nil
	default:
		return nil, fmt.Errorf("unknown install strategy %q", mode)
	}
}

// ArchiveStrategy unpacks the standalone archive and moves its top-level
// directory into place.
type ArchiveStrategy struct {
	downloader *Downloader
	extractor  *Extractor
}

func (s *ArchiveStrategy) Mode() artifact.Mode { return artifact.ModeArchive }

func (s *ArchiveStrategy) Install(ctx context.Context, job *Job) error {
	unpacked, err := fetchAndUnpack(ctx, s.downloader, s.extractor, job)
	if err != nil {
		return err
	}

	if err := replaceDir(unpacked, job.Home); err != nil {
		return fmt.Errorf("%w: %w", ErrInstallFailed, err)
	}
	return nil
}

// ScriptStrategy unpacks the standalone archive and runs its install.sh
// with Home as the prefix.
type ScriptStrategy struct {
	downloader *Downloader
	extractor  *Extractor
	runner     Runner
}

func (s *ScriptStrategy) Mode() artifact.Mode { return artifact.ModeScript }

func (s *ScriptStrategy) Install(ctx context.Context, job *Job) error {
	unpacked, err := fetchAndUnpack(ctx, s.downloader, s.extractor, job)
	if err != nil {
		return err
	}

	script := filepath.Join(unpacked, artifact.InstallScript)
	if _, err := os.Stat(script); err != nil {
		return fmt.Errorf("%w: archive has no %s: %w", ErrInstallFailed, artifact.InstallScript, err)
	}
	if err := SetExecutable(script); err != nil {
		return fmt.Errorf("%w: %w", ErrInstallFailed, err)
	}
	if err := os.MkdirAll(job.Home, 0o755); err != nil {
		return fmt.Errorf("%w: create prefix: %w", ErrInstallFailed, err)
	}

	job.Logger.Info("running install script", "script", script, "prefix", job.Home)
	out, err := s.runner.Run(ctx, Command{
		Path:  script,
		Args:  []string{"--prefix=" + job.Home, "--disable-ldconfig"},
		Dir:   unpacked,
		Quiet: job.Quiet,
	})
	if err != nil {
		return &ScriptError{Script: artifact.InstallScript, Output: out, Err: err}
	}
	return nil
}

// RustupStrategy downloads the rustup bootstrap script and runs it
// non-interactively.
type RustupStrategy struct {
	downloader *Downloader
	runner     Runner
}

func (s *RustupStrategy) Mode() artifact.Mode { return artifact.ModeRustup }

func (s *RustupStrategy) Install(ctx context.Context, job *Job) error {
	script := filepath.Join(job.StagingDir, job.Location.ArtifactName)
	job.Logger.Info("downloading rustup", "url", job.Location.URL)
	if err := s.downloader.DownloadToFile(ctx, job.Location.URL, script); err != nil {
		return err
	}
	if err := SetExecutable(script); err != nil {
		return fmt.Errorf("%w: %w", ErrInstallFailed, err)
	}

	args := []string{
		"-y",
		"--default-toolchain", job.Channel.Name,
		"--default-host", job.ArtifactTriple,
	}
	env := []string{"RUSTUP_HOME=" + job.RustupHome}
	if job.CargoHome != "" {
		args = append(args, "--no-modify-path")
		env = append(env, "CARGO_HOME="+job.CargoHome)
	}

	job.Logger.Info("running rustup", "rustup_home", job.RustupHome, "toolchain", job.Channel.Name)
	out, err := s.runner.Run(ctx, Command{
		Path:  script,
		Args:  args,
		Dir:   job.StagingDir,
		Env:   env,
		Quiet: job.Quiet,
	})
	if err != nil {
		return &ScriptError{Script: artifact.RustupScriptName, Output: out, Err: err}
	}
	return nil
}

// fetchAndUnpack downloads the archive into the staging directory and
// returns the path of its top-level directory once extracted.
func fetchAndUnpack(ctx context.Context, d *Downloader, x *Extractor, job *Job) (string, error) {
	loc := job.Location
	archivePath := filepath.Join(job.StagingDir, loc.ArtifactName)

	job.Logger.Info("downloading toolchain", "url", loc.URL)
	if err := d.DownloadToFile(ctx, loc.URL, archivePath); err != nil {
		return "", err
	}

	unpackDir := filepath.Join(job.StagingDir, "unpacked")
	job.Logger.Debug("extracting archive", "archive", archivePath, "dest", unpackDir)
	if err := x.Extract(archivePath, unpackDir, loc.Format); err != nil {
		return "", fmt.Errorf("%w: extract %s: %w", ErrInstallFailed, loc.ArtifactName, err)
	}

	top := filepath.Join(unpackDir, loc.ArchiveBase)
	info, err := os.Stat(top)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: archive %s has no %s directory", ErrInstallFailed, loc.ArtifactName, loc.ArchiveBase)
	}
	return top, nil
}

// replaceDir moves src to dst, removing whatever was at dst before.
func replaceDir(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create toolchain parent: %w", err)
	}
	if err := os.RemoveAll(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove previous toolchain: %w", err)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("move toolchain into place: %w", err)
	}
	return nil
}
