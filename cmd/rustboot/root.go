package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/rustboot/internal/config"
	"github.com/ZebulonRouseFrantzich/rustboot/internal/guard"
	"github.com/ZebulonRouseFrantzich/rustboot/internal/install"
	"github.com/ZebulonRouseFrantzich/rustboot/internal/platform"
)

// app carries the process-wide pieces every command shares. Tests swap the
// streams, working directory, detector and probes.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// workingDir is empty for the process working directory.
	workingDir string
	detector   platform.Detector
	// probes replace the default guard probes when non-nil.
	probes []guard.Probe

	settings *config.Settings
	logger   *slog.Logger
}

func newApp() *app {
	return &app{
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		detector: platform.NewDetector(),
	}
}

// exitError carries the exit status of a wrapped binary. It is never
// printed.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "rustboot",
		Short: "Bootstrap a pre-built Rust toolchain",
		Long: `rustboot resolves the pre-built Rust toolchain for this host and release
channel, downloads it, installs it into a local or global directory and
exposes rustc, cargo and rustdoc on a known path.`,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.BoolP(config.KeyVerbose, "v", false, "enable debug logging")
	pf.BoolP("quiet", "q", false, "only log warnings and errors")
	pf.String(config.KeyConfig, "", "Lua config file (default ./"+config.DefaultConfigFile+", env RUSTBOOT_CONFIG)")
	config.RegisterFlags(pf)

	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.AddCommand(
		newInstallCmd(a),
		newRunCmd(a),
		newResolveCmd(a),
		newEnvCmd(a),
		newVersionCmd(a),
	)
	return root
}

// load resolves settings and the logger before any command runs.
func (a *app) load(cmd *cobra.Command) error {
	quiet, _ := cmd.Flags().GetBool("quiet")
	verbose, _ := cmd.Flags().GetBool(config.KeyVerbose)
	a.logger = newLogger(a.stderr, verbose, quiet)

	settings, err := config.Load(cmd.Context(), config.LoadOptions{
		WorkingDir: a.workingDir,
		Flags:      cmd.Flags(),
		Detector:   a.detector,
		Logger:     a.logger,
	})
	if err != nil {
		return err
	}
	a.settings = settings
	a.logger = newLogger(a.stderr, settings.Verbose, quiet || settings.SuppressLogs)
	a.logger.Debug("settings loaded",
		"config_file", settings.ConfigFile,
		"location", string(settings.Location),
		"install_root", settings.InstallRoot,
		"strategy", string(settings.Strategy),
	)
	return nil
}

func newLogger(w io.Writer, verbose, quiet bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// execute runs the CLI and returns the process exit code.
func execute(ctx context.Context, a *app, args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}

	verbose, _ := root.PersistentFlags().GetBool(config.KeyVerbose)
	printError(a.stderr, err, verbose)
	return 1
}

func printError(w io.Writer, err error, verbose bool) {
	fmt.Fprintf(w, "%s %s\n", color.Error.Sprint("error:"), config.FormatError(err, verbose))

	var notFound *install.BinaryNotFoundError
	if errors.As(err, &notFound) {
		fmt.Fprintf(w, "%s run 'rustboot install' first\n", color.Warn.Sprint("hint:"))
	}
}
