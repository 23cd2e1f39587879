package main

import (
	"fmt"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/rustboot/internal/shell"
)

func newEnvCmd(a *app) *cobra.Command {
	var (
		setup bool
		opts  shell.SetupOptions
	)

	cmd := &cobra.Command{
		Use:   "env [bash|zsh|fish]",
		Short: "Print shell code that puts the toolchain on PATH",
		Long: `Env prints shell code that prepends the binary exposure directory to PATH.
Evaluating it more than once has no further effect.

With --setup the activation line is added to the shell's rc file instead.
The shell is detected when not given.`,
		Example: `  eval "$(rustboot env bash)"
  rustboot env fish | source
  rustboot env --setup`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish"},
		RunE: func(cmd *cobra.Command, args []string) error {
			sh := shell.ShellUnknown
			if len(args) == 1 {
				var err error
				if sh, err = shell.ParseShell(args[0]); err != nil {
					return err
				}
			}

			if setup {
				return a.setupShell(cmd, sh, opts)
			}

			if sh == shell.ShellUnknown {
				detection, err := shell.DetectShell(cmd.Context())
				if err != nil {
					return err
				}
				if !detection.Shell.IsValid() {
					return &shell.UnsupportedShellError{Shell: detection.ShellPath}
				}
				sh = detection.Shell
			}

			script, err := shell.EnvScript(sh, a.settings.BinDir)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(a.stdout, script)
			return err
		},
	}

	f := cmd.Flags()
	f.BoolVar(&setup, "setup", false, "add the activation line to the shell rc file")
	f.BoolVar(&opts.Force, "force", false, "with --setup, add the line even if one is present")
	f.BoolVar(&opts.Backup, "backup", false, "with --setup, back up the rc file first")
	f.BoolVar(&opts.DryRun, "dry-run", false, "with --setup, only show what would change")
	return cmd
}

func (a *app) setupShell(cmd *cobra.Command, sh shell.ShellType, opts shell.SetupOptions) error {
	m := shell.NewManager()

	var (
		result *shell.SetupResult
		err    error
	)
	if sh == shell.ShellUnknown {
		result, err = m.DetectAndSetup(cmd.Context(), opts)
	} else {
		result, err = m.SetupIntegration(sh, opts)
	}
	if err != nil {
		return err
	}

	switch {
	case opts.DryRun:
		fmt.Fprintf(a.stdout, "would add to %s:\n  %s\n", result.RCFile, result.ActivationCommand)
	case result.Added:
		if result.BackupPath != "" {
			fmt.Fprintf(a.stdout, "backed up %s to %s\n", result.RCFile, result.BackupPath)
		}
		fmt.Fprintf(a.stdout, "%s activation to %s\n", color.Success.Sprint("added"), result.RCFile)
		fmt.Fprintln(a.stdout, "restart your shell or run:")
		fmt.Fprintf(a.stdout, "  %s\n", result.ActivationCommand)
	default:
		fmt.Fprintf(a.stdout, "activation already present in %s\n", result.RCFile)
	}
	return nil
}
