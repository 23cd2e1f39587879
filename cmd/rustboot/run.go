package main

import (
	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/rustboot/internal/install"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run BINARY [ARGS...]",
		Short: "Run an installed toolchain binary",
		Long: `Run launches a binary from the exposure directory with the remaining
arguments and exits with its exit code.

Flags after BINARY are passed through, so 'rustboot run cargo --version'
runs cargo --version.`,
		Example: `  rustboot run rustc --version
  rustboot run cargo build --release`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}
			code, err := orch.RunWithStdio(cmd.Context(), args[0], args[1:], install.Stdio{
				In:  a.stdin,
				Out: a.stdout,
				Err: a.stderr,
			})
			if err != nil {
				return err
			}
			if code != 0 {
				return &exitError{code: code}
			}
			return nil
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}
