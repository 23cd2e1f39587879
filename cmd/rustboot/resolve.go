package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/rustboot/internal/artifact"
	"github.com/ZebulonRouseFrantzich/rustboot/internal/state"
)

// resolution is the output of the resolve command.
type resolution struct {
	OS         string `json:"os"`
	Arch       string `json:"arch"`
	Libc       string `json:"libc,omitempty"`
	Triple     string `json:"triple"`
	Artifact   string `json:"artifact_triple"`
	Channel    string `json:"channel"`
	Source     string `json:"source"`
	SourcePath string `json:"source_path,omitempty"`
	Strategy   string `json:"strategy"`
	URL        string `json:"url"`
	Toolchain  string `json:"toolchain"`
	Root       string `json:"install_root"`
	BinDir     string `json:"bin_dir"`
	// Installed describes the toolchain already in Root, if any.
	Installed *installedToolchain `json:"installed,omitempty"`
}

type installedToolchain struct {
	Channel     string    `json:"channel"`
	Triple      string    `json:"triple"`
	InstalledAt time.Time `json:"installed_at"`
	// Binaries lists the configured binaries present in the bin dir.
	Binaries []string `json:"binaries"`
}

// installed reads the receipt of the install root. A root that was never
// installed into yields nil.
func (a *app) installed() (*installedToolchain, error) {
	receipt, err := state.LoadReceipt(a.settings.InstallRoot)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	orch, err := a.orchestrator()
	if err != nil {
		return nil, err
	}
	it := &installedToolchain{
		Channel:     receipt.Channel,
		Triple:      receipt.Triple,
		InstalledAt: receipt.InstalledAt,
		Binaries:    []string{},
	}
	for _, name := range a.settings.Binaries {
		if orch.Installed(name) {
			it.Binaries = append(it.Binaries, name)
		}
	}
	return it, nil
}

func newResolveCmd(a *app) *cobra.Command {
	var (
		channel string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show what install would download, without installing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.plan(cmd.Context(), channel)
			if err != nil {
				return err
			}
			loc, err := artifact.Locate(p.target, p.discovery.Channel, a.settings.Strategy, artifact.Options{
				BaseURL:   a.settings.BaseURL,
				RustupURL: a.settings.RustupURL,
			})
			if err != nil {
				return err
			}

			r := resolution{
				OS:         p.info.OS,
				Arch:       p.info.ArchRaw,
				Triple:     p.target.Triple,
				Artifact:   p.target.ArtifactTriple,
				Channel:    p.discovery.Channel.Name,
				Source:     string(p.discovery.Source),
				SourcePath: p.discovery.Path,
				Strategy:   string(loc.Mode),
				URL:        loc.URL,
				Toolchain:  loc.ToolchainName,
				Root:       a.settings.InstallRoot,
				BinDir:     a.settings.BinDir,
			}
			if r.Installed, err = a.installed(); err != nil {
				a.logger.Warn("could not read install receipt", "root", a.settings.InstallRoot, "error", err)
			}
			if l := p.info.Libc; l != nil && l.Family != "" {
				r.Libc = string(l.Family)
				if l.Version != "" {
					r.Libc += " " + l.Version
				}
			}

			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			}
			return printResolution(a, r)
		},
	}
	cmd.Flags().StringVar(&channel, "channel", "", "channel to resolve instead of the discovered one")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printResolution(a *app, r resolution) error {
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	host := r.OS + "/" + r.Arch
	if r.Libc != "" {
		host += " (" + r.Libc + ")"
	}
	source := r.Source
	if r.SourcePath != "" {
		source += " " + r.SourcePath
	}
	fmt.Fprintf(tw, "host:\t%s\n", host)
	fmt.Fprintf(tw, "target:\t%s\n", r.Triple)
	if r.Artifact != r.Triple {
		fmt.Fprintf(tw, "artifact:\t%s\n", r.Artifact)
	}
	fmt.Fprintf(tw, "channel:\t%s (%s)\n", r.Channel, source)
	fmt.Fprintf(tw, "strategy:\t%s\n", r.Strategy)
	fmt.Fprintf(tw, "url:\t%s\n", r.URL)
	fmt.Fprintf(tw, "toolchain:\t%s\n", r.Toolchain)
	fmt.Fprintf(tw, "install root:\t%s\n", r.Root)
	fmt.Fprintf(tw, "bin dir:\t%s\n", r.BinDir)
	if in := r.Installed; in != nil {
		fmt.Fprintf(tw, "installed:\t%s (%s) at %s\n", in.Channel, in.Triple, in.InstalledAt.Local().Format(time.RFC3339))
		fmt.Fprintf(tw, "binaries:\t%s\n", strings.Join(in.Binaries, ", "))
	} else {
		fmt.Fprintf(tw, "installed:\tnothing\n")
	}
	return tw.Flush()
}
