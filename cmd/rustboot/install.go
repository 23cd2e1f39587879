package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/rustboot/internal/artifact"
	"github.com/ZebulonRouseFrantzich/rustboot/internal/guard"
	"github.com/ZebulonRouseFrantzich/rustboot/internal/install"
	"github.com/ZebulonRouseFrantzich/rustboot/internal/platform"
	"github.com/ZebulonRouseFrantzich/rustboot/internal/target"
	"github.com/ZebulonRouseFrantzich/rustboot/internal/toolchain"
)

func newInstallCmd(a *app) *cobra.Command {
	var channel string

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the Rust toolchain for this host",
		Long: `Install resolves the toolchain for this host and the configured channel,
downloads it and exposes its binaries.

RUST_INSTALL_MODE=force always installs, skip never does; otherwise the
install only happens when no rustc is found (see --guard-policy).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInstall(cmd.Context(), channel)
		},
	}
	cmd.Flags().StringVar(&channel, "channel", "", "channel to install: stable, beta, nightly or MAJOR.MINOR.PATCH")
	return cmd
}

func (a *app) runInstall(ctx context.Context, channel string) error {
	s := a.settings

	g, err := a.newGuard()
	if err != nil {
		return err
	}
	decision, err := g.Decide(ctx, s.Mode)
	if err != nil {
		return fmt.Errorf("check existing toolchain: %w", err)
	}
	if !decision.Install {
		a.logger.Info("skipping install", "reason", decision.Reason)
		return nil
	}
	a.logger.Debug("install required", "reason", decision.Reason)

	p, err := a.plan(ctx, channel)
	if err != nil {
		return err
	}

	orch, err := a.orchestrator()
	if err != nil {
		return err
	}

	result, err := orch.Install(ctx, install.Request{
		Target:       p.target,
		Channel:      p.discovery.Channel,
		SuppressLogs: s.SuppressLogs,
	})
	if err != nil {
		return err
	}

	if !s.SuppressLogs {
		names := make([]string, 0, len(result.Links))
		for name := range result.Links {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(a.stdout, "%s rust %s (%s) in %s\n",
			color.Success.Sprint("installed"), p.discovery.Channel, p.target.Triple, result.Duration.Round(time.Millisecond))
		fmt.Fprintf(a.stdout, "  %s -> %s\n", strings.Join(names, ", "), orch.BinDir())
	}
	return nil
}

func (a *app) newGuard() (*guard.Guard, error) {
	if a.probes != nil {
		return guard.New(a.settings.GuardPolicy, a.probes...), nil
	}
	pathProbe, err := guard.DefaultPathProbe()
	if err != nil {
		return nil, err
	}
	return guard.New(a.settings.GuardPolicy, pathProbe, guard.NewLookupProbe("rustc")), nil
}

// installPlan is what to install: the resolved target and the channel.
type installPlan struct {
	info      *platform.Info
	target    *target.Target
	discovery *toolchain.Discovery
}

// plan detects the host, resolves its target and discovers the channel. A
// non-empty channel overrides discovery.
func (a *app) plan(ctx context.Context, channel string) (*installPlan, error) {
	s := a.settings

	info, err := a.detector.Detect(ctx)
	if err != nil {
		return nil, fmt.Errorf("detect platform: %w", err)
	}

	resolver := target.NewResolver(
		target.WithBaseline(s.GlibcBaseline),
		target.WithLogger(a.logger),
	)
	t, err := resolver.Resolve(target.HostFromInfo(info))
	if err != nil {
		return nil, err
	}

	var d *toolchain.Discovery
	if channel != "" {
		ch, err := toolchain.ParseChannel(channel)
		if err != nil {
			return nil, err
		}
		d = &toolchain.Discovery{Channel: ch, Source: toolchain.SourceFlag, Descriptor: channel}
	} else {
		d, err = toolchain.Discover(s.WorkingDir, s.Toolchain, s.Manifest)
		if err != nil {
			return nil, err
		}
	}

	a.logger.Debug("resolved toolchain",
		"triple", t.Triple,
		"channel", d.Channel.Name,
		"source", string(d.Source),
	)
	return &installPlan{info: info, target: t, discovery: d}, nil
}

func (a *app) orchestrator() (*install.Orchestrator, error) {
	s := a.settings
	return install.New(install.Config{
		Root:       s.InstallRoot,
		BinDir:     s.BinDir,
		RustupHome: s.RustupHome,
		CargoHome:  s.CargoHome,
		Mode:       s.Strategy,
		Artifacts: artifact.Options{
			BaseURL:   s.BaseURL,
			RustupURL: s.RustupURL,
		},
		Binaries: s.Binaries,
		Proxy:    s.Proxy,
		Logger:   a.logger,
	})
}
