package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using actual platform detection.
type RealDetector struct {
	goos   string
	goarch string
	probe  LibcProbe
	distro func(ctx context.Context) (platform, family, version string, err error)
}

// NewDetector creates a new platform detector for the running host.
func NewDetector() Detector {
	return &RealDetector{
		goos:   runtime.GOOS,
		goarch: runtime.GOARCH,
		probe:  NewCommandProbe(),
		distro: host.PlatformInformationWithContext,
	}
}

// Detect performs platform detection and returns platform information.
//
// An architecture rustboot has no builds for is not an error here: Arch is
// left empty and ArchRaw carries the original value so the target resolver
// can report it. On Linux, distro and libc failures are tolerated; only
// context cancellation aborts detection.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		OS:      normalizeOS(d.goos),
		ArchRaw: d.goarch,
	}

	if arch, err := normalizeArch(d.goarch); err == nil {
		info.Arch = arch
	}

	if info.OS != "linux" {
		return info, nil
	}

	if d.distro != nil {
		platform, family, version, err := d.distro(ctx)
		if err != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
		if err == nil {
			platform = normalizePlatform(platform)
			if platform != "" {
				info.Platform = platform
				info.Family = mapFamily(family)
				if info.Family == FamilyUnknown {
					info.Family = mapFamily(platform)
				}
				info.Version = normalizePlatform(version)
			}
		}
	}

	if d.probe != nil {
		libc, err := d.probe.Probe(ctx, info.Family)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("libc detection cancelled: %w", ctx.Err())
			}
			libc = &Libc{Family: LibcUnknown}
		}
		info.Libc = libc
	}

	return info, nil
}
