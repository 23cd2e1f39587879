package install

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// Publish creates binDir and links binDir/<name> to each target in bins.
// Links are created concurrently; any existing entry at a link path is
// replaced. The first failure is returned after all links finish.
func Publish(ctx context.Context, binDir string, bins map[string]string) (map[string]string, error) {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return nil, fmt.Errorf("create bin dir: %w", err)
	}

	links := make(map[string]string, len(bins))
	for name := range bins {
		links[name] = filepath.Join(binDir, name)
	}

	g, ctx := errgroup.WithContext(ctx)
	for name, target := range bins {
		target, link := target, links[name]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return replaceLink(target, link)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return links, nil
}

func replaceLink(target, link string) error {
	if err := os.Remove(link); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove existing %s: %w", link, err)
	}
	if err := os.Symlink(target, link); err != nil {
		return fmt.Errorf("link %s -> %s: %w", link, target, err)
	}
	return nil
}
