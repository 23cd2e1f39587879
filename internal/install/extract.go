package install

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/ZebulonRouseFrantzich/rustboot/internal/target"
)

// Extractor unpacks toolchain archives.
type Extractor struct{}

// NewExtractor creates a new extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract unpacks archivePath into destDir. format is target.FormatTarXZ or
// target.FormatTarGZ.
func (e *Extractor) Extract(archivePath, destDir, format string) error {
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer archiveFile.Close()

	var r io.Reader
	switch format {
	case target.FormatTarXZ:
		xzReader, err := xz.NewReader(bufio.NewReader(archiveFile))
		if err != nil {
			return fmt.Errorf("create xz reader: %w", err)
		}
		r = xzReader
	case target.FormatTarGZ:
		gzipReader, err := gzip.NewReader(archiveFile)
		if err != nil {
			return fmt.Errorf("create gzip reader: %w", err)
		}
		defer gzipReader.Close()
		r = gzipReader
	default:
		return fmt.Errorf("unsupported archive format %q", format)
	}

	return extractTar(tar.NewReader(r), destDir)
}

func extractTar(tarReader *tar.Reader, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}
	root := filepath.Clean(destDir) + string(os.PathSeparator)

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		dest := filepath.Join(destDir, header.Name)
		if !strings.HasPrefix(dest+string(os.PathSeparator), root) {
			return fmt.Errorf("illegal file path: %s", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return fmt.Errorf("create directory %s: %w", dest, err)
			}

		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return fmt.Errorf("create parent dir for %s: %w", dest, err)
			}
			if err := writeFile(dest, tarReader, os.FileMode(header.Mode).Perm()); err != nil {
				return err
			}

		case tar.TypeSymlink:
			linkTarget := header.Linkname
			if !filepath.IsAbs(linkTarget) {
				linkTarget = filepath.Join(filepath.Dir(dest), linkTarget)
			}
			if !strings.HasPrefix(filepath.Clean(linkTarget)+string(os.PathSeparator), root) {
				return fmt.Errorf("illegal symlink target: %s -> %s", header.Name, header.Linkname)
			}
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return fmt.Errorf("create parent dir for %s: %w", dest, err)
			}
			if err := os.Symlink(header.Linkname, dest); err != nil {
				return fmt.Errorf("create symlink %s: %w", dest, err)
			}

		case tar.TypeLink:
			source := filepath.Join(destDir, header.Linkname)
			if !strings.HasPrefix(source+string(os.PathSeparator), root) {
				return fmt.Errorf("illegal hard link target: %s -> %s", header.Name, header.Linkname)
			}
			if err := os.Link(source, dest); err != nil {
				return fmt.Errorf("create hard link %s: %w", dest, err)
			}

		default:
			// char devices, fifos and the like never appear in toolchain archives
			continue
		}
	}
}

func writeFile(path string, r io.Reader, mode os.FileMode) error {
	outFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create file %s: %w", path, err)
	}
	if _, err := io.Copy(outFile, r); err != nil {
		outFile.Close()
		return fmt.Errorf("write file %s: %w", path, err)
	}
	return outFile.Close()
}

// SetExecutable sets executable permissions on a file
func SetExecutable(path string) error {
	if err := os.Chmod(path, 0o755); err != nil {
		return fmt.Errorf("set executable: %w", err)
	}
	return nil
}
