package install

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/ulikunitz/xz"

	"github.com/ZebulonRouseFrantzich/rustboot/internal/target"
)

type tarEntry struct {
	Name     string
	Body     string
	Mode     int64
	Type     byte
	Linkname string
}

// buildArchive returns a tar archive compressed with format.
func buildArchive(t *testing.T, format string, entries []tarEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	var w io.WriteCloser
	switch format {
	case target.FormatTarXZ:
		xw, err := xz.NewWriter(&buf)
		if err != nil {
			t.Fatalf("create xz writer: %v", err)
		}
		w = xw
	case target.FormatTarGZ:
		w = gzip.NewWriter(&buf)
	default:
		t.Fatalf("unknown format %q", format)
	}

	tw := tar.NewWriter(w)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.Name, Mode: e.Mode, Typeflag: e.Type, Linkname: e.Linkname}
		if hdr.Typeflag == 0 {
			hdr.Typeflag = tar.TypeReg
		}
		if hdr.Mode == 0 {
			hdr.Mode = 0o644
		}
		if hdr.Typeflag == tar.TypeReg {
			hdr.Size = int64(len(e.Body))
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("write header %s: %v", e.Name, err)
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(e.Body)); err != nil {
				t.Fatalf("write body %s: %v", e.Name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close compressor: %v", err)
	}
	return buf.Bytes()
}

// toolchainEntries lays out a standalone archive whose binaries are shell
// scripts printing their own name.
func toolchainEntries(base string) []tarEntry {
	script := func(name string) string {
		return "#!/bin/sh\necho " + name + " \"$@\"\n"
	}
	return []tarEntry{
		{Name: base + "/", Type: tar.TypeDir, Mode: 0o755},
		{Name: base + "/rustc/bin/rustc", Body: script("rustc"), Mode: 0o755},
		{Name: base + "/rustc/bin/rustdoc", Body: script("rustdoc"), Mode: 0o755},
		{Name: base + "/cargo/bin/cargo", Body: script("cargo"), Mode: 0o755},
		{Name: base + "/install.sh", Body: installScript, Mode: 0o755},
	}
}

const installScript = `#!/bin/sh
set -e
prefix=""
for arg in "$@"; do
  case "$arg" in
    --prefix=*) prefix="${arg#--prefix=}" ;;
  esac
done
[ -n "$prefix" ] || { echo "no prefix" >&2; exit 2; }
mkdir -p "$prefix/bin"
cp rustc/bin/rustc rustc/bin/rustdoc cargo/bin/cargo "$prefix/bin/"
`

const rustupScript = `#!/bin/sh
set -e
tc=""
host=""
while [ $# -gt 0 ]; do
  case "$1" in
    --default-toolchain) tc="$2"; shift ;;
    --default-host) host="$2"; shift ;;
  esac
  shift
done
d="$RUSTUP_HOME/toolchains/$tc-$host/bin"
mkdir -p "$d"
for b in rustc cargo rustdoc; do
  printf '#!/bin/sh\necho %s\n' "$b" > "$d/$b"
  chmod +x "$d/$b"
done
`

// serveFiles serves path -> body and counts requests.
func serveFiles(t *testing.T, files map[string][]byte) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("User-Agent") != DefaultUserAgent {
			t.Errorf("unexpected User-Agent: %s", r.Header.Get("User-Agent"))
		}
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts and symlinks are not exercised on Windows")
	}
}
