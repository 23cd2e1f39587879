package install

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/net/http/httpproxy"
)

const (
	// DefaultTimeout is the default HTTP request timeout. Nightly archives
	// run to hundreds of megabytes.
	DefaultTimeout = 30 * time.Minute
	// DefaultUserAgent is the User-Agent header sent with requests
	DefaultUserAgent = "rustboot/1.0"
)

// ProxyFunc picks the proxy for a request URL; nil means a direct connection.
type ProxyFunc func(*url.URL) (*url.URL, error)

// ProxyFromEnvironment reads HTTP_PROXY, HTTPS_PROXY and NO_PROXY (and their
// lowercase forms). A non-empty explicit proxy overrides HTTP(S)_PROXY while
// still honouring NO_PROXY.
func ProxyFromEnvironment(explicit string) ProxyFunc {
	cfg := httpproxy.FromEnvironment()
	if explicit != "" {
		cfg.HTTPProxy = explicit
		cfg.HTTPSProxy = explicit
	}
	return cfg.ProxyFunc()
}

// Downloader fetches one URL to one file. It does not retry.
type Downloader struct {
	client    *http.Client
	proxy     ProxyFunc
	userAgent string
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithProxy routes requests through proxy.
func WithProxy(proxy ProxyFunc) DownloaderOption {
	return func(d *Downloader) { d.proxy = proxy }
}

// WithHTTPClient replaces the HTTP client. Its transport's proxy setting is
// left as is.
func WithHTTPClient(c *http.Client) DownloaderOption {
	return func(d *Downloader) { d.client = c }
}

// NewDownloader creates a new downloader
func NewDownloader(opts ...DownloaderOption) *Downloader {
	d := &Downloader{userAgent: DefaultUserAgent}
	for _, opt := range opts {
		opt(d)
	}

	if d.client == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if d.proxy != nil {
			proxy := d.proxy
			transport.Proxy = func(req *http.Request) (*url.URL, error) {
				return proxy(req.URL)
			}
		} else {
			transport.Proxy = nil
		}
		d.client = &http.Client{
			Timeout:   DefaultTimeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		}
	}

	return d
}

// ProxyFor reports the proxy a download of rawURL will use, or nil.
func (d *Downloader) ProxyFor(rawURL string) (*url.URL, error) {
	if d.proxy == nil {
		return nil, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	return d.proxy(u)
}

// DownloadToFile downloads rawURL to destPath. The body is written to a
// temporary file and renamed into place. Failures wrap ErrDownloadFailed.
func (d *Downloader) DownloadToFile(ctx context.Context, rawURL, destPath string) error {
	if err := d.download(ctx, rawURL, destPath); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDownloadFailed, rawURL, err)
	}
	return nil
}

func (d *Downloader) download(ctx context.Context, rawURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	tmpPath := destPath + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return fmt.Errorf("copy response body: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	cleanupNeeded = false
	return nil
}
