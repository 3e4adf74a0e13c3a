package blitcast

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
)

// Fetcher loads a resource by slash-separated path. Implementations must be
// safe to call from worker goroutines.
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// FSFetcher reads resources from a file system.
type FSFetcher struct {
	FS fs.FS
}

// Fetch reads name from the file system.
func (f FSFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(f.FS, path.Clean(strings.TrimPrefix(name, "/")))
	if err != nil {
		return nil, fmt.Errorf("blitcast: fetch %s: %w", name, err)
	}
	return data, nil
}

// HTTPFetcher loads resources relative to a base URL.
type HTTPFetcher struct {
	Client  *http.Client // http.DefaultClient when nil
	BaseURL *url.URL
	MaxSize int64 // maxFetchSize when zero
}

// maxFetchSize bounds a single response body.
const maxFetchSize = 64 << 20

// Fetch GETs name relative to BaseURL. Non-2xx responses and bodies larger
// than MaxSize are errors.
func (f HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	ref, err := url.Parse(name)
	if err != nil {
		return nil, fmt.Errorf("blitcast: fetch %s: %w", name, err)
	}
	u := ref
	if f.BaseURL != nil {
		u = f.BaseURL.ResolveReference(ref)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("blitcast: fetch %s: %w", u, err)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("blitcast: fetch %s: %w", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("blitcast: fetch %s: %s", u, resp.Status)
	}
	limit := f.MaxSize
	if limit <= 0 {
		limit = maxFetchSize
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("blitcast: fetch %s: %w", u, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: fetch %s exceeds %d bytes", ErrResponseTooLarge, u, limit)
	}
	return data, nil
}

// NewFetcher returns an HTTPFetcher for http(s) roots and an FSFetcher over
// the directory otherwise.
func NewFetcher(root string) Fetcher {
	if strings.HasPrefix(root, "http://") || strings.HasPrefix(root, "https://") {
		if !strings.HasSuffix(root, "/") {
			root += "/"
		}
		if u, err := url.Parse(root); err == nil {
			return HTTPFetcher{BaseURL: u}
		}
	}
	if root == "" {
		root = "."
	}
	return FSFetcher{FS: os.DirFS(root)}
}

// Paths maps a source key to its companion resources. Templates use {src}
// as the placeholder.
type Paths struct {
	Data  string `yaml:"data"`
	Image string `yaml:"image"`
}

// DefaultPaths are used for any empty template.
var DefaultPaths = Paths{
	Data:  "data/{src}.json",
	Image: "animations/{src}.png",
}

// DataPath returns the data resource path for src.
func (p Paths) DataPath(src string) string {
	t := p.Data
	if t == "" {
		t = DefaultPaths.Data
	}
	return strings.ReplaceAll(t, "{src}", src)
}

// ImagePath returns the atlas image path for src.
func (p Paths) ImagePath(src string) string {
	t := p.Image
	if t == "" {
		t = DefaultPaths.Image
	}
	return strings.ReplaceAll(t, "{src}", src)
}
