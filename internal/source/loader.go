package source

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultDPI is used to rasterize PDF pages when no DPI is configured.
const DefaultDPI = 150

// Loader fetches and decodes the resource behind a frame reference.
type Loader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// RefLoader understands the three kinds of frame references: http(s) URLs,
// "<file>.pdf#<page>" and plain image paths. Relative paths are resolved
// against BaseDir.
type RefLoader struct {
	BaseDir string
	DPI     int
	Client  *http.Client
}

func NewRefLoader(baseDir string, dpi int) *RefLoader {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &RefLoader{BaseDir: baseDir, DPI: dpi, Client: http.DefaultClient}
}

func (l *RefLoader) Load(ctx context.Context, ref string) (image.Image, error) {
	if ref == "" {
		return nil, fmt.Errorf("empty frame reference: %w", ErrUnsupported)
	}
	if IsURL(ref) {
		return l.fetch(ctx, ref)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if path, page, ok := ParsePDFRef(ref); ok {
		return renderPDFPage(l.resolve(path), page-1, l.DPI)
	}
	return decodeFile(l.resolve(ref))
}

func (l *RefLoader) resolve(path string) string {
	if filepath.IsAbs(path) || l.BaseDir == "" {
		return path
	}
	return filepath.Join(l.BaseDir, path)
}

func (l *RefLoader) fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", url, resp.Status)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return img, nil
}

// IsURL reports whether ref is an http or https URL.
func IsURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// ParsePDFRef splits "<file>.pdf#<page>" into its path and 1-based page.
func ParsePDFRef(ref string) (path string, page int, ok bool) {
	i := strings.LastIndexByte(ref, '#')
	if i < 0 {
		return "", 0, false
	}
	path = ref[:i]
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return "", 0, false
	}
	page, err := strconv.Atoi(ref[i+1:])
	if err != nil || page < 1 {
		return "", 0, false
	}
	return path, page, true
}

// Rebase rewrites a local reference so it is relative to dir. URLs and
// references that cannot be made relative are returned unchanged.
func Rebase(ref, dir string) string {
	if IsURL(ref) {
		return ref
	}

	path, suffix := ref, ""
	if p, page, ok := ParsePDFRef(ref); ok {
		path, suffix = p, "#"+strconv.Itoa(page)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return ref
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return ref
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return ref
	}
	return filepath.ToSlash(rel) + suffix
}
