// Package fetch downloads the raw dataset to a local path.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/cognicore/lexprep/pkg/lexprep/internalerr"
)

const (
	maxConfirmHops = 2
	maxHTMLSniff   = 4 << 20
)

var driveFilePath = regexp.MustCompile(`^/file/d/([^/]+)`)

// Fetcher downloads files over HTTP(S)
type Fetcher struct {
	Client *http.Client
	Logf   func(format string, args ...any)
}

// New creates a fetcher with a sensible default timeout.
func New() *Fetcher {
	return &Fetcher{Client: &http.Client{Timeout: 10 * time.Minute}}
}

// Fetch downloads source to dest. The parent directory of dest is created
// when missing and an existing file is replaced. Nothing is retried.
func (f *Fetcher) Fetch(ctx context.Context, source, dest string) error {
	u, err := url.Parse(strings.TrimSpace(source))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("source %q: must be an http(s) URL: %w", source, internalerr.ErrInvalidInput)
	}
	if dest == "" {
		return fmt.Errorf("destination path is empty: %w", internalerr.ErrInvalidInput)
	}

	target := DriveURL(u).String()
	f.logf("Downloading from %s to %s", source, dest)

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	for hop := 0; hop <= maxConfirmHops; hop++ {
		next, err := f.download(ctx, target, dest)
		if err != nil {
			return err
		}
		if next == "" {
			return nil
		}
		f.logf("Following download confirmation to %s", next)
		target = next
	}
	return fmt.Errorf("too many confirmation pages for %s: %w", source, internalerr.ErrExternal)
}

// download fetches target into dest. When the response is a Drive
// confirmation page it returns the URL to follow instead of writing.
func (f *Fetcher) download(ctx context.Context, target, dest string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %v: %w", err, internalerr.ErrInvalidInput)
	}

	resp, err := f.client().Do(req)
	if err != nil {
		return "", fmt.Errorf("GET %s: %v: %w", target, err, internalerr.ErrExternal)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("GET %s: HTTP %d: %w", target, resp.StatusCode, internalerr.ErrExternal)
	}

	var body io.Reader = resp.Body
	if isHTML(resp.Header.Get("Content-Type")) {
		page, err := io.ReadAll(io.LimitReader(resp.Body, maxHTMLSniff))
		if err != nil {
			return "", fmt.Errorf("read %s: %v: %w", target, err, internalerr.ErrExternal)
		}
		if next, ok := confirmURL(resp.Request.URL, page); ok {
			return next, nil
		}
		body = io.MultiReader(bytes.NewReader(page), resp.Body)
	}

	if err := writeAtomic(dest, body); err != nil {
		return "", err
	}
	return "", nil
}

func (f *Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}

func (f *Fetcher) logf(format string, args ...any) {
	if f.Logf != nil {
		f.Logf(format, args...)
	}
}

// DriveURL rewrites Google Drive share links to the direct download
// endpoint. Other URLs are returned unchanged.
func DriveURL(u *url.URL) *url.URL {
	if !strings.EqualFold(u.Hostname(), "drive.google.com") {
		return u
	}

	var id string
	if m := driveFilePath.FindStringSubmatch(u.Path); m != nil {
		id = m[1]
	} else if u.Path == "/open" || u.Path == "/uc" {
		id = u.Query().Get("id")
	}
	if id == "" {
		return u
	}

	out := &url.URL{Scheme: "https", Host: "drive.google.com", Path: "/uc"}
	q := url.Values{}
	q.Set("export", "download")
	q.Set("id", id)
	out.RawQuery = q.Encode()
	return out
}

func isHTML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "text/html"
}

// confirmURL extracts the target of the "download-form" that Drive serves
// for files too large to virus-scan.
func confirmURL(base *url.URL, page []byte) (string, bool) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return "", false
	}

	form := findForm(doc)
	if form == nil {
		return "", false
	}

	action, err := url.Parse(attr(form, "action"))
	if err != nil {
		return "", false
	}
	if base != nil {
		action = base.ResolveReference(action)
	}

	q := action.Query()
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "input" && attr(n, "type") == "hidden" {
			if name := attr(n, "name"); name != "" {
				q.Set(name, attr(n, "value"))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(form)
	action.RawQuery = q.Encode()

	return action.String(), true
}

func findForm(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "form" && attr(n, "id") == "download-form" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findForm(c); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// writeAtomic streams r into a temp file beside dest and renames it over
// dest, so an interrupted download never leaves a truncated file.
func writeAtomic(dest string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", dest, err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %v: %w", dest, err, internalerr.ErrExternal)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("rename %s to %s: %w", tmpPath, dest, err)
	}

	success = true
	return nil
}
