package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/afero"

	"github.com/persistorai/dietinsights/internal/models"
)

// Source yields the raw bytes of a dataset plus a name used as a format hint.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, string, error)
}

// archiveDir is the container subdirectory holding uploaded copies.
const archiveDir = "uploads"

// FileSource reads a blob from a container directory on an afero filesystem.
type FileSource struct {
	fs        afero.Fs
	container string
	blob      string
}

// NewFileSource creates a FileSource for container/blob on fs.
func NewFileSource(fs afero.Fs, container, blob string) *FileSource {
	return &FileSource{fs: fs, container: container, blob: blob}
}

// Path returns the blob path inside the filesystem.
func (s *FileSource) Path() string {
	return filepath.Join(s.container, s.blob)
}

// Open implements Source.
func (s *FileSource) Open(_ context.Context) (io.ReadCloser, string, error) {
	f, err := s.fs.Open(s.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("%w: %s", models.ErrSourceNotFound, s.Path())
		}
		return nil, "", fmt.Errorf("opening %s: %w", s.Path(), err)
	}

	return f, s.blob, nil
}

// Archive stores an uploaded dataset under the container's uploads
// directory and returns its path. The archived name never equals the
// watched blob name, so archiving does not retrigger ingestion.
func (s *FileSource) Archive(ingestID, name string, data []byte) (string, error) {
	dir := filepath.Join(s.container, archiveDir)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating archive dir: %w", err)
	}

	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		base = "dataset"
	}

	dst := filepath.Join(dir, ingestID+"_"+base)
	if err := afero.WriteFile(s.fs, dst, data, 0o644); err != nil {
		return "", fmt.Errorf("archiving upload: %w", err)
	}

	return dst, nil
}

// HTTPSource fetches a dataset over HTTP with retries on transport errors
// and 5xx responses.
type HTTPSource struct {
	client *resty.Client
	url    string
}

// NewHTTPSource creates an HTTPSource for rawURL.
func NewHTTPSource(rawURL string, timeout time.Duration) *HTTPSource {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r != nil && r.StatusCode() >= http.StatusInternalServerError
		})

	return &HTTPSource{client: client, url: rawURL}
}

// Open implements Source.
func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, string, error) {
	resp, err := s.client.R().SetContext(ctx).Get(s.url)
	if err != nil {
		return nil, "", fmt.Errorf("fetching %s: %w", s.url, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, "", fmt.Errorf("%w: %s", models.ErrSourceNotFound, s.url)
	case resp.IsError():
		return nil, "", fmt.Errorf("fetching %s: status %d", s.url, resp.StatusCode())
	}

	return io.NopCloser(bytes.NewReader(resp.Body())), s.name(), nil
}

func (s *HTTPSource) name() string {
	u, err := url.Parse(s.url)
	if err != nil {
		return ""
	}
	return path.Base(u.Path)
}
