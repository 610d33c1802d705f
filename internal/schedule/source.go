package schedule

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"tourneyreel/internal/services"
)

// maxSheetBytes bounds a schedule download; real sheets are a few kilobytes.
const maxSheetBytes = 4 << 20

// Source supplies raw schedule CSV bytes.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// HTTPSource downloads a published spreadsheet CSV export.
type HTTPSource struct {
	URL     string
	Client  *http.Client
	Timeout time.Duration
}

// Fetch issues a GET for the export URL.
func (s HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	url := strings.TrimSpace(s.URL)
	if url == "" {
		return nil, services.Wrap(services.ErrConfiguration, "schedule", "fetch", "schedule URL is empty", nil)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "schedule", "fetch", "build request", err)
	}
	req.Header.Set("Accept", "text/csv")
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, services.Wrap(services.ErrTimeout, "schedule", "fetch", url, err)
		}
		return nil, services.Wrap(services.ErrTransient, "schedule", "fetch", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		marker := services.ErrTransient
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized {
			marker = services.ErrConfiguration
		}
		return nil, services.Wrap(marker, "schedule", "fetch",
			fmt.Sprintf("%s returned %s", url, resp.Status), nil)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSheetBytes))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "schedule", "fetch", "read body", err)
	}
	return data, nil
}

// FileSource reads a CSV export saved on disk.
type FileSource struct {
	Path string
}

// Fetch reads the file.
func (s FileSource) Fetch(context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, "schedule", "fetch", s.Path, err)
		}
		return nil, services.Wrap(services.ErrValidation, "schedule", "fetch", s.Path, err)
	}
	return data, nil
}

// NewSource picks a FileSource when path is set, otherwise an HTTPSource.
func NewSource(path, url string, timeout time.Duration) (Source, error) {
	switch {
	case strings.TrimSpace(path) != "":
		return FileSource{Path: path}, nil
	case strings.TrimSpace(url) != "":
		return HTTPSource{URL: url, Timeout: timeout}, nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "schedule", "source", "neither a schedule path nor a URL is configured", nil)
	}
}
