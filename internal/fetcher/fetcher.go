package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"go.uber.org/zap"
)

// FileResolver maps a file reference to its server-side download path.
type FileResolver interface {
	ResolveFile(ctx context.Context, fileID string) (string, error)
}

// HTTPStatusError is returned when the file server answers with a non-2xx status.
type HTTPStatusError struct {
	StatusCode int
	Path       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d fetching %s", e.StatusCode, e.Path)
}

// Fetcher downloads sticker payloads. It never retries; callers decide
// whether a missing payload matters.
type Fetcher struct {
	resolver FileResolver
	client   *http.Client
	baseURL  string
	token    string
	logger   *zap.Logger
}

// New builds a Fetcher that downloads from <apiBase>/file/bot<token>/<path>.
func New(resolver FileResolver, client *http.Client, apiBase, token string, logger *zap.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{
		resolver: resolver,
		client:   client,
		baseURL:  strings.TrimRight(apiBase, "/"),
		token:    token,
		logger:   logger,
	}
}

func (f *Fetcher) fileURL(path string) string {
	return fmt.Sprintf("%s/file/bot%s/%s", f.baseURL, f.token, strings.TrimLeft(path, "/"))
}

// Fetch resolves fileID and returns the payload bytes.
func (f *Fetcher) Fetch(ctx context.Context, fileID string) ([]byte, error) {
	path, err := f.resolver.ResolveFile(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file: %w", err)
	}

	link := f.fileURL(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch file %s: %w", fileID, unwrapURLError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Path: path}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", fileID, err)
	}
	return data, nil
}

// Download fetches fileID and writes it to dst.
func (f *Fetcher) Download(ctx context.Context, fileID, dst string) error {
	data, err := f.Fetch(ctx, fileID)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}

	f.logger.Debug("Downloaded sticker file",
		zap.String("file_id", fileID),
		zap.String("path", dst),
		zap.Int("bytes", len(data)))
	return nil
}

// unwrapURLError strips the *url.Error wrapper, whose message carries the
// request URL and therefore the bot token.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}
