// Package fetch - acquire.go resolves video URLs to local media handles
// suitable for submission to the content extraction service.
package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Acquisition bounds. Marketing and ad review videos are short; anything
// past these limits is rejected rather than buffered to disk.
const (
	DefaultMaxVideoBytes   = 2 << 30 // 2 GiB
	DefaultDownloadTimeout = 10 * time.Minute
)

// MediaHandle is a local reference to acquired video content. Cleanup must
// be called once the handle is no longer needed; for pass-through local
// files it is a no-op.
type MediaHandle struct {
	Path     string
	MIMEType string
	Size     int64
	Cleanup  func()
}

// VideoAcquirer resolves video URLs to local media handles by streaming
// HTTP download. Local paths and file:// URLs pass through untouched.
type VideoAcquirer struct {
	MaxBytes int64
	Timeout  time.Duration
	TempDir  string // defaults to os.TempDir()
}

// NewVideoAcquirer returns an acquirer with default bounds.
func NewVideoAcquirer() *VideoAcquirer {
	return &VideoAcquirer{
		MaxBytes: DefaultMaxVideoBytes,
		Timeout:  DefaultDownloadTimeout,
	}
}

// Acquire resolves videoURL to a local media handle.
func (a *VideoAcquirer) Acquire(ctx context.Context, videoURL string) (*MediaHandle, error) {
	parsed, err := url.Parse(videoURL)
	if err != nil {
		return nil, &Error{URL: videoURL, Message: "invalid video URL", Cause: err}
	}

	switch parsed.Scheme {
	case "file":
		return a.fromLocalFile(parsed.Path)
	case "":
		return a.fromLocalFile(videoURL)
	case "http", "https":
		return a.download(ctx, videoURL)
	default:
		return nil, &Error{URL: videoURL, Message: fmt.Sprintf("unsupported scheme %q", parsed.Scheme)}
	}
}

func (a *VideoAcquirer) fromLocalFile(path string) (*MediaHandle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &Error{URL: path, Message: "video file not accessible", Cause: err}
	}
	if info.IsDir() {
		return nil, &Error{URL: path, Message: "video path is a directory"}
	}

	return &MediaHandle{
		Path:     path,
		MIMEType: mimeTypeFor(path, ""),
		Size:     info.Size(),
		Cleanup:  func() {},
	}, nil
}

func (a *VideoAcquirer) download(ctx context.Context, videoURL string) (*MediaHandle, error) {
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = DefaultDownloadTimeout
	}
	maxBytes := a.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxVideoBytes
	}

	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequestWithContext(ctx, "GET", videoURL, nil)
	if err != nil {
		return nil, &Error{URL: videoURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{URL: videoURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{URL: videoURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	tempDir := a.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	tmp, err := os.CreateTemp(tempDir, "guardian-video-*"+filepath.Ext(videoURL))
	if err != nil {
		return nil, &Error{URL: videoURL, Message: "failed to create temp file", Cause: err}
	}

	written, err := io.Copy(tmp, io.LimitReader(resp.Body, maxBytes+1))
	closeErr := tmp.Close()
	if err != nil || closeErr != nil {
		_ = os.Remove(tmp.Name())
		if err == nil {
			err = closeErr
		}
		return nil, &Error{URL: videoURL, Message: "failed to write video to disk", Cause: err}
	}
	if written > maxBytes {
		_ = os.Remove(tmp.Name())
		return nil, &Error{URL: videoURL, Message: fmt.Sprintf("video exceeds size limit of %d bytes", maxBytes)}
	}

	path := tmp.Name()
	return &MediaHandle{
		Path:     path,
		MIMEType: mimeTypeFor(videoURL, resp.Header.Get("Content-Type")),
		Size:     written,
		Cleanup:  func() { _ = os.Remove(path) },
	}, nil
}

// mimeTypeFor resolves a video MIME type from the Content-Type header or the
// file extension, defaulting to video/mp4.
func mimeTypeFor(path, contentType string) string {
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil && strings.HasPrefix(mt, "video/") {
			return mt
		}
	}
	if mt := mime.TypeByExtension(filepath.Ext(path)); strings.HasPrefix(mt, "video/") {
		return mt
	}
	return "video/mp4"
}
