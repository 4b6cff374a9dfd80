package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><main>Rule 255.5: disclosures must be clear.</main></body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, result.HTML, "Rule 255.5")
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "not-a-url", nil)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
}

func TestURL_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	require.NotNil(t, result, "result carries the status code even on error")
	assert.Equal(t, http.StatusNotFound, result.StatusCode)
}

func TestExtractMainText(t *testing.T) {
	html := `<html><body>
		<nav>Navigation noise</nav>
		<main>
			<h1>Endorsement Guides</h1>
			<p>Material connections must be disclosed.</p>
		</main>
		<footer>Footer noise</footer>
	</body></html>`

	text, err := ExtractMainText(html, RulePageSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "Endorsement Guides")
	assert.Contains(t, text, "Material connections must be disclosed.")
	assert.NotContains(t, text, "Navigation noise")
	assert.NotContains(t, text, "Footer noise")
}

func TestExtractMainText_FallsBackToBody(t *testing.T) {
	html := `<html><body><div>Plain rule text without semantic markup.</div></body></html>`

	text, err := ExtractMainText(html, RulePageSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "Plain rule text")
}

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser("short"))
	assert.True(t, ShouldUseBrowser("   "))

	long := make([]byte, MinContentLength+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.False(t, ShouldUseBrowser(string(long)))
}

func TestVideoAcquirer_Download(t *testing.T) {
	payload := []byte("fake mp4 bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	acquirer := NewVideoAcquirer()
	acquirer.TempDir = t.TempDir()

	handle, err := acquirer.Acquire(context.Background(), server.URL+"/clip.mp4")
	require.NoError(t, err)
	defer handle.Cleanup()

	assert.Equal(t, "video/mp4", handle.MIMEType)
	assert.Equal(t, int64(len(payload)), handle.Size)

	data, err := os.ReadFile(handle.Path)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	handle.Cleanup()
	_, err = os.Stat(handle.Path)
	assert.True(t, os.IsNotExist(err), "cleanup removes the temp file")
}

func TestVideoAcquirer_DownloadTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 64))
	}))
	defer server.Close()

	acquirer := NewVideoAcquirer()
	acquirer.TempDir = t.TempDir()
	acquirer.MaxBytes = 16

	_, err := acquirer.Acquire(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "size limit")
}

func TestVideoAcquirer_LocalFilePassThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.mp4")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o600))

	acquirer := NewVideoAcquirer()

	handle, err := acquirer.Acquire(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, handle.Path)

	handle.Cleanup()
	_, err = os.Stat(path)
	assert.NoError(t, err, "cleanup must not remove caller-owned files")
}

func TestVideoAcquirer_MissingLocalFile(t *testing.T) {
	acquirer := NewVideoAcquirer()
	_, err := acquirer.Acquire(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	assert.Error(t, err)
}

func TestVideoAcquirer_UnsupportedScheme(t *testing.T) {
	acquirer := NewVideoAcquirer()
	_, err := acquirer.Acquire(context.Background(), "ftp://example.com/v.mp4")
	assert.Error(t, err)
}
