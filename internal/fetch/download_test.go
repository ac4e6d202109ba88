package fetch

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/condatools/condafeed/internal/models"
)

func TestDownloadWritesFileAndCreatesParents(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("artifact bytes"))
	}))
	defer ts.Close()

	tmpDir, err := os.MkdirTemp("", "condafeed-test-fetch-")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	dest := filepath.Join(tmpDir, "nested", "dir", "pkg.tar.bz2")
	if err := Download(ts.URL+"/pkg.tar.bz2", dest); err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("Downloaded file missing: %v", err)
	}
	if string(data) != "artifact bytes" {
		t.Errorf("Unexpected content: %q", data)
	}
}

func TestDownloadOverwritesExistingFile(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("fresh"))
	}))
	defer ts.Close()

	tmpDir, err := os.MkdirTemp("", "condafeed-test-fetch-")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// An already-present file is re-downloaded, never skipped
	dest := filepath.Join(tmpDir, "pkg.tar.gz")
	os.WriteFile(dest, []byte("stale cached content"), 0644)

	if err := Download(ts.URL+"/pkg.tar.gz", dest); err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	data, _ := os.ReadFile(dest)
	if string(data) != "fresh" {
		t.Errorf("Expected the file to be overwritten, got %q", data)
	}
}

func TestDownloadReportsHTTPErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	tmpDir, err := os.MkdirTemp("", "condafeed-test-fetch-")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	err = Download(ts.URL+"/missing.tar.gz", filepath.Join(tmpDir, "missing.tar.gz"))
	if err == nil {
		t.Fatal("Expected an error for a 404 response")
	}
	var perr *models.PipelineError
	if !errors.As(err, &perr) || perr.Type != models.ErrNetwork {
		t.Errorf("Expected a Network error, got %v", err)
	}
}

func TestBasename(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.org/linux-64/pkga-1.2.3-py310_0.conda", "pkga-1.2.3-py310_0.conda"},
		{"https://example.org/archive/1.2.3.tar.gz?raw=true", "1.2.3.tar.gz"},
		{"https://example.org/pkg.zip#fragment", "pkg.zip"},
	}
	for _, tt := range tests {
		if got := Basename(tt.url); got != tt.want {
			t.Errorf("Basename(%s): expected %s, got %s", tt.url, tt.want, got)
		}
	}
}
