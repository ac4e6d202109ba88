package fetch

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/condatools/condafeed/internal/models"
	"github.com/sirupsen/logrus"
)

const chunkSize = 64 * 1024

// progressWriter logs transfer progress at debug level. Progress output is
// cosmetic; correctness does not depend on it.
type progressWriter struct {
	name    string
	written int64
	marker  int64
}

const progressStep = 4 << 20 // 4 MiB

func (p *progressWriter) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	if p.written-p.marker >= progressStep {
		p.marker = p.written
		logrus.Debugf("%s: %d MiB ...", p.name, p.written>>20)
	}
	return len(b), nil
}

// Download streams url into dest, creating parent directories as needed.
// The copy is chunked so arbitrarily large artifacts are never buffered in
// memory. Failures are returned un-retried so the caller can decide to rerun.
func Download(rawURL, dest string) error {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return &models.PipelineError{Type: models.ErrFileOp, Err: err}
	}

	logrus.Infof("Connecting to %s", host)
	resp, err := http.Get(rawURL)
	if err != nil {
		return &models.PipelineError{Type: models.ErrNetwork, Err: fmt.Errorf("GET %s: %w", rawURL, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &models.PipelineError{Type: models.ErrNetwork, Err: fmt.Errorf("GET %s: %s", rawURL, resp.Status)}
	}

	out, err := os.Create(dest)
	if err != nil {
		return &models.PipelineError{Type: models.ErrFileOp, Err: err}
	}
	defer out.Close()

	logrus.Infof("Downloading %s from %s", filepath.Base(dest), rawURL)
	progress := &progressWriter{name: filepath.Base(dest)}
	buf := make([]byte, chunkSize)
	written, err := io.CopyBuffer(io.MultiWriter(out, progress), resp.Body, buf)
	if err != nil {
		return &models.PipelineError{Type: models.ErrNetwork, Err: fmt.Errorf("transfer %s: %w", rawURL, err)}
	}

	if err := out.Sync(); err != nil {
		return &models.PipelineError{Type: models.ErrFileOp, Err: err}
	}

	logrus.Infof("File saved to %s (%d bytes)", dest, written)
	return nil
}

// Basename returns the final path component of a URL, ignoring any query
// string or fragment.
func Basename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return path.Base(rawURL)
	}
	return path.Base(u.Path)
}
