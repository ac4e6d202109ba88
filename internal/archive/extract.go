package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/condatools/condafeed/internal/models"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Extract unpacks the artifact at path into dest, dispatching on the
// artifact's extension. Unknown shapes fail with an UnsupportedFormat error.
func Extract(path, dest string) error {
	base := filepath.Base(path)

	switch {
	case strings.HasSuffix(base, ".conda"):
		return extractConda(path, dest)
	case strings.HasSuffix(base, ".zip"):
		return extractZip(path, dest)
	case strings.HasSuffix(base, ".tar.gz"), strings.HasSuffix(base, ".tgz"):
		return extractCompressedTar(path, dest, "gz")
	case strings.HasSuffix(base, ".tar.bz2"):
		return extractCompressedTar(path, dest, "bz2")
	case strings.HasSuffix(base, ".tar.xz"):
		return extractCompressedTar(path, dest, "xz")
	case strings.HasSuffix(base, ".tar.zst"):
		return extractCompressedTar(path, dest, "zst")
	case strings.HasSuffix(base, ".tar"):
		return extractCompressedTar(path, dest, "")
	default:
		return &models.PipelineError{
			Type: models.ErrUnsupportedFormat,
			Err:  fmt.Errorf("unknown format of %s", base),
		}
	}
}

// InfoTarName derives the inner metadata archive name from the outer .conda
// artifact filename: pkg-1.0-0.conda becomes info-pkg-1.0-0.tar.zst.
func InfoTarName(artifact string) string {
	return "info-" + strings.TrimSuffix(filepath.Base(artifact), ".conda") + ".tar.zst"
}

// extractConda unpacks the two-layer .conda container. The outer layer is a
// plain zip; among its files is a zstd-compressed tar holding the info/
// metadata tree, named after the artifact. Both layers unpack into the same
// dest so the package payload and the info/ tree end up side by side.
func extractConda(path, dest string) error {
	if err := extractZip(path, dest); err != nil {
		return err
	}
	return extractCompressedTar(filepath.Join(dest, InfoTarName(path)), dest, "zst")
}

func extractZip(path, dest string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return &models.PipelineError{Type: models.ErrFileOp, Err: fmt.Errorf("open zip %s: %w", path, err)}
	}
	defer zr.Close()

	for _, f := range zr.File {
		target, err := targetPath(dest, f.Name)
		if err != nil {
			return &models.PipelineError{Type: models.ErrFileOp, Err: err}
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return &models.PipelineError{Type: models.ErrFileOp, Err: err}
			}
			continue
		}

		if err := writeZipEntry(f, target); err != nil {
			return &models.PipelineError{Type: models.ErrFileOp, Err: err}
		}
	}

	return nil
}

func writeZipEntry(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	in, err := f.Open()
	if err != nil {
		return err
	}
	defer in.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode|0200)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

func extractCompressedTar(path, dest, compression string) error {
	f, err := os.Open(path)
	if err != nil {
		return &models.PipelineError{Type: models.ErrFileOp, Err: err}
	}
	defer f.Close()

	var r io.Reader
	switch compression {
	case "gz":
		gr, err := gzip.NewReader(f)
		if err != nil {
			return &models.PipelineError{Type: models.ErrFileOp, Err: fmt.Errorf("gzip %s: %w", path, err)}
		}
		defer gr.Close()
		r = gr
	case "bz2":
		r = bzip2.NewReader(f)
	case "xz":
		xr, err := xz.NewReader(f)
		if err != nil {
			return &models.PipelineError{Type: models.ErrFileOp, Err: fmt.Errorf("xz %s: %w", path, err)}
		}
		r = xr
	case "zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return &models.PipelineError{Type: models.ErrFileOp, Err: fmt.Errorf("zstd %s: %w", path, err)}
		}
		defer zr.Close()
		r = zr
	default:
		r = f
	}

	return extractTar(tar.NewReader(r), dest)
}

func extractTar(tr *tar.Reader, dest string) error {
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &models.PipelineError{Type: models.ErrFileOp, Err: fmt.Errorf("read tar: %w", err)}
		}

		target, err := targetPath(dest, header.Name)
		if err != nil {
			return &models.PipelineError{Type: models.ErrFileOp, Err: err}
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return &models.PipelineError{Type: models.ErrFileOp, Err: err}
			}
		case tar.TypeReg:
			if err := writeTarEntry(tr, header, target); err != nil {
				return &models.PipelineError{Type: models.ErrFileOp, Err: err}
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return &models.PipelineError{Type: models.ErrFileOp, Err: err}
			}
			if err := os.Symlink(header.Linkname, target); err != nil && !os.IsExist(err) {
				return &models.PipelineError{Type: models.ErrFileOp, Err: err}
			}
		}
	}
}

func writeTarEntry(tr *tar.Reader, header *tar.Header, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, header.FileInfo().Mode().Perm()|0200)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, tr)
	return err
}

// targetPath joins an archive entry name onto dest, rejecting entries that
// would escape it.
func targetPath(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	if target != filepath.Clean(dest) && !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return "", fmt.Errorf("illegal path %q in archive", name)
	}
	return target, nil
}
