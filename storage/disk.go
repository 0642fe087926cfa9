package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"
)

// DiskStore writes images under dir; they are served from PublicPath.
type DiskStore struct {
	dir    string
	now    func() time.Time
	suffix func() string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir, now: time.Now, suffix: shortID}, nil
}

func (d *DiskStore) Dir() string { return d.dir }

// Save stores the upload and returns its public URL under baseURL. An
// existing file is never overwritten.
func (d *DiskStore) Save(_ context.Context, file *multipart.FileHeader, baseURL string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	ext, _, err := detectImage(src)
	if err != nil {
		return "", err
	}

	name := fileName(file.Filename, ext, d.now(), d.suffix())
	path := filepath.Join(d.dir, name)
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write image file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close image file: %w", err)
	}
	return fmt.Sprintf("%s%s/%s", baseURL, PublicPath, name), nil
}

// Remove deletes an image previously returned by Save. A missing file is not an error.
func (d *DiskStore) Remove(_ context.Context, url string) error {
	name, err := nameFromURL(url)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(d.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove image file: %w", err)
	}
	return nil
}
