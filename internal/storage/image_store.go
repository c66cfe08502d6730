// Package storage keeps uploaded product images on local disk.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ErrUnsupportedImage is returned for files that are not a known image type.
var ErrUnsupportedImage = errors.New("unsupported image type")

// LocalImageStore writes uploads under Dir and serves them from BaseURL/uploads.
type LocalImageStore struct {
	Dir     string
	BaseURL string
}

// NewLocalImageStore creates the upload directory if needed.
func NewLocalImageStore(dir, baseURL string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &LocalImageStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save stores the uploaded file under a fresh uuid name and returns its public URL.
func (s *LocalImageStore) Save(ctx context.Context, file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedImage, ext)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return fmt.Sprintf("%s/uploads/%s", s.BaseURL, name), nil
}
