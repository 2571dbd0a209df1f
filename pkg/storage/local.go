package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"electron-shop/api/pkg/catalog"

	"github.com/pkg/errors"
)

// LocalStorage keeps uploads on disk under root and serves them from
// baseURL + "/uploads/".
type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(root, baseURL string) *LocalStorage {
	return &LocalStorage{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalStorage) prefix() string {
	return s.baseURL + "/uploads/"
}

func (s *LocalStorage) Save(ctx context.Context, folder Folder, upload Upload) (string, error) {
	if err := ValidateUpload(upload); err != nil {
		return "", err
	}
	dir := filepath.Join(s.root, string(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", catalog.Storage("could not prepare upload folder", err)
	}

	name := NewFilename(folder, upload.Filename, upload.ContentType, time.Now())
	target := filepath.Join(dir, name)
	f, err := os.Create(target)
	if err != nil {
		return "", catalog.Storage("could not store file", err)
	}

	n, err := io.Copy(f, io.LimitReader(upload.Body, MaxUploadSize+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && n > MaxUploadSize {
		err = errors.New("file exceeds upload limit")
	}
	if err != nil {
		_ = os.Remove(target)
		return "", catalog.Storage("could not store file", err)
	}

	return s.prefix() + string(folder) + "/" + name, nil
}

func (s *LocalStorage) Owns(url string) bool {
	_, ok := s.pathFor(url)
	return ok
}

// pathFor maps a public URL back onto the disk, refusing anything that
// escapes root.
func (s *LocalStorage) pathFor(url string) (string, bool) {
	if !strings.HasPrefix(url, s.prefix()) {
		return "", false
	}
	rel := strings.TrimPrefix(url, s.prefix())
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", false
	}
	return filepath.Join(s.root, clean), true
}

func (s *LocalStorage) Exists(ctx context.Context, url string) (bool, error) {
	p, ok := s.pathFor(url)
	if !ok {
		return false, nil
	}
	_, err := os.Stat(p)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, catalog.Storage("could not stat file", err)
	}
	return true, nil
}

func (s *LocalStorage) Delete(ctx context.Context, url string) error {
	p, ok := s.pathFor(url)
	if !ok {
		return nil
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return catalog.Storage("could not delete file", err)
	}
	return nil
}
