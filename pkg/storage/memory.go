package storage

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"electron-shop/api/pkg/catalog"
)

const memoryBaseURL = "memory://files/"

// MemoryStorage keeps uploads in process memory. It backs the "memory" driver
// and the test suites.
type MemoryStorage struct {
	mu      sync.Mutex
	files   map[string][]byte
	deleted []string
	// FailSave and FailDelete make the next calls return a storage error.
	FailSave   bool
	FailDelete bool
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{files: map[string][]byte{}}
}

func (s *MemoryStorage) Save(ctx context.Context, folder Folder, upload Upload) (string, error) {
	if err := ValidateUpload(upload); err != nil {
		return "", err
	}
	s.mu.Lock()
	fail := s.FailSave
	s.mu.Unlock()
	if fail {
		return "", catalog.Storage("could not store file", io.ErrShortWrite)
	}

	data, err := io.ReadAll(io.LimitReader(upload.Body, MaxUploadSize+1))
	if err != nil {
		return "", catalog.Storage("could not store file", err)
	}
	url := memoryBaseURL + string(folder) + "/" + NewFilename(folder, upload.Filename, upload.ContentType, time.Now())

	s.mu.Lock()
	s.files[url] = data
	s.mu.Unlock()
	return url, nil
}

// Put registers url as an existing file.
func (s *MemoryStorage) Put(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[url] = nil
}

func (s *MemoryStorage) Owns(url string) bool {
	return strings.HasPrefix(url, memoryBaseURL)
}

func (s *MemoryStorage) Exists(ctx context.Context, url string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[url]
	return ok, nil
}

func (s *MemoryStorage) Delete(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDelete {
		return catalog.Storage("could not delete file", io.ErrUnexpectedEOF)
	}
	if _, ok := s.files[url]; ok {
		delete(s.files, url)
		s.deleted = append(s.deleted, url)
	}
	return nil
}

// Files lists the stored URLs in sorted order.
func (s *MemoryStorage) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.files))
	for u := range s.files {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// Deleted lists the URLs removed so far, in deletion order.
func (s *MemoryStorage) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}
