package services

import (
	"context"
	"strings"
	"time"

	"electron-shop/api/internal/common"
	"electron-shop/api/pkg/cache"
	"electron-shop/api/pkg/catalog"
	"electron-shop/api/pkg/lifecycle"
	"electron-shop/api/pkg/repository"
	"electron-shop/api/pkg/storage"
	"electron-shop/api/pkg/util"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxWriteAttempts bounds the reload-and-retry loop of version guarded writes.
const maxWriteAttempts = 3

// Dependencies is everything the catalog services need. Cache, Cleaner,
// SiteName and Now fall back to sensible defaults when left empty.
type Dependencies struct {
	Categories    repository.CategoryRepository
	Subcategories repository.SubcategoryRepository
	Products      repository.ProductRepository
	Tx            repository.Transactor
	Storage       storage.FileStorage
	Cleaner       lifecycle.Cleaner
	Cache         cache.Cache
	SiteName      string
	Now           func() time.Time
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Cache == nil {
		d.Cache = cache.Nop{}
	}
	if d.Cleaner == nil {
		d.Cleaner = lifecycle.NewSyncCleaner(d.Storage)
	}
	if strings.TrimSpace(d.SiteName) == "" {
		d.SiteName = catalog.DefaultSiteName
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return d
}

// retryStale reruns op while it fails with a stale version.
func retryStale(op func() error) error {
	var err error
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		if err = op(); !errors.Is(err, repository.ErrStale) {
			return err
		}
		util.LogWarning("stale write, retrying", zap.Int("attempt", attempt))
	}
	return err
}

// lookupError maps a repository read failure onto a catalog error.
func lookupError(err error, entity, ref string) error {
	if _, ok := catalog.As(err); ok {
		return err
	}
	if errors.Is(err, repository.ErrNotFound) {
		return catalog.NotFound(entity, ref)
	}
	return catalog.Internal("failed to load "+entity, err)
}

// writeError maps a repository write failure onto a catalog error.
func writeError(err error, entity string) error {
	if err == nil {
		return nil
	}
	if _, ok := catalog.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return catalog.Conflict(entity+" slug or path already exists")
	case errors.Is(err, repository.ErrStale):
		return catalog.Conflict(entity + " was modified concurrently, please retry")
	case errors.Is(err, repository.ErrNotFound):
		return catalog.NotFound(entity, "")
	default:
		return catalog.Internal("failed to save "+entity, err)
	}
}

func checkUnique(ctx context.Context, exists func(context.Context) (bool, error), message string) error {
	taken, err := exists(ctx)
	if err != nil {
		return catalog.Internal("uniqueness check failed", err)
	}
	if taken {
		return catalog.Conflict(message)
	}
	return nil
}

// saveUploads validates every upload up front, then writes them
// concurrently. The returned URLs keep the order of uploads. On failure any
// file already written is discarded.
func saveUploads(ctx context.Context, store storage.FileStorage, cleaner lifecycle.Cleaner, folder storage.Folder, uploads []storage.Upload) ([]string, error) {
	if len(uploads) == 0 {
		return nil, nil
	}
	for _, u := range uploads {
		if err := storage.ValidateUpload(u); err != nil {
			return nil, err
		}
	}

	urls := make([]string, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	for i := range uploads {
		i := i
		g.Go(func() error {
			url, err := store.Save(gctx, folder, uploads[i])
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		cleaner.Discard(ctx, "upload rollback", compact(urls)...)
		if _, ok := catalog.As(err); ok {
			return nil, err
		}
		return nil, catalog.Storage("failed to store image", err)
	}
	return urls, nil
}

func compact(urls []string) []string {
	out := urls[:0:0]
	for _, u := range urls {
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}

func validate(v interface{}) error {
	return common.ValidateStruct(v)
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func normalizeSlug(slug string) (string, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return "", catalog.Validation("slug is required")
	}
	return slug, nil
}

// normalizePath accepts "computers/laptops" as well as "/computers/laptops/".
func normalizePath(path string) (string, error) {
	path = catalog.JoinPath("", strings.ToLower(strings.TrimSpace(path)))
	if path == "/" {
		return "", catalog.Validation("path is required")
	}
	return path, nil
}
