package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"electron-shop/api/pkg/catalog"

	"github.com/google/uuid"
)

// Folder is the per-entity namespace uploads are written to.
type Folder string

const (
	FolderSubcategories Folder = "subcategories"
	FolderProducts      Folder = "products"
	FolderBrands        Folder = "brands"
	FolderUserAvatars   Folder = "userAvatars"
)

const MaxUploadSize = 5 << 20

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/avif": ".avif",
}

// Upload is a file handed over by the transport layer.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// FileStorage is the backing store for uploaded images, addressed by public URL.
type FileStorage interface {
	Save(ctx context.Context, folder Folder, upload Upload) (string, error)
	Exists(ctx context.Context, url string) (bool, error)
	// Delete removes the file behind url. Deleting a missing file is not an error.
	Delete(ctx context.Context, url string) error
	// Owns reports whether url points into this storage.
	Owns(url string) bool
}

// ValidateUpload enforces the accepted image types and the size limit.
func ValidateUpload(u Upload) error {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(u.ContentType, ";")[0]))
	if _, ok := allowedTypes[ct]; !ok {
		return catalog.Validation("unsupported file type", fmt.Sprintf("%s: %q is not an accepted image type", u.Filename, u.ContentType))
	}
	if u.Size > MaxUploadSize {
		return catalog.Validation("file too large", fmt.Sprintf("%s exceeds %d bytes", u.Filename, MaxUploadSize))
	}
	if u.Body == nil {
		return catalog.Validation("empty upload", u.Filename+" has no content")
	}
	return nil
}

// NewFilename names an upload <folder>-<unix millis>-<random><ext>.
func NewFilename(folder Folder, original, contentType string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(original))
	if ext == "" {
		ct := strings.ToLower(strings.Split(contentType, ";")[0])
		if e, ok := allowedTypes[ct]; ok {
			ext = e
		} else if exts, _ := mime.ExtensionsByType(ct); len(exts) > 0 {
			ext = exts[0]
		}
	}
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	return fmt.Sprintf("%s-%d-%s%s", folder, now.UnixMilli(), random, ext)
}
