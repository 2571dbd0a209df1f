package storage

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"electron-shop/api/pkg/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFilename(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	name := NewFilename(FolderProducts, "Photo.JPG", "image/jpeg", now)
	assert.Regexp(t, regexp.MustCompile(`^products-1700000000123-[0-9a-f]{10}\.jpg$`), name)

	name = NewFilename(FolderSubcategories, "blob", "image/png", now)
	assert.True(t, strings.HasSuffix(name, ".png"), name)

	assert.NotEqual(t,
		NewFilename(FolderProducts, "a.png", "image/png", now),
		NewFilename(FolderProducts, "a.png", "image/png", now))
}

func TestValidateUpload(t *testing.T) {
	ok := Upload{Filename: "a.png", ContentType: "image/png", Size: 10, Body: strings.NewReader("x")}
	require.NoError(t, ValidateUpload(ok))

	bad := ok
	bad.ContentType = "application/pdf"
	assert.True(t, catalog.IsKind(ValidateUpload(bad), catalog.KindValidation))

	big := ok
	big.Size = MaxUploadSize + 1
	assert.True(t, catalog.IsKind(ValidateUpload(big), catalog.KindValidation))
}

func TestLocalStorageLifecycle(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewLocalStorage(root, "http://localhost:8080/")

	url, err := s.Save(ctx, FolderProducts, Upload{
		Filename: "x1.png", ContentType: "image/png", Size: 5, Body: strings.NewReader("hello"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/products/products-"), url)
	assert.True(t, s.Owns(url))

	name := filepath.Base(url)
	data, err := os.ReadFile(filepath.Join(root, "products", name))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	found, err := s.Exists(ctx, url)
	require.NoError(t, err)
	assert.True(t, found)

	require.NoError(t, s.Delete(ctx, url))
	found, err = s.Exists(ctx, url)
	require.NoError(t, err)
	assert.False(t, found)

	// deleting twice is fine
	require.NoError(t, s.Delete(ctx, url))
}

func TestLocalStorageRefusesForeignAndEscapingURLs(t *testing.T) {
	s := NewLocalStorage(t.TempDir(), "http://localhost:8080")
	assert.False(t, s.Owns("https://cdn.example.com/uploads/products/a.png"))
	assert.False(t, s.Owns("http://localhost:8080/uploads/../../etc/passwd"))
	assert.True(t, s.Owns("http://localhost:8080/uploads/products/a.png"))
	require.NoError(t, s.Delete(context.Background(), "https://cdn.example.com/a.png"))
}

func TestPublicIDFromURL(t *testing.T) {
	id, ok := PublicIDFromURL("https://res.cloudinary.com/demo/image/upload/v1700000000/shop/products/products-1-ab.jpg", "demo")
	require.True(t, ok)
	assert.Equal(t, "shop/products/products-1-ab", id)

	id, ok = PublicIDFromURL("https://res.cloudinary.com/demo/image/upload/sample.png", "demo")
	require.True(t, ok)
	assert.Equal(t, "sample", id)

	_, ok = PublicIDFromURL("https://res.cloudinary.com/other/image/upload/v1/a.png", "demo")
	assert.False(t, ok)

	_, ok = PublicIDFromURL("https://example.com/demo/image/upload/v1/a.png", "demo")
	assert.False(t, ok)
}
