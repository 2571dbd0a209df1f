package repository

import (
	"context"

	"electron-shop/api/pkg/catalog"
	"electron-shop/api/pkg/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
	// ErrStale is returned by guarded writes when the stored version moved on.
	ErrStale = errors.New("document version is stale")
)

// CategoryRepository persists top-level categories.
type CategoryRepository interface {
	Insert(ctx context.Context, category *models.Category) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	FindByPath(ctx context.Context, path string) (*models.Category, error)
	FindAll(ctx context.Context) ([]models.Category, error)
	NameExists(ctx context.Context, name string, exclude primitive.ObjectID) (bool, error)
	SlugOrPathExists(ctx context.Context, slug, path string, exclude primitive.ObjectID) (bool, error)
	// Replace writes category if its Version still matches the stored one and
	// bumps Version on success.
	Replace(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// SubcategoryRepository persists subcategories (brands).
type SubcategoryRepository interface {
	Insert(ctx context.Context, sub *models.Subcategory) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Subcategory, error)
	FindBySlug(ctx context.Context, slug string) (*models.Subcategory, error)
	FindByPath(ctx context.Context, path string) (*models.Subcategory, error)
	// FindAll lists subcategories, restricted to one category when categoryID is set.
	FindAll(ctx context.Context, categoryID *primitive.ObjectID) ([]models.Subcategory, error)
	NameExists(ctx context.Context, name string, exclude primitive.ObjectID) (bool, error)
	SlugOrPathExists(ctx context.Context, slug, path string, exclude primitive.ObjectID) (bool, error)
	CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error)
	RewritePathPrefix(ctx context.Context, oldPrefix, newPrefix string) (int64, error)
	Replace(ctx context.Context, sub *models.Subcategory) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ProductRepository persists products and their embedded variants.
type ProductRepository interface {
	Insert(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	FindByPath(ctx context.Context, path string) (*models.Product, error)
	Find(ctx context.Context, filter models.ProductFilter, page catalog.PageRequest) ([]models.Product, int64, error)
	SlugOrPathExists(ctx context.Context, slug, path string, exclude primitive.ObjectID) (bool, error)
	CountByBrand(ctx context.Context, brandID primitive.ObjectID) (int64, error)
	RewritePathPrefix(ctx context.Context, oldPrefix, newPrefix string) (int64, error)
	ReassignCategory(ctx context.Context, brandID, categoryID primitive.ObjectID) (int64, error)
	Replace(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// ReplaceVariant overwrites one embedded variant through the positional
	// operator, guarded by the product version.
	ReplaceVariant(ctx context.Context, productID primitive.ObjectID, version int64, variant models.Variant) (*models.Product, error)
	PushVariant(ctx context.Context, productID primitive.ObjectID, version int64, variant models.Variant) (*models.Product, error)
	PullVariant(ctx context.Context, productID primitive.ObjectID, version int64, variantID primitive.ObjectID) (*models.Product, error)
	// AppendVariantImages appends urls to a variant without a version guard.
	AppendVariantImages(ctx context.Context, productID, variantID primitive.ObjectID, urls []string) (*models.Product, error)
}

// Transactor runs fn so that every repository call made with the ctx it
// receives commits or aborts together.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
