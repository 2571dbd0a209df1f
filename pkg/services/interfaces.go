package services

import (
	"context"

	"electron-shop/api/pkg/catalog"
	"electron-shop/api/pkg/models"
	"electron-shop/api/pkg/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductPage is one page of products plus its pagination metadata.
type ProductPage struct {
	Products   []models.Product `json:"products"`
	Pagination catalog.PageMeta `json:"pagination"`
}

// ImageRef addresses one image of a variant by position. When URL is set
// the image at Index must still be that URL.
type ImageRef struct {
	Index int
	URL   string
}

// CategoryService defines the interface for category operations
type CategoryService interface {
	CreateCategory(ctx context.Context, req models.CreateCategoryRequest) (*models.Category, error)
	GetAllCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, identifier string) (*models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	GetCategoryByPath(ctx context.Context, path string) (*models.Category, error)
	UpdateCategory(ctx context.Context, id primitive.ObjectID, req models.UpdateCategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id primitive.ObjectID) error
}

// SubcategoryService defines the interface for subcategory (brand) operations
type SubcategoryService interface {
	CreateSubcategory(ctx context.Context, req models.CreateSubcategoryRequest, image *storage.Upload) (*models.Subcategory, error)
	// GetAllSubcategories lists every subcategory, or only those of categoryID when it is not empty.
	GetAllSubcategories(ctx context.Context, categoryID string) ([]models.Subcategory, error)
	GetSubcategoriesByCategory(ctx context.Context, categoryIdentifier string) ([]models.Subcategory, error)
	GetSubcategory(ctx context.Context, identifier string) (*models.Subcategory, error)
	GetSubcategoryBySlug(ctx context.Context, slug string) (*models.Subcategory, error)
	GetSubcategoryByPath(ctx context.Context, path string) (*models.Subcategory, error)
	UpdateSubcategory(ctx context.Context, id primitive.ObjectID, req models.UpdateSubcategoryRequest, image *storage.Upload) (*models.Subcategory, error)
	DeleteSubcategory(ctx context.Context, id primitive.ObjectID) error
}

// ProductService defines the interface for product and variant operations
type ProductService interface {
	CreateProduct(ctx context.Context, req models.CreateProductRequest, images []storage.Upload) (*models.Product, error)
	ListProducts(ctx context.Context, page catalog.PageRequest) (*ProductPage, error)
	FilterProducts(ctx context.Context, filter models.ProductFilter, page catalog.PageRequest) (*ProductPage, error)
	GetRelatedProducts(ctx context.Context, identifier string, page catalog.PageRequest) (*ProductPage, error)
	GetProduct(ctx context.Context, identifier string) (*models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	GetProductByPath(ctx context.Context, path string) (*models.Product, error)
	UpdateProduct(ctx context.Context, id primitive.ObjectID, req models.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id primitive.ObjectID) error

	AddVariant(ctx context.Context, productID primitive.ObjectID, input models.VariantInput, images []storage.Upload) (*models.Product, error)
	UpdateVariant(ctx context.Context, productID, variantID primitive.ObjectID, req models.UpdateVariantRequest, images []storage.Upload) (*models.Product, error)
	DeleteVariant(ctx context.Context, productID, variantID primitive.ObjectID) (*models.Product, error)

	AddVariantImages(ctx context.Context, productID, variantID primitive.ObjectID, images []storage.Upload) (*models.Product, error)
	ReplaceVariantImage(ctx context.Context, productID, variantID primitive.ObjectID, ref ImageRef, image storage.Upload) (*models.Product, error)
	RemoveVariantImage(ctx context.Context, productID, variantID primitive.ObjectID, ref ImageRef) (*models.Product, error)
	RemoveAllVariantImages(ctx context.Context, productID, variantID primitive.ObjectID) (*models.Product, error)
}
