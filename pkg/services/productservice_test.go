package services

import (
	"context"
	"testing"

	"electron-shop/api/pkg/catalog"
	"electron-shop/api/pkg/models"
	"electron-shop/api/pkg/repository"
	"electron-shop/api/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// seedLaptop creates Computers > Laptops > ThinkPad X1 with one variant
// priced 1000 at 10% off and two stored images.
func seedLaptop(t *testing.T, f *fixture) *models.Product {
	t.Helper()
	ctx := context.Background()

	computers, err := f.categories.CreateCategory(ctx, models.CreateCategoryRequest{Name: "Computers"})
	require.NoError(t, err)
	laptops, err := f.subcategories.CreateSubcategory(ctx, models.CreateSubcategoryRequest{
		CategoryID: computers.ID.Hex(),
		Name:       "Laptops",
	}, nil)
	require.NoError(t, err)

	product, err := f.products.CreateProduct(ctx, models.CreateProductRequest{
		Name:       "ThinkPad X1",
		BrandID:    laptops.ID.Hex(),
		CategoryID: computers.ID.Hex(),
		Variants: []models.VariantInput{{
			Color:    "Black",
			Price:    float(1000),
			Discount: 10,
			Stock:    5,
		}},
	}, []storage.Upload{pngUpload("front.png"), pngUpload("back.png")})
	require.NoError(t, err)
	return product
}

func TestCreateProduct(t *testing.T) {
	f := newFixture()
	product := seedLaptop(t, f)

	assert.Equal(t, "thinkpad-x1", product.Slug)
	assert.Equal(t, "/computers/laptops/thinkpad-x1", product.Path)
	assert.Equal(t, "ThinkPad X1 | Electron Shop", product.Seo)
	require.Len(t, product.Variants, 1)

	v := product.Variants[0]
	assert.Equal(t, 1000.0, v.Price)
	assert.Equal(t, 900.0, v.DiscountPrice)
	assert.True(t, v.IsActive)
	assert.Len(t, v.Images, 2)
	assert.ElementsMatch(t, v.Images, f.store.Files())
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	seeded := seedLaptop(t, f)
	files := f.store.Files()

	other, err := f.categories.CreateCategory(ctx, models.CreateCategoryRequest{Name: "Audio"})
	require.NoError(t, err)

	base := models.CreateProductRequest{
		Name:       "ThinkPad X2",
		BrandID:    seeded.BrandID.Hex(),
		CategoryID: seeded.CategoryID.Hex(),
		Variants:   []models.VariantInput{{Color: "Black", Price: float(10)}},
	}

	cases := []struct {
		name   string
		mutate func(r *models.CreateProductRequest)
		kind   catalog.Kind
	}{
		{"no variants", func(r *models.CreateProductRequest) { r.Variants = nil }, catalog.KindValidation},
		{"missing price", func(r *models.CreateProductRequest) { r.Variants[0].Price = nil }, catalog.KindValidation},
		{"discount over 100", func(r *models.CreateProductRequest) { r.Variants[0].Discount = 120 }, catalog.KindValidation},
		{"bad brand id", func(r *models.CreateProductRequest) { r.BrandID = "nope" }, catalog.KindValidation},
		{"unknown brand", func(r *models.CreateProductRequest) { r.BrandID = primitive.NewObjectID().Hex() }, catalog.KindNotFound},
		{"brand of another category", func(r *models.CreateProductRequest) { r.CategoryID = other.ID.Hex() }, catalog.KindValidation},
		{"duplicate slug", func(r *models.CreateProductRequest) { r.Name = "Thinkpad x1" }, catalog.KindConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			req.Variants = append([]models.VariantInput(nil), base.Variants...)
			tc.mutate(&req)
			_, err := f.products.CreateProduct(ctx, req, []storage.Upload{pngUpload("x.png")})
			assert.Equal(t, tc.kind, catalog.KindOf(err))
			assert.Equal(t, files, f.store.Files())
		})
	}
}

func TestCreateProductRollsBackUploadsOnInsertFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	seeded := seedLaptop(t, f)
	before := f.store.Files()

	f.db.insertErr = repository.ErrDuplicate
	_, err := f.products.CreateProduct(ctx, models.CreateProductRequest{
		Name:       "ThinkPad X2",
		BrandID:    seeded.BrandID.Hex(),
		CategoryID: seeded.CategoryID.Hex(),
		Variants:   []models.VariantInput{{Color: "Red", Price: float(10)}},
	}, []storage.Upload{pngUpload("x.png")})
	assert.True(t, catalog.IsKind(err, catalog.KindConflict))
	assert.Equal(t, before, f.store.Files())
}

func TestGetProductAndRelated(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	seeded := seedLaptop(t, f)

	bySlug, err := f.products.GetProduct(ctx, "ThinkPad-X1")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, bySlug.ID)

	byPath, err := f.products.GetProductByPath(ctx, "/computers/laptops/thinkpad-x1")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, byPath.ID)

	sibling, err := f.products.CreateProduct(ctx, models.CreateProductRequest{
		Name:       "ThinkPad T14",
		BrandID:    seeded.BrandID.Hex(),
		CategoryID: seeded.CategoryID.Hex(),
		Variants:   []models.VariantInput{{Color: "Grey", Price: float(800)}},
	}, nil)
	require.NoError(t, err)

	related, err := f.products.GetRelatedProducts(ctx, seeded.ID.Hex(), catalog.PageRequest{})
	require.NoError(t, err)
	require.Len(t, related.Products, 1)
	assert.Equal(t, sibling.ID, related.Products[0].ID)
	assert.Equal(t, int64(1), related.Pagination.TotalItems)

	_, err = f.products.GetProduct(ctx, primitive.NewObjectID().Hex())
	assert.True(t, catalog.IsKind(err, catalog.KindNotFound))
}

func TestListProductsPagination(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	seeded := seedLaptop(t, f)
	for _, name := range []string{"A1", "A2", "A3"} {
		_, err := f.products.CreateProduct(ctx, models.CreateProductRequest{
			Name:       name,
			BrandID:    seeded.BrandID.Hex(),
			CategoryID: seeded.CategoryID.Hex(),
			Variants:   []models.VariantInput{{Color: "Grey", Price: float(1)}},
		}, nil)
		require.NoError(t, err)
	}

	page, err := f.products.ListProducts(ctx, catalog.PageRequest{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, page.Products, 1)
	assert.Equal(t, seeded.ID, page.Products[0].ID)
	assert.Equal(t, catalog.PageMeta{
		CurrentPage:     2,
		TotalPages:      2,
		TotalItems:      4,
		ItemsPerPage:    3,
		HasNextPage:     false,
		HasPreviousPage: true,
	}, page.Pagination)
}

func TestFilterProductsValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cases := map[string]models.ProductFilter{
		"negative min":   {MinPrice: float(-1)},
		"min above max":  {MinPrice: float(10), MaxPrice: float(5)},
		"unknown sort":   {SortBy: "color"},
		"bad sort order": {SortOrder: "up"},
		"bad spec key":   {Specs: map[string]string{"ram.size": "16"}},
	}
	for name, filter := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.products.FilterProducts(ctx, filter, catalog.PageRequest{})
			assert.True(t, catalog.IsKind(err, catalog.KindValidation))
		})
	}

	page, err := f.products.FilterProducts(ctx, models.ProductFilter{SortBy: "price", SortOrder: "asc", Specs: map[string]string{"ram": "16GB"}}, catalog.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, page.Products)
}

func TestUpdateProduct(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	seeded := seedLaptop(t, f)

	updated, err := f.products.UpdateProduct(ctx, seeded.ID, models.UpdateProductRequest{
		Name:        str("ThinkPad X1 Carbon"),
		Description: str("Light"),
	})
	require.NoError(t, err)
	assert.Equal(t, "/computers/laptops/thinkpad-x1-carbon", updated.Path)
	assert.Equal(t, "Light", updated.Description)
	assert.Equal(t, seeded.Seo, updated.Seo)

	t.Run("brand only follows the brand category", func(t *testing.T) {
		audio, err := f.categories.CreateCategory(ctx, models.CreateCategoryRequest{Name: "Audio"})
		require.NoError(t, err)
		speakers, err := f.subcategories.CreateSubcategory(ctx, models.CreateSubcategoryRequest{CategoryID: audio.ID.Hex(), Name: "Speakers"}, nil)
		require.NoError(t, err)

		moved, err := f.products.UpdateProduct(ctx, seeded.ID, models.UpdateProductRequest{BrandID: str(speakers.ID.Hex())})
		require.NoError(t, err)
		assert.Equal(t, audio.ID, moved.CategoryID)
		assert.Equal(t, "/audio/speakers/thinkpad-x1-carbon", moved.Path)
	})

	t.Run("mismatched category", func(t *testing.T) {
		_, err := f.products.UpdateProduct(ctx, seeded.ID, models.UpdateProductRequest{CategoryID: str(seeded.CategoryID.Hex())})
		assert.True(t, catalog.IsKind(err, catalog.KindValidation))
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := f.products.UpdateProduct(ctx, primitive.NewObjectID(), models.UpdateProductRequest{Name: str("x")})
		assert.True(t, catalog.IsKind(err, catalog.KindNotFound))
	})
}

func TestDeleteProductPurgesImagesEvenWhenSomeAreMissing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	seeded := seedLaptop(t, f)
	images := seeded.Variants[0].Images

	require.NoError(t, f.store.Delete(ctx, images[0]))

	require.NoError(t, f.products.DeleteProduct(ctx, seeded.ID))
	assert.Empty(t, f.store.Files())
	assert.Equal(t, images, f.store.Deleted())

	_, err := f.products.GetProduct(ctx, seeded.ID.Hex())
	assert.True(t, catalog.IsKind(err, catalog.KindNotFound))
}

func TestStoredFilesCannotBeLinkedIntoAnotherProduct(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	seeded := seedLaptop(t, f)
	shared := seeded.Variants[0].Images[0]

	_, err := f.products.CreateProduct(ctx, models.CreateProductRequest{
		Name:       "ThinkPad T14",
		BrandID:    seeded.BrandID.Hex(),
		CategoryID: seeded.CategoryID.Hex(),
		Variants:   []models.VariantInput{{Color: "Black", Price: float(800), Images: []string{shared}}},
	}, nil)
	require.Error(t, err)
	assert.True(t, catalog.IsKind(err, catalog.KindValidation))

	_, err = f.products.AddVariant(ctx, seeded.ID, models.VariantInput{
		Color: "Silver", Price: float(1100), Images: []string{shared},
	}, nil)
	assert.True(t, catalog.IsKind(err, catalog.KindValidation))

	// External links are kept and never touched on delete.
	external := "https://cdn.example.com/t14.png"
	other, err := f.products.CreateProduct(ctx, models.CreateProductRequest{
		Name:       "ThinkPad T14",
		BrandID:    seeded.BrandID.Hex(),
		CategoryID: seeded.CategoryID.Hex(),
		Variants:   []models.VariantInput{{Color: "Black", Price: float(800), Images: []string{external}}},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{external}, other.Variants[0].Images)

	require.NoError(t, f.products.DeleteProduct(ctx, other.ID))
	assert.ElementsMatch(t, seeded.Variants[0].Images, f.store.Files())
	assert.Empty(t, f.store.Deleted())
}
