package services

import (
	"context"
	"testing"
	"time"

	"electron-shop/api/pkg/catalog"
	"electron-shop/api/pkg/models"
	"electron-shop/api/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUpdateVariantPricing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := seedLaptop(t, f)
	vid := p.Variants[0].ID

	updated, err := f.products.UpdateVariant(ctx, p.ID, vid, models.UpdateVariantRequest{Discount: float(20)}, nil)
	require.NoError(t, err)
	v, _ := updated.Variant(vid)
	assert.Equal(t, 1000.0, v.Price)
	assert.Equal(t, 20.0, v.Discount)
	assert.Equal(t, 800.0, v.DiscountPrice)

	updated, err = f.products.UpdateVariant(ctx, p.ID, vid, models.UpdateVariantRequest{Price: float(500)}, nil)
	require.NoError(t, err)
	v, _ = updated.Variant(vid)
	assert.Equal(t, 400.0, v.DiscountPrice)

	updated, err = f.products.UpdateVariant(ctx, p.ID, vid, models.UpdateVariantRequest{Stock: intPtr(0), Color: str("Silver")}, nil)
	require.NoError(t, err)
	v, _ = updated.Variant(vid)
	assert.Equal(t, 400.0, v.DiscountPrice)
	assert.Equal(t, 0, v.Stock)
	assert.Equal(t, "Silver", v.Color)
}

func TestUpdateVariantAppendsUploads(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := seedLaptop(t, f)
	v := p.Variants[0]

	updated, err := f.products.UpdateVariant(ctx, p.ID, v.ID, models.UpdateVariantRequest{}, []storage.Upload{pngUpload("side.png")})
	require.NoError(t, err)
	got, _ := updated.Variant(v.ID)
	require.Len(t, got.Images, 3)
	assert.Equal(t, v.Images, got.Images[:2])
}

func TestUpdateVariantRejectsInvertedWindow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := seedLaptop(t, f)
	files := f.store.Files()

	start := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	_, err := f.products.UpdateVariant(ctx, p.ID, p.Variants[0].ID, models.UpdateVariantRequest{
		DiscountStart: &start,
		DiscountEnd:   &end,
	}, []storage.Upload{pngUpload("side.png")})
	assert.True(t, catalog.IsKind(err, catalog.KindValidation))
	assert.Equal(t, files, f.store.Files())
}

func TestUpdateVariantUnknownVariant(t *testing.T) {
	f := newFixture()
	p := seedLaptop(t, f)
	_, err := f.products.UpdateVariant(context.Background(), p.ID, primitive.NewObjectID(), models.UpdateVariantRequest{Stock: intPtr(1)}, nil)
	assert.True(t, catalog.IsKind(err, catalog.KindNotFound))
}

func TestAddAndDeleteVariant(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := seedLaptop(t, f)

	_, err := f.products.DeleteVariant(ctx, p.ID, p.Variants[0].ID)
	assert.True(t, catalog.IsKind(err, catalog.KindValidation))

	updated, err := f.products.AddVariant(ctx, p.ID, models.VariantInput{
		Color:    "Red",
		Price:    float(1100),
		Discount: 5,
	}, []storage.Upload{pngUpload("red.png")})
	require.NoError(t, err)
	require.Len(t, updated.Variants, 2)
	red := updated.Variants[1]
	assert.Equal(t, 1045.0, red.DiscountPrice)
	require.Len(t, red.Images, 1)

	updated, err = f.products.DeleteVariant(ctx, p.ID, red.ID)
	require.NoError(t, err)
	assert.Len(t, updated.Variants, 1)
	assert.Equal(t, []string{red.Images[0]}, f.store.Deleted())
}

func TestAddVariantImages(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := seedLaptop(t, f)
	vid := p.Variants[0].ID

	_, err := f.products.AddVariantImages(ctx, p.ID, vid, nil)
	assert.True(t, catalog.IsKind(err, catalog.KindValidation))

	updated, err := f.products.AddVariantImages(ctx, p.ID, vid, []storage.Upload{pngUpload("a.png"), pngUpload("b.png")})
	require.NoError(t, err)
	v, _ := updated.Variant(vid)
	assert.Len(t, v.Images, 4)
	assert.Equal(t, p.Variants[0].Images, v.Images[:2])

	_, err = f.products.AddVariantImages(ctx, p.ID, primitive.NewObjectID(), []storage.Upload{pngUpload("c.png")})
	assert.True(t, catalog.IsKind(err, catalog.KindNotFound))
	assert.Len(t, f.store.Files(), 4)
}

func TestRemoveVariantImage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := seedLaptop(t, f)
	v := p.Variants[0]

	t.Run("index equal to length", func(t *testing.T) {
		_, err := f.products.RemoveVariantImage(ctx, p.ID, v.ID, ImageRef{Index: len(v.Images)})
		assert.True(t, catalog.IsKind(err, catalog.KindIndexOutOfRange))
		assert.Empty(t, f.store.Deleted())
		stored, _ := f.products.GetProduct(ctx, p.ID.Hex())
		assert.Equal(t, v.Images, stored.Variants[0].Images)
	})

	t.Run("negative index", func(t *testing.T) {
		_, err := f.products.RemoveVariantImage(ctx, p.ID, v.ID, ImageRef{Index: -1})
		assert.True(t, catalog.IsKind(err, catalog.KindIndexOutOfRange))
	})

	t.Run("stale url guard", func(t *testing.T) {
		_, err := f.products.RemoveVariantImage(ctx, p.ID, v.ID, ImageRef{Index: 0, URL: v.Images[1]})
		assert.True(t, catalog.IsKind(err, catalog.KindConflict))
		assert.Empty(t, f.store.Deleted())
	})

	t.Run("removes and deletes the file", func(t *testing.T) {
		updated, err := f.products.RemoveVariantImage(ctx, p.ID, v.ID, ImageRef{Index: 0, URL: v.Images[0]})
		require.NoError(t, err)
		got, _ := updated.Variant(v.ID)
		assert.Equal(t, []string{v.Images[1]}, got.Images)
		assert.Equal(t, []string{v.Images[0]}, f.store.Deleted())
	})
}

func TestRemoveVariantImageKeepsSharedFile(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := seedLaptop(t, f)
	shared := p.Variants[0].Images[0]

	withWhite, err := f.products.AddVariant(ctx, p.ID, models.VariantInput{
		Color: "White",
		Price: float(1000),
	}, nil)
	require.NoError(t, err)
	white := withWhite.Variants[1].ID

	// Documents written before uploads were enforced may share a file
	// between variants.
	f.db.mu.Lock()
	stored := f.db.products[p.ID]
	variants := append([]models.Variant(nil), stored.Variants...)
	variants[1].Images = []string{shared}
	stored.Variants = variants
	f.db.products[p.ID] = stored
	f.db.mu.Unlock()

	_, err = f.products.RemoveVariantImage(ctx, p.ID, white, ImageRef{Index: 0})
	require.NoError(t, err)
	assert.Empty(t, f.store.Deleted())
	assert.Contains(t, f.store.Files(), shared)
}

func TestReplaceVariantImage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := seedLaptop(t, f)
	v := p.Variants[0]

	_, err := f.products.ReplaceVariantImage(ctx, p.ID, v.ID, ImageRef{Index: 2}, pngUpload("new.png"))
	assert.True(t, catalog.IsKind(err, catalog.KindIndexOutOfRange))
	assert.Len(t, f.store.Files(), 2)

	updated, err := f.products.ReplaceVariantImage(ctx, p.ID, v.ID, ImageRef{Index: 1}, pngUpload("new.png"))
	require.NoError(t, err)
	got, _ := updated.Variant(v.ID)
	require.Len(t, got.Images, 2)
	assert.Equal(t, v.Images[0], got.Images[0])
	assert.NotEqual(t, v.Images[1], got.Images[1])
	assert.Equal(t, []string{v.Images[1]}, f.store.Deleted())
	assert.ElementsMatch(t, got.Images, f.store.Files())
}

func TestReplaceVariantImageStorageFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := seedLaptop(t, f)
	f.store.FailSave = true

	_, err := f.products.ReplaceVariantImage(ctx, p.ID, p.Variants[0].ID, ImageRef{Index: 0}, pngUpload("new.png"))
	assert.True(t, catalog.IsKind(err, catalog.KindStorage))

	stored, err := f.products.GetProduct(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, p.Variants[0].Images, stored.Variants[0].Images)
	assert.Empty(t, f.store.Deleted())
}

func TestRemoveAllVariantImages(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := seedLaptop(t, f)
	v := p.Variants[0]

	updated, err := f.products.RemoveAllVariantImages(ctx, p.ID, v.ID)
	require.NoError(t, err)
	got, _ := updated.Variant(v.ID)
	assert.NotNil(t, got.Images)
	assert.Empty(t, got.Images)
	assert.Equal(t, v.Images, f.store.Deleted())
}

func TestVariantWriteConflictAfterRetries(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := seedLaptop(t, f)

	f.db.staleWrites = maxWriteAttempts
	_, err := f.products.UpdateVariant(ctx, p.ID, p.Variants[0].ID, models.UpdateVariantRequest{Stock: intPtr(3)}, []storage.Upload{pngUpload("late.png")})
	assert.True(t, catalog.IsKind(err, catalog.KindConflict))
	assert.Len(t, f.store.Files(), 2)
}

func intPtr(v int) *int { return &v }
