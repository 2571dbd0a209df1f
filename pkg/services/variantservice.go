package services

import (
	"context"
	"strconv"
	"time"

	"electron-shop/api/internal/common"
	"electron-shop/api/pkg/catalog"
	"electron-shop/api/pkg/lifecycle"
	"electron-shop/api/pkg/models"
	"electron-shop/api/pkg/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func checkDiscountWindow(start, end *time.Time) error {
	if start != nil && end != nil && start.After(*end) {
		return catalog.Validation("discountStart must not be after discountEnd")
	}
	return nil
}

func cloneVariant(v models.Variant) models.Variant {
	v.Images = lifecycle.Append(v.Images, nil)
	if v.Specs != nil {
		specs := make(map[string]interface{}, len(v.Specs))
		for k, val := range v.Specs {
			specs[k] = val
		}
		v.Specs = specs
	}
	return v
}

// findVariant loads a product and one of its variants.
func (s *ProductServiceImpl) findVariant(ctx context.Context, productID, variantID primitive.ObjectID) (*models.Product, *models.Variant, error) {
	product, err := s.Products.FindByID(ctx, productID)
	if err != nil {
		return nil, nil, lookupError(err, "product", productID.Hex())
	}
	v, _ := product.Variant(variantID)
	if v == nil {
		return nil, nil, catalog.NotFound("variant", variantID.Hex())
	}
	return product, v, nil
}

// mutateVariant applies fn to a copy of the variant and writes it back under
// the product version, reloading on a stale write. It returns the updated
// product, the images the variant held before and every image the product
// still references after.
func (s *ProductServiceImpl) mutateVariant(ctx context.Context, productID, variantID primitive.ObjectID, fn func(v *models.Variant) error) (*models.Product, []string, []string, error) {
	var (
		updated       *models.Product
		before, after []string
	)
	err := retryStale(func() error {
		product, v, err := s.findVariant(ctx, productID, variantID)
		if err != nil {
			return err
		}
		next := cloneVariant(*v)
		if err := fn(&next); err != nil {
			return err
		}
		updated, err = s.Products.ReplaceVariant(ctx, product.ID, product.Version, next)
		if err != nil {
			return err
		}
		before, after = v.Images, updated.ImageURLs()
		return nil
	})
	if err != nil {
		return nil, nil, nil, writeError(err, "product")
	}
	s.Cache.Invalidate(ctx)
	return updated, before, after, nil
}

func checkImageCount(images []storage.Upload, max int) error {
	if len(images) > max {
		return catalog.Validation("too many images", "at most "+strconv.Itoa(max)+" images can be uploaded at once")
	}
	return nil
}

func (s *ProductServiceImpl) AddVariant(ctx context.Context, productID primitive.ObjectID, input models.VariantInput, images []storage.Upload) (*models.Product, error) {
	if err := validate(&input); err != nil {
		return nil, err
	}
	if err := checkImageCount(images, common.MAX_VARIANT_IMAGES); err != nil {
		return nil, err
	}
	variant, err := newVariant(s.Storage, input)
	if err != nil {
		return nil, err
	}
	if _, err := s.Products.FindByID(ctx, productID); err != nil {
		return nil, lookupError(err, "product", productID.Hex())
	}

	urls, err := saveUploads(ctx, s.Storage, s.Cleaner, storage.FolderProducts, images)
	if err != nil {
		return nil, err
	}
	variant.Images = lifecycle.Append(variant.Images, urls)

	var updated *models.Product
	err = retryStale(func() error {
		product, err := s.Products.FindByID(ctx, productID)
		if err != nil {
			return lookupError(err, "product", productID.Hex())
		}
		updated, err = s.Products.PushVariant(ctx, product.ID, product.Version, variant)
		return err
	})
	if err != nil {
		s.Cleaner.Discard(ctx, "variant insert failed", urls...)
		return nil, writeError(err, "product")
	}
	s.Cache.Invalidate(ctx)
	return updated, nil
}

// UpdateVariant applies a partial update. Price and discount changes
// recompute the discount price from whichever side is missing; uploads are
// appended to the image list.
func (s *ProductServiceImpl) UpdateVariant(ctx context.Context, productID, variantID primitive.ObjectID, req models.UpdateVariantRequest, images []storage.Upload) (*models.Product, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	if err := checkImageCount(images, common.MAX_VARIANT_IMAGES); err != nil {
		return nil, err
	}
	if _, _, err := s.findVariant(ctx, productID, variantID); err != nil {
		return nil, err
	}

	urls, err := saveUploads(ctx, s.Storage, s.Cleaner, storage.FolderProducts, images)
	if err != nil {
		return nil, err
	}

	updated, _, _, err := s.mutateVariant(ctx, productID, variantID, func(v *models.Variant) error {
		pricing, err := catalog.ResolveDiscountPrice(catalog.PriceState{
			Price:         v.Price,
			Discount:      v.Discount,
			DiscountPrice: v.DiscountPrice,
		}, req.Price, req.Discount)
		if err != nil {
			return err
		}
		v.Price, v.Discount, v.DiscountPrice = pricing.Price, pricing.Discount, pricing.DiscountPrice

		if req.DiscountStart != nil {
			v.DiscountStart = req.DiscountStart
		}
		if req.DiscountEnd != nil {
			v.DiscountEnd = req.DiscountEnd
		}
		if err := checkDiscountWindow(v.DiscountStart, v.DiscountEnd); err != nil {
			return err
		}
		if req.Color != nil {
			v.Color = trimmed(req.Color)
		}
		if req.Specs != nil {
			v.Specs = req.Specs
		}
		if req.Stock != nil {
			v.Stock = *req.Stock
		}
		if req.IsActive != nil {
			v.IsActive = *req.IsActive
		}
		if req.Label != nil {
			v.Label = trimmed(req.Label)
		}
		v.Images = lifecycle.Append(v.Images, urls)
		return nil
	})
	if err != nil {
		s.Cleaner.Discard(ctx, "variant update failed", urls...)
		return nil, err
	}
	return updated, nil
}

// DeleteVariant removes a variant and its images. The last variant of a
// product cannot be removed.
func (s *ProductServiceImpl) DeleteVariant(ctx context.Context, productID, variantID primitive.ObjectID) (*models.Product, error) {
	var (
		updated *models.Product
		removed []string
	)
	err := retryStale(func() error {
		product, v, err := s.findVariant(ctx, productID, variantID)
		if err != nil {
			return err
		}
		if len(product.Variants) == 1 {
			return catalog.Validation("a product must keep at least one variant")
		}
		updated, err = s.Products.PullVariant(ctx, product.ID, product.Version, variantID)
		if err != nil {
			return err
		}
		removed = lifecycle.Orphans(v.Images, updated.ImageURLs())
		return nil
	})
	if err != nil {
		return nil, writeError(err, "product")
	}
	s.Cleaner.Discard(ctx, "variant deleted", removed...)
	s.Cache.Invalidate(ctx)
	return updated, nil
}

func (s *ProductServiceImpl) AddVariantImages(ctx context.Context, productID, variantID primitive.ObjectID, images []storage.Upload) (*models.Product, error) {
	if len(images) == 0 {
		return nil, catalog.Validation("at least one image is required")
	}
	if err := checkImageCount(images, common.MAX_VARIANT_IMAGES); err != nil {
		return nil, err
	}
	if _, _, err := s.findVariant(ctx, productID, variantID); err != nil {
		return nil, err
	}

	urls, err := saveUploads(ctx, s.Storage, s.Cleaner, storage.FolderProducts, images)
	if err != nil {
		return nil, err
	}
	updated, err := s.Products.AppendVariantImages(ctx, productID, variantID, urls)
	if err != nil {
		s.Cleaner.Discard(ctx, "variant image append failed", urls...)
		return nil, lookupError(err, "variant", variantID.Hex())
	}
	s.Cache.Invalidate(ctx)
	return updated, nil
}

func checkImageRef(images []string, ref ImageRef) error {
	if ref.Index < 0 || ref.Index >= len(images) {
		return catalog.IndexOutOfRange(ref.Index, len(images))
	}
	if ref.URL != "" && images[ref.Index] != ref.URL {
		return catalog.Conflict("image list changed", "the image at index "+strconv.Itoa(ref.Index)+" is no longer "+ref.URL)
	}
	return nil
}

// ReplaceVariantImage swaps the image at ref for a new upload. The old file
// is deleted only after the new list is stored.
func (s *ProductServiceImpl) ReplaceVariantImage(ctx context.Context, productID, variantID primitive.ObjectID, ref ImageRef, image storage.Upload) (*models.Product, error) {
	_, v, err := s.findVariant(ctx, productID, variantID)
	if err != nil {
		return nil, err
	}
	if err := checkImageRef(v.Images, ref); err != nil {
		return nil, err
	}

	urls, err := saveUploads(ctx, s.Storage, s.Cleaner, storage.FolderProducts, []storage.Upload{image})
	if err != nil {
		return nil, err
	}
	updated, before, after, err := s.mutateVariant(ctx, productID, variantID, func(v *models.Variant) error {
		if err := checkImageRef(v.Images, ref); err != nil {
			return err
		}
		images, _, err := lifecycle.ReplaceAt(v.Images, ref.Index, urls[0])
		v.Images = images
		return err
	})
	if err != nil {
		s.Cleaner.Discard(ctx, "variant image replace failed", urls...)
		return nil, err
	}
	s.Cleaner.Discard(ctx, "variant image replaced", lifecycle.Orphans(before, after)...)
	return updated, nil
}

func (s *ProductServiceImpl) RemoveVariantImage(ctx context.Context, productID, variantID primitive.ObjectID, ref ImageRef) (*models.Product, error) {
	updated, before, after, err := s.mutateVariant(ctx, productID, variantID, func(v *models.Variant) error {
		if err := checkImageRef(v.Images, ref); err != nil {
			return err
		}
		images, _, err := lifecycle.RemoveAt(v.Images, ref.Index)
		v.Images = images
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Cleaner.Discard(ctx, "variant image removed", lifecycle.Orphans(before, after)...)
	return updated, nil
}

func (s *ProductServiceImpl) RemoveAllVariantImages(ctx context.Context, productID, variantID primitive.ObjectID) (*models.Product, error) {
	updated, before, after, err := s.mutateVariant(ctx, productID, variantID, func(v *models.Variant) error {
		v.Images, _ = lifecycle.RemoveAll(v.Images)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Cleaner.Discard(ctx, "variant images cleared", lifecycle.Orphans(before, after)...)
	return updated, nil
}
