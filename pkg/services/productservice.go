package services

import (
	"context"
	"fmt"
	"strings"

	"electron-shop/api/internal/common"
	"electron-shop/api/pkg/catalog"
	"electron-shop/api/pkg/models"
	"electron-shop/api/pkg/repository"
	"electron-shop/api/pkg/storage"
	"electron-shop/api/pkg/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ProductServiceImpl struct {
	Dependencies
}

func NewProductService(deps Dependencies) ProductService {
	return &ProductServiceImpl{Dependencies: deps.withDefaults()}
}

// CreateProduct stores a product under its brand. Uploaded images are
// attached to the first variant.
func (s *ProductServiceImpl) CreateProduct(ctx context.Context, req models.CreateProductRequest, images []storage.Upload) (*models.Product, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	if err := checkImageCount(images, common.MAX_PRODUCT_IMAGES); err != nil {
		return nil, err
	}
	brandID, err := catalog.ParseID("brandId", req.BrandID)
	if err != nil {
		return nil, err
	}
	categoryID, err := catalog.ParseID("categoryId", req.CategoryID)
	if err != nil {
		return nil, err
	}
	brand, err := s.resolveBrand(ctx, brandID, categoryID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	seg, err := catalog.DerivePath(name, brand.Path)
	if err != nil {
		return nil, err
	}
	if err := s.checkAvailable(ctx, seg, primitive.NilObjectID); err != nil {
		return nil, err
	}

	variants := make([]models.Variant, 0, len(req.Variants))
	for i, input := range req.Variants {
		v, err := newVariant(s.Storage, input)
		if err != nil {
			return nil, withIndex(err, i)
		}
		variants = append(variants, v)
	}

	description := strings.TrimSpace(req.Description)
	seo, seoDescription := catalog.FillSeo(req.Seo, req.SeoDescription, name, description, s.SiteName)

	urls, err := saveUploads(ctx, s.Storage, s.Cleaner, storage.FolderProducts, images)
	if err != nil {
		return nil, err
	}
	variants[0].Images = append(variants[0].Images, urls...)

	now := s.Now()
	product := &models.Product{
		ID:             primitive.NewObjectID(),
		Name:           name,
		BrandID:        brand.ID,
		CategoryID:     brand.CategoryID,
		BaseSpecs:      req.BaseSpecs,
		Description:    description,
		Slug:           seg.Slug,
		Path:           seg.Path,
		Seo:            seo,
		SeoDescription: seoDescription,
		Variants:       variants,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Products.Insert(ctx, product); err != nil {
		s.Cleaner.Discard(ctx, "product insert failed", urls...)
		return nil, writeError(err, "product")
	}
	s.Cache.Invalidate(ctx)

	util.LogInfo("product created", zap.String("path", product.Path), zap.Int("variants", len(variants)))
	return product, nil
}

// resolveBrand loads brand and category and checks that the brand belongs to the category.
func (s *ProductServiceImpl) resolveBrand(ctx context.Context, brandID, categoryID primitive.ObjectID) (*models.Subcategory, error) {
	brand, err := s.Subcategories.FindByID(ctx, brandID)
	if err != nil {
		return nil, lookupError(err, "subcategory", brandID.Hex())
	}
	if err := s.checkBrandCategory(ctx, brand, categoryID); err != nil {
		return nil, err
	}
	return brand, nil
}

func (s *ProductServiceImpl) checkBrandCategory(ctx context.Context, brand *models.Subcategory, categoryID primitive.ObjectID) error {
	if _, err := s.Categories.FindByID(ctx, categoryID); err != nil {
		return lookupError(err, "category", categoryID.Hex())
	}
	if brand.CategoryID != categoryID {
		return catalog.Validation("brand does not belong to category",
			fmt.Sprintf("subcategory %s belongs to category %s", brand.ID.Hex(), brand.CategoryID.Hex()))
	}
	return nil
}

func (s *ProductServiceImpl) checkAvailable(ctx context.Context, seg catalog.PathSegment, exclude primitive.ObjectID) error {
	return checkUnique(ctx, func(ctx context.Context) (bool, error) {
		return s.Products.SlugOrPathExists(ctx, seg.Slug, seg.Path, exclude)
	}, "product slug or path already exists")
}

// newVariant builds a variant from input. Linked images must be external:
// files in the catalog storage only enter a variant through an upload, so
// each stored file is referenced by exactly one variant.
func newVariant(store storage.FileStorage, input models.VariantInput) (models.Variant, error) {
	for i, url := range input.Images {
		if store.Owns(url) {
			return models.Variant{}, catalog.Validation("images must be uploaded",
				fmt.Sprintf("images[%d] points into the catalog storage, send the file in the image field instead", i))
		}
	}
	price := *input.Price
	discountPrice, err := catalog.ComputeDiscountPrice(price, input.Discount)
	if err != nil {
		return models.Variant{}, err
	}
	if err := checkDiscountWindow(input.DiscountStart, input.DiscountEnd); err != nil {
		return models.Variant{}, err
	}
	images := make([]string, 0, len(input.Images))
	images = append(images, input.Images...)
	return models.Variant{
		ID:            primitive.NewObjectID(),
		Color:         strings.TrimSpace(input.Color),
		Images:        images,
		Specs:         input.Specs,
		Stock:         input.Stock,
		Price:         price,
		Discount:      input.Discount,
		DiscountPrice: discountPrice,
		DiscountStart: input.DiscountStart,
		DiscountEnd:   input.DiscountEnd,
		IsActive:      input.IsActive == nil || *input.IsActive,
		Label:         strings.TrimSpace(input.Label),
	}, nil
}

func withIndex(err error, i int) error {
	if ce, ok := catalog.As(err); ok && ce.Kind == catalog.KindValidation {
		return catalog.Validation(ce.Message, append([]string{fmt.Sprintf("variants[%d]", i)}, ce.Details...)...)
	}
	return err
}

func (s *ProductServiceImpl) ListProducts(ctx context.Context, page catalog.PageRequest) (*ProductPage, error) {
	return s.FilterProducts(ctx, models.ProductFilter{}, page)
}

func (s *ProductServiceImpl) FilterProducts(ctx context.Context, filter models.ProductFilter, page catalog.PageRequest) (*ProductPage, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	page = page.Normalize()
	products, total, err := s.Products.Find(ctx, filter, page)
	if err != nil {
		return nil, catalog.Internal("failed to list products", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return &ProductPage{Products: products, Pagination: catalog.NewPageMeta(page, total)}, nil
}

func validateFilter(f models.ProductFilter) error {
	var details []string
	if f.MinPrice != nil && *f.MinPrice < 0 {
		details = append(details, "minPrice must be >= 0")
	}
	if f.MaxPrice != nil && *f.MaxPrice < 0 {
		details = append(details, "maxPrice must be >= 0")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		details = append(details, "minPrice must not exceed maxPrice")
	}
	if f.SortBy != "" {
		if _, ok := repository.ProductSortFields[f.SortBy]; !ok {
			details = append(details, fmt.Sprintf("sortBy %q is not supported", f.SortBy))
		}
	}
	if f.SortOrder != "" && f.SortOrder != "asc" && f.SortOrder != "desc" {
		details = append(details, "sortOrder must be asc or desc")
	}
	for key := range f.Specs {
		if !repository.ValidSpecKey(key) {
			details = append(details, fmt.Sprintf("spec key %q is invalid", key))
		}
	}
	if len(details) > 0 {
		return catalog.Validation("invalid product filter", details...)
	}
	return nil
}

// GetRelatedProducts lists other products of the same category.
func (s *ProductServiceImpl) GetRelatedProducts(ctx context.Context, identifier string, page catalog.PageRequest) (*ProductPage, error) {
	product, err := s.GetProduct(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return s.FilterProducts(ctx, models.ProductFilter{
		CategoryID: &product.CategoryID,
		ExcludeID:  &product.ID,
	}, page)
}

func (s *ProductServiceImpl) GetProduct(ctx context.Context, identifier string) (*models.Product, error) {
	ident, err := catalog.ParseIdentifier(identifier)
	if err != nil {
		return nil, err
	}
	if ident.Kind == catalog.BySlug {
		return s.GetProductBySlug(ctx, ident.Slug)
	}
	return s.cached(ctx, "product:id:"+ident.ID.Hex(), ident.String(), func() (*models.Product, error) {
		return s.Products.FindByID(ctx, ident.ID)
	})
}

func (s *ProductServiceImpl) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	slug, err := normalizeSlug(slug)
	if err != nil {
		return nil, err
	}
	return s.cached(ctx, "product:slug:"+slug, slug, func() (*models.Product, error) {
		return s.Products.FindBySlug(ctx, slug)
	})
}

func (s *ProductServiceImpl) GetProductByPath(ctx context.Context, path string) (*models.Product, error) {
	path, err := normalizePath(path)
	if err != nil {
		return nil, err
	}
	return s.cached(ctx, "product:path:"+path, path, func() (*models.Product, error) {
		return s.Products.FindByPath(ctx, path)
	})
}

func (s *ProductServiceImpl) cached(ctx context.Context, key, ref string, load func() (*models.Product, error)) (*models.Product, error) {
	var product models.Product
	if s.Cache.Get(ctx, key, &product) {
		return &product, nil
	}
	found, err := load()
	if err != nil {
		return nil, lookupError(err, "product", ref)
	}
	s.Cache.Set(ctx, key, found)
	return found, nil
}

// UpdateProduct applies a partial update. The path is always re-derived from
// the current brand path and name. Changing only the brand moves the product
// to the brand's category.
func (s *ProductServiceImpl) UpdateProduct(ctx context.Context, id primitive.ObjectID, req models.UpdateProductRequest) (*models.Product, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	if req.Name != nil && trimmed(req.Name) == "" {
		return nil, catalog.Validation("name cannot be empty")
	}
	var brandID, categoryID *primitive.ObjectID
	if req.BrandID != nil {
		bid, err := catalog.ParseID("brandId", *req.BrandID)
		if err != nil {
			return nil, err
		}
		brandID = &bid
	}
	if req.CategoryID != nil {
		cid, err := catalog.ParseID("categoryId", *req.CategoryID)
		if err != nil {
			return nil, err
		}
		categoryID = &cid
	}

	var updated *models.Product
	err := retryStale(func() error {
		current, err := s.Products.FindByID(ctx, id)
		if err != nil {
			return lookupError(err, "product", id.Hex())
		}

		bid, cid := current.BrandID, current.CategoryID
		if brandID != nil {
			bid = *brandID
		}
		if categoryID != nil {
			cid = *categoryID
		}
		brand, err := s.Subcategories.FindByID(ctx, bid)
		if err != nil {
			return lookupError(err, "subcategory", bid.Hex())
		}
		if brandID != nil && categoryID == nil {
			cid = brand.CategoryID
		}
		if err := s.checkBrandCategory(ctx, brand, cid); err != nil {
			return err
		}

		name := current.Name
		if req.Name != nil {
			name = trimmed(req.Name)
		}
		seg, err := catalog.DerivePath(name, brand.Path)
		if err != nil {
			return err
		}
		if seg.Slug != current.Slug || seg.Path != current.Path {
			if err := s.checkAvailable(ctx, seg, current.ID); err != nil {
				return err
			}
		}

		current.Name, current.Slug, current.Path = name, seg.Slug, seg.Path
		current.BrandID, current.CategoryID = bid, cid
		if req.BaseSpecs != nil {
			current.BaseSpecs = req.BaseSpecs
		}
		if req.Description != nil {
			current.Description = trimmed(req.Description)
		}
		if req.Seo != nil {
			current.Seo = trimmed(req.Seo)
		}
		if req.SeoDescription != nil {
			current.SeoDescription = trimmed(req.SeoDescription)
		}
		current.UpdatedAt = s.Now()

		if err := s.Products.Replace(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, writeError(err, "product")
	}
	s.Cache.Invalidate(ctx)
	return updated, nil
}

// DeleteProduct removes the document, then every image any variant referenced.
func (s *ProductServiceImpl) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	product, err := s.Products.FindByID(ctx, id)
	if err != nil {
		return lookupError(err, "product", id.Hex())
	}
	if err := s.Products.Delete(ctx, id); err != nil {
		return lookupError(err, "product", id.Hex())
	}
	s.Cleaner.Discard(ctx, "product deleted", product.ImageURLs()...)
	s.Cache.Invalidate(ctx)

	util.LogInfo("product deleted", zap.String("path", product.Path))
	return nil
}
