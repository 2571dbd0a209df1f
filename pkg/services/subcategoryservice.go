package services

import (
	"context"
	"strings"

	"electron-shop/api/pkg/catalog"
	"electron-shop/api/pkg/models"
	"electron-shop/api/pkg/storage"
	"electron-shop/api/pkg/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type SubcategoryServiceImpl struct {
	Dependencies
}

func NewSubcategoryService(deps Dependencies) SubcategoryService {
	return &SubcategoryServiceImpl{Dependencies: deps.withDefaults()}
}

// CreateSubcategory checks the parent and uniqueness before anything is
// written, so a rejected request never leaves a file behind.
func (s *SubcategoryServiceImpl) CreateSubcategory(ctx context.Context, req models.CreateSubcategoryRequest, image *storage.Upload) (*models.Subcategory, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	categoryID, err := catalog.ParseID("categoryId", req.CategoryID)
	if err != nil {
		return nil, err
	}
	category, err := s.Categories.FindByID(ctx, categoryID)
	if err != nil {
		return nil, lookupError(err, "category", req.CategoryID)
	}

	name := strings.TrimSpace(req.Name)
	seg, err := catalog.DerivePath(name, category.Path)
	if err != nil {
		return nil, err
	}
	if err := s.checkAvailable(ctx, name, seg, primitive.NilObjectID); err != nil {
		return nil, err
	}

	description := strings.TrimSpace(req.Description)
	seoTitle, seoDescription := catalog.FillSeo(req.SeoTitle, req.SeoDescription, name, description, s.SiteName)

	now := s.Now()
	sub := &models.Subcategory{
		ID:             primitive.NewObjectID(),
		CategoryID:     category.ID,
		Name:           name,
		Slug:           seg.Slug,
		Path:           seg.Path,
		IsActive:       req.IsActive == nil || *req.IsActive,
		Description:    description,
		SeoTitle:       seoTitle,
		SeoDescription: seoDescription,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if image != nil {
		urls, err := saveUploads(ctx, s.Storage, s.Cleaner, storage.FolderSubcategories, []storage.Upload{*image})
		if err != nil {
			return nil, err
		}
		sub.Image = &models.Image{URL: urls[0], AltText: sub.Slug}
	}

	if err := s.Subcategories.Insert(ctx, sub); err != nil {
		s.Cleaner.Discard(ctx, "subcategory insert failed", sub.ImageURL())
		return nil, writeError(err, "subcategory")
	}
	s.Cache.Invalidate(ctx)

	util.LogInfo("subcategory created", zap.String("path", sub.Path))
	return sub, nil
}

func (s *SubcategoryServiceImpl) checkAvailable(ctx context.Context, name string, seg catalog.PathSegment, exclude primitive.ObjectID) error {
	err := checkUnique(ctx, func(ctx context.Context) (bool, error) {
		return s.Subcategories.NameExists(ctx, name, exclude)
	}, "subcategory name already exists")
	if err != nil {
		return err
	}
	return checkUnique(ctx, func(ctx context.Context) (bool, error) {
		return s.Subcategories.SlugOrPathExists(ctx, seg.Slug, seg.Path, exclude)
	}, "subcategory slug or path already exists")
}

func (s *SubcategoryServiceImpl) GetAllSubcategories(ctx context.Context, categoryID string) ([]models.Subcategory, error) {
	var filter *primitive.ObjectID
	if strings.TrimSpace(categoryID) != "" {
		id, err := catalog.ParseID("categoryId", categoryID)
		if err != nil {
			return nil, err
		}
		filter = &id
	}
	return s.list(ctx, filter)
}

// GetSubcategoriesByCategory lists the subcategories of a category given by
// id or slug. Unlike GetAllSubcategories the category must exist.
func (s *SubcategoryServiceImpl) GetSubcategoriesByCategory(ctx context.Context, categoryIdentifier string) ([]models.Subcategory, error) {
	ident, err := catalog.ParseIdentifier(categoryIdentifier)
	if err != nil {
		return nil, err
	}
	var category *models.Category
	if ident.Kind == catalog.ByID {
		category, err = s.Categories.FindByID(ctx, ident.ID)
	} else {
		category, err = s.Categories.FindBySlug(ctx, ident.Slug)
	}
	if err != nil {
		return nil, lookupError(err, "category", ident.String())
	}
	return s.list(ctx, &category.ID)
}

func (s *SubcategoryServiceImpl) list(ctx context.Context, categoryID *primitive.ObjectID) ([]models.Subcategory, error) {
	key := "subcategories"
	if categoryID != nil {
		key += ":" + categoryID.Hex()
	}
	var subs []models.Subcategory
	if s.Cache.Get(ctx, key, &subs) {
		return subs, nil
	}
	subs, err := s.Subcategories.FindAll(ctx, categoryID)
	if err != nil {
		return nil, catalog.Internal("failed to list subcategories", err)
	}
	if subs == nil {
		subs = []models.Subcategory{}
	}
	s.Cache.Set(ctx, key, subs)
	return subs, nil
}

func (s *SubcategoryServiceImpl) GetSubcategory(ctx context.Context, identifier string) (*models.Subcategory, error) {
	ident, err := catalog.ParseIdentifier(identifier)
	if err != nil {
		return nil, err
	}
	if ident.Kind == catalog.BySlug {
		return s.GetSubcategoryBySlug(ctx, ident.Slug)
	}
	sub, err := s.Subcategories.FindByID(ctx, ident.ID)
	if err != nil {
		return nil, lookupError(err, "subcategory", ident.String())
	}
	return sub, nil
}

func (s *SubcategoryServiceImpl) GetSubcategoryBySlug(ctx context.Context, slug string) (*models.Subcategory, error) {
	slug, err := normalizeSlug(slug)
	if err != nil {
		return nil, err
	}
	sub, err := s.Subcategories.FindBySlug(ctx, slug)
	if err != nil {
		return nil, lookupError(err, "subcategory", slug)
	}
	return sub, nil
}

func (s *SubcategoryServiceImpl) GetSubcategoryByPath(ctx context.Context, path string) (*models.Subcategory, error) {
	path, err := normalizePath(path)
	if err != nil {
		return nil, err
	}
	sub, err := s.Subcategories.FindByPath(ctx, path)
	if err != nil {
		return nil, lookupError(err, "subcategory", path)
	}
	return sub, nil
}

// UpdateSubcategory applies a partial update. Renaming or moving to another
// category re-derives the path and rewrites the product paths under it. A
// new image replaces the old one, which is deleted once the update commits.
func (s *SubcategoryServiceImpl) UpdateSubcategory(ctx context.Context, id primitive.ObjectID, req models.UpdateSubcategoryRequest, image *storage.Upload) (*models.Subcategory, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	if req.Name != nil && trimmed(req.Name) == "" {
		return nil, catalog.Validation("name cannot be empty")
	}
	var targetCategory *primitive.ObjectID
	if req.CategoryID != nil {
		cid, err := catalog.ParseID("categoryId", *req.CategoryID)
		if err != nil {
			return nil, err
		}
		targetCategory = &cid
	}

	var (
		updated  *models.Subcategory
		newImage string
		oldImage string
	)
	err := retryStale(func() error {
		current, err := s.Subcategories.FindByID(ctx, id)
		if err != nil {
			return lookupError(err, "subcategory", id.Hex())
		}
		oldPath, oldCategory := current.Path, current.CategoryID

		categoryID := current.CategoryID
		if targetCategory != nil {
			categoryID = *targetCategory
		}
		name := current.Name
		if req.Name != nil {
			name = trimmed(req.Name)
		}

		if name != current.Name || categoryID != current.CategoryID {
			category, err := s.Categories.FindByID(ctx, categoryID)
			if err != nil {
				return lookupError(err, "category", categoryID.Hex())
			}
			seg, err := catalog.DerivePath(name, category.Path)
			if err != nil {
				return err
			}
			if !strings.EqualFold(name, current.Name) || seg.Path != current.Path {
				if err := s.checkAvailable(ctx, name, seg, current.ID); err != nil {
					return err
				}
			}
			current.Name, current.Slug, current.Path = name, seg.Slug, seg.Path
			current.CategoryID = category.ID
		}
		if req.Description != nil {
			current.Description = trimmed(req.Description)
		}
		if req.IsActive != nil {
			current.IsActive = *req.IsActive
		}
		if req.SeoTitle != nil {
			current.SeoTitle = trimmed(req.SeoTitle)
		}
		if req.SeoDescription != nil {
			current.SeoDescription = trimmed(req.SeoDescription)
		}

		if image != nil && newImage == "" {
			urls, err := saveUploads(ctx, s.Storage, s.Cleaner, storage.FolderSubcategories, []storage.Upload{*image})
			if err != nil {
				return err
			}
			newImage = urls[0]
		}
		oldImage = current.ImageURL()
		if newImage != "" {
			current.Image = &models.Image{URL: newImage}
		}
		if current.Image != nil {
			current.Image.AltText = current.Slug
		}
		current.UpdatedAt = s.Now()

		if oldPath == current.Path && oldCategory == current.CategoryID {
			err = s.Subcategories.Replace(ctx, current)
			if err == nil {
				updated = current
			}
			return err
		}
		err = s.Tx.WithTransaction(ctx, func(tc context.Context) error {
			if err := s.Subcategories.Replace(tc, current); err != nil {
				return err
			}
			if oldPath != current.Path {
				if _, err := s.Products.RewritePathPrefix(tc, oldPath, current.Path); err != nil {
					return err
				}
			}
			if oldCategory != current.CategoryID {
				if _, err := s.Products.ReassignCategory(tc, current.ID, current.CategoryID); err != nil {
					return err
				}
			}
			return nil
		})
		if err == nil {
			updated = current
		}
		return err
	})
	if err != nil {
		if newImage != "" {
			s.Cleaner.Discard(ctx, "subcategory update failed", newImage)
		}
		return nil, writeError(err, "subcategory")
	}
	if newImage != "" && oldImage != "" && oldImage != newImage {
		s.Cleaner.Discard(ctx, "subcategory image replaced", oldImage)
	}
	s.Cache.Invalidate(ctx)
	return updated, nil
}

// DeleteSubcategory refuses to remove a subcategory that still has products.
// The document goes first, the cover file after.
func (s *SubcategoryServiceImpl) DeleteSubcategory(ctx context.Context, id primitive.ObjectID) error {
	sub, err := s.Subcategories.FindByID(ctx, id)
	if err != nil {
		return lookupError(err, "subcategory", id.Hex())
	}
	n, err := s.Products.CountByBrand(ctx, id)
	if err != nil {
		return catalog.Internal("failed to count products", err)
	}
	if n > 0 {
		return catalog.Conflict("subcategory still has products", "delete or move its products first")
	}
	if err := s.Subcategories.Delete(ctx, id); err != nil {
		return lookupError(err, "subcategory", id.Hex())
	}
	s.Cleaner.Discard(ctx, "subcategory deleted", sub.ImageURL())
	s.Cache.Invalidate(ctx)
	return nil
}
