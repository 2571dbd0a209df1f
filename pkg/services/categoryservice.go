package services

import (
	"context"
	"strings"

	"electron-shop/api/pkg/catalog"
	"electron-shop/api/pkg/models"
	"electron-shop/api/pkg/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const categoriesCacheKey = "categories"

type CategoryServiceImpl struct {
	Dependencies
}

func NewCategoryService(deps Dependencies) CategoryService {
	return &CategoryServiceImpl{Dependencies: deps.withDefaults()}
}

func (s *CategoryServiceImpl) CreateCategory(ctx context.Context, req models.CreateCategoryRequest) (*models.Category, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	seg, err := catalog.DerivePath(name, "")
	if err != nil {
		return nil, err
	}

	if err := s.checkAvailable(ctx, name, seg, primitive.NilObjectID); err != nil {
		return nil, err
	}

	now := s.Now()
	category := &models.Category{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Slug:        seg.Slug,
		Path:        seg.Path,
		IsActive:    req.IsActive == nil || *req.IsActive,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Categories.Insert(ctx, category); err != nil {
		return nil, writeError(err, "category")
	}
	s.Cache.Invalidate(ctx)

	util.LogInfo("category created", zap.String("path", category.Path))
	return category, nil
}

func (s *CategoryServiceImpl) checkAvailable(ctx context.Context, name string, seg catalog.PathSegment, exclude primitive.ObjectID) error {
	err := checkUnique(ctx, func(ctx context.Context) (bool, error) {
		return s.Categories.NameExists(ctx, name, exclude)
	}, "category name already exists")
	if err != nil {
		return err
	}
	return checkUnique(ctx, func(ctx context.Context) (bool, error) {
		return s.Categories.SlugOrPathExists(ctx, seg.Slug, seg.Path, exclude)
	}, "category slug or path already exists")
}

func (s *CategoryServiceImpl) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if s.Cache.Get(ctx, categoriesCacheKey, &categories) {
		return categories, nil
	}
	categories, err := s.Categories.FindAll(ctx)
	if err != nil {
		return nil, catalog.Internal("failed to list categories", err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	s.Cache.Set(ctx, categoriesCacheKey, categories)
	return categories, nil
}

// GetCategory resolves identifier as an id when it looks like one and as a
// slug otherwise.
func (s *CategoryServiceImpl) GetCategory(ctx context.Context, identifier string) (*models.Category, error) {
	ident, err := catalog.ParseIdentifier(identifier)
	if err != nil {
		return nil, err
	}
	if ident.Kind == catalog.BySlug {
		return s.GetCategoryBySlug(ctx, ident.Slug)
	}
	category, err := s.Categories.FindByID(ctx, ident.ID)
	if err != nil {
		return nil, lookupError(err, "category", ident.String())
	}
	return category, nil
}

func (s *CategoryServiceImpl) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	slug, err := normalizeSlug(slug)
	if err != nil {
		return nil, err
	}
	category, err := s.Categories.FindBySlug(ctx, slug)
	if err != nil {
		return nil, lookupError(err, "category", slug)
	}
	return category, nil
}

func (s *CategoryServiceImpl) GetCategoryByPath(ctx context.Context, path string) (*models.Category, error) {
	path, err := normalizePath(path)
	if err != nil {
		return nil, err
	}
	category, err := s.Categories.FindByPath(ctx, path)
	if err != nil {
		return nil, lookupError(err, "category", path)
	}
	return category, nil
}

// UpdateCategory applies a partial update. A rename re-derives slug and
// path and rewrites the path of every descendant in the same transaction.
func (s *CategoryServiceImpl) UpdateCategory(ctx context.Context, id primitive.ObjectID, req models.UpdateCategoryRequest) (*models.Category, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	if req.Name != nil && trimmed(req.Name) == "" {
		return nil, catalog.Validation("name cannot be empty")
	}

	var category *models.Category
	err := retryStale(func() error {
		current, err := s.Categories.FindByID(ctx, id)
		if err != nil {
			return lookupError(err, "category", id.Hex())
		}
		oldPath := current.Path

		if req.Name != nil {
			name := trimmed(req.Name)
			seg, err := catalog.DerivePath(name, "")
			if err != nil {
				return err
			}
			if !strings.EqualFold(name, current.Name) || seg.Path != current.Path {
				if err := s.checkAvailable(ctx, name, seg, current.ID); err != nil {
					return err
				}
			}
			current.Name = name
			current.Slug = seg.Slug
			current.Path = seg.Path
		}
		if req.Description != nil {
			current.Description = trimmed(req.Description)
		}
		if req.IsActive != nil {
			current.IsActive = *req.IsActive
		}
		current.UpdatedAt = s.Now()

		if oldPath == current.Path {
			err = s.Categories.Replace(ctx, current)
			if err == nil {
				category = current
			}
			return err
		}
		err = s.Tx.WithTransaction(ctx, func(tc context.Context) error {
			if err := s.Categories.Replace(tc, current); err != nil {
				return err
			}
			subs, err := s.Subcategories.RewritePathPrefix(tc, oldPath, current.Path)
			if err != nil {
				return err
			}
			products, err := s.Products.RewritePathPrefix(tc, oldPath, current.Path)
			if err != nil {
				return err
			}
			util.LogInfo("category paths rewritten",
				zap.String("from", oldPath), zap.String("to", current.Path),
				zap.Int64("subcategories", subs), zap.Int64("products", products))
			return nil
		})
		if err == nil {
			category = current
		}
		return err
	})
	if err != nil {
		return nil, writeError(err, "category")
	}
	s.Cache.Invalidate(ctx)
	return category, nil
}

// DeleteCategory refuses to remove a category that still has subcategories.
func (s *CategoryServiceImpl) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.Categories.FindByID(ctx, id); err != nil {
		return lookupError(err, "category", id.Hex())
	}
	n, err := s.Subcategories.CountByCategory(ctx, id)
	if err != nil {
		return catalog.Internal("failed to count subcategories", err)
	}
	if n > 0 {
		return catalog.Conflict("category still has subcategories", "delete or move its subcategories first")
	}
	if err := s.Categories.Delete(ctx, id); err != nil {
		return lookupError(err, "category", id.Hex())
	}
	s.Cache.Invalidate(ctx)
	return nil
}
