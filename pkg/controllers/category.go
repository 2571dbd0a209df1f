package controllers

import (
	"net/http"

	"electron-shop/api/pkg/models"
	"electron-shop/api/pkg/services"
	"electron-shop/api/pkg/util"

	"github.com/gin-gonic/gin"
)

type CategoryController struct {
	categoryService services.CategoryService
}

func InitCategoryController(categoryService services.CategoryService) *CategoryController {
	return &CategoryController{
		categoryService: categoryService,
	}
}

// CreateCategory handles POST /categories
func (cc *CategoryController) CreateCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		var req models.CreateCategoryRequest
		if !BindAndValidate(c, &req) {
			return
		}

		category, err := cc.categoryService.CreateCategory(ctx, req)
		if err != nil {
			util.HandleAppError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusCreated, "Category created", category)
	}
}

// GetAllCategories handles GET /categories
func (cc *CategoryController) GetAllCategories() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		categories, err := cc.categoryService.GetAllCategories(ctx)
		if err != nil {
			util.HandleAppError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Categories retrieved", categories)
	}
}

// GetCategory handles GET /categories/:id where id may also be a slug
func (cc *CategoryController) GetCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		category, err := cc.categoryService.GetCategory(ctx, c.Param("id"))
		if err != nil {
			util.HandleAppError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Category retrieved", category)
	}
}

// GetCategoryBySlug handles GET /categories/slug/:slug
func (cc *CategoryController) GetCategoryBySlug() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		category, err := cc.categoryService.GetCategoryBySlug(ctx, c.Param("slug"))
		if err != nil {
			util.HandleAppError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Category retrieved", category)
	}
}

// GetCategoryByPath handles GET /categories/path?path=
func (cc *CategoryController) GetCategoryByPath() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		category, err := cc.categoryService.GetCategoryByPath(ctx, c.Query("path"))
		if err != nil {
			util.HandleAppError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Category retrieved", category)
	}
}

// UpdateCategory handles PUT /categories/:id
func (cc *CategoryController) UpdateCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		id, ok := ParseObjectIDParam(c, "id")
		if !ok {
			return
		}
		var req models.UpdateCategoryRequest
		if !BindAndValidate(c, &req) {
			return
		}

		category, err := cc.categoryService.UpdateCategory(ctx, id, req)
		if err != nil {
			util.HandleAppError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Category updated", category)
	}
}

// DeleteCategory handles DELETE /categories/:id
func (cc *CategoryController) DeleteCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		id, ok := ParseObjectIDParam(c, "id")
		if !ok {
			return
		}
		if err := cc.categoryService.DeleteCategory(ctx, id); err != nil {
			util.HandleAppError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Category deleted", gin.H{"id": id.Hex()})
	}
}
