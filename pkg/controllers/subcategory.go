package controllers

import (
	"net/http"

	"electron-shop/api/pkg/models"
	"electron-shop/api/pkg/services"
	"electron-shop/api/pkg/util"

	"github.com/gin-gonic/gin"
)

type SubcategoryController struct {
	subcategoryService services.SubcategoryService
}

func InitSubcategoryController(subcategoryService services.SubcategoryService) *SubcategoryController {
	return &SubcategoryController{
		subcategoryService: subcategoryService,
	}
}

// CreateSubcategory handles POST /subcategories as JSON or multipart with an optional image
func (sc *SubcategoryController) CreateSubcategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		var req models.CreateSubcategoryRequest
		if !BindAndValidate(c, &req) {
			return
		}
		images, ok := FormImages(c, 1)
		if !ok {
			return
		}
		defer images.Close()

		sub, err := sc.subcategoryService.CreateSubcategory(ctx, req, images.First())
		if err != nil {
			util.HandleAppError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusCreated, "Subcategory created", sub)
	}
}

// GetAllSubcategories handles GET /subcategories[?categoryId=]
func (sc *SubcategoryController) GetAllSubcategories() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		subs, err := sc.subcategoryService.GetAllSubcategories(ctx, c.Query("categoryId"))
		if err != nil {
			util.HandleAppError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Subcategories retrieved", subs)
	}
}

// GetSubcategoriesByCategory handles GET /subcategories/category/:categoryId
func (sc *SubcategoryController) GetSubcategoriesByCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		subs, err := sc.subcategoryService.GetSubcategoriesByCategory(ctx, c.Param("categoryId"))
		if err != nil {
			util.HandleAppError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Subcategories retrieved", subs)
	}
}

// GetSubcategory handles GET /subcategories/:id where id may also be a slug
func (sc *SubcategoryController) GetSubcategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		sub, err := sc.subcategoryService.GetSubcategory(ctx, c.Param("id"))
		if err != nil {
			util.HandleAppError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Subcategory retrieved", sub)
	}
}

// GetSubcategoryBySlug handles GET /subcategories/slug/:slug
func (sc *SubcategoryController) GetSubcategoryBySlug() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		sub, err := sc.subcategoryService.GetSubcategoryBySlug(ctx, c.Param("slug"))
		if err != nil {
			util.HandleAppError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Subcategory retrieved", sub)
	}
}

// GetSubcategoryByPath handles GET /subcategories/path?path=
func (sc *SubcategoryController) GetSubcategoryByPath() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		sub, err := sc.subcategoryService.GetSubcategoryByPath(ctx, c.Query("path"))
		if err != nil {
			util.HandleAppError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Subcategory retrieved", sub)
	}
}

// UpdateSubcategory handles PUT /subcategories/:id as JSON or multipart with an optional image
func (sc *SubcategoryController) UpdateSubcategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		id, ok := ParseObjectIDParam(c, "id")
		if !ok {
			return
		}
		var req models.UpdateSubcategoryRequest
		if !BindAndValidate(c, &req) {
			return
		}
		images, ok := FormImages(c, 1)
		if !ok {
			return
		}
		defer images.Close()

		sub, err := sc.subcategoryService.UpdateSubcategory(ctx, id, req, images.First())
		if err != nil {
			util.HandleAppError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Subcategory updated", sub)
	}
}

// DeleteSubcategory handles DELETE /subcategories/:id
func (sc *SubcategoryController) DeleteSubcategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		id, ok := ParseObjectIDParam(c, "id")
		if !ok {
			return
		}
		if err := sc.subcategoryService.DeleteSubcategory(ctx, id); err != nil {
			util.HandleAppError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Subcategory deleted", gin.H{"id": id.Hex()})
	}
}
