package controllers

import (
	"net/http"

	"electron-shop/api/internal/common"
	"electron-shop/api/internal/helpers"
	"electron-shop/api/pkg/models"
	"electron-shop/api/pkg/services"
	"electron-shop/api/pkg/util"

	"github.com/gin-gonic/gin"
)

type ProductController struct {
	productService services.ProductService
}

func InitProductController(productService services.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// CreateProduct handles POST /products. Multipart requests carry the product
// JSON in the data field and images in the image field.
func (pc *ProductController) CreateProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		var req models.CreateProductRequest
		if !BindPayload(c, &req) {
			return
		}
		images, ok := FormImages(c, common.MAX_PRODUCT_IMAGES)
		if !ok {
			return
		}
		defer images.Close()

		product, err := pc.productService.CreateProduct(ctx, req, images.Files)
		if err != nil {
			util.HandleAppError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusCreated, "Product created", product)
	}
}

// GetProducts handles GET /products?page&limit
func (pc *ProductController) GetProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		page, err := pc.productService.ListProducts(ctx, helpers.GetPageRequest(c))
		if err != nil {
			util.HandleAppError(c, err)
			return
		}

		HandlePaginationAndResponse(c, page.Products, page.Pagination, "Products retrieved")
	}
}

// FilterProducts handles GET /products/filter
func (pc *ProductController) FilterProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		filter, err := helpers.GetProductFilter(c)
		if err != nil {
			util.HandleAppError(c, err)
			return
		}
		page, err := pc.productService.FilterProducts(ctx, filter, helpers.GetPageRequest(c))
		if err != nil {
			util.HandleAppError(c, err)
			return
		}

		HandlePaginationAndResponse(c, page.Products, page.Pagination, "Products retrieved")
	}
}

// GetRelatedProducts handles GET /products/:id/related
func (pc *ProductController) GetRelatedProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		page, err := pc.productService.GetRelatedProducts(ctx, c.Param("id"), helpers.GetPageRequest(c))
		if err != nil {
			util.HandleAppError(c, err)
			return
		}

		HandlePaginationAndResponse(c, page.Products, page.Pagination, "Related products retrieved")
	}
}

// GetProduct handles GET /products/:id where id may also be a slug
func (pc *ProductController) GetProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		product, err := pc.productService.GetProduct(ctx, c.Param("id"))
		if err != nil {
			util.HandleAppError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Product retrieved", product)
	}
}

// GetProductBySlug handles GET /products/slug/:slug
func (pc *ProductController) GetProductBySlug() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		product, err := pc.productService.GetProductBySlug(ctx, c.Param("slug"))
		if err != nil {
			util.HandleAppError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Product retrieved", product)
	}
}

// GetProductByPath handles GET /products/path?path=
func (pc *ProductController) GetProductByPath() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		product, err := pc.productService.GetProductByPath(ctx, c.Query("path"))
		if err != nil {
			util.HandleAppError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Product retrieved", product)
	}
}

// UpdateProduct handles PUT /products/:id
func (pc *ProductController) UpdateProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		id, ok := ParseObjectIDParam(c, "id")
		if !ok {
			return
		}
		var req models.UpdateProductRequest
		if !BindPayload(c, &req) {
			return
		}

		product, err := pc.productService.UpdateProduct(ctx, id, req)
		if err != nil {
			util.HandleAppError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Product updated", product)
	}
}

// DeleteProduct handles DELETE /products/:id
func (pc *ProductController) DeleteProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		id, ok := ParseObjectIDParam(c, "id")
		if !ok {
			return
		}
		if err := pc.productService.DeleteProduct(ctx, id); err != nil {
			util.HandleAppError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Product deleted", gin.H{"id": id.Hex()})
	}
}
