package controllers

import (
	"net/http"

	"electron-shop/api/internal/common"
	"electron-shop/api/internal/helpers"
	"electron-shop/api/pkg/models"
	"electron-shop/api/pkg/services"
	"electron-shop/api/pkg/util"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func productAndVariantIDs(c *gin.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
	productID, ok := ParseObjectIDParam(c, "id")
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	variantID, ok := ParseObjectIDParam(c, "variantId")
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return productID, variantID, true
}

func imageRef(c *gin.Context) (services.ImageRef, bool) {
	index, url, err := helpers.GetImageRef(c)
	if err != nil {
		util.HandleAppError(c, err)
		return services.ImageRef{}, false
	}
	return services.ImageRef{Index: index, URL: url}, true
}

// AddVariant handles POST /products/:id/variants
func (pc *ProductController) AddVariant() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		productID, ok := ParseObjectIDParam(c, "id")
		if !ok {
			return
		}
		var input models.VariantInput
		if !BindPayload(c, &input) {
			return
		}
		images, ok := FormImages(c, common.MAX_VARIANT_IMAGES)
		if !ok {
			return
		}
		defer images.Close()

		product, err := pc.productService.AddVariant(ctx, productID, input, images.Files)
		if err != nil {
			util.HandleAppError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusCreated, "Variant added", product)
	}
}

// UpdateVariant handles PUT /products/:id/variants/:variantId
func (pc *ProductController) UpdateVariant() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		productID, variantID, ok := productAndVariantIDs(c)
		if !ok {
			return
		}
		var req models.UpdateVariantRequest
		if !BindPayload(c, &req) {
			return
		}
		images, ok := FormImages(c, common.MAX_VARIANT_IMAGES)
		if !ok {
			return
		}
		defer images.Close()

		product, err := pc.productService.UpdateVariant(ctx, productID, variantID, req, images.Files)
		if err != nil {
			util.HandleAppError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Variant updated", product)
	}
}

// DeleteVariant handles DELETE /products/:id/variants/:variantId
func (pc *ProductController) DeleteVariant() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		productID, variantID, ok := productAndVariantIDs(c)
		if !ok {
			return
		}
		product, err := pc.productService.DeleteVariant(ctx, productID, variantID)
		if err != nil {
			util.HandleAppError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Variant deleted", product)
	}
}

// AddVariantImages handles POST /products/:id/variants/:variantId/images
func (pc *ProductController) AddVariantImages() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		productID, variantID, ok := productAndVariantIDs(c)
		if !ok {
			return
		}
		images, ok := FormImages(c, common.MAX_VARIANT_IMAGES)
		if !ok {
			return
		}
		defer images.Close()

		product, err := pc.productService.AddVariantImages(ctx, productID, variantID, images.Files)
		if err != nil {
			util.HandleAppError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Images added", product)
	}
}

// ReplaceVariantImage handles PUT /products/:id/variants/:variantId/images/:index?url=
func (pc *ProductController) ReplaceVariantImage() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		productID, variantID, ok := productAndVariantIDs(c)
		if !ok {
			return
		}
		ref, ok := imageRef(c)
		if !ok {
			return
		}
		images, ok := FormImages(c, 1)
		if !ok {
			return
		}
		defer images.Close()
		upload := images.First()
		if upload == nil {
			util.HandleAppError(c, errImageRequired)
			return
		}

		product, err := pc.productService.ReplaceVariantImage(ctx, productID, variantID, ref, *upload)
		if err != nil {
			util.HandleAppError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Image replaced", product)
	}
}

// RemoveVariantImage handles DELETE /products/:id/variants/:variantId/images/:index?url=
func (pc *ProductController) RemoveVariantImage() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		productID, variantID, ok := productAndVariantIDs(c)
		if !ok {
			return
		}
		ref, ok := imageRef(c)
		if !ok {
			return
		}

		product, err := pc.productService.RemoveVariantImage(ctx, productID, variantID, ref)
		if err != nil {
			util.HandleAppError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Image removed", product)
	}
}

// RemoveAllVariantImages handles DELETE /products/:id/variants/:variantId/images
func (pc *ProductController) RemoveAllVariantImages() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		productID, variantID, ok := productAndVariantIDs(c)
		if !ok {
			return
		}

		product, err := pc.productService.RemoveAllVariantImages(ctx, productID, variantID)
		if err != nil {
			util.HandleAppError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Images removed", product)
	}
}
