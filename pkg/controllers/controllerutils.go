package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"electron-shop/api/internal/common"
	"electron-shop/api/internal/helpers"
	"electron-shop/api/pkg/catalog"
	"electron-shop/api/pkg/util"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ImageField is the multipart field that carries uploaded images.
const ImageField = "image"

var errImageRequired = catalog.Validation("an image is required", "send the file in the image field")

// payloadField carries the JSON document of a multipart request whose body
// does not fit flat form fields.
const payloadField = "data"

// WithTimeout creates a context with the standard request timeout
func WithTimeout(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), common.REQUEST_TIMEOUT_SECS)
}

// ParseObjectIDParam parses an ObjectID from URL parameter and handles errors
func ParseObjectIDParam(c *gin.Context, paramName string) (primitive.ObjectID, bool) {
	id, err := helpers.ParamID(c, paramName)
	if err != nil {
		util.HandleAppError(c, err)
		return primitive.NilObjectID, false
	}
	return id, true
}

// BindAndValidate binds JSON or form fields and handles validation errors
func BindAndValidate(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		util.HandleAppError(c, catalog.Validation("invalid request body", err.Error()))
		return false
	}
	if err := common.ValidateStruct(obj); err != nil {
		util.HandleAppError(c, err)
		return false
	}
	return true
}

// BindPayload reads obj from a JSON body, or from the "data" field of a
// multipart form.
func BindPayload(c *gin.Context, obj any) bool {
	if strings.HasPrefix(c.ContentType(), gin.MIMEMultipartPOSTForm) {
		raw := c.PostForm(payloadField)
		if strings.TrimSpace(raw) == "" {
			util.HandleAppError(c, catalog.Validation("invalid request body", "multipart requests carry their JSON document in the data field"))
			return false
		}
		if err := json.Unmarshal([]byte(raw), obj); err != nil {
			util.HandleAppError(c, catalog.Validation("invalid request body", err.Error()))
			return false
		}
	} else if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(obj); err != nil {
			util.HandleAppError(c, catalog.Validation("invalid request body", err.Error()))
			return false
		}
	}
	if err := common.ValidateStruct(obj); err != nil {
		util.HandleAppError(c, err)
		return false
	}
	return true
}

// FormImages opens the uploaded images of the request. The caller must Close
// the result.
func FormImages(c *gin.Context, max int) (*helpers.Uploads, bool) {
	uploads, err := helpers.FormUploads(c, ImageField, max)
	if err != nil {
		util.HandleAppError(c, err)
		return nil, false
	}
	return uploads, true
}

// HandlePaginationAndResponse is a utility for common pagination responses
func HandlePaginationAndResponse(c *gin.Context, data any, pagination catalog.PageMeta, message string) {
	util.HandleSuccessMeta(c, http.StatusOK, message, data, gin.H{
		"pagination": pagination,
	})
}
