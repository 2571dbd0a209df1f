package util

import (
	"fmt"
	"net/http"
	"time"

	"electron-shop/api/pkg/catalog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ExposeErrorDetails adds details, the error chain and a stack trace to error
// responses. It is switched off in production.
var ExposeErrorDetails = true

type SuccessResponse struct {
	Success   bool        `json:"success"`
	Status    int         `json:"status"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Meta      interface{} `json:"meta,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func HandleSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	HandleSuccessMeta(c, statusCode, message, data, nil)
}

func HandleSuccessMeta(c *gin.Context, statusCode int, message string, data, meta interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Success:   true,
		Status:    statusCode,
		Message:   message,
		Data:      data,
		Meta:      meta,
		Timestamp: time.Now().UTC(),
	})
}

type ErrorResponse struct {
	Success   bool      `json:"success"`
	Status    int       `json:"status"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   []string  `json:"details,omitempty"`
	Error     string    `json:"error,omitempty"`
	Stack     string    `json:"stack,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

var genericMessages = map[catalog.Kind]string{
	catalog.KindValidation:      "Invalid request",
	catalog.KindNotFound:        "Resource not found",
	catalog.KindConflict:        "Resource already exists or was modified",
	catalog.KindIndexOutOfRange: "Invalid image index",
	catalog.KindStorage:         "File storage unavailable",
	catalog.KindAuthRequired:    "Authentication required",
	catalog.KindForbidden:       "Access denied",
	catalog.KindRateLimited:     "Too many requests",
	catalog.KindInternal:        "Internal Server Error",
}

// HandleError writes err as an error envelope with status code statusCode.
// Catalog errors keep their own code; anything else is INTERNAL_ERROR.
func HandleError(c *gin.Context, statusCode int, err error) {
	ce, ok := catalog.As(err)
	if !ok {
		ce = catalog.Internal("internal error", err)
	}

	if statusCode >= http.StatusInternalServerError {
		LogError("request failed", err, zap.String("path", c.FullPath()), zap.String("code", string(ce.Kind)))
	}

	resp := ErrorResponse{
		Success:   false,
		Status:    statusCode,
		Code:      string(ce.Kind),
		Message:   genericMessages[ce.Kind],
		Timestamp: time.Now().UTC(),
	}
	if ExposeErrorDetails {
		resp.Message = ce.Message
		resp.Details = ce.Details
		resp.Error = err.Error()
		resp.Stack = fmt.Sprintf("%+v", err)
	}
	c.AbortWithStatusJSON(statusCode, resp)
}

// HandleAppError writes err with the status that matches its kind.
func HandleAppError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if ce, ok := catalog.As(err); ok {
		status = ce.Status()
	}
	HandleError(c, status, err)
}
