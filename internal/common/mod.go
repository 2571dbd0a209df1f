package common

import (
	"fmt"
	"strings"
	"time"

	"electron-shop/api/pkg/catalog"

	"github.com/go-playground/validator/v10"
)

var Validate = validator.New()

const (
	REQUEST_TIMEOUT_SECS     = 30 * time.Second
	MONGO_DUPLICATE_KEY_CODE = 11000

	MAX_MULTIPART_MEMORY     = 32 << 20
	MAX_PRODUCT_IMAGES       = 50
	MAX_VARIANT_IMAGES       = 10
	RATE_LIMIT_WINDOW        = 15 * time.Minute
	CLEANUP_QUEUE_PER_WORKER = 64
)

// ValidateStruct runs the struct validator and reports failures as a
// validation error with one detail per field.
func ValidateStruct(v interface{}) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return catalog.Validation("invalid request", err.Error())
	}
	details := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, describe(fe))
	}
	return catalog.Validation("invalid request", details...)
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("%s must be %s %s", field, map[string]string{"gte": ">=", "lte": "<="}[fe.Tag()], fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// IsEmptyString checks if a string is empty
func IsEmptyString(s string) bool {
	return strings.TrimSpace(s) == ""
}
