package common

import (
	"testing"

	"electron-shop/api/pkg/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name     string  `validate:"required,max=5"`
	Discount float64 `validate:"gte=0,lte=100"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, ValidateStruct(sample{Name: "ok"}))

	err := ValidateStruct(sample{Name: "", Discount: 120})
	ce, ok := catalog.As(err)
	require.True(t, ok)
	assert.Equal(t, catalog.KindValidation, ce.Kind)
	assert.Equal(t, []string{"Name is required", "Discount must be <= 100"}, ce.Details)

	err = ValidateStruct(sample{Name: "toolong"})
	ce, _ = catalog.As(err)
	assert.Equal(t, []string{"Name must be at most 5 characters"}, ce.Details)
}
