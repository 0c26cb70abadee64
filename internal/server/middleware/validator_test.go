package middleware

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patchForm struct {
	SortBy        string `json:"sort_by" validate:"sort_field"`
	SortDirection string `json:"sort_direction" validate:"sort_direction"`
	InStock       string `json:"in_stock" validate:"stock"`
	MinPrice      string `json:"min_price" validate:"price"`
}

func TestValidator(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(patchForm{}))
	assert.NoError(t, v.Validate(patchForm{SortBy: "PRICE", SortDirection: "desc", InStock: "true", MinPrice: "9.99"}))

	err := v.Validate(patchForm{SortBy: "rating", MinPrice: "-1", InStock: "yes"})
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	assert.ElementsMatch(t, []string{"sort_by", "min_price", "in_stock"}, fields)

	for _, p := range []string{"1e20000000", "1e-20000000", "0.00000000001", "123456789012345678901234567890123"} {
		assert.Error(t, v.Validate(patchForm{MinPrice: p}), p)
	}
}
