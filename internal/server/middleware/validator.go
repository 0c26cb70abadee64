package middleware

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nguyentranbao-ct/catalog-browser/internal/models"
)

type Validator struct {
	validate *validator.Validate
}

// NewValidator reports field names as they appear on the wire and adds the
// catalog tags sort_field, sort_direction, stock and price.
func NewValidator() *Validator {
	validate := validator.New()

	commonTags := []string{
		"json",
		"param",
		"query",
		"header",
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range commonTags {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return ""
	})

	_ = validate.RegisterValidation("sort_field", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		for _, f := range models.SortFields {
			if strings.EqualFold(s, string(f)) {
				return true
			}
		}
		return false
	})
	_ = validate.RegisterValidation("sort_direction", func(fl validator.FieldLevel) bool {
		switch strings.ToUpper(fl.Field().String()) {
		case "", string(models.SortAsc), string(models.SortDesc):
			return true
		}
		return false
	})
	_ = validate.RegisterValidation("stock", func(fl validator.FieldLevel) bool {
		switch models.StockFilter(fl.Field().String()) {
		case models.StockAny, models.StockIn, models.StockOut:
			return true
		}
		return false
	})
	// price accepts "" (clear) or a non-negative decimal of bounded scale.
	_ = validate.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := models.ParsePrice(s)
		return err == nil
	})

	return &Validator{validate: validate}
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
