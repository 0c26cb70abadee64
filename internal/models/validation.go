package models

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidFilter = errors.New("invalid filter")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func filterValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterStructValidation(validateFilterState, FilterState{})
	})
	return validate
}

func validateFilterState(sl validator.StructLevel) {
	f := sl.Current().Interface().(FilterState)

	switch f.InStock {
	case StockAny, StockIn, StockOut:
	default:
		sl.ReportError(f.InStock, "InStock", "in_stock", "stock", "")
	}
	boundsOK := true
	if f.MinPrice.Valid && !PriceInRange(f.MinPrice.Decimal) {
		sl.ReportError(f.MinPrice, "MinPrice", "min_price", "price_bounds", "")
		boundsOK = false
	} else if f.MinPrice.Valid && f.MinPrice.Decimal.IsNegative() {
		sl.ReportError(f.MinPrice, "MinPrice", "min_price", "nonnegative", "")
	}
	if f.MaxPrice.Valid && !PriceInRange(f.MaxPrice.Decimal) {
		sl.ReportError(f.MaxPrice, "MaxPrice", "max_price", "price_bounds", "")
		boundsOK = false
	} else if f.MaxPrice.Valid && f.MaxPrice.Decimal.IsNegative() {
		sl.ReportError(f.MaxPrice, "MaxPrice", "max_price", "nonnegative", "")
	}
	if boundsOK && f.MinPrice.Valid && f.MaxPrice.Valid && f.MinPrice.Decimal.GreaterThan(f.MaxPrice.Decimal) {
		sl.ReportError(f.MinPrice, "MinPrice", "min_price", "price_range", "")
	}
}

// Validate reports caller errors such as an inverted price range. It never
// corrects the state.
func (f FilterState) Validate() error {
	err := filterValidator().Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidFilter, strings.Join(msgs, "; "))
}
