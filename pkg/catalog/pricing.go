package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeDiscountPrice returns round2(price - price*discount/100), rounding half
// away from zero.
func ComputeDiscountPrice(price, discount float64) (float64, error) {
	if err := ValidatePrice(price); err != nil {
		return 0, err
	}
	if err := ValidateDiscount(discount); err != nil {
		return 0, err
	}

	p := decimal.NewFromFloat(price)
	d := decimal.NewFromFloat(discount)
	off := p.Mul(d).Div(hundred)

	return p.Sub(off).Round(2).InexactFloat64(), nil
}

func ValidatePrice(price float64) error {
	if price < 0 {
		return Validation("invalid price", fmt.Sprintf("price must be >= 0, got %v", price))
	}
	return nil
}

func ValidateDiscount(discount float64) error {
	if discount < 0 || discount > 100 {
		return Validation("invalid discount", fmt.Sprintf("discount must be between 0 and 100, got %v", discount))
	}
	return nil
}

// PriceState is the stored pricing of a variant.
type PriceState struct {
	Price         float64
	Discount      float64
	DiscountPrice float64
}

// ResolveDiscountPrice applies a partial pricing update. When both inputs are
// set the discount price is recomputed from them; when only one is set the
// stored value of the other is used; when neither is set the stored discount
// price is returned untouched.
func ResolveDiscountPrice(stored PriceState, price, discount *float64) (PriceState, error) {
	if price == nil && discount == nil {
		return stored, nil
	}

	next := stored
	if price != nil {
		next.Price = *price
	}
	if discount != nil {
		next.Discount = *discount
	}

	dp, err := ComputeDiscountPrice(next.Price, next.Discount)
	if err != nil {
		return stored, err
	}
	next.DiscountPrice = dp
	return next, nil
}
