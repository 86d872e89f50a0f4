package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Outcomes of a single price adjustment, used as metric labels.
const (
	PriceAdjustApplied = "applied"
	PriceAdjustSkipped = "skipped"
	PriceAdjustFailed  = "failed"
)

type Product struct {
	ID          int
	Name        string
	Description *string
	Price       decimal.Decimal
	Stock       int
	DailyOffer  bool
	ExpiresAt   *time.Time
	ImageURL    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasStockFor reports whether quantity units can be taken without going negative.
func (p Product) HasStockFor(quantity int) bool {
	return quantity > 0 && p.Stock >= quantity
}

// NewProduct carries the validated fields of a product about to be created.
type NewProduct struct {
	Name        string
	Description *string
	Price       decimal.Decimal
	Stock       int
	DailyOffer  bool
	ExpiresAt   *time.Time
	ImageURL    *string
}

// Nullable distinguishes an absent field from an explicit null.
// Set=false leaves the column untouched, Set=true with a nil Value clears it.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// ProductPatch holds only the fields present in an update request.
type ProductPatch struct {
	Name        *string
	Description Nullable[string]
	Price       *decimal.Decimal
	Stock       *int
	DailyOffer  *bool
	ExpiresAt   Nullable[time.Time]
	ImageURL    *string
}

func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil &&
		!p.Description.Set &&
		p.Price == nil &&
		p.Stock == nil &&
		p.DailyOffer == nil &&
		!p.ExpiresAt.Set &&
		p.ImageURL == nil
}

var hundred = decimal.NewFromInt(100)

// ApplyPercentage returns price * (1 + percentage/100) rounded half away
// from zero to two decimal places.
func ApplyPercentage(price decimal.Decimal, percentage float64) decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(percentage).Div(hundred))
	return price.Mul(factor).Round(2)
}
