package classifier

import (
	"context"

	"github.com/shopspring/decimal"
)

// Threshold flags any amount strictly greater than the configured limit.
type Threshold struct {
	limit decimal.Decimal
}

func NewThreshold(limit float64) *Threshold {
	return &Threshold{limit: decimal.NewFromFloat(limit)}
}

func (t *Threshold) Classify(_ context.Context, amount decimal.Decimal) (bool, error) {
	return amount.GreaterThan(t.limit), nil
}
