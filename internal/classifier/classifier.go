// Package classifier holds the suspicious-transaction decision function the
// ledger consults at creation time. Two interchangeable strategies exist: a
// fixed amount threshold and a Gemini model prompted to answer strictly
// "true" or "false".
package classifier

import (
	"context"

	"github.com/shopspring/decimal"
)

type Classifier interface {
	// Classify reports whether a transaction of the given amount should be
	// flagged as suspicious.
	Classify(ctx context.Context, amount decimal.Decimal) (bool, error)
}
