package classifier

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreshold(t *testing.T) {
	c := NewThreshold(50000)

	tests := []struct {
		name   string
		amount string
		want   bool
	}{
		{"well above threshold", "60000", true},
		{"just above threshold", "50000.01", true},
		{"at threshold is not suspicious", "50000", false},
		{"below threshold", "1000", false},
		{"zero", "0", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tc.amount)
			require.NoError(t, err)

			got, err := c.Classify(context.Background(), amount)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
