package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuoteBelowFreeShipping(t *testing.T) {
	// one item at $12.00 x 2
	q := NewQuote(24.00)

	require.InDelta(t, 24.00, q.Subtotal, 1e-9)
	require.InDelta(t, 5.99, q.Shipping, 1e-9)
	require.InDelta(t, 2.40, q.Tax, 1e-9)
	require.InDelta(t, 32.39, q.Total, 1e-9)
}

func TestQuoteAboveFreeShipping(t *testing.T) {
	q := NewQuote(60.00)

	require.InDelta(t, 0.00, q.Shipping, 1e-9)
	require.InDelta(t, 6.00, q.Tax, 1e-9)
	require.InDelta(t, 66.00, q.Total, 1e-9)
}

func TestShippingThresholdIsExclusive(t *testing.T) {
	// shipping is free only when the subtotal is strictly above 50.00
	require.InDelta(t, FlatShippingFee, Shipping(50.00), 1e-9)
	require.InDelta(t, 0.00, Shipping(50.01), 1e-9)
}

func TestQuoteZeroSubtotal(t *testing.T) {
	q := NewQuote(0)

	require.InDelta(t, FlatShippingFee, q.Shipping, 1e-9)
	require.InDelta(t, 0.00, q.Tax, 1e-9)
	require.InDelta(t, FlatShippingFee, q.Total, 1e-9)
}
