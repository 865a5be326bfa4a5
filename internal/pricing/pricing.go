package pricing

// Fixed business rules, not configuration.
const (
	FreeShippingThreshold = 50.00
	FlatShippingFee       = 5.99
	TaxRate               = 0.10
)

type Quote struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

func Shipping(subtotal float64) float64 {
	if subtotal > FreeShippingThreshold {
		return 0
	}
	return FlatShippingFee
}

func Tax(subtotal float64) float64 {
	return subtotal * TaxRate
}

func NewQuote(subtotal float64) Quote {
	shipping := Shipping(subtotal)
	tax := Tax(subtotal)
	return Quote{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal + shipping + tax,
	}
}
