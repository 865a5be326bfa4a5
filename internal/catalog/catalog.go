package catalog

import (
	"strings"

	"github.com/PANHAVORN22/Mini-mart/internal/models"
)

const (
	DefaultVolume   = 355
	PlaceholderPath = "/placeholder.svg"
)

// View is a beer normalized for display. Brand is derived from the name,
// it is not a stored field.
type View struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	Brand         string  `json:"brand"`
	Type          string  `json:"type"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	ABV           float64 `json:"abv"`
	Volume        int     `json:"volume"`
	Stock         int     `json:"stock"`
	ImageURL      string  `json:"image_url"`
	IsPremiumOnly bool    `json:"is_premium_only"`
}

func Normalize(b models.Beer) View {
	v := View{
		ID:            b.ID,
		Name:          b.Name,
		Brand:         Brand(b.Name),
		Type:          b.Type,
		Description:   b.Description,
		Price:         b.Price,
		ABV:           b.AlcoholContent,
		Volume:        b.Volume,
		Stock:         b.Stock,
		ImageURL:      b.ImageURL,
		IsPremiumOnly: b.IsPremium,
	}
	if v.Volume == 0 {
		v.Volume = DefaultVolume
	}
	if v.ImageURL == "" {
		v.ImageURL = PlaceholderPath
	}
	return v
}

// Brand is the first whitespace-delimited token of the name.
func Brand(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Filter holds the optional catalog predicates. Active predicates are
// combined with logical AND.
type Filter struct {
	Query       string
	Type        string
	MinPrice    *float64
	MaxPrice    *float64
	PremiumOnly bool
}

// Visible reports whether the viewer may see the beer at all: premium-only
// beers are hidden from non-premium viewers regardless of other filters.
func Visible(v View, viewerPremium bool) bool {
	return !v.IsPremiumOnly || viewerPremium
}

func (f Filter) Matches(v View) bool {
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(v.Name), q) &&
			!strings.Contains(strings.ToLower(v.Brand), q) &&
			!strings.Contains(strings.ToLower(v.Type), q) {
			return false
		}
	}
	if f.Type != "" && v.Type != f.Type {
		return false
	}
	if f.MinPrice != nil && v.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && v.Price > *f.MaxPrice {
		return false
	}
	if f.PremiumOnly && !v.IsPremiumOnly {
		return false
	}
	return true
}

// Apply normalizes the beers and keeps those visible to the viewer that
// match every active predicate. Input order is preserved.
func Apply(beers []models.Beer, viewerPremium bool, f Filter) []View {
	views := make([]View, 0, len(beers))
	for _, b := range beers {
		v := Normalize(b)
		if !Visible(v, viewerPremium) {
			continue
		}
		if !f.Matches(v) {
			continue
		}
		views = append(views, v)
	}
	return views
}
