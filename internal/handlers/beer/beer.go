package beer

import (
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/PANHAVORN22/Mini-mart/internal/catalog"
	"github.com/PANHAVORN22/Mini-mart/internal/logging"
	"github.com/PANHAVORN22/Mini-mart/internal/models"
)

type BeerHandler struct {
	DB        *gorm.DB
	JWTSecret []byte
}

// viewerPremium resolves whether the requester has an active premium flag.
// The catalog is public, so a missing or invalid token just means a
// non-premium viewer.
func (h *BeerHandler) viewerPremium(c echo.Context) bool {
	cookie, err := c.Cookie("accessToken")
	if err != nil || cookie.Value == "" {
		return false
	}
	t, err := jwt.Parse(cookie.Value, func(t *jwt.Token) (interface{}, error) {
		return h.JWTSecret, nil
	})
	if err != nil || !t.Valid {
		return false
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return false
	}
	var user models.User
	if err := h.DB.First(&user, uint(sub)).Error; err != nil {
		return false
	}
	return user.PremiumActive(time.Now())
}

func parseFilter(c echo.Context) catalog.Filter {
	f := catalog.Filter{
		Query: c.QueryParam("q"),
		Type:  c.QueryParam("type"),
	}
	if v, err := strconv.ParseFloat(c.QueryParam("min_price"), 64); err == nil {
		f.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(c.QueryParam("max_price"), 64); err == nil {
		f.MaxPrice = &v
	}
	if v, err := strconv.ParseBool(c.QueryParam("premium_only")); err == nil {
		f.PremiumOnly = v
	}
	return f
}

// GetBeers returns the catalog newest-first, filtered. A fetch error is
// logged and served as an empty catalog.
func (h *BeerHandler) GetBeers(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "beer_list")

	var beers []models.Beer
	if err := h.DB.Order("created_at DESC").Find(&beers).Error; err != nil {
		l.Error("beer_list_failed", "error", err)
		return c.JSON(http.StatusOK, []catalog.View{})
	}

	views := catalog.Apply(beers, h.viewerPremium(c), parseFilter(c))
	return c.JSON(http.StatusOK, views)
}

func (h *BeerHandler) GetBeer(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var b models.Beer
	if err := h.DB.First(&b, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "beer not found")
	}

	v := catalog.Normalize(b)
	if !catalog.Visible(v, h.viewerPremium(c)) {
		return echo.NewHTTPError(http.StatusNotFound, "beer not found")
	}
	return c.JSON(http.StatusOK, v)
}

func (h *BeerHandler) GetFeaturedBeers(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "beer_featured")

	limit := 4
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 20 {
		limit = v
	}

	var beers []models.Beer
	if err := h.DB.Order("created_at DESC").Limit(limit).Find(&beers).Error; err != nil {
		l.Error("beer_featured_failed", "error", err)
		return c.JSON(http.StatusOK, []catalog.View{})
	}

	views := catalog.Apply(beers, h.viewerPremium(c), catalog.Filter{})
	return c.JSON(http.StatusOK, views)
}
