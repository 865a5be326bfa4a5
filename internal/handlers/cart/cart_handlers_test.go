package cart

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/PANHAVORN22/Mini-mart/internal/config"
	"github.com/PANHAVORN22/Mini-mart/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

func doJSONRequest(t *testing.T, method, path string, body interface{}, userID uint) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set("userID", userID)
	c.Set("role", "customer")
	return rec, c
}

func TestAddToCartCreatesEntry(t *testing.T) {
	db := newTestDB(t)
	h := &CartHandler{DB: db}

	b := models.Beer{Name: "Angkor Lager", Type: "lager", Price: 3.50, Stock: 10}
	require.NoError(t, db.Create(&b).Error)

	rec, c := doJSONRequest(t, http.MethodPost, "/api/v1/cart", map[string]uint{"beer_id": b.ID}, 1)
	require.NoError(t, h.AddToCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var item models.CartItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	require.Equal(t, uint(1), item.Quantity)
	require.InDelta(t, 3.50, item.Price, 1e-9)
}

func TestAddSameBeerTwiceIncrementsQuantity(t *testing.T) {
	db := newTestDB(t)
	h := &CartHandler{DB: db}

	b := models.Beer{Name: "Angkor Lager", Type: "lager", Price: 3.50, Stock: 10}
	require.NoError(t, db.Create(&b).Error)

	for i := 0; i < 2; i++ {
		_, c := doJSONRequest(t, http.MethodPost, "/api/v1/cart", map[string]uint{"beer_id": b.ID}, 1)
		require.NoError(t, h.AddToCart(c))
	}

	var items []models.CartItem
	require.NoError(t, db.Where("user_id = ?", 1).Find(&items).Error)
	require.Len(t, items, 1)
	require.Equal(t, uint(2), items[0].Quantity)
}

func TestAddPremiumBeerRequiresPremium(t *testing.T) {
	db := newTestDB(t)
	h := &CartHandler{DB: db}

	user := models.User{Email: "dara@example.com", PasswordHash: "x", Role: "customer"}
	require.NoError(t, db.Create(&user).Error)
	b := models.Beer{Name: "Hanuman Reserve", Type: "stout", Price: 9, Stock: 5, IsPremium: true}
	require.NoError(t, db.Create(&b).Error)

	_, c := doJSONRequest(t, http.MethodPost, "/api/v1/cart", map[string]uint{"beer_id": b.ID}, user.ID)
	err := h.AddToCart(c)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusForbidden, he.Code)

	// premium viewer may add it
	expires := time.Now().Add(24 * time.Hour)
	require.NoError(t, db.Model(&user).Updates(map[string]any{
		"is_premium":         true,
		"premium_expires_at": &expires,
	}).Error)

	_, c = doJSONRequest(t, http.MethodPost, "/api/v1/cart", map[string]uint{"beer_id": b.ID}, user.ID)
	require.NoError(t, h.AddToCart(c))
}

func TestSetQuantityReplacesUnconditionally(t *testing.T) {
	db := newTestDB(t)
	h := &CartHandler{DB: db}

	require.NoError(t, db.Create(&models.CartItem{UserID: 1, BeerID: 2, Quantity: 1, Price: 4}).Error)

	rec, c := doJSONRequest(t, http.MethodPut, "/api/v1/cart/2", map[string]uint{"quantity": 7}, 1)
	c.SetParamNames("beerID")
	c.SetParamValues("2")
	require.NoError(t, h.SetQuantity(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var item models.CartItem
	require.NoError(t, db.Where("user_id = ? AND beer_id = ?", 1, 2).First(&item).Error)
	require.Equal(t, uint(7), item.Quantity)
}

func TestRemoveFromCart(t *testing.T) {
	db := newTestDB(t)
	h := &CartHandler{DB: db}

	require.NoError(t, db.Create(&models.CartItem{UserID: 1, BeerID: 2, Quantity: 3, Price: 4}).Error)

	_, c := doJSONRequest(t, http.MethodDelete, "/api/v1/cart/2", nil, 1)
	c.SetParamNames("beerID")
	c.SetParamValues("2")
	require.NoError(t, h.RemoveFromCart(c))

	var count int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", 1).Count(&count).Error)
	require.Zero(t, count)
}

func TestClearCart(t *testing.T) {
	db := newTestDB(t)
	h := &CartHandler{DB: db}

	require.NoError(t, db.Create(&models.CartItem{UserID: 1, BeerID: 2, Quantity: 3, Price: 4}).Error)
	require.NoError(t, db.Create(&models.CartItem{UserID: 1, BeerID: 5, Quantity: 1, Price: 2}).Error)
	require.NoError(t, db.Create(&models.CartItem{UserID: 9, BeerID: 2, Quantity: 1, Price: 4}).Error)

	rec, c := doJSONRequest(t, http.MethodDelete, "/api/v1/cart", nil, 1)
	require.NoError(t, h.ClearCart(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var mine, others int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", 1).Count(&mine).Error)
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", 9).Count(&others).Error)
	require.Zero(t, mine)
	require.EqualValues(t, 1, others)
}

func TestGetQuote(t *testing.T) {
	db := newTestDB(t)
	h := &CartHandler{DB: db}

	// $12.00 x 2 -> subtotal 24.00, shipping 5.99, tax 2.40, total 32.39
	require.NoError(t, db.Create(&models.CartItem{UserID: 1, BeerID: 2, Quantity: 2, Price: 12.00}).Error)

	rec, c := doJSONRequest(t, http.MethodGet, "/api/v1/cart/quote", nil, 1)
	require.NoError(t, h.GetQuote(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ItemCount uint    `json:"item_count"`
		Subtotal  float64 `json:"subtotal"`
		Shipping  float64 `json:"shipping"`
		Tax       float64 `json:"tax"`
		Total     float64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, uint(2), resp.ItemCount)
	require.InDelta(t, 24.00, resp.Subtotal, 1e-9)
	require.InDelta(t, 5.99, resp.Shipping, 1e-9)
	require.InDelta(t, 2.40, resp.Tax, 1e-9)
	require.InDelta(t, 32.39, resp.Total, 1e-9)
}
