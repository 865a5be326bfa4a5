package beer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/PANHAVORN22/Mini-mart/internal/catalog"
	"github.com/PANHAVORN22/Mini-mart/internal/config"
	"github.com/PANHAVORN22/Mini-mart/internal/models"
	"github.com/PANHAVORN22/Mini-mart/internal/service/token"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

var testSecret = []byte("test-access-secret")

func doGet(t *testing.T, path string, accessToken string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if accessToken != "" {
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: accessToken})
	}
	rec := httptest.NewRecorder()
	return rec, echo.New().NewContext(req, rec)
}

func seedBeers(t *testing.T, db *gorm.DB) {
	t.Helper()
	beers := []models.Beer{
		{Name: "Angkor Lager", Type: "lager", Price: 3.50, Stock: 10},
		{Name: "Hanuman IPA", Type: "ipa", Price: 5.00, Stock: 4},
		{Name: "Royal Reserve Stout", Type: "stout", Price: 9.00, Stock: 2, IsPremium: true},
	}
	for i := range beers {
		require.NoError(t, db.Create(&beers[i]).Error)
	}
}

func TestGetBeersHidesPremiumFromAnonymous(t *testing.T) {
	db := newTestDB(t)
	h := &BeerHandler{DB: db, JWTSecret: testSecret}
	seedBeers(t, db)

	rec, c := doGet(t, "/api/v1/beers", "")
	require.NoError(t, h.GetBeers(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var views []catalog.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 2)
	for _, v := range views {
		require.False(t, v.IsPremiumOnly)
	}
}

func TestGetBeersShowsPremiumToPremiumViewer(t *testing.T) {
	db := newTestDB(t)
	h := &BeerHandler{DB: db, JWTSecret: testSecret}
	seedBeers(t, db)

	expires := time.Now().Add(24 * time.Hour)
	user := models.User{Email: "dara@example.com", PasswordHash: "x", Role: "customer", IsPremium: true, PremiumExpiresAt: &expires}
	require.NoError(t, db.Create(&user).Error)

	access, err := token.SignAccessToken(user.ID, user.Role, testSecret)
	require.NoError(t, err)

	rec, c := doGet(t, "/api/v1/beers", access)
	require.NoError(t, h.GetBeers(c))

	var views []catalog.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 3)
}

func TestExpiredPremiumSeesPublicCatalogOnly(t *testing.T) {
	db := newTestDB(t)
	h := &BeerHandler{DB: db, JWTSecret: testSecret}
	seedBeers(t, db)

	expired := time.Now().Add(-time.Hour)
	user := models.User{Email: "late@example.com", PasswordHash: "x", Role: "customer", IsPremium: true, PremiumExpiresAt: &expired}
	require.NoError(t, db.Create(&user).Error)

	access, err := token.SignAccessToken(user.ID, user.Role, testSecret)
	require.NoError(t, err)

	rec, c := doGet(t, "/api/v1/beers", access)
	require.NoError(t, h.GetBeers(c))

	var views []catalog.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 2)
}

func TestGetBeerPremiumHiddenAs404(t *testing.T) {
	db := newTestDB(t)
	h := &BeerHandler{DB: db, JWTSecret: testSecret}

	b := models.Beer{Name: "Royal Reserve Stout", Type: "stout", Price: 9, Stock: 2, IsPremium: true}
	require.NoError(t, db.Create(&b).Error)

	_, c := doGet(t, "/api/v1/beers/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")

	err := h.GetBeer(c)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, he.Code)
}

func TestGetBeersAppliesQueryFilter(t *testing.T) {
	db := newTestDB(t)
	h := &BeerHandler{DB: db, JWTSecret: testSecret}
	seedBeers(t, db)

	rec, c := doGet(t, "/api/v1/beers?q=hanuman", "")
	require.NoError(t, h.GetBeers(c))

	var views []catalog.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	require.Equal(t, "Hanuman IPA", views[0].Name)
}

func TestGetFeaturedBeersLimit(t *testing.T) {
	db := newTestDB(t)
	h := &BeerHandler{DB: db, JWTSecret: testSecret}
	require.NoError(t, db.Create(&models.Beer{Name: "Angkor Lager", Type: "lager", Price: 3.50, Stock: 10}).Error)
	require.NoError(t, db.Create(&models.Beer{Name: "Hanuman IPA", Type: "ipa", Price: 5.00, Stock: 4}).Error)

	rec, c := doGet(t, "/api/v1/beers/featured?limit=1", "")
	require.NoError(t, h.GetFeaturedBeers(c))

	var views []catalog.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
}
