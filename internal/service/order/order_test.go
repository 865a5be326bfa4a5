package order

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
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

func testCheckoutData() CheckoutData {
	return CheckoutData{
		FullName:    "Sok Dara",
		Email:       "dara@example.com",
		Phone:       "+855012345678",
		HouseNumber: "12B",
		Street:      "Street 240",
		City:        "Phnom Penh",
		ZipCode:     "12000",
	}
}

func TestPlaceDecrementsStock(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db, PricePolicy: config.PricePolicyCaptured}

	beer := models.Beer{Name: "Angkor Lager", Type: "lager", Price: 12.00, Stock: 10}
	require.NoError(t, db.Create(&beer).Error)

	placed, err := svc.Place(context.Background(), 1,
		[]LineItem{{BeerID: beer.ID, Quantity: 2, Price: 12.00}},
		testCheckoutData())
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPending, placed.Status)
	require.InDelta(t, 24.00, placed.Total, 1e-9)

	var got models.Beer
	require.NoError(t, db.First(&got, beer.ID).Error)
	require.Equal(t, 8, got.Stock)

	var items []models.OrderItem
	require.NoError(t, db.Where("order_id = ?", placed.ID).Find(&items).Error)
	require.Len(t, items, 1)
	require.Equal(t, uint(2), items[0].Quantity)
	require.InDelta(t, 12.00, items[0].Price, 1e-9)
}

func TestPlaceRejectsWhenOutOfStock(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db, PricePolicy: config.PricePolicyCaptured}

	beer := models.Beer{Name: "Hanuman IPA", Type: "ipa", Price: 5.00, Stock: 1}
	require.NoError(t, db.Create(&beer).Error)

	_, err := svc.Place(context.Background(), 1,
		[]LineItem{{BeerID: beer.ID, Quantity: 2, Price: 5.00}},
		testCheckoutData())
	require.ErrorIs(t, err, ErrOutOfStock)

	// the whole transaction rolled back: no order, no items, stock untouched
	var orderCount, itemCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&itemCount).Error)
	require.Zero(t, orderCount)
	require.Zero(t, itemCount)

	var got models.Beer
	require.NoError(t, db.First(&got, beer.ID).Error)
	require.Equal(t, 1, got.Stock)
}

func TestPlaceLastUnitOnlyOnceSucceeds(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db, PricePolicy: config.PricePolicyCaptured}

	beer := models.Beer{Name: "Kingdom Gold", Type: "pilsner", Price: 4.00, Stock: 1}
	require.NoError(t, db.Create(&beer).Error)

	items := []LineItem{{BeerID: beer.ID, Quantity: 1, Price: 4.00}}

	_, err := svc.Place(context.Background(), 1, items, testCheckoutData())
	require.NoError(t, err)

	_, err = svc.Place(context.Background(), 2, items, testCheckoutData())
	require.ErrorIs(t, err, ErrOutOfStock)

	var got models.Beer
	require.NoError(t, db.First(&got, beer.ID).Error)
	require.Equal(t, 0, got.Stock)

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	require.EqualValues(t, 1, orderCount)
}

func TestPlaceRollsBackMultiItemOrder(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db, PricePolicy: config.PricePolicyCaptured}

	inStock := models.Beer{Name: "Angkor Lager", Type: "lager", Price: 3.00, Stock: 5}
	soldOut := models.Beer{Name: "Hanuman IPA", Type: "ipa", Price: 5.00, Stock: 0}
	require.NoError(t, db.Create(&inStock).Error)
	require.NoError(t, db.Create(&soldOut).Error)

	_, err := svc.Place(context.Background(), 1, []LineItem{
		{BeerID: inStock.ID, Quantity: 3, Price: 3.00},
		{BeerID: soldOut.ID, Quantity: 1, Price: 5.00},
	}, testCheckoutData())
	require.ErrorIs(t, err, ErrOutOfStock)

	// the decrement already applied to the first beer must be undone
	var got models.Beer
	require.NoError(t, db.First(&got, inStock.ID).Error)
	require.Equal(t, 5, got.Stock)
}

func TestPlaceCapturedPricePolicy(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db, PricePolicy: config.PricePolicyCaptured}

	beer := models.Beer{Name: "Angkor Lager", Type: "lager", Price: 12.00, Stock: 10}
	require.NoError(t, db.Create(&beer).Error)

	// repriced after add-to-cart
	require.NoError(t, db.Model(&beer).Update("price", 20.00).Error)

	placed, err := svc.Place(context.Background(), 1,
		[]LineItem{{BeerID: beer.ID, Quantity: 1, Price: 12.00}},
		testCheckoutData())
	require.NoError(t, err)
	require.InDelta(t, 12.00, placed.Total, 1e-9)
}

func TestPlaceCurrentPricePolicy(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db, PricePolicy: config.PricePolicyCurrent}

	beer := models.Beer{Name: "Angkor Lager", Type: "lager", Price: 12.00, Stock: 10}
	require.NoError(t, db.Create(&beer).Error)
	require.NoError(t, db.Model(&beer).Update("price", 20.00).Error)

	placed, err := svc.Place(context.Background(), 1,
		[]LineItem{{BeerID: beer.ID, Quantity: 1, Price: 12.00}},
		testCheckoutData())
	require.NoError(t, err)
	require.InDelta(t, 20.00, placed.Total, 1e-9)
}

func TestPlaceValidatesInput(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db, PricePolicy: config.PricePolicyCaptured}

	_, err := svc.Place(context.Background(), 1, nil, testCheckoutData())
	require.ErrorIs(t, err, ErrEmptyOrder)

	data := testCheckoutData()
	data.Phone = ""
	_, err = svc.Place(context.Background(), 1,
		[]LineItem{{BeerID: 1, Quantity: 1, Price: 1}}, data)
	require.ErrorIs(t, err, ErrMissingFields)
}

func TestPlaceUnknownBeer(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db, PricePolicy: config.PricePolicyCaptured}

	_, err := svc.Place(context.Background(), 1,
		[]LineItem{{BeerID: 42, Quantity: 1, Price: 1}},
		testCheckoutData())
	require.ErrorIs(t, err, ErrBeerNotFound)
}

func TestPlaceWritesNotification(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db, PricePolicy: config.PricePolicyCaptured}

	beer := models.Beer{Name: "Angkor Lager", Type: "lager", Price: 3.00, Stock: 5}
	require.NoError(t, db.Create(&beer).Error)

	placed, err := svc.Place(context.Background(), 7,
		[]LineItem{{BeerID: beer.ID, Quantity: 1, Price: 3.00}},
		testCheckoutData())
	require.NoError(t, err)

	var notif models.Notification
	require.NoError(t, db.Where("order_id = ?", placed.ID).First(&notif).Error)
	require.Equal(t, "order_placed", notif.Type)
	require.False(t, notif.Read)
	require.NotNil(t, notif.UserID)
	require.Equal(t, uint(7), *notif.UserID)
}
