package order

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/PANHAVORN22/Mini-mart/internal/config"
	"github.com/PANHAVORN22/Mini-mart/internal/logging"
	"github.com/PANHAVORN22/Mini-mart/internal/models"
)

var (
	ErrEmptyOrder    = errors.New("no items in order")
	ErrOutOfStock    = errors.New("not enough stock")
	ErrBeerNotFound  = errors.New("beer not found")
	ErrMissingFields = errors.New("all contact and shipping fields are required")
)

// LineItem is one (beer, quantity, captured unit price) tuple. Price is the
// price at add-to-cart time; whether it is honored depends on PricePolicy.
type LineItem struct {
	BeerID   uint
	Quantity uint
	Price    float64
}

type CheckoutData struct {
	FullName    string
	Email       string
	Phone       string
	HouseNumber string
	Street      string
	City        string
	ZipCode     string
}

func (d CheckoutData) validate() error {
	for _, field := range []string{d.FullName, d.Email, d.Phone, d.HouseNumber, d.Street, d.City, d.ZipCode} {
		if field == "" {
			return ErrMissingFields
		}
	}
	return nil
}

type Service struct {
	DB *gorm.DB
	// PricePolicy is config.PricePolicyCaptured or config.PricePolicyCurrent.
	PricePolicy string
}

// Place creates the order, its line items and the stock decrements in one
// transaction. The decrement is conditional on sufficient stock, so two
// concurrent purchases of the last unit cannot both succeed and stock can
// never go negative.
func (s *Service) Place(ctx context.Context, userID uint, items []LineItem, data CheckoutData) (*models.Order, error) {
	l := logging.FromContext(ctx).With("service", "order_place", "user_id", userID)

	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	if err := data.validate(); err != nil {
		return nil, err
	}

	var order models.Order

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		total := 0.0
		priced := make([]LineItem, 0, len(items))
		for _, it := range items {
			if it.Quantity == 0 {
				return ErrEmptyOrder
			}
			price := it.Price
			if s.PricePolicy == config.PricePolicyCurrent {
				var beer models.Beer
				if err := tx.First(&beer, it.BeerID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return ErrBeerNotFound
					}
					return err
				}
				price = beer.Price
			}
			priced = append(priced, LineItem{BeerID: it.BeerID, Quantity: it.Quantity, Price: price})
			total += price * float64(it.Quantity)
		}

		order = models.Order{
			UserID: userID,
			Status: models.OrderStatusPending,
			Total:  total,
			ShippingAddress: models.ShippingAddress{
				HouseNumber: data.HouseNumber,
				Street:      data.Street,
				City:        data.City,
				ZipCode:     data.ZipCode,
			},
			ContactInfo: models.ContactInfo{
				FullName: data.FullName,
				Email:    data.Email,
				Phone:    data.Phone,
			},
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, it := range priced {
			oi := models.OrderItem{
				OrderID:  order.ID,
				BeerID:   it.BeerID,
				Quantity: it.Quantity,
				Price:    it.Price,
			}
			if err := tx.Create(&oi).Error; err != nil {
				return err
			}

			res := tx.Model(&models.Beer{}).
				Where("id = ? AND stock >= ?", it.BeerID, it.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", it.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				var beer models.Beer
				if err := tx.First(&beer, it.BeerID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return ErrBeerNotFound
					}
					return err
				}
				return fmt.Errorf("%w for %q", ErrOutOfStock, beer.Name)
			}
		}

		notif := models.Notification{
			UserID:  &order.UserID,
			OrderID: &order.ID,
			Type:    "order_placed",
			Message: fmt.Sprintf("Order #%d placed, total $%.2f", order.ID, order.Total),
		}
		if err := tx.Create(&notif).Error; err != nil {
			return err
		}

		return nil
	})

	if txErr != nil {
		l.Warn("order_place_failed", "error", txErr)
		return nil, txErr
	}

	l.Info("order_placed", "order_id", order.ID, "total", order.Total)
	return &order, nil
}

// UserOrders returns the user's orders newest-first with their line items.
func (s *Service) UserOrders(ctx context.Context, userID uint) ([]models.Order, map[uint][]models.OrderItem, error) {
	var orders []models.Order
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, nil, err
	}

	itemsByOrder := make(map[uint][]models.OrderItem, len(orders))
	for _, o := range orders {
		var items []models.OrderItem
		if err := s.DB.WithContext(ctx).Where("order_id = ?", o.ID).Find(&items).Error; err != nil {
			return nil, nil, err
		}
		itemsByOrder[o.ID] = items
	}
	return orders, itemsByOrder, nil
}

func (s *Service) OrderByID(ctx context.Context, orderID uint) (*models.Order, []models.OrderItem, error) {
	var order models.Order
	if err := s.DB.WithContext(ctx).First(&order, orderID).Error; err != nil {
		return nil, nil, err
	}
	var items []models.OrderItem
	if err := s.DB.WithContext(ctx).Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return nil, nil, err
	}
	return &order, items, nil
}
