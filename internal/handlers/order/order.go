package order

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/PANHAVORN22/Mini-mart/internal/logging"
	"github.com/PANHAVORN22/Mini-mart/internal/models"
	"github.com/PANHAVORN22/Mini-mart/internal/mykafka"
	"github.com/PANHAVORN22/Mini-mart/internal/notifier"
	"github.com/PANHAVORN22/Mini-mart/internal/pricing"
	ordersvc "github.com/PANHAVORN22/Mini-mart/internal/service/order"
	"github.com/PANHAVORN22/Mini-mart/internal/service/token"
)

type OrderHandler struct {
	DB       *gorm.DB
	Service  *ordersvc.Service
	Producer *mykafka.Producer
	Mailer   *notifier.EmailNotifier
}

func (h *OrderHandler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, mykafka.TopicOrderEvents, fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

type checkoutRequest struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	HouseNumber string `json:"house_number"`
	Street      string `json:"street"`
	City        string `json:"city"`
	ZipCode     string `json:"zip_code"`
}

// Checkout places an order from the caller's cart. The cart is cleared only
// after the order committed.
func (h *OrderHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_checkout")

	userID, ok := token.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var cartItems []models.CartItem
	if err := h.DB.Where("user_id = ?", userID).Find(&cartItems).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	items := make([]ordersvc.LineItem, 0, len(cartItems))
	for _, it := range cartItems {
		items = append(items, ordersvc.LineItem{
			BeerID:   it.BeerID,
			Quantity: it.Quantity,
			Price:    it.Price,
		})
	}

	placed, err := h.Service.Place(ctx, userID, items, ordersvc.CheckoutData{
		FullName:    req.FullName,
		Email:       req.Email,
		Phone:       req.Phone,
		HouseNumber: req.HouseNumber,
		Street:      req.Street,
		City:        req.City,
		ZipCode:     req.ZipCode,
	})
	if err != nil {
		switch {
		case errors.Is(err, ordersvc.ErrEmptyOrder):
			return echo.NewHTTPError(http.StatusBadRequest, "no items in cart")
		case errors.Is(err, ordersvc.ErrMissingFields):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ordersvc.ErrOutOfStock), errors.Is(err, ordersvc.ErrBeerNotFound):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to create order")
		}
	}

	if err := h.DB.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		l.Error("cart_clear_failed", "order_id", placed.ID, "error", err)
	}

	// Order.Total holds the items subtotal; the quote adds shipping and tax.
	quote := pricing.NewQuote(placed.Total)

	h.publish(c, map[string]any{
		"type":    "order_created",
		"userID":  userID,
		"orderID": placed.ID,
		"total":   quote.Total,
	})

	if h.Mailer != nil {
		if err := h.Mailer.SendOrderConfirmation(ctx, req.Email, req.FullName, placed.ID, quote.Total); err != nil {
			l.Warn("order_confirmation_email_failed", "order_id", placed.ID, "error", err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"order_id": placed.ID,
		"status":   placed.Status,
		"subtotal": quote.Subtotal,
		"shipping": quote.Shipping,
		"tax":      quote.Tax,
		"total":    quote.Total,
	})
}

func (h *OrderHandler) GetUserOrders(c echo.Context) error {
	userID, ok := token.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	orders, itemsByOrder, err := h.Service.UserOrders(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]echo.Map, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, echo.Map{
			"id":               o.ID,
			"status":           o.Status,
			"total":            o.Total,
			"created_at":       o.CreatedAt,
			"shipping_address": o.ShippingAddress,
			"contact_info":     o.ContactInfo,
			"items":            itemsByOrder[o.ID],
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	userID, ok := token.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	placed, items, err := h.Service.OrderByID(c.Request().Context(), uint(orderID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if placed.UserID != userID {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":               placed.ID,
		"status":           placed.Status,
		"total":            placed.Total,
		"created_at":       placed.CreatedAt,
		"shipping_address": placed.ShippingAddress,
		"contact_info":     placed.ContactInfo,
		"items":            items,
	})
}
