package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/PANHAVORN22/Mini-mart/internal/models"
	"github.com/PANHAVORN22/Mini-mart/internal/mykafka"
	"github.com/PANHAVORN22/Mini-mart/internal/pricing"
	"github.com/PANHAVORN22/Mini-mart/internal/service/token"
)

type CartHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *CartHandler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, mykafka.TopicCartEvents, fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	userID, ok := token.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var items []models.CartItem
	if err := h.DB.Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, items)
}

// AddToCart inserts the beer with quantity 1 or increments the existing
// entry. The unit price is captured at add time.
func (h *CartHandler) AddToCart(c echo.Context) error {
	userID, ok := token.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var req struct {
		BeerID uint `json:"beer_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var beer models.Beer
	if err := h.DB.First(&beer, req.BeerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "beer not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if beer.IsPremium {
		var user models.User
		if err := h.DB.First(&user, userID).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if !user.PremiumActive(time.Now()) {
			return echo.NewHTTPError(http.StatusForbidden, "premium subscription required")
		}
	}

	var item models.CartItem
	tx := h.DB.Where("user_id = ? AND beer_id = ?", userID, req.BeerID).First(&item)
	if tx.Error == nil {
		item.Quantity += 1
		if err := h.DB.Save(&item).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		h.publish(c, map[string]any{
			"type":     "cart_item_added",
			"userID":   userID,
			"beerID":   req.BeerID,
			"quantity": item.Quantity,
		})
		return c.JSON(http.StatusOK, item)
	}
	if !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, tx.Error.Error())
	}

	newItem := models.CartItem{
		UserID:   userID,
		BeerID:   req.BeerID,
		Quantity: 1,
		Price:    beer.Price,
	}
	if err := h.DB.Create(&newItem).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.publish(c, map[string]any{
		"type":     "cart_item_added",
		"userID":   userID,
		"beerID":   req.BeerID,
		"quantity": newItem.Quantity,
	})
	return c.JSON(http.StatusOK, newItem)
}

// SetQuantity replaces the quantity unconditionally, the caller is expected
// to clamp against known stock.
func (h *CartHandler) SetQuantity(c echo.Context) error {
	userID, ok := token.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	beerID, err := strconv.Atoi(c.Param("beerID"))
	if err != nil || beerID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Quantity uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Quantity < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity must be positive")
	}

	var item models.CartItem
	if err := h.DB.Where("user_id = ? AND beer_id = ?", userID, beerID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	item.Quantity = req.Quantity
	if err := h.DB.Save(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":     "cart_quantity_set",
		"userID":   userID,
		"beerID":   beerID,
		"quantity": item.Quantity,
	})
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	userID, ok := token.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	beerID, err := strconv.Atoi(c.Param("beerID"))
	if err != nil || beerID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.DB.
		Where("user_id = ? AND beer_id = ?", userID, beerID).
		Delete(&models.CartItem{}).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":   "cart_item_removed",
		"userID": userID,
		"beerID": beerID,
	})
	return c.JSON(http.StatusOK, map[string]any{"removed": beerID})
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	userID, ok := token.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	if err := h.DB.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":   "cart_cleared",
		"userID": userID,
	})
	return c.NoContent(http.StatusNoContent)
}

// GetQuote returns the checkout totals for the current cart contents.
func (h *CartHandler) GetQuote(c echo.Context) error {
	userID, ok := token.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var items []models.CartItem
	if err := h.DB.Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	subtotal := 0.0
	itemCount := uint(0)
	for _, it := range items {
		subtotal += it.Price * float64(it.Quantity)
		itemCount += it.Quantity
	}
	quote := pricing.NewQuote(subtotal)

	return c.JSON(http.StatusOK, echo.Map{
		"item_count": itemCount,
		"subtotal":   quote.Subtotal,
		"shipping":   quote.Shipping,
		"tax":        quote.Tax,
		"total":      quote.Total,
	})
}
