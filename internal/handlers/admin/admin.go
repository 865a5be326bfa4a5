package admin

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/PANHAVORN22/Mini-mart/internal/models"
	"github.com/PANHAVORN22/Mini-mart/internal/mykafka"
)

type AdminHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
}

func (h *AdminHandler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, mykafka.TopicProductEvents, fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

// GetStats aggregates the dashboard numbers: total stock, revenue over
// non-cancelled orders, order count and user count.
func (h *AdminHandler) GetStats(c echo.Context) error {
	var totalStock int64
	if err := h.DB.Model(&models.Beer{}).
		Select("COALESCE(SUM(stock), 0)").
		Scan(&totalStock).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var totalRevenue float64
	if err := h.DB.Model(&models.Order{}).
		Where("status <> ?", models.OrderStatusCancelled).
		Select("COALESCE(SUM(total), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var orderCount, userCount int64
	if err := h.DB.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.DB.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total_stock":   totalStock,
		"total_revenue": totalRevenue,
		"order_count":   orderCount,
		"user_count":    userCount,
	})
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	var users []models.User
	if err := h.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]echo.Map, 0, len(users))
	for _, u := range users {
		name := u.FullName
		if name == "" {
			name = "Unknown"
		}
		resp = append(resp, echo.Map{
			"id":         u.ID,
			"name":       name,
			"email":      u.Email,
			"role":       u.Role,
			"is_premium": u.PremiumActive(time.Now()),
			"created_at": u.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) ListOrders(c echo.Context) error {
	var orders []models.Order
	if err := h.DB.Order("created_at DESC").Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]echo.Map, 0, len(orders))
	for _, o := range orders {
		var user models.User
		userName, userEmail := "Unknown", ""
		if err := h.DB.First(&user, o.UserID).Error; err == nil {
			if user.FullName != "" {
				userName = user.FullName
			}
			userEmail = user.Email
		}

		var itemCount int64
		if err := h.DB.Model(&models.OrderItem{}).Where("order_id = ?", o.ID).Count(&itemCount).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		resp = append(resp, echo.Map{
			"id":         o.ID,
			"status":     o.Status,
			"total":      o.Total,
			"created_at": o.CreatedAt,
			"user_name":  userName,
			"user_email": userEmail,
			"item_count": itemCount,
		})
	}
	return c.JSON(http.StatusOK, resp)
}
