package subscription

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/PANHAVORN22/Mini-mart/internal/logging"
	"github.com/PANHAVORN22/Mini-mart/internal/models"
	"github.com/PANHAVORN22/Mini-mart/internal/service/token"
)

type SubscriptionHandler struct {
	DB *gorm.DB
}

func planDuration(plan string) (time.Duration, bool) {
	switch plan {
	case models.SubscriptionPlanMonthly:
		return 30 * 24 * time.Hour, true
	case models.SubscriptionPlanYearly:
		return 365 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

// Subscribe creates an active subscription and mirrors the premium flag and
// expiry onto the user row for quick checks.
func (h *SubscriptionHandler) Subscribe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "subscription_subscribe")

	userID, ok := token.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var req struct {
		Plan string `json:"plan"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	duration, ok := planDuration(req.Plan)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "plan must be monthly or yearly")
	}

	expiresAt := time.Now().Add(duration)
	sub := models.Subscription{
		UserID:    userID,
		Plan:      req.Plan,
		Status:    models.SubscriptionStatusActive,
		ExpiresAt: expiresAt,
	}

	txErr := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
			"is_premium":         true,
			"premium_expires_at": &expiresAt,
		}).Error
	})
	if txErr != nil {
		l.Error("subscribe_failed", "user_id", userID, "error", txErr)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create subscription")
	}

	l.Info("subscribed", "user_id", userID, "plan", req.Plan)
	return c.JSON(http.StatusOK, sub)
}

// Cancel marks the active subscription cancelled and clears the premium
// mirror on the user row.
func (h *SubscriptionHandler) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "subscription_cancel")

	userID, ok := token.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	txErr := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Subscription{}).
			Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
			Update("status", models.SubscriptionStatusCancelled).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
			"is_premium":         false,
			"premium_expires_at": nil,
		}).Error
	})
	if txErr != nil {
		l.Error("cancel_failed", "user_id", userID, "error", txErr)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to cancel subscription")
	}

	l.Info("subscription_cancelled", "user_id", userID)
	return c.JSON(http.StatusOK, echo.Map{"cancelled": true})
}

// GetSubscription returns the newest active subscription, if any.
func (h *SubscriptionHandler) GetSubscription(c echo.Context) error {
	userID, ok := token.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var sub models.Subscription
	err := h.DB.
		Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
		Order("expires_at DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusOK, nil)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sub)
}
