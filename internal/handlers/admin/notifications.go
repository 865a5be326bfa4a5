package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/PANHAVORN22/Mini-mart/internal/logging"
	"github.com/PANHAVORN22/Mini-mart/internal/models"
)

const notificationFeedLimit = 50

// GetNotifications returns the most recent notifications as
// {success, data | error}.
func (h *AdminHandler) GetNotifications(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "admin_notifications")

	var items []models.Notification
	if err := h.DB.Order("created_at DESC").Limit(notificationFeedLimit).Find(&items).Error; err != nil {
		l.Error("notifications_fetch_failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"success": false,
			"error":   "Failed to fetch notifications",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    items,
	})
}

// MarkNotificationRead toggles the read flag.
func (h *AdminHandler) MarkNotificationRead(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	res := h.DB.Model(&models.Notification{}).Where("id = ?", id).Update("read", true)
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "notification not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "read": true})
}
