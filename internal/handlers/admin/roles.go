package admin

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

func validRole(role string) bool {
	return role == "customer" || role == "admin"
}

// ChangeUserRole mutates a user's role. The caller's own role is re-read
// from the users table right before the mutation, client-held claims are not
// trusted. On success exactly one audit row is appended; an audit insert
// failure is logged and swallowed so it never blocks the role change.
func (h *AdminHandler) ChangeUserRole(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_change_role")

	callerID, ok := token.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var caller models.User
	if err := h.DB.First(&caller, callerID).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	if caller.Role != "admin" {
		l.Warn("role_change_rejected", "caller_id", callerID)
		return echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights")
	}

	targetID, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if !validRole(req.Role) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid role")
	}

	var target models.User
	if err := h.DB.First(&target, targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	oldRole := target.Role

	if err := h.DB.Model(&models.User{}).
		Where("id = ?", target.ID).
		Update("role", req.Role).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	audit := models.RoleChange{
		AdminID:      caller.ID,
		TargetUserID: target.ID,
		OldRole:      oldRole,
		NewRole:      req.Role,
	}
	if err := h.DB.Create(&audit).Error; err != nil {
		// the role mutation stands even if the audit trail misses it
		l.Error("role_change_audit_failed", "admin_id", caller.ID, "target_id", target.ID, "error", err)
	}

	l.Info("role_changed", "admin_id", caller.ID, "target_id", target.ID, "old_role", oldRole, "new_role", req.Role)
	return c.JSON(http.StatusOK, echo.Map{
		"id":       target.ID,
		"old_role": oldRole,
		"new_role": req.Role,
	})
}

func (h *AdminHandler) ListRoleChanges(c echo.Context) error {
	var changes []models.RoleChange
	if err := h.DB.Order("created_at DESC").Find(&changes).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]echo.Map, 0, len(changes))
	for _, ch := range changes {
		adminName := userName(h.DB, ch.AdminID)
		targetName := userName(h.DB, ch.TargetUserID)
		resp = append(resp, echo.Map{
			"id":          ch.ID,
			"admin_id":    ch.AdminID,
			"admin_name":  adminName,
			"target_id":   ch.TargetUserID,
			"target_name": targetName,
			"old_role":    ch.OldRole,
			"new_role":    ch.NewRole,
			"created_at":  ch.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func userName(db *gorm.DB, id uint) string {
	var u models.User
	if err := db.First(&u, id).Error; err != nil || u.FullName == "" {
		return "Unknown"
	}
	return u.FullName
}

// ToggleUserPremium sets the premium flag. Turning it on sets the expiry a
// year out, turning it off clears the expiry.
func (h *AdminHandler) ToggleUserPremium(c echo.Context) error {
	targetID, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		IsPremium bool `json:"is_premium"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	updates := map[string]any{
		"is_premium":         req.IsPremium,
		"premium_expires_at": nil,
	}
	if req.IsPremium {
		expires := time.Now().Add(365 * 24 * time.Hour)
		updates["premium_expires_at"] = &expires
	}

	res := h.DB.Model(&models.User{}).Where("id = ?", targetID).Updates(updates)
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	return c.JSON(http.StatusOK, echo.Map{"id": targetID, "is_premium": req.IsPremium})
}
