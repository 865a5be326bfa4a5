package jwtmiddleware

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// CookieJWT validates the access token from the auth cookie and exposes the
// user id and role on the echo context under the same keys the auth
// middleware uses.
func CookieJWT(secret []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningMethod: "HS256",
		TokenLookup:   "cookie:accessToken",
		SigningKey:    secret,
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return
			}
			if sub, ok := claims["sub"].(float64); ok {
				c.Set("userID", uint(sub))
			}
			if role, ok := claims["role"].(string); ok {
				c.Set("role", role)
			}
		},
	})
}

// RequireRole runs after CookieJWT and checks the role claim.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if got, _ := c.Get("role").(string); got != role {
				return echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights")
			}
			return next(c)
		}
	}
}
