package utils

import (
	"strings"

	"classtime/core/constants"
	"classtime/core/errors"

	"github.com/labstack/echo/v4"
)

// GetTokenFromHeader returns the bearer token, falling back to the session cookie.
func GetTokenFromHeader(c echo.Context) (string, error) {
	header := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
	if header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", errors.NewAppError(errors.ErrInvalidTokenFormat, "invalid authorization header", nil)
		}
		return strings.TrimSpace(token), nil
	}

	if cookie, err := c.Cookie(constants.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	return "", errors.NewAppError(errors.ErrMissingAuthorizationHeader, "Not authenticated", nil)
}
