package middleware

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"time"

	"classtime/core/cache"
	"classtime/core/constants"
	"classtime/core/controller"
	"classtime/core/errors"
	"classtime/core/logger"
	"classtime/core/metrics"
	"classtime/core/utils"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

type Middleware struct {
	cache    cache.Cache
	adminKey string
}

func NewMiddleware(cache cache.Cache, adminKey string) *Middleware {
	return &Middleware{cache: cache, adminKey: adminKey}
}

func unauthorized(code errors.ErrorCode) *echo.HTTPError {
	return controller.NewErrorResponse(http.StatusUnauthorized, code, "Not authenticated")
}

// AuthMiddleware requires a valid, non-revoked access token and stores its
// claims under constants.ContextTokenData.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := utils.GetTokenFromHeader(c)
			if err != nil {
				code := errors.ErrMissingAuthorizationHeader
				if appErr, ok := errors.As(err); ok {
					code = appErr.Code
				}
				return unauthorized(code)
			}

			ctx := c.Request().Context()
			blacklisted, err := m.cache.IsTokenBlacklisted(ctx, token)
			if err != nil {
				logger.Error("Middleware:Auth:IsTokenBlacklisted:Error", "error", err)
				return controller.NewErrorResponse(http.StatusInternalServerError, errors.ErrInternalServer, "failed to check token")
			}
			if blacklisted {
				return unauthorized(errors.ErrUnauthorized)
			}

			claims, err := utils.ValidateAndParseToken(token)
			if err != nil {
				code := errors.ErrUnauthorized
				if appErr, ok := errors.As(err); ok {
					code = appErr.Code
				}
				return unauthorized(code)
			}
			if claims.Scope != constants.ScopeTokenAccess {
				return unauthorized(errors.ErrInvalidTokenFormat)
			}

			c.Set(constants.ContextTokenData, claims)
			return next(c)
		}
	}
}

// AdminMiddleware guards operator endpoints with a static API key.
// When no key is configured every request is refused.
func (m *Middleware) AdminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get(constants.AdminKeyHeader)
			if m.adminKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(m.adminKey)) != 1 {
				return controller.NewErrorResponse(http.StatusForbidden, errors.ErrForbidden, "Forbidden")
			}
			return next(c)
		}
	}
}

// RateLimit limits requests per student (or per IP for anonymous callers).
func (m *Middleware) RateLimit(perSecond float64) echo.MiddlewareFunc {
	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     int(perSecond*2) + 1,
		ExpiresIn: 3 * time.Minute,
	})
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if claims, ok := TokenData(c); ok {
				return "student:" + strconv.FormatInt(claims.StudentID, 10), nil
			}
			return "ip:" + c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return controller.NewErrorResponse(http.StatusTooManyRequests, errors.ErrTooManyRequests, "Too many requests")
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return controller.NewErrorResponse(http.StatusForbidden, errors.ErrForbidden, "Forbidden")
		},
	})
}

// RequestLogger logs one line per request and records request metrics.
func (m *Middleware) RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			latency := time.Since(start)

			metrics.HTTPRequestsTotal.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(req.Method, route).Observe(latency.Seconds())

			args := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"status", status,
				"latency", latency,
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			}
			switch {
			case status >= http.StatusInternalServerError:
				logger.Error("HTTP:Request", args...)
			case status >= http.StatusBadRequest:
				logger.Warn("HTTP:Request", args...)
			default:
				logger.Info("HTTP:Request", args...)
			}
			return nil
		}
	}
}

// TokenData returns the claims stored by AuthMiddleware.
func TokenData(c echo.Context) (*utils.TokenClaims, bool) {
	claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
	return claims, ok && claims != nil
}

// CurrentStudentID returns the authenticated student's id.
func CurrentStudentID(c echo.Context) (int64, error) {
	claims, ok := TokenData(c)
	if !ok {
		return 0, unauthorized(errors.ErrUnauthorized)
	}
	return claims.StudentID, nil
}
