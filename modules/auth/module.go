package auth

import (
	"classtime/core/cache"
	"classtime/core/config"
	"classtime/core/database"
	"classtime/core/logger"
	"classtime/core/middleware"
	"classtime/modules/auth/controller"
	"classtime/modules/auth/repository"
	"classtime/modules/auth/router"
	"classtime/modules/auth/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, db database.IDatabase, cache cache.Cache, mw *middleware.Middleware, cfg *config.Config) *service.AuthService {
	repo := repository.NewAuthRepository(db)

	var google service.GoogleClient
	if cfg.GoogleEnabled() {
		google = service.NewGoogleClient(cfg.GoogleAPI)
	} else {
		logger.Info("Auth:Google:Skipped", "reason", "Google OAuth credentials not configured in env")
	}

	authService := service.NewAuthService(repo, cache, google)
	authController := controller.NewAuthController(authService, controller.CookieSettings{
		Secure:    cfg.Server.SecureCookies,
		MaxAge:    cfg.JWT.AccessTTL,
		LoginPage: cfg.Server.LoginPage,
		AppPage:   cfg.Server.AppPage,
	})

	router.NewAuthRouter(authController).Setup(e, mw)
	return authService
}
