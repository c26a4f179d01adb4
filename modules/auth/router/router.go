package router

import (
	"classtime/core/middleware"
	"classtime/modules/auth/controller"

	"github.com/labstack/echo/v4"
)

type AuthRouter struct {
	AuthController *controller.AuthController
}

func NewAuthRouter(authController *controller.AuthController) *AuthRouter {
	return &AuthRouter{AuthController: authController}
}

func (r *AuthRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	public := v1.Group("/public/auth")
	public.POST("/register", r.AuthController.Register)
	public.POST("/login", r.AuthController.Login)
	public.POST("/refresh", r.AuthController.RefreshToken)
	public.GET("/google", r.AuthController.GoogleLogin)
	public.GET("/google/callback", r.AuthController.GoogleCallback)
	public.POST("/google/verify", r.AuthController.GoogleVerify)

	// Logout accepts expired or revoked sessions.
	v1.POST("/private/auth/logout", r.AuthController.Logout)
	v1.GET("/private/auth/logout", r.AuthController.Logout)

	private := v1.Group("/private/auth", mw.AuthMiddleware())
	private.GET("/me", r.AuthController.Me)
}
