package router

import (
	"classtime/core/middleware"
	"classtime/modules/chat/controller"

	"github.com/labstack/echo/v4"
)

type ChatRouter struct {
	ChatController *controller.ChatController
}

func NewChatRouter(chatController *controller.ChatController) *ChatRouter {
	return &ChatRouter{ChatController: chatController}
}

func (r *ChatRouter) Setup(e *echo.Echo, mw *middleware.Middleware, ratePerSecond float64) {
	chat := e.Group("/api/v1/private/chat", mw.AuthMiddleware(), mw.RateLimit(ratePerSecond))
	chat.POST("/intent", r.ChatController.PredictIntent)
	chat.POST("/message", r.ChatController.Message)
	chat.POST("/reset", r.ChatController.Reset)
}
