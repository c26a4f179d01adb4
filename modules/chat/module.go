package chat

import (
	"classtime/core/cache"
	"classtime/core/config"
	"classtime/core/logger"
	"classtime/core/middleware"
	"classtime/modules/chat/controller"
	"classtime/modules/chat/router"
	"classtime/modules/chat/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, cache cache.Cache, mw *middleware.Middleware, cfg *config.Config, tutors service.TutorSearcher, bookings service.BookingLister) *service.ChatService {
	var classifier service.Classifier
	if cfg.Classifier.URL != "" {
		classifier = service.NewHTTPClassifier(cfg.Classifier)
	} else {
		logger.Info("Chat:Classifier:Skipped", "reason", "classifier url not configured, using keyword fallback")
	}

	chatService := service.NewChatService(classifier, service.NewExtractor(cfg.Location()), cache, tutors, bookings)
	chatController := controller.NewChatController(chatService)

	router.NewChatRouter(chatController).Setup(e, mw, cfg.Server.ChatRateLimit)
	return chatService
}
