package notification

import (
	"classtime/core/database"
	"classtime/core/middleware"
	"classtime/modules/notification/controller"
	"classtime/modules/notification/repository"
	"classtime/modules/notification/router"
	"classtime/modules/notification/service"

	"github.com/labstack/echo/v4"
)

// NewService builds the notification store without HTTP routes, for the
// queue worker.
func NewService(db database.IDatabase) *service.NotificationService {
	return service.NewNotificationService(repository.NewNotificationRepository(db))
}

func Init(e *echo.Echo, db database.IDatabase, mw *middleware.Middleware) *service.NotificationService {
	svc := NewService(db)
	ctrl := controller.NewNotificationController(svc)

	router.NewNotificationRouter(ctrl).Setup(e, mw)

	return svc
}
