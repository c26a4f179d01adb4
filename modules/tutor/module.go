package tutor

import (
	"time"

	"classtime/core/database"
	"classtime/core/middleware"
	"classtime/modules/tutor/controller"
	"classtime/modules/tutor/repository"
	"classtime/modules/tutor/router"
	"classtime/modules/tutor/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, db database.IDatabase, mw *middleware.Middleware, loc *time.Location) *service.TutorService {
	repo := repository.NewTutorRepository(db)
	tutorService := service.NewTutorService(repo, loc)
	tutorController := controller.NewTutorController(tutorService)

	router.NewTutorRouter(tutorController).Setup(e, mw)
	return tutorService
}
