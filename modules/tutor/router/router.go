package router

import (
	"classtime/core/middleware"
	"classtime/modules/tutor/controller"

	"github.com/labstack/echo/v4"
)

type TutorRouter struct {
	TutorController *controller.TutorController
}

func NewTutorRouter(tutorController *controller.TutorController) *TutorRouter {
	return &TutorRouter{TutorController: tutorController}
}

func (r *TutorRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	private := e.Group("/api/v1/private", mw.AuthMiddleware())

	tutors := private.Group("/tutors")
	tutors.POST("/search", r.TutorController.Search)
	tutors.GET("/:id/dates", r.TutorController.Dates)
	tutors.GET("/:id/timeslots", r.TutorController.Timeslots)

	calendar := private.Group("/calendar")
	calendar.GET("", r.TutorController.MonthCalendar)
	calendar.GET("/week", r.TutorController.WeekCalendar)
}
