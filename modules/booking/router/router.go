package router

import (
	"classtime/core/middleware"
	"classtime/modules/booking/controller"

	"github.com/labstack/echo/v4"
)

type BookingRouter struct {
	BookingController *controller.BookingController
	AdminController   *controller.AdminController
}

func NewBookingRouter(bookingController *controller.BookingController, adminController *controller.AdminController) *BookingRouter {
	return &BookingRouter{
		BookingController: bookingController,
		AdminController:   adminController,
	}
}

func (r *BookingRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	bookings := v1.Group("/private/bookings", mw.AuthMiddleware())
	bookings.GET("", r.BookingController.GetMyBookings)
	bookings.POST("", r.BookingController.Book)
	bookings.POST("/cancel", r.BookingController.Cancel)
	bookings.POST("/cancel-recurring", r.BookingController.CancelRecurring)
	bookings.POST("/auto-book-existing", r.BookingController.AutoBookExisting)
	bookings.GET("/calendar.ics", r.BookingController.ExportICal)

	admin := v1.Group("/admin", mw.AdminMiddleware())
	admin.POST("/timeslots", r.AdminController.CreateTimeslot)
	admin.POST("/timeslots/:id/auto-book", r.AdminController.AutoBook)
	admin.POST("/sweep", r.AdminController.Sweep)
}
