package booking

import (
	"time"

	"classtime/core/database"
	"classtime/core/middleware"
	"classtime/core/queue"
	"classtime/modules/booking/controller"
	"classtime/modules/booking/repository"
	"classtime/modules/booking/router"
	"classtime/modules/booking/service"

	"github.com/labstack/echo/v4"
)

// NewService builds the booking service without HTTP wiring, for the CLI.
func NewService(db database.IDatabase, enqueuer queue.Enqueuer, loc *time.Location) *service.BookingService {
	return service.NewBookingService(repository.NewBookingRepository(db), enqueuer, loc)
}

func Init(e *echo.Echo, db database.IDatabase, mw *middleware.Middleware, enqueuer queue.Enqueuer, loc *time.Location) *service.BookingService {
	bookingService := NewService(db, enqueuer, loc)

	router.NewBookingRouter(
		controller.NewBookingController(bookingService),
		controller.NewAdminController(bookingService),
	).Setup(e, mw)
	return bookingService
}
