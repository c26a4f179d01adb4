package controller

import (
	"fmt"
	"net/http"

	"classtime/core/controller"
	"classtime/core/errors"
	"classtime/core/middleware"
	"classtime/modules/booking/dto"
	"classtime/modules/booking/service"
	"classtime/modules/booking/validator"

	"github.com/labstack/echo/v4"
)

type BookingController struct {
	BookingService service.BookingServiceInterface
	controller.BaseController
}

func NewBookingController(bookingService service.BookingServiceInterface) *BookingController {
	return &BookingController{
		BookingService: bookingService,
		BaseController: controller.NewBaseController(),
	}
}

// GetMyBookings lists the caller's bookings
// @Summary My bookings
// @Tags Booking
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.MyBookingsResponse
// @Router /private/bookings [get]
func (controller *BookingController) GetMyBookings(c echo.Context) error {
	studentID, err := middleware.CurrentStudentID(c)
	if err != nil {
		return err
	}

	resp, appErr := controller.BookingService.GetMyBookings(c.Request().Context(), studentID)
	if appErr != nil {
		return controller.AppError(appErr)
	}
	return controller.SuccessResponse(c, resp, "Bookings")
}

// Book reserves a timeslot, optionally as a recurring series
// @Summary Book a timeslot
// @Tags Booking
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.BookRequest true "Timeslot"
// @Success 200 {object} dto.BookResponse
// @Failure 404 {object} controller.ErrorResponse
// @Failure 409 {object} controller.ErrorResponse
// @Router /private/bookings [post]
func (controller *BookingController) Book(c echo.Context) error {
	studentID, err := middleware.CurrentStudentID(c)
	if err != nil {
		return err
	}

	requestData := new(dto.BookRequest)
	if err := c.Bind(requestData); err != nil {
		return controller.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}
	validationResult := validator.ValidateBookRequest(requestData)
	if validationResult.HasError() {
		return controller.BadRequest(errors.ErrInvalidInput, "Timeslot ID is required", validationResult)
	}

	resp, appErr := controller.BookingService.Book(c.Request().Context(), studentID, requestData)
	if appErr != nil {
		return controller.AppError(appErr)
	}
	return controller.SuccessResponse(c, resp, resp.Message)
}

// Cancel deletes one of the caller's bookings
// @Summary Cancel a booking
// @Tags Booking
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CancelRequest true "Booking"
// @Success 200 {object} dto.CancelResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /private/bookings/cancel [post]
func (controller *BookingController) Cancel(c echo.Context) error {
	studentID, err := middleware.CurrentStudentID(c)
	if err != nil {
		return err
	}

	requestData := new(dto.CancelRequest)
	if err := c.Bind(requestData); err != nil {
		return controller.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}
	validationResult := validator.ValidateCancelRequest(requestData)
	if validationResult.HasError() {
		return controller.BadRequest(errors.ErrInvalidInput, "Booking ID is required", validationResult)
	}

	resp, appErr := controller.BookingService.Cancel(c.Request().Context(), studentID, requestData.BookingID)
	if appErr != nil {
		return controller.AppError(appErr)
	}
	return controller.SuccessResponse(c, resp, resp.Message)
}

// CancelRecurring cancels the caller's future bookings of a recurring series
// @Summary Cancel a recurring series
// @Tags Booking
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.TimeslotRequest true "Any timeslot of the series"
// @Success 200 {object} dto.CancelRecurringResponse
// @Router /private/bookings/cancel-recurring [post]
func (controller *BookingController) CancelRecurring(c echo.Context) error {
	studentID, err := middleware.CurrentStudentID(c)
	if err != nil {
		return err
	}

	requestData := new(dto.TimeslotRequest)
	if err := c.Bind(requestData); err != nil {
		return controller.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}
	validationResult := validator.ValidateTimeslotRequest(requestData)
	if validationResult.HasError() {
		return controller.BadRequest(errors.ErrInvalidInput, "Timeslot ID is required", validationResult)
	}

	resp, appErr := controller.BookingService.CancelRecurring(c.Request().Context(), studentID, requestData.TimeslotID)
	if appErr != nil {
		return controller.AppError(appErr)
	}
	return controller.SuccessResponse(c, resp, resp.Message)
}

// AutoBookExisting extends the caller's recurring series to matching timeslots
// @Summary Extend a recurring series
// @Tags Booking
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.TimeslotRequest true "A booked timeslot of the series"
// @Success 200 {object} dto.AutoBookExistingResponse
// @Router /private/bookings/auto-book-existing [post]
func (controller *BookingController) AutoBookExisting(c echo.Context) error {
	studentID, err := middleware.CurrentStudentID(c)
	if err != nil {
		return err
	}

	requestData := new(dto.TimeslotRequest)
	if err := c.Bind(requestData); err != nil {
		return controller.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}
	validationResult := validator.ValidateTimeslotRequest(requestData)
	if validationResult.HasError() {
		return controller.BadRequest(errors.ErrInvalidInput, "Timeslot ID is required", validationResult)
	}

	resp, appErr := controller.BookingService.AutoBookExisting(c.Request().Context(), studentID, requestData.TimeslotID)
	if appErr != nil {
		return controller.AppError(appErr)
	}
	return controller.SuccessResponse(c, resp, resp.Message)
}

// ExportICal downloads the caller's bookings as an iCalendar file
// @Summary Bookings iCal feed
// @Tags Booking
// @Security BearerAuth
// @Produce text/calendar
// @Router /private/bookings/calendar.ics [get]
func (controller *BookingController) ExportICal(c echo.Context) error {
	claims, ok := middleware.TokenData(c)
	if !ok {
		return controller.Unauthorized(errors.ErrUnauthorized, "Not authenticated")
	}

	data, filename, appErr := controller.BookingService.ExportICal(c.Request().Context(), claims.StudentID, claims.Nickname)
	if appErr != nil {
		return controller.AppError(appErr)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", data)
}
