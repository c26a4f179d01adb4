package controller

import (
	"strconv"

	"classtime/core/controller"
	"classtime/core/errors"
	"classtime/modules/booking/dto"
	"classtime/modules/booking/service"
	"classtime/modules/booking/validator"

	"github.com/labstack/echo/v4"
)

// AdminController serves the operator endpoints behind the admin API key.
type AdminController struct {
	BookingService service.BookingServiceInterface
	controller.BaseController
}

func NewAdminController(bookingService service.BookingServiceInterface) *AdminController {
	return &AdminController{
		BookingService: bookingService,
		BaseController: controller.NewBaseController(),
	}
}

// CreateTimeslot adds a timeslot and auto-books it for its pattern holder
// @Summary Create timeslot
// @Tags Admin
// @Security AdminKey
// @Accept json
// @Produce json
// @Param request body dto.CreateTimeslotRequest true "Timeslot"
// @Success 200 {object} dto.CreateTimeslotResponse
// @Router /admin/timeslots [post]
func (controller *AdminController) CreateTimeslot(c echo.Context) error {
	requestData := new(dto.CreateTimeslotRequest)
	if err := c.Bind(requestData); err != nil {
		return controller.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}
	validationResult := validator.ValidateCreateTimeslotRequest(requestData)
	if validationResult.HasError() {
		return controller.BadRequest(errors.ErrInvalidInput, validationResult.First(), validationResult)
	}

	resp, appErr := controller.BookingService.CreateTimeslot(c.Request().Context(), requestData)
	if appErr != nil {
		return controller.AppError(appErr)
	}
	return controller.SuccessResponse(c, resp, "Timeslot created")
}

// AutoBook offers an existing timeslot to the holders of its pattern
// @Summary Auto-book a timeslot
// @Tags Admin
// @Security AdminKey
// @Produce json
// @Param id path int true "Timeslot ID"
// @Success 200 {object} dto.AutoBookResponse
// @Router /admin/timeslots/{id}/auto-book [post]
func (controller *AdminController) AutoBook(c echo.Context) error {
	timeslotID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || timeslotID <= 0 {
		return controller.BadRequest(errors.ErrInvalidInput, "Invalid timeslot id")
	}

	resp, appErr := controller.BookingService.AutoBookRecurring(c.Request().Context(), timeslotID)
	if appErr != nil {
		return controller.AppError(appErr)
	}
	return controller.SuccessResponse(c, resp, resp.Message)
}

// Sweep runs the recurring auto-booking over all open timeslots
// @Summary Recurring sweep
// @Tags Admin
// @Security AdminKey
// @Produce json
// @Success 200 {object} dto.SweepResponse
// @Router /admin/sweep [post]
func (controller *AdminController) Sweep(c echo.Context) error {
	resp, appErr := controller.BookingService.SweepRecurring(c.Request().Context())
	if appErr != nil {
		return controller.AppError(appErr)
	}
	return controller.SuccessResponse(c, resp, "Sweep finished")
}
