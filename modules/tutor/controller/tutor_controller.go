package controller

import (
	"strconv"

	"classtime/core/controller"
	"classtime/core/errors"
	"classtime/core/middleware"
	"classtime/modules/tutor/dto"
	"classtime/modules/tutor/service"
	"classtime/modules/tutor/validator"

	"github.com/labstack/echo/v4"
)

type TutorController struct {
	TutorService service.TutorServiceInterface
	controller.BaseController
}

func NewTutorController(tutorService service.TutorServiceInterface) *TutorController {
	return &TutorController{
		TutorService:   tutorService,
		BaseController: controller.NewBaseController(),
	}
}

func (controller *TutorController) tutorIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, controller.BadRequest(errors.ErrInvalidInput, "Invalid tutor id")
	}
	return id, nil
}

// optionalTutorID reads ?tutor_id; an empty value means all tutors.
func (controller *TutorController) optionalTutorID(c echo.Context) (*int64, error) {
	raw := c.QueryParam("tutor_id")
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, controller.BadRequest(errors.ErrInvalidInput, "Invalid tutor_id")
	}
	return &id, nil
}

func optionalInt(c echo.Context, name string) (int, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	return v, err == nil
}

// Search finds tutors by name, surname or course
// @Summary Search tutors
// @Tags Tutor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.SearchRequest true "Query"
// @Success 200 {object} dto.SearchResponse
// @Router /private/tutors/search [post]
func (controller *TutorController) Search(c echo.Context) error {
	requestData := new(dto.SearchRequest)
	if err := c.Bind(requestData); err != nil {
		return controller.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}

	validationResult := validator.ValidateSearchRequest(requestData)
	if validationResult.HasError() {
		return controller.BadRequest(errors.ErrInvalidInput, "Search query is required", validationResult)
	}

	resp, err := controller.TutorService.Search(c.Request().Context(), requestData.Query)
	if err != nil {
		return controller.AppError(err)
	}
	return controller.SuccessResponse(c, resp, "Tutors found")
}

// Dates lists future dates with available timeslots
// @Summary Tutor available dates
// @Tags Tutor
// @Security BearerAuth
// @Produce json
// @Param id path int true "Tutor ID"
// @Success 200 {array} dto.AvailableDateResponse
// @Router /private/tutors/{id}/dates [get]
func (controller *TutorController) Dates(c echo.Context) error {
	tutorID, err := controller.tutorIDParam(c)
	if err != nil {
		return err
	}

	dates, appErr := controller.TutorService.Dates(c.Request().Context(), tutorID)
	if appErr != nil {
		return controller.AppError(appErr)
	}
	return controller.SuccessResponse(c, dates, "Available dates")
}

// Timeslots lists available timeslots on a date
// @Summary Tutor timeslots
// @Tags Tutor
// @Security BearerAuth
// @Produce json
// @Param id path int true "Tutor ID"
// @Param date query string true "YYYY-MM-DD"
// @Success 200 {array} dto.TimeslotResponse
// @Router /private/tutors/{id}/timeslots [get]
func (controller *TutorController) Timeslots(c echo.Context) error {
	tutorID, err := controller.tutorIDParam(c)
	if err != nil {
		return err
	}

	slots, appErr := controller.TutorService.Timeslots(c.Request().Context(), tutorID, c.QueryParam("date"))
	if appErr != nil {
		return controller.AppError(appErr)
	}
	return controller.SuccessResponse(c, slots, "Available timeslots")
}

// MonthCalendar returns a month of timeslots grouped by date
// @Summary Month calendar
// @Tags Calendar
// @Security BearerAuth
// @Produce json
// @Param month query int false "1..12"
// @Param year query int false "Year"
// @Param tutor_id query int false "Tutor filter"
// @Success 200 {object} dto.MonthCalendarResponse
// @Router /private/calendar [get]
func (controller *TutorController) MonthCalendar(c echo.Context) error {
	studentID, err := middleware.CurrentStudentID(c)
	if err != nil {
		return err
	}
	tutorID, err := controller.optionalTutorID(c)
	if err != nil {
		return err
	}

	month, okMonth := optionalInt(c, "month")
	year, okYear := optionalInt(c, "year")
	if !okMonth || !okYear {
		return controller.BadRequest(errors.ErrInvalidInput, "Invalid month or year")
	}

	resp, appErr := controller.TutorService.MonthCalendar(c.Request().Context(), studentID, month, year, tutorID)
	if appErr != nil {
		return controller.AppError(appErr)
	}
	return controller.SuccessResponse(c, resp, "Calendar")
}

// WeekCalendar returns the Monday to Sunday week containing date
// @Summary Week calendar
// @Tags Calendar
// @Security BearerAuth
// @Produce json
// @Param date query string false "YYYY-MM-DD"
// @Param tutor_id query int false "Tutor filter"
// @Success 200 {object} dto.WeekCalendarResponse
// @Router /private/calendar/week [get]
func (controller *TutorController) WeekCalendar(c echo.Context) error {
	studentID, err := middleware.CurrentStudentID(c)
	if err != nil {
		return err
	}
	tutorID, err := controller.optionalTutorID(c)
	if err != nil {
		return err
	}

	resp, appErr := controller.TutorService.WeekCalendar(c.Request().Context(), studentID, c.QueryParam("date"), tutorID)
	if appErr != nil {
		return controller.AppError(appErr)
	}
	return controller.SuccessResponse(c, resp, "Week calendar")
}
