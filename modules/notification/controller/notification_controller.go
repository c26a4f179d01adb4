package controller

import (
	"classtime/core/controller"
	"classtime/core/errors"
	"classtime/core/middleware"
	"classtime/core/params"
	corevalidator "classtime/core/validator"
	"classtime/modules/notification/dto"
	"classtime/modules/notification/service"

	"github.com/labstack/echo/v4"
)

type NotificationController struct {
	service service.NotificationServiceInterface
	controller.BaseController
}

func NewNotificationController(service service.NotificationServiceInterface) *NotificationController {
	return &NotificationController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// GetMyNotifications lists the caller's notifications, newest first
// @Summary List notifications
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.AppError
// @Router /private/notifications [get]
func (c *NotificationController) GetMyNotifications(ctx echo.Context) error {
	studentID, err := middleware.CurrentStudentID(ctx)
	if err != nil {
		return err
	}

	queryParams := params.NewQueryParams(ctx)
	result, appErr := c.service.GetMyNotifications(ctx.Request().Context(), studentID, *queryParams)
	if appErr != nil {
		return c.AppError(appErr)
	}

	return c.SuccessResponse(ctx, result, "Notifications retrieved successfully")
}

// MarkAsRead marks specific notifications as read
// @Summary Mark notifications read
// @Tags Notification
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.MarkAsReadRequest true "Notification ids"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.AppError
// @Router /private/notifications/mark-read [put]
func (c *NotificationController) MarkAsRead(ctx echo.Context) error {
	studentID, err := middleware.CurrentStudentID(ctx)
	if err != nil {
		return err
	}

	req := new(dto.MarkAsReadRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}
	if result := corevalidator.ValidateStruct(req); result.HasError() {
		return c.BadRequest(errors.ErrInvalidInput, result.First(), result)
	}

	if appErr := c.service.MarkAsRead(ctx.Request().Context(), studentID, req.IDs); appErr != nil {
		return c.AppError(appErr)
	}

	return c.SuccessResponse(ctx, nil, "Marked as read successfully")
}

// MarkAllAsRead marks all of the caller's notifications as read
// @Summary Mark all notifications read
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /private/notifications/mark-all-read [put]
func (c *NotificationController) MarkAllAsRead(ctx echo.Context) error {
	studentID, err := middleware.CurrentStudentID(ctx)
	if err != nil {
		return err
	}

	if appErr := c.service.MarkAllAsRead(ctx.Request().Context(), studentID); appErr != nil {
		return c.AppError(appErr)
	}

	return c.SuccessResponse(ctx, nil, "Marked all as read successfully")
}

// CountUnread counts unread notifications
// @Summary Unread count
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.UnreadCountResponse
// @Router /private/notifications/unread-count [get]
func (c *NotificationController) CountUnread(ctx echo.Context) error {
	studentID, err := middleware.CurrentStudentID(ctx)
	if err != nil {
		return err
	}

	count, appErr := c.service.CountUnread(ctx.Request().Context(), studentID)
	if appErr != nil {
		return c.AppError(appErr)
	}

	return c.SuccessResponse(ctx, dto.UnreadCountResponse{Count: count}, "Unread count retrieved")
}
