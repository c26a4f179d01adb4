package controller

import (
	"classtime/core/controller"
	"classtime/core/errors"
	"classtime/core/middleware"
	"classtime/modules/chat/dto"
	"classtime/modules/chat/entity"
	"classtime/modules/chat/service"
	"classtime/modules/chat/validator"

	"github.com/labstack/echo/v4"
)

type ChatController struct {
	ChatService service.ChatServiceInterface
	controller.BaseController
}

func NewChatController(chatService service.ChatServiceInterface) *ChatController {
	return &ChatController{
		ChatService:    chatService,
		BaseController: controller.NewBaseController(),
	}
}

// PredictIntent classifies a single text
// @Summary Predict intent
// @Tags Chat
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.IntentRequest true "Text"
// @Success 200 {object} dto.IntentResponse
// @Router /private/chat/intent [post]
func (controller *ChatController) PredictIntent(c echo.Context) error {
	requestData := new(dto.IntentRequest)
	if err := c.Bind(requestData); err != nil {
		return controller.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}

	validationResult := validator.ValidateIntentRequest(requestData)
	if validationResult.HasError() {
		return controller.BadRequest(errors.ErrInvalidInput, "Text is required", validationResult)
	}

	resp, err := controller.ChatService.PredictIntent(c.Request().Context(), requestData.Text)
	if err != nil {
		return controller.AppError(err)
	}
	return controller.SuccessResponse(c, resp, "Intent predicted")
}

// Message runs one dialog turn
// @Summary Chat message
// @Tags Chat
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.MessageRequest true "Message and optional context"
// @Success 200 {object} dto.MessageResponse
// @Router /private/chat/message [post]
func (controller *ChatController) Message(c echo.Context) error {
	studentID, err := middleware.CurrentStudentID(c)
	if err != nil {
		return err
	}

	requestData := new(dto.MessageRequest)
	if err := c.Bind(requestData); err != nil {
		return controller.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}

	validationResult := validator.ValidateMessageRequest(requestData)
	if validationResult.HasError() {
		return controller.BadRequest(errors.ErrInvalidInput, "Message is required", validationResult)
	}

	resp, appErr := controller.ChatService.ProcessMessage(c.Request().Context(), studentID, requestData)
	if appErr != nil {
		return controller.AppError(appErr)
	}
	return controller.SuccessResponse(c, resp, "Message processed")
}

// Reset clears the dialog state
// @Summary Reset chat
// @Tags Chat
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.ResetResponse
// @Router /private/chat/reset [post]
func (controller *ChatController) Reset(c echo.Context) error {
	studentID, err := middleware.CurrentStudentID(c)
	if err != nil {
		return err
	}

	if appErr := controller.ChatService.Reset(c.Request().Context(), studentID); appErr != nil {
		return controller.AppError(appErr)
	}
	return controller.SuccessResponse(c, dto.ResetResponse{Stage: string(entity.StageIdle)}, "Chat reset")
}
