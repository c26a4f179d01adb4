package validator

import (
	"strings"

	corevalidator "classtime/core/validator"
	"classtime/modules/chat/dto"
)

func ValidateIntentRequest(req *dto.IntentRequest) *corevalidator.ValidationResult {
	req.Text = strings.TrimSpace(req.Text)
	return corevalidator.ValidateStruct(req)
}

func ValidateMessageRequest(req *dto.MessageRequest) *corevalidator.ValidationResult {
	req.Message = strings.TrimSpace(req.Message)
	return corevalidator.ValidateStruct(req)
}
