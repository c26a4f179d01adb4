package validator

import (
	"strings"

	corevalidator "classtime/core/validator"
	"classtime/modules/booking/dto"
)

func ValidateBookRequest(req *dto.BookRequest) *corevalidator.ValidationResult {
	return corevalidator.ValidateStruct(req)
}

func ValidateCancelRequest(req *dto.CancelRequest) *corevalidator.ValidationResult {
	return corevalidator.ValidateStruct(req)
}

func ValidateTimeslotRequest(req *dto.TimeslotRequest) *corevalidator.ValidationResult {
	return corevalidator.ValidateStruct(req)
}

func ValidateCreateTimeslotRequest(req *dto.CreateTimeslotRequest) *corevalidator.ValidationResult {
	req.Date = strings.TrimSpace(req.Date)
	req.StartTime = strings.TrimSpace(req.StartTime)
	req.EndTime = strings.TrimSpace(req.EndTime)
	return corevalidator.ValidateStruct(req)
}
