package validator

import (
	"strings"

	corevalidator "classtime/core/validator"
	"classtime/modules/tutor/dto"
)

func ValidateSearchRequest(req *dto.SearchRequest) *corevalidator.ValidationResult {
	req.Query = strings.TrimSpace(req.Query)
	return corevalidator.ValidateStruct(req)
}
