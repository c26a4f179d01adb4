package validator

import (
	"strings"

	corevalidator "classtime/core/validator"
	"classtime/modules/auth/dto"
)

func ValidateRegisterRequest(req *dto.RegisterRequest) *corevalidator.ValidationResult {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	result := corevalidator.ValidateStruct(req)
	if req.Password != "" && req.ConfirmPassword != "" && req.Password != req.ConfirmPassword {
		result.Add("confirmPassword", "Passwords do not match")
	}
	return result
}

func ValidateLoginRequest(req *dto.LoginRequest) *corevalidator.ValidationResult {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	return corevalidator.ValidateStruct(req)
}

func ValidateRefreshTokenRequest(req *dto.RefreshTokenRequest) *corevalidator.ValidationResult {
	return corevalidator.ValidateStruct(req)
}

func ValidateGoogleVerifyRequest(req *dto.GoogleVerifyRequest) *corevalidator.ValidationResult {
	return corevalidator.ValidateStruct(req)
}
