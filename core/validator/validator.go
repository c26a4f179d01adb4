package validator

import (
	"reflect"
	"strings"
	"time"

	"classtime/core/utils"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator
)

// custom validation tags & texts
const (
	notBlankTag  = "notblank"
	notBlankText = "{0} must not be blank"
	dateTag      = "date"
	dateText     = "{0} must be a date in YYYY-MM-DD format"
	clockTag     = "clock"
	clockText    = "{0} must be a time in HH:MM or HH:MM:SS format"
)

func init() {
	Validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = Validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = Validate.RegisterValidation(dateTag, func(fl validator.FieldLevel) bool {
		_, ok := utils.ParseDate(fl.Field().String(), time.UTC)
		return ok
	})
	_ = Validate.RegisterValidation(clockTag, func(fl validator.FieldLevel) bool {
		_, ok := utils.ParseClock(fl.Field().String())
		return ok
	})

	RegisterCustomTranslation(notBlankTag, notBlankText)
	RegisterCustomTranslation(dateTag, dateText)
	RegisterCustomTranslation(clockTag, clockText)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(tag, text string) {
	_ = Validate.RegisterTranslation(
		tag, Translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationResult struct {
	Errors []FieldError `json:"errors"`
}

func (r *ValidationResult) HasError() bool {
	return r != nil && len(r.Errors) > 0
}

func (r *ValidationResult) Add(field, message string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: message})
}

// First returns the first error message, or "" when valid.
func (r *ValidationResult) First() string {
	if !r.HasError() {
		return ""
	}
	return r.Errors[0].Message
}

// ValidateStruct runs the struct's validate tags and translates failures.
func ValidateStruct(s any) *ValidationResult {
	result := &ValidationResult{}
	err := Validate.Struct(s)
	if err == nil {
		return result
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		result.Add("", err.Error())
		return result
	}
	for _, fe := range fieldErrors {
		result.Add(fe.Field(), fe.Translate(Translator))
	}
	return result
}
