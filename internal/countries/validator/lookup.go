package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"countries/pkg/logger"
	"countries/pkg/model"
)

const MaxLookupValueLength = 128

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// LookupRequest is a single field/value lookup as received from a caller.
type LookupRequest struct {
	Field model.LookupField `validate:"lookup_field"`
	Value string            `validate:"not_blank,max=128"`
}

type LookupValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewLookupValidator(log *logger.Logger) *LookupValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.RegisterValidation("lookup_field", validateLookupField); err != nil {
		log.Fatal("Failed to register 'lookup_field' validator", "error", err)
	}
	if err := v.RegisterValidation("not_blank", validateNotBlank); err != nil {
		log.Fatal("Failed to register 'not_blank' validator", "error", err)
	}

	return &LookupValidator{
		validate: v,
		logger:   log,
	}
}

func validateLookupField(fl validator.FieldLevel) bool {
	field, ok := fl.Field().Interface().(model.LookupField)
	return ok && field.Valid()
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func (v *LookupValidator) Validate(req LookupRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(req, validationErrs)
		}
		return err
	}
	return nil
}

func translateValidationErrors(req LookupRequest, errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		field := strings.ToLower(err.Field())
		message := err.Error()

		switch err.Tag() {
		case "not_blank":
			field = req.Field.String()
			message = fmt.Sprintf("%s must not be empty", field)
		case "max":
			field = req.Field.String()
			message = fmt.Sprintf("%s must be at most %s characters", field, err.Param())
		case "lookup_field":
			message = fmt.Sprintf("unsupported lookup field %s", req.Field)
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   field,
			Message: message,
		})
	}

	return validationErrors
}
