package validator

import (
	"errors"
	"fmt"
	"strings"

	"qota/pkg/logger"
	"qota/pkg/model"

	"github.com/go-playground/validator/v10"
)

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

type PropertyValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewPropertyValidator(log *logger.Logger) *PropertyValidator {
	v := validator.New()

	if err := v.RegisterValidation("property_type", validatePropertyType); err != nil {
		log.Fatal("Failed to register 'property_type' validator",
			"error", err,
		)
	}

	log.Info("Property validator initialized successfully")

	return &PropertyValidator{
		validate: v,
		logger:   log,
	}
}

func validatePropertyType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case model.PropertyTypeHouse,
		model.PropertyTypeApartment,
		model.PropertyTypeFarmhouse,
		model.PropertyTypeLot,
		model.PropertyTypeOther:
		return true
	}
	return false
}

func (v *PropertyValidator) ValidateCreate(req *model.CreatePropertyRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if req.MinStayDays != nil && req.MaxStayDays != nil && *req.MaxStayDays < *req.MinStayDays {
		return ValidationErrors{
			ValidationError{
				Field:   "MaxStayDays",
				Message: "max_stay_days must be greater than or equal to min_stay_days",
			},
		}
	}

	return nil
}

// Validate checks the fully assembled property, after defaults and quota
// seeding are applied.
func (v *PropertyValidator) Validate(property *model.Property) error {
	if err := v.validate.Struct(property); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return nil
}

func (v *PropertyValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "gtecsfield":
			message = fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
		case "property_type":
			message = fmt.Sprintf("%s must be one of: House, Apartment, Farmhouse, Lot, Other", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
