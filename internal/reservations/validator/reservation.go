package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

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

type ReservationValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewReservationValidator(log *logger.Logger) *ReservationValidator {
	log.Info("Reservation validator initialized successfully")

	return &ReservationValidator{
		validate: validator.New(),
		logger:   log,
	}
}

// ValidateCreate checks the request shape and parses the RFC3339 dates.
// Range rules (end after start, no past starts, stay bounds) belong to the
// admission pipeline, which owns their rejection messages.
func (v *ReservationValidator) ValidateCreate(req *model.CreateReservationRequest) (start, end time.Time, err error) {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return time.Time{}, time.Time{}, v.translateValidationErrors(validationErrs)
		}
		return time.Time{}, time.Time{}, err
	}

	start, err = time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, ValidationErrors{
			ValidationError{Field: "StartDate", Message: "start_date must be an RFC3339 timestamp"},
		}
	}

	end, err = time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, ValidationErrors{
			ValidationError{Field: "EndDate", Message: "end_date must be an RFC3339 timestamp"},
		}
	}

	return start, end, nil
}

func (v *ReservationValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
